package scraper

import (
	"context"
	"errors"

	"yfquote-service/internal/domain"

	"go.uber.org/zap"
)

const (
	// SweepWidth is the horizontal pixel span the pointer travels over the chart.
	SweepWidth     = 1200
	PointerOriginX = 360
	PointerY       = 500

	ChartRegionSelector = "div.stx-subholder"
)

// Sampler rebuilds a price series by sweeping the pointer across the chart and
// reading the tooltip at each step. It never fails: faults end the sweep and
// whatever was collected is returned.
type Sampler struct {
	Strategies []TooltipStrategy
	Log        *zap.Logger
	Recorder   Recorder
}

func NewSampler(log *zap.Logger, rec Recorder) *Sampler {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Sampler{Strategies: DefaultTooltipStrategies, Log: log, Recorder: rec}
}

// Sample activates the chart control for tf and returns samples in sweep order
// with no two adjacent samples sharing a time. At most ceil(SweepWidth/stride)
// samples are returned.
func (s *Sampler) Sample(ctx context.Context, p Page, tf domain.TimeFrame) []domain.ChartSample {
	ctl := tf.Control()
	log := s.Log.With(zap.String("time_frame", string(tf)), zap.Int("stride", ctl.Stride))

	samples := make([]domain.ChartSample, 0, (SweepWidth+ctl.Stride-1)/ctl.Stride)
	done := func(reason string, err error) []domain.ChartSample {
		if reason != "" {
			log.Warn("sampler.aborted", zap.String("reason", reason), zap.Int("samples", len(samples)), zap.Error(err))
			s.Recorder.SamplingAborted(reason)
		}
		s.Recorder.ChartSampled(len(samples))
		return samples
	}

	if err := p.Click(ctx, ctl.Selector); err != nil {
		return done(faultReason(ctx), err)
	}

	var strategy *TooltipStrategy
	for i := 0; i < SweepWidth; i += ctl.Stride {
		if err := ctx.Err(); err != nil {
			return done(AbortReasonCanceled, err)
		}
		if err := p.Hover(ctx, ChartRegionSelector); err != nil {
			return done(faultReason(ctx), err)
		}
		if err := p.MovePointer(ctx, float64(PointerOriginX+i), PointerY); err != nil {
			return done(faultReason(ctx), err)
		}

		tooltip, err := p.QuerySelector(ctx, tooltipBody)
		if err != nil {
			return done(faultReason(ctx), err)
		}
		if tooltip == nil {
			return done(AbortReasonTooltipMissing, nil)
		}
		visible, err := tooltip.IsVisible(ctx)
		if err != nil {
			return done(faultReason(ctx), err)
		}
		if !visible {
			continue
		}

		if strategy == nil {
			st, err := detectTooltipStrategy(ctx, p, s.Strategies)
			if errors.Is(err, errNoTooltipStrategy) {
				return done(AbortReasonNoStrategy, err)
			}
			if err != nil {
				return done(faultReason(ctx), err)
			}
			log.Debug("sampler.strategy_selected", zap.String("strategy", st.Name))
			strategy = &st
		}

		sample, err := strategy.read(ctx, p)
		if err != nil {
			return done(faultReason(ctx), err)
		}
		if n := len(samples); n > 0 && samples[n-1].Time == sample.Time {
			continue
		}
		samples = append(samples, sample)
	}
	return done("", nil)
}

func faultReason(ctx context.Context) string {
	if ctx.Err() != nil {
		return AbortReasonCanceled
	}
	return AbortReasonFault
}
