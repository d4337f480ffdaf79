package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"yfquote-service/internal/application"
	"yfquote-service/internal/domain"
	"yfquote-service/internal/infrastructure/logx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var _ application.UpdateJobRepo = (*UpdateJobRepo)(nil)

type UpdateJobRepo struct{ db *DB }

func NewUpdateJobRepo(db *DB) *UpdateJobRepo { return &UpdateJobRepo{db: db} }

func (r *UpdateJobRepo) logger(op, sql string) *zap.Logger {
	return logx.L().With(
		zap.String("repo", "update_job"),
		zap.String("operation", op),
		zap.String("sql", sql),
	)
}

func timeFrameArg(tf *domain.TimeFrame) *string {
	if tf == nil {
		return nil
	}
	s := string(*tf)
	return &s
}

func (r *UpdateJobRepo) CreateQueued(ctx context.Context, req domain.QuoteRequest, idem *string) (string, error) {
	id := uuid.NewString()
	const ins = `
        INSERT INTO quote_updates(id, ticker, time_frame, status, idempotency_key)
        VALUES ($1, $2, $3, 'queued', $4)`
	log := r.logger("CreateQueued", ins).With(
		zap.String("id", id),
		zap.String("ticker", string(req.Ticker)),
	)
	log.Info("sql.exec_start")
	tag, err := r.db.Pool.Exec(ctx, ins, id, string(req.Ticker), timeFrameArg(req.TimeFrame), idem)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return "", err
	}
	log.Info("sql.exec_success", zap.Int64("rows_affected", tag.RowsAffected()))
	return id, nil
}

func (r *UpdateJobRepo) GetByID(ctx context.Context, id string) (domain.QuoteUpdate, error) {
	const q = `
        SELECT id::text, ticker, time_frame, status, error, result, updated_at
        FROM quote_updates WHERE id=$1`
	log := r.logger("GetByID", q).With(zap.String("id", id))
	if _, err := uuid.Parse(id); err != nil {
		log.Info("sql.query_invalid_id")
		return domain.QuoteUpdate{}, application.ErrNotFound
	}

	log.Info("sql.query_start")
	var (
		out    domain.QuoteUpdate
		ticker string
		tf     *string
		status string
		result []byte
	)
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&out.ID, &ticker, &tf, &status, &out.Error, &result, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Info("sql.query_no_rows")
		return domain.QuoteUpdate{}, application.ErrNotFound
	}
	if err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return domain.QuoteUpdate{}, err
	}

	out.Request.Ticker = domain.Ticker(ticker)
	if tf != nil {
		t := domain.TimeFrame(*tf)
		out.Request.TimeFrame = &t
	}
	out.Status = domain.ParseQuoteUpdateStatus(status)
	if len(result) > 0 {
		var quote domain.Quote
		if err := json.Unmarshal(result, &quote); err != nil {
			log.Error("sql.decode_result_failed", zap.Error(err))
			return domain.QuoteUpdate{}, fmt.Errorf("decode result of %s: %w", id, err)
		}
		out.Result = &quote
	}
	log.Info("sql.query_success",
		zap.String("ticker", ticker),
		zap.String("status", string(out.Status)),
	)
	return out, nil
}

func (r *UpdateJobRepo) UpdateStatus(ctx context.Context, id string, st domain.QuoteUpdateStatus, errMsg *string) error {
	s := string(domain.ParseQuoteUpdateStatus(string(st)))
	const up = `
        UPDATE quote_updates
        SET status=$2,
            error=$3,
            updated_at=NOW(),
            completed_at = CASE WHEN $2 IN ('done','failed') THEN NOW() ELSE completed_at END
        WHERE id=$1`
	log := r.logger("UpdateStatus", up).With(zap.String("id", id), zap.String("status", s))
	if errMsg != nil {
		log = log.With(zap.String("error", *errMsg))
	}
	log.Info("sql.exec_start")
	tag, err := r.db.Pool.Exec(ctx, up, id, s, errMsg)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		log.Warn("sql.exec_no_rows")
		return application.ErrNotFound
	}
	log.Info("sql.exec_success", zap.Int64("rows_affected", tag.RowsAffected()))
	return nil
}

// SaveResult stores q on the job and marks it done.
func (r *UpdateJobRepo) SaveResult(ctx context.Context, id string, q domain.Quote) error {
	const up = `
        UPDATE quote_updates
        SET status='done', error=NULL, result=$2, updated_at=NOW(), completed_at=NOW()
        WHERE id=$1`
	log := r.logger("SaveResult", up).With(zap.String("id", id))
	b, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	log.Info("sql.exec_start")
	tag, err := r.db.Pool.Exec(ctx, up, id, b)
	if err != nil {
		log.Error("sql.exec_failed", zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		log.Warn("sql.exec_no_rows")
		return application.ErrNotFound
	}
	log.Info("sql.exec_success", zap.Int("result_bytes", len(b)))
	return nil
}

// ClaimQueued moves up to limit of the oldest queued jobs to processing and
// returns them. Concurrent claimers never receive the same job.
func (r *UpdateJobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.QuoteUpdate, error) {
	const q = `
      WITH cte AS (
        SELECT id
        FROM quote_updates
        WHERE status = 'queued'
        ORDER BY requested_at
        LIMIT $1
        FOR UPDATE SKIP LOCKED
      )
      UPDATE quote_updates u
      SET status = 'processing', updated_at = NOW()
      FROM cte
      WHERE u.id = cte.id
      RETURNING u.id::text, u.ticker, u.time_frame, u.updated_at;
    `
	log := r.logger("ClaimQueued", q).With(zap.Int("limit", limit))
	rows, err := r.db.Pool.Query(ctx, q, limit)
	if err != nil {
		log.Error("sql.query_failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []domain.QuoteUpdate
	for rows.Next() {
		var (
			j      domain.QuoteUpdate
			ticker string
			tf     *string
		)
		if err := rows.Scan(&j.ID, &ticker, &tf, &j.UpdatedAt); err != nil {
			return nil, err
		}
		j.Request.Ticker = domain.Ticker(ticker)
		if tf != nil {
			t := domain.TimeFrame(*tf)
			j.Request.TimeFrame = &t
		}
		j.Status = domain.QuoteUpdateStatusProcessing
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) > 0 {
		log.Info("sql.claimed", zap.Int("count", len(out)))
	}
	return out, nil
}
