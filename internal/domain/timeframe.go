package domain

import "strings"

// TimeFrame selects the historical range displayed by the price chart.
type TimeFrame string

const (
	TimeFrameOneDay     TimeFrame = "1D"
	TimeFrameFiveDay    TimeFrame = "5D"
	TimeFrameThreeMonth TimeFrame = "3M"
	TimeFrameSixMonth   TimeFrame = "6M"
	TimeFrameYearToDate TimeFrame = "YTD"
	TimeFrameOneYear    TimeFrame = "1Y"
	TimeFrameFiveYear   TimeFrame = "5Y"
	TimeFrameAll        TimeFrame = "ALL"
)

// TimeFrames lists every supported value in display order.
var TimeFrames = []TimeFrame{
	TimeFrameOneDay,
	TimeFrameFiveDay,
	TimeFrameThreeMonth,
	TimeFrameSixMonth,
	TimeFrameYearToDate,
	TimeFrameOneYear,
	TimeFrameFiveYear,
	TimeFrameAll,
}

// ChartControl is the range button that switches the chart to a time frame and
// the pixel stride used when sweeping the pointer across it.
type ChartControl struct {
	Selector string
	Stride   int
}

func ParseTimeFrame(s string) TimeFrame {
	return TimeFrame(strings.ToUpper(strings.TrimSpace(s)))
}

// Known reports whether t is one of TimeFrames.
func (t TimeFrame) Known() bool {
	switch t {
	case TimeFrameOneDay, TimeFrameFiveDay, TimeFrameThreeMonth, TimeFrameSixMonth,
		TimeFrameYearToDate, TimeFrameOneYear, TimeFrameFiveYear, TimeFrameAll:
		return true
	default:
		return false
	}
}

// Control resolves t to its chart control. Unrecognized values use the 3M control.
func (t TimeFrame) Control() ChartControl {
	switch t {
	case TimeFrameOneDay:
		return ChartControl{Selector: "button#tab-1d-qsp", Stride: 1}
	case TimeFrameFiveDay:
		return ChartControl{Selector: "button#tab-5d-qsp", Stride: 1}
	case TimeFrameSixMonth:
		return ChartControl{Selector: "button#tab-6m", Stride: 7}
	case TimeFrameYearToDate:
		return ChartControl{Selector: "button#tab-YTD", Stride: 3}
	case TimeFrameOneYear:
		return ChartControl{Selector: "button#tab-1y", Stride: 2}
	case TimeFrameFiveYear:
		return ChartControl{Selector: "button#tab-5y", Stride: 2}
	case TimeFrameAll:
		return ChartControl{Selector: "button#tab-Max", Stride: 1}
	default:
		return ChartControl{Selector: "button#tab-3m", Stride: 10}
	}
}
