package analytics

import "github.com/baseradar/baseradar/internal/domain"

// Lifecycle stages reported as CurrentStage.
const (
	StageNone      = "none"
	StageEmerging  = "emerging"
	StageGrowing   = "growing"
	StagePeak      = "peak"
	StageDeclining = "declining"
	StageFaded     = "faded"
	StageActive    = "active"
)

// BuildLifecycle segments a series around its peak plateau. Emergence is the
// first contiguous run of non-zero days. Growth is the
// strictly increasing run leading into the peak, decline the strictly
// decreasing run after it, stopping at zero or the end of the series.
func BuildLifecycle(series []domain.FrequencyPoint) domain.Lifecycle {
	n := len(series)
	first, last := -1, -1
	peak := 0
	active := 0
	for i, p := range series {
		if p.Count == 0 {
			continue
		}
		active++
		if first < 0 {
			first = i
		}
		last = i
		if p.Count > series[peak].Count {
			peak = i
		}
	}
	if first < 0 {
		return domain.Lifecycle{CurrentStage: StageNone}
	}

	peakEnd := peak
	for peakEnd+1 < n && series[peakEnd+1].Count == series[peak].Count {
		peakEnd++
	}

	growth := peak
	for growth > first && series[growth-1].Count < series[growth].Count {
		growth--
	}

	decline := peakEnd
	for decline+1 < n && series[decline+1].Count < series[decline].Count {
		decline++
		if series[decline].Count == 0 {
			break
		}
	}

	emerged := first
	for emerged+1 < n && series[emerged+1].Count > 0 {
		emerged++
	}

	lc := domain.Lifecycle{
		Emergence:  phase(series, first, emerged),
		Peak:       phase(series, peak, peakEnd),
		FirstSeen:  series[first].Date,
		LastSeen:   series[last].Date,
		ActiveDays: active,
	}
	if growth < peak {
		lc.Growth = phase(series, growth, peak-1)
	}
	if decline > peakEnd {
		lc.Decline = phase(series, peakEnd+1, decline)
	}

	end := n - 1
	switch {
	case series[end].Count == 0:
		lc.CurrentStage = StageFaded
	case end == first:
		lc.CurrentStage = StageEmerging
	case end == peak && growth < peak:
		lc.CurrentStage = StageGrowing
	case end <= peakEnd:
		lc.CurrentStage = StagePeak
	case end <= decline:
		lc.CurrentStage = StageDeclining
	default:
		lc.CurrentStage = StageActive
	}
	return lc
}

func phase(series []domain.FrequencyPoint, from, to int) *domain.Phase {
	return &domain.Phase{Start: series[from].Date, End: series[to].Date}
}
