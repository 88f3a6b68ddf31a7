package domain

import "time"

// AnalysisType selects which topic analysis to run.
type AnalysisType string

const (
	AnalysisTrend     AnalysisType = "trend"
	AnalysisLifecycle AnalysisType = "lifecycle"
	AnalysisViral     AnalysisType = "viral"
	AnalysisPredict   AnalysisType = "predict"
)

// AnalysisResult is the outcome of a topic analysis. Exactly one of the
// variant payloads is populated, matching Type.
type AnalysisResult struct {
	Type   AnalysisType     `json:"type"`
	Topic  string           `json:"topic"`
	Start  string           `json:"start"`
	End    string           `json:"end"`
	Series []FrequencyPoint `json:"series"`
	Notes  []string         `json:"notes,omitempty"`

	Trend      *TrendStats  `json:"trend,omitempty"`
	Lifecycle  *Lifecycle   `json:"lifecycle,omitempty"`
	Viral      *ViralReport `json:"viral,omitempty"`
	Prediction *Prediction  `json:"prediction,omitempty"`
}

// TrendStats summarizes a frequency series.
type TrendStats struct {
	Total      int            `json:"total"`
	Average    float64        `json:"average"`
	Peak       FrequencyPoint `json:"peak"`
	ChangeRate float64        `json:"changeRate"`
	Direction  string         `json:"direction"`
}

// Phase is an inclusive day span of a lifecycle stage.
type Phase struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Lifecycle splits a series into emergence, growth, peak and decline.
type Lifecycle struct {
	Emergence    *Phase `json:"emergence,omitempty"`
	Growth       *Phase `json:"growth,omitempty"`
	Peak         *Phase `json:"peak,omitempty"`
	Decline      *Phase `json:"decline,omitempty"`
	FirstSeen    string `json:"firstSeen,omitempty"`
	LastSeen     string `json:"lastSeen,omitempty"`
	ActiveDays   int    `json:"activeDays"`
	CurrentStage string `json:"currentStage"`
}

// Surge is a day whose count exceeded the virality threshold.
type Surge struct {
	Date     string  `json:"date"`
	Count    int     `json:"count"`
	Baseline float64 `json:"baseline"`
	Ratio    float64 `json:"ratio"`
	NewOnset bool    `json:"newOnset,omitempty"`
}

// ViralReport lists the surges found in a series.
type ViralReport struct {
	WindowDays     int     `json:"windowDays"`
	Threshold      float64 `json:"threshold"`
	Surges         []Surge `json:"surges"`
	CurrentlyViral bool    `json:"currentlyViral"`
}

// HotWindow is a predicted time window in which a topic stays hot.
type HotWindow struct {
	Topic         string    `json:"topic"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	ExpectedCount float64   `json:"expectedCount"`
	Confidence    float64   `json:"confidence"`
	Slope         float64   `json:"slope"`
}

// Prediction holds the hot windows whose confidence met the threshold.
type Prediction struct {
	LookaheadHours      int         `json:"lookaheadHours"`
	ConfidenceThreshold float64     `json:"confidenceThreshold"`
	Windows             []HotWindow `json:"windows"`
}
