package model

import (
	"math"
	"strconv"
	"time"
)

// Credentials holds the access/refresh token pair issued by the backend on
// login. An empty string means the token is absent.
type Credentials struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Summary is the per-upload aggregate computed by the backend from one CSV.
// Numeric fields are pointers because the backend may omit any of them
// (for example when the source column is missing); absent must never be
// conflated with zero.
type Summary struct {
	TotalEquipment   *float64       `json:"total_equipment"`
	AvgFlowrate      *float64       `json:"avg_flowrate"`
	AvgPressure      *float64       `json:"avg_pressure"`
	AvgTemperature   *float64       `json:"avg_temperature"`
	TypeDistribution map[string]int `json:"type_distribution"`
}

// UploadRecord is one processed upload as reported by the backend.
// Records are immutable once received; identity is ID.
type UploadRecord struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	Summary    Summary   `json:"summary"`
}

// History is the ordered sequence of upload records, newest first.
type History []UploadRecord

// Latest returns the most recent record, or nil when the history is empty.
func (h History) Latest() *UploadRecord {
	if len(h) == 0 {
		return nil
	}
	return &h[0]
}

// Chronological returns the history oldest first, for trend series.
func (h History) Chronological() History {
	out := make(History, len(h))
	for i, rec := range h {
		out[len(h)-1-i] = rec
	}
	return out
}

// FormatMetric renders an optional numeric value: "-" when absent,
// otherwise the value rounded to at most two decimals. Zero renders as "0",
// never as the placeholder.
func FormatMetric(v *float64) string {
	if v == nil {
		return "-"
	}
	rounded := math.Round(*v*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// Float returns a pointer to v, for building optional summary fields.
func Float(v float64) *float64 {
	return &v
}
