package models

import "encoding/json"

// AnalyticsPeriod is the window of organization analytics
type AnalyticsPeriod string

const (
	Period7d  AnalyticsPeriod = "7d"
	Period30d AnalyticsPeriod = "30d"
	Period90d AnalyticsPeriod = "90d"
	PeriodAll AnalyticsPeriod = "all"
)

// Valid reports whether p is a supported period
func (p AnalyticsPeriod) Valid() bool {
	switch p {
	case Period7d, Period30d, Period90d, PeriodAll:
		return true
	}
	return false
}

// Analytics is passed through verbatim; the gateway does no aggregation on it
type Analytics json.RawMessage

// MarshalJSON keeps the upstream document as-is
func (a Analytics) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return a, nil
}

// UnmarshalJSON copies the upstream document
func (a *Analytics) UnmarshalJSON(b []byte) error {
	*a = append((*a)[:0], b...)
	return nil
}
