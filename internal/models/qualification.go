// internal/models/qualification.go
package models

// Score bounds for a qualification result.
const (
	MinLeadScore = 1
	MaxLeadScore = 10
)

// QualificationResult is the scored assessment produced once per lead.
type QualificationResult struct {
	Score         int    `json:"score"`
	Qualification string `json:"qualification"`
	Reasoning     string `json:"reasoning"`
	NextAction    string `json:"nextAction"`
	Priority      string `json:"priority"`
}

// InsightFields maps the result onto data-store column names.
func (q QualificationResult) InsightFields() map[string]interface{} {
	return map[string]interface{}{
		"Lead Score":       q.Score,
		"AI Qualification": q.Qualification,
		"AI Reasoning":     q.Reasoning,
		"Next Action":      q.NextAction,
		"Priority":         q.Priority,
	}
}
