package qualifylead

import "lead-automation/internal/models"

type Input struct {
	Lead models.Lead `json:"lead"`
}

type Output struct {
	Qualified     bool                        `json:"aiQualified"`
	Qualification *models.QualificationResult `json:"qualification,omitempty"`
	LeadScore     int                         `json:"leadScore,omitempty"`
}

// resultSchema rejects anything that is not a complete result with an in-range score.
const resultSchema = `{
  "type": "object",
  "required": ["score", "qualification", "reasoning", "nextAction", "priority"],
  "properties": {
    "score":         {"type": "integer", "minimum": 1, "maximum": 10},
    "qualification": {"type": "string"},
    "reasoning":     {"type": "string"},
    "nextAction":    {"type": "string"},
    "priority":      {"type": "string"}
  }
}`
