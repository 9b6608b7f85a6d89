package insight

import (
	"github.com/bqhou/unitai/catalog"
	"github.com/bqhou/unitai/internal/util"
	"github.com/bqhou/unitai/selection"
)

// ContextResponse is the populated state of the insight panel.
type ContextResponse struct {
	Examples []string `json:"examples" description:"List of exactly 2 real world comparison examples"`
	FunFact  string   `json:"funFact" description:"One interesting fact about this measurement"`
}

// LookupResponse is a validated smart-lookup answer. FromUnitID is
// guaranteed to exist in Category; ToUnitID is passed through as proposed.
type LookupResponse struct {
	Category   catalog.Category `json:"category"`
	Value      float64          `json:"value"`
	FromUnitID string           `json:"fromUnitId"`
	ToUnitID   string           `json:"toUnitId"`
	// Confidence is in [0,1] and only meaningful when HasConfidence is set.
	Confidence    float64 `json:"confidence,omitempty"`
	HasConfidence bool    `json:"hasConfidence,omitempty"`
	Explanation   string  `json:"explanation"`
}

// Measurement converts the answer into the input of selection.ApplyLookup.
func (r LookupResponse) Measurement() selection.Measurement {
	return selection.Measurement{
		Category:   r.Category,
		Value:      r.Value,
		FromUnitID: r.FromUnitID,
		ToUnitID:   r.ToUnitID,
	}
}

// lookupWire is the raw model output before catalog resolution.
type lookupWire struct {
	Category    string   `json:"category"`
	Value       float64  `json:"value" description:"Estimated value"`
	FromUnitID  string   `json:"fromUnitId" description:"ID of the source unit from the available list"`
	ToUnitID    string   `json:"toUnitId" description:"ID of the target unit from the available list"`
	Confidence  *float64 `json:"confidence" description:"Confidence score 0-1"`
	Explanation string   `json:"explanation" description:"A fascinating, concise insight about the measured object."`
}

var (
	contextSchema = util.CreateSchema(ContextResponse{})
	lookupSchema  = newLookupSchema()
)

func newLookupSchema() map[string]any {
	s := util.CreateSchema(lookupWire{})
	cats := catalog.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	props := s["properties"].(map[string]any)
	props["category"].(map[string]any)["enum"] = names
	return s
}
