package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
)

// #endregion

// #region fixture-types

// Fixture is the top-level JSON structure for a recorded conversation.
type Fixture struct {
	Description string        `json:"description"`
	Turns       []FixtureTurn `json:"turns"`
}

// FixtureTurn is one recorded user utterance plus its expected outcome.
type FixtureTurn struct {
	TurnID   string       `json:"turn_id"`
	Text     string       `json:"text"`
	Expected *Expectation `json:"expected,omitempty"`
}

// Expectation captures the assertions checked against a replayed turn.
// Nil pointer fields mean "not asserted".
type Expectation struct {
	Label                 string   `json:"label,omitempty"`
	MinConfidence         *float64 `json:"min_confidence,omitempty"`
	IncludeOffers         *bool    `json:"include_offers,omitempty"`
	ClarificationRequired *bool    `json:"clarification_required,omitempty"`
	MinOffers             *int     `json:"min_offers,omitempty"`
	BrandLikes            []string `json:"brand_likes,omitempty"`
	UseCases              []string `json:"use_cases,omitempty"`
}

// #endregion fixture-types

// #region load

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if len(f.Turns) == 0 {
		return nil, fmt.Errorf("fixture %s has no turns", path)
	}
	for i, t := range f.Turns {
		if t.TurnID == "" {
			return nil, fmt.Errorf("fixture %s: turn %d missing turn_id", path, i)
		}
	}
	return &f, nil
}

// #endregion load
