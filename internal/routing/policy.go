package routing

// #region imports
import (
	"fmt"

	"carscout/internal/intent"
)

// #endregion

// #region route-decision

// RouteDecision is the set of downstream steps enabled for the current turn.
// Pure derived value, recomputed every turn, never persisted.
type RouteDecision struct {
	IncludeKnowledge bool `json:"includeKnowledge"`
	IncludeVisuals   bool `json:"includeVisuals"`
	IncludeMatching  bool `json:"includeMatching"`
	IncludeOffers    bool `json:"includeOffers"`
	StrictOffers     bool `json:"strictOffers"`
	RetryMatching    bool `json:"retryMatching"`
}

// ContentState is the turn-level result summary, derived 1:1 from the route
// decision and the offer count of the same turn. Not merged across turns.
type ContentState struct {
	HasResults            bool     `json:"has_results"`
	NumResults            int      `json:"num_results"`
	ClarificationRequired bool     `json:"clarification_required"`
	NoRelevantResults     bool     `json:"no_relevant_results"`
	FallbackUsed          bool     `json:"fallback_used"`
	StrictMatching        bool     `json:"strict_matching"`
	Notes                 []string `json:"notes,omitempty"`
}

// Result bundles the route toggles with the content state.
type Result struct {
	Route   RouteDecision `json:"route"`
	Content ContentState  `json:"content_state"`
}

// #endregion route-decision

// #region config

// Config tunes the routing policy.
type Config struct {
	AllowStrictMatching    bool
	ClarificationThreshold float64
}

// DefaultConfig returns the production routing configuration.
func DefaultConfig() Config {
	return Config{
		AllowStrictMatching:    true,
		ClarificationThreshold: 0.35,
	}
}

// #endregion config

// #region input

// Input carries everything the policy evaluates. All fields are optional
// with safe defaults: a zero Input behaves like "retrieval found nothing".
type Input struct {
	Intent             *intent.Classification
	OfferCount         int
	RelevanceScore     *float64 // nil = retrieval reported no score
	NeedsClarification bool
	AllowOffers        *bool // nil = true
}

// #endregion input

// #region policy

// Policy turns intent and retrieval stats into route toggles.
type Policy struct {
	config Config
}

// NewPolicy creates a policy with the given configuration.
func NewPolicy(config Config) *Policy {
	return &Policy{config: config}
}

// Evaluate applies the routing rules in fixed order. Pure, no side effects,
// never fails; unknown or absent intent labels get no special-casing and
// fall through to the default toggles.
func (p *Policy) Evaluate(in Input) Result {
	var cs ContentState

	// Rules are evaluated in this order, not independently weighted.
	cs.NumResults = in.OfferCount
	cs.HasResults = in.OfferCount > 0
	cs.NoRelevantResults = in.OfferCount == 0
	cs.ClarificationRequired = in.NeedsClarification
	cs.FallbackUsed = in.RelevanceScore != nil && *in.RelevanceScore < p.config.ClarificationThreshold
	cs.StrictMatching = p.config.AllowStrictMatching && !cs.ClarificationRequired && !cs.FallbackUsed

	allowOffers := in.AllowOffers == nil || *in.AllowOffers

	route := RouteDecision{
		IncludeKnowledge: !cs.ClarificationRequired,
		IncludeVisuals:   !cs.FallbackUsed,
		IncludeMatching:  !cs.ClarificationRequired,
		IncludeOffers:    allowOffers,
		StrictOffers:     cs.StrictMatching,
		RetryMatching:    cs.FallbackUsed,
	}

	// Internally inconsistent combination, surfaced rather than suppressed.
	if cs.ClarificationRequired && cs.StrictMatching {
		cs.Notes = append(cs.Notes,
			"clarification_required and strict_matching are both set; strict matching assumes a settled query")
	}
	if in.Intent != nil && in.Intent.Frustration {
		cs.Notes = append(cs.Notes,
			fmt.Sprintf("frustration flagged (intent=%s); response layer should de-escalate", in.Intent.Label))
	}

	return Result{Route: route, Content: cs}
}

// #endregion policy
