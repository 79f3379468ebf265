package replay

// #region imports
import (
	"context"
	"fmt"
	"strings"

	"carscout/internal/intent"
	"carscout/internal/offers"
	"carscout/internal/profile"
	"carscout/internal/routing"
)

// #endregion

// #region types

// TurnResult captures the outcome of replaying one turn through the
// classify → merge → match → route pipeline.
type TurnResult struct {
	TurnID         string
	Classification intent.Classification
	Route          routing.RouteDecision
	Content        routing.ContentState
	OfferCount     int
	Failures       []string // unmet expectations, empty = pass
}

// Summary aggregates a replay run.
type Summary struct {
	TotalTurns int
	Passed     int
	Failed     int
	FinalState profile.Data
}

// #endregion types

// #region replay

// Replay runs a recorded conversation through the deterministic pipeline.
// No model collaborator and no persistence; the offer source may be nil, in
// which case matching always reports zero results.
func Replay(f *Fixture, source offers.Source, policyCfg routing.Config) ([]TurnResult, Summary) {
	state := profile.NewState()
	policy := routing.NewPolicy(policyCfg)
	results := make([]TurnResult, 0, len(f.Turns))
	summary := Summary{TotalTurns: len(f.Turns)}

	for _, turn := range f.Turns {
		cls := intent.Classify(turn.Text)
		if cls.Delta != nil && !cls.Delta.IsZero() {
			state.Merge(*cls.Delta)
		}
		snapshot := state.Snapshot()

		var match offers.MatchResult
		if source != nil {
			m, err := source.Match(context.Background(), snapshot, true)
			if err == nil {
				match = m
			}
		}

		var relevance *float64
		if len(match.Offers) > 0 {
			r := match.Relevance
			relevance = &r
		}
		routed := policy.Evaluate(routing.Input{
			Intent:             &cls,
			OfferCount:         len(match.Offers),
			RelevanceScore:     relevance,
			NeedsClarification: cls.Label == intent.LabelNeedsClarification,
		})

		result := TurnResult{
			TurnID:         turn.TurnID,
			Classification: cls,
			Route:          routed.Route,
			Content:        routed.Content,
			OfferCount:     len(match.Offers),
		}
		result.Failures = check(turn.Expected, result, snapshot)
		if len(result.Failures) == 0 {
			summary.Passed++
		} else {
			summary.Failed++
		}
		results = append(results, result)
	}

	summary.FinalState = state.Snapshot()
	return results, summary
}

// #endregion replay

// #region expectations

func check(exp *Expectation, r TurnResult, snapshot profile.Data) []string {
	if exp == nil {
		return nil
	}
	var failures []string
	if exp.Label != "" && string(r.Classification.Label) != exp.Label {
		failures = append(failures, fmt.Sprintf("label: want %s, got %s", exp.Label, r.Classification.Label))
	}
	if exp.MinConfidence != nil && r.Classification.Confidence < *exp.MinConfidence {
		failures = append(failures, fmt.Sprintf("confidence: want >= %.2f, got %.2f", *exp.MinConfidence, r.Classification.Confidence))
	}
	if exp.IncludeOffers != nil && r.Route.IncludeOffers != *exp.IncludeOffers {
		failures = append(failures, fmt.Sprintf("includeOffers: want %v, got %v", *exp.IncludeOffers, r.Route.IncludeOffers))
	}
	if exp.ClarificationRequired != nil && r.Content.ClarificationRequired != *exp.ClarificationRequired {
		failures = append(failures, fmt.Sprintf("clarification_required: want %v, got %v", *exp.ClarificationRequired, r.Content.ClarificationRequired))
	}
	if exp.MinOffers != nil && r.OfferCount < *exp.MinOffers {
		failures = append(failures, fmt.Sprintf("offers: want >= %d, got %d", *exp.MinOffers, r.OfferCount))
	}
	for _, brand := range exp.BrandLikes {
		if !containsFold(snapshot.Car.BrandLikes, brand) {
			failures = append(failures, fmt.Sprintf("brand_likes: %q not in merged state", brand))
		}
	}
	for _, uc := range exp.UseCases {
		if !containsFold(snapshot.Product.UseCases, uc) {
			failures = append(failures, fmt.Sprintf("use_cases: %q not in merged state", uc))
		}
	}
	return failures
}

func containsFold(haystack []string, needle string) bool {
	for _, v := range haystack {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}

// #endregion expectations
