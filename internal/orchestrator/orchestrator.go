package orchestrator

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"carscout/internal/intent"
	"carscout/internal/llm"
	"carscout/internal/offers"
	"carscout/internal/profile"
	"carscout/internal/routing"
	"carscout/internal/session"
)

// #endregion

// #region types

// Orchestrator runs one conversation turn end to end: classify, merge,
// match, route, respond, persist.
type Orchestrator struct {
	store      *session.Store
	source     offers.Source
	policy     *routing.Policy
	classifier llm.Classifier // nil = heuristic cascade only
	responder  llm.Responder  // nil = canned replies
}

// TurnResult is the complete outcome of one turn.
type TurnResult struct {
	SessionID string                `json:"sessionId"`
	TurnID    string                `json:"turnId"`
	Intent    intent.Classification `json:"intent"`
	Route     routing.RouteDecision `json:"route"`
	Content   routing.ContentState  `json:"contentState"`
	Offers    []offers.Offer        `json:"offers"`
	Reply     string                `json:"reply"`
	Profile   profile.Data          `json:"profile"`
}

// New wires an orchestrator. classifier and responder may be nil; the
// pipeline then runs on the heuristic cascade and canned replies.
func New(store *session.Store, source offers.Source, policy *routing.Policy, classifier llm.Classifier, responder llm.Responder) *Orchestrator {
	return &Orchestrator{
		store:      store,
		source:     source,
		policy:     policy,
		classifier: classifier,
		responder:  responder,
	}
}

// #endregion types

// #region run-turn

// RunTurn processes one user utterance for a session.
func (o *Orchestrator) RunTurn(ctx context.Context, sessionID, text string) (TurnResult, error) {
	turnID := uuid.NewString()

	data, found, err := o.store.LoadState(sessionID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("load session: %w", err)
	}
	var state *profile.State
	if found {
		state = profile.FromData(data)
	} else {
		state = profile.NewState()
	}

	cls := o.classify(ctx, text)
	log.Printf("[ORCH] session=%s turn=%s intent=%s conf=%.2f", sessionID, turnID, cls.Label, cls.Confidence)

	if cls.Delta != nil && !cls.Delta.IsZero() {
		state.Merge(*cls.Delta)
	}
	snapshot := state.Snapshot()

	match, result := o.matchAndRoute(ctx, snapshot, cls)

	reply := o.respond(ctx, text, cls, snapshot, match, result)

	if err := o.persist(sessionID, turnID, text, cls, snapshot, match, result, reply); err != nil {
		// Persistence failure degrades the session, not the turn.
		log.Printf("[ORCH] persist failed session=%s: %v", sessionID, err)
	}

	shown := match.Offers
	if !result.Route.IncludeOffers {
		shown = nil
	}

	return TurnResult{
		SessionID: sessionID,
		TurnID:    turnID,
		Intent:    cls,
		Route:     result.Route,
		Content:   result.Content,
		Offers:    shown,
		Reply:     reply,
		Profile:   snapshot,
	}, nil
}

// #endregion run-turn

// #region classify

// classify runs the heuristic cascade and, when a model collaborator is
// wired, lets it override the label on higher confidence. Preference deltas
// always come from the deterministic extractor.
func (o *Orchestrator) classify(ctx context.Context, text string) intent.Classification {
	cls := intent.Classify(text)
	if o.classifier == nil {
		return cls
	}
	modelCls, err := o.classifier.Classify(ctx, text, nil)
	if err != nil {
		log.Printf("[ORCH] model classify failed, keeping heuristic: %v", err)
		return cls
	}
	if modelCls.Confidence > cls.Confidence && intent.KnownLabel(modelCls.Label) {
		cls.Label = modelCls.Label
		cls.Confidence = modelCls.Confidence
		cls.Frustration = cls.Frustration || modelCls.Frustration
	}
	return cls
}

// #endregion classify

// #region match-route

// matchAndRoute runs strict matching first, routes on the result, and
// re-matches relaxed once when the policy asks for a retry.
func (o *Orchestrator) matchAndRoute(ctx context.Context, snapshot profile.Data, cls intent.Classification) (offers.MatchResult, routing.Result) {
	needsClarification := cls.Label == intent.LabelNeedsClarification

	match := o.match(ctx, snapshot, true)
	result := o.policy.Evaluate(routing.Input{
		Intent:             &cls,
		OfferCount:         len(match.Offers),
		RelevanceScore:     relevanceOf(match),
		NeedsClarification: needsClarification,
	})

	if result.Route.RetryMatching {
		relaxed := o.match(ctx, snapshot, false)
		if len(relaxed.Offers) > 0 {
			match = relaxed
			result = o.policy.Evaluate(routing.Input{
				Intent:             &cls,
				OfferCount:         len(match.Offers),
				RelevanceScore:     relevanceOf(match),
				NeedsClarification: needsClarification,
			})
		}
	}
	return match, result
}

func (o *Orchestrator) match(ctx context.Context, snapshot profile.Data, strict bool) offers.MatchResult {
	if o.source == nil {
		return offers.MatchResult{}
	}
	match, err := o.source.Match(ctx, snapshot, strict)
	if err != nil {
		log.Printf("[ORCH] match failed strict=%v: %v", strict, err)
		return offers.MatchResult{}
	}
	return match
}

func relevanceOf(m offers.MatchResult) *float64 {
	if len(m.Offers) == 0 {
		return nil
	}
	r := m.Relevance
	return &r
}

// #endregion match-route

// #region respond

func (o *Orchestrator) respond(ctx context.Context, text string, cls intent.Classification, snapshot profile.Data, match offers.MatchResult, result routing.Result) string {
	brief := strings.EqualFold(snapshot.Style.Brevity, "short") ||
		strings.EqualFold(snapshot.Conversation.DetailLevel, "brief") ||
		cls.Frustration

	if o.responder != nil {
		reply, err := o.responder.Respond(ctx, llm.RespondInput{
			Text:        text,
			Intent:      cls,
			State:       snapshot,
			Offers:      match.Offers,
			BriefMode:   brief,
			Clarify:     result.Content.ClarificationRequired,
			DetailLevel: snapshot.Conversation.DetailLevel,
		})
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply
		}
		if err != nil {
			log.Printf("[ORCH] respond failed, using canned reply: %v", err)
		}
	}
	return cannedReply(cls, match, result)
}

// cannedReply covers the model-less path with minimal German responses.
func cannedReply(cls intent.Classification, match offers.MatchResult, result routing.Result) string {
	switch {
	case result.Content.ClarificationRequired:
		return "Kannst du mir etwas mehr dazu sagen, wonach du suchst? Zum Beispiel Budget, Größe oder Einsatzzweck."
	case cls.Label == intent.LabelGreeting:
		return "Hallo! Ich helfe dir gern bei der Autosuche. Was schwebt dir vor?"
	case cls.Label == intent.LabelFrustration:
		return "Verstanden, das war nicht hilfreich. Lass uns das eingrenzen: was stört dich an den bisherigen Vorschlägen?"
	case len(match.Offers) > 0 && result.Route.IncludeOffers:
		return fmt.Sprintf("Ich habe %d passende Angebote gefunden. Sieh sie dir an und sag mir, was dir gefällt.", len(match.Offers))
	case result.Content.NoRelevantResults:
		return "Mit den aktuellen Kriterien finde ich gerade nichts Passendes. Sollen wir eine Vorgabe lockern?"
	default:
		return "Alles klar. Erzähl mir mehr, dann verfeinere ich die Suche."
	}
}

// #endregion respond

// #region persist

func (o *Orchestrator) persist(sessionID, turnID, text string, cls intent.Classification, snapshot profile.Data, match offers.MatchResult, result routing.Result, reply string) error {
	if err := o.store.SaveState(sessionID, snapshot); err != nil {
		return err
	}
	routeJSON, _ := json.Marshal(result.Route)
	contentJSON, _ := json.Marshal(result.Content)
	if err := o.store.RecordTurn(session.TurnRecord{
		SessionID:   sessionID,
		TurnID:      turnID,
		UserText:    text,
		Intent:      string(cls.Label),
		Confidence:  cls.Confidence,
		RouteJSON:   string(routeJSON),
		ContentJSON: string(contentJSON),
		OfferCount:  len(match.Offers),
		Reply:       reply,
	}); err != nil {
		return err
	}
	return o.store.LogDecision(session.DecisionEntry{
		SessionID:   sessionID,
		TurnID:      turnID,
		TriggerType: "turn",
		Decision:    string(cls.Label),
		Reason:      match.Reason,
		DetailsJSON: string(routeJSON),
	})
}

// #endregion persist
