package intent

import "carscout/internal/profile"

// #region label

// Label classifies the purpose of a user message.
type Label string

const (
	LabelAffirmation        Label = "AFFIRMATION"
	LabelFrustration        Label = "FRUSTRATION"
	LabelPreferenceChange   Label = "PREFERENCE_CHANGE"
	LabelConstraintUpdate   Label = "CONSTRAINT_UPDATE"
	LabelNeedsClarification Label = "NEEDS_CLARIFICATION"
	LabelKnowledgeSignal    Label = "KNOWLEDGE_SIGNAL"
	LabelModeRequest        Label = "MODE_REQUEST"
	LabelSmallTalk          Label = "SMALL_TALK"
	LabelMetaCommunication  Label = "META_COMMUNICATION"
	LabelInformation        Label = "INFORMATION"
	LabelFeedbackNegative   Label = "FEEDBACK_NEGATIVE"
	LabelFeedbackPositive   Label = "FEEDBACK_POSITIVE"
	LabelGreeting           Label = "GREETING"
	LabelComparisonRequest  Label = "COMPARISON_REQUEST"
	LabelOffTopic           Label = "OFF_TOPIC"
)

// KnownLabel reports whether l is one of the defined labels. Used to validate
// labels coming back from the remote classifier.
func KnownLabel(l Label) bool {
	switch l {
	case LabelAffirmation, LabelFrustration, LabelPreferenceChange,
		LabelConstraintUpdate, LabelNeedsClarification, LabelKnowledgeSignal,
		LabelModeRequest, LabelSmallTalk, LabelMetaCommunication,
		LabelInformation, LabelFeedbackNegative, LabelFeedbackPositive,
		LabelGreeting, LabelComparisonRequest, LabelOffTopic:
		return true
	}
	return false
}

// #endregion label

// #region classification

// Classification is the full output for one user turn. Created fresh per
// turn, never mutated; consumed immediately by the merge and routing steps.
type Classification struct {
	Label       Label          `json:"label"`
	Confidence  float64        `json:"confidence"`
	Frustration bool           `json:"frustration_flag"`
	Delta       *profile.Delta `json:"preference_deltas,omitempty"`
}

// #endregion classification
