package profile

// #region car-profile

// CarProfile is the enumerated preference record for one shopper.
// Every scalar field always carries a defined value, never empty.
type CarProfile struct {
	BudgetLevel       string   `json:"budget_level"`    // "low" | "medium" | "high" | "flexible"
	UsagePattern      string   `json:"usage_pattern"`   // "city" | "long_distance" | "offroad" | "family" | "mixed"
	SizePreference    string   `json:"size_preference"` // "kleinwagen" | "kombi" | "suv" | "limousine" | "van" | "no_preference"
	DesignVibes       []string `json:"design_vibe"`
	ComfortImportance string   `json:"comfort_importance"` // "low" | "medium" | "high"
	TechImportance    string   `json:"tech_importance"`    // "low" | "medium" | "high"
	RiskProfile       string   `json:"risk_profile"`       // "cautious" | "balanced" | "adventurous"
	BrandLikes        []string `json:"explicit_brands_likes"`
	BrandDislikes     []string `json:"explicit_brands_dislikes"`
	DealBreakers      []string `json:"deal_breakers"`
}

// DefaultCarProfile returns the session-start profile. No scalar is left undefined.
func DefaultCarProfile() CarProfile {
	return CarProfile{
		BudgetLevel:       "flexible",
		UsagePattern:      "mixed",
		SizePreference:    "no_preference",
		ComfortImportance: "medium",
		TechImportance:    "medium",
		RiskProfile:       "balanced",
	}
}

// #endregion car-profile

// #region budget

// Budget is a price corridor in euros. Nil bounds are unconstrained.
type Budget struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// #endregion budget

// #region product-preference

// ProductPreference holds the product-level filter lists.
// All lists are normalized sets: de-duplicated case-insensitively,
// insertion order preserved for display.
type ProductPreference struct {
	PreferredCategories []string `json:"preferred_categories"`
	ExcludedCategories  []string `json:"excluded_categories"`
	PreferredAttributes []string `json:"preferred_attributes"`
	ExcludedAttributes  []string `json:"excluded_attributes"`
	UseCases            []string `json:"use_cases"`
	Budget              *Budget  `json:"budget,omitempty"`
}

// #endregion product-preference

// #region conversation-preference

// ConversationPreference controls how the assistant talks.
// Empty strings mean "not set"; WantsGuidedQuestions is a tri-state pointer
// so an absent delta never clobbers an explicit false.
type ConversationPreference struct {
	KnowledgeLevel       string `json:"knowledge_level,omitempty"` // "beginner" | "intermediate" | "expert"
	DesiredMode          string `json:"desired_mode,omitempty"`    // "onboarding" | "guided" | "free"
	DetailLevel          string `json:"detail_level,omitempty"`    // "brief" | "normal" | "deep"
	Tone                 string `json:"tone,omitempty"`
	WantsGuidedQuestions *bool  `json:"wants_guided_questions,omitempty"`
}

// #endregion conversation-preference

// #region style-preference

// StylePreference holds presentation hints.
type StylePreference struct {
	Vibe    string `json:"vibe,omitempty"`
	Brevity string `json:"brevity,omitempty"` // "short" | "normal"
}

// #endregion style-preference

// #region data

// Data is the full constraint state for one session: one CarProfile,
// one ProductPreference, one ConversationPreference, one StylePreference.
type Data struct {
	Car          CarProfile             `json:"car_profile"`
	Product      ProductPreference      `json:"product"`
	Conversation ConversationPreference `json:"conversation"`
	Style        StylePreference        `json:"style"`
}

// #endregion data

// #region delta

// CarPatch is a partial CarProfile. Zero-valued scalars mean "not mentioned";
// list fields are additions.
type CarPatch struct {
	BudgetLevel       string   `json:"budget_level,omitempty"`
	UsagePattern      string   `json:"usage_pattern,omitempty"`
	SizePreference    string   `json:"size_preference,omitempty"`
	DesignVibes       []string `json:"design_vibe,omitempty"`
	ComfortImportance string   `json:"comfort_importance,omitempty"`
	TechImportance    string   `json:"tech_importance,omitempty"`
	RiskProfile       string   `json:"risk_profile,omitempty"`
	BrandLikes        []string `json:"explicit_brands_likes,omitempty"`
	BrandDislikes     []string `json:"explicit_brands_dislikes,omitempty"`
	DealBreakers      []string `json:"deal_breakers,omitempty"`
}

// Delta is one message's worth of extracted preference signals,
// mergeable into a State.
type Delta struct {
	Product      ProductPreference      `json:"product"`
	Conversation ConversationPreference `json:"conversation"`
	Style        StylePreference        `json:"style"`
	Car          *CarPatch              `json:"car_profile,omitempty"`
}

// IsZero reports whether the delta carries no signal at all.
func (d Delta) IsZero() bool {
	return len(d.Product.PreferredCategories) == 0 &&
		len(d.Product.ExcludedCategories) == 0 &&
		len(d.Product.PreferredAttributes) == 0 &&
		len(d.Product.ExcludedAttributes) == 0 &&
		len(d.Product.UseCases) == 0 &&
		d.Product.Budget == nil &&
		d.Conversation == (ConversationPreference{}) &&
		d.Style == (StylePreference{}) &&
		d.Car == nil
}

// #endregion delta
