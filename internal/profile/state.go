package profile

import "strings"

// #region state

// State is the session-owned preference accumulator. One instance lives per
// active session; it is mutated only through Merge and read through Snapshot.
type State struct {
	data Data
}

// NewState creates a state with a fully defaulted CarProfile.
func NewState() *State {
	return &State{data: Data{Car: DefaultCarProfile()}}
}

// FromData restores a state from a persisted snapshot, re-applying defaults
// to any scalar an older blob left empty.
func FromData(d Data) *State {
	applyProfileDefaults(&d.Car)
	return &State{data: d}
}

// Snapshot returns a deep copy of the current state data.
func (s *State) Snapshot() Data {
	return cloneData(s.data)
}

// #endregion state

// #region merge

// Merge folds one delta into the running state.
// Per field class:
//   - list fields: union by case-insensitive key, first-seen casing wins,
//     order preserved; lists only grow, never shrink
//   - scalar enums: a new explicit value overwrites, absence keeps the prior
//   - budget: the first non-nil ceiling wins and is never overwritten
//
// After a car-profile merge the product lists are re-derived from the merged
// profile so profile-implied filters are always reflected in product filters.
func (s *State) Merge(delta Delta) {
	p := &s.data.Product
	dp := delta.Product
	p.PreferredCategories = unionFold(p.PreferredCategories, dp.PreferredCategories)
	p.ExcludedCategories = unionFold(p.ExcludedCategories, dp.ExcludedCategories)
	p.PreferredAttributes = unionFold(p.PreferredAttributes, dp.PreferredAttributes)
	p.ExcludedAttributes = unionFold(p.ExcludedAttributes, dp.ExcludedAttributes)
	p.UseCases = unionFold(p.UseCases, dp.UseCases)

	// First established budget wins. Narrowing or widening an existing budget
	// is not supported; see MergeBudget note in DESIGN.md.
	if p.Budget == nil && dp.Budget != nil {
		p.Budget = cloneBudget(dp.Budget)
	}

	mergeConversation(&s.data.Conversation, delta.Conversation)
	mergeStyle(&s.data.Style, delta.Style)

	if delta.Car != nil {
		mergeCarPatch(&s.data.Car, *delta.Car)
	}

	// Re-derive product filters from the merged profile. DeriveProduct is
	// idempotent, so deriving twice from the same profile never grows lists.
	derived := DeriveProduct(s.data.Car)
	p.PreferredCategories = unionFold(p.PreferredCategories, derived.PreferredCategories)
	p.ExcludedCategories = unionFold(p.ExcludedCategories, derived.ExcludedCategories)
	p.UseCases = unionFold(p.UseCases, derived.UseCases)
}

// #endregion merge

// #region merge-helpers

func mergeCarPatch(car *CarProfile, patch CarPatch) {
	if patch.BudgetLevel != "" {
		car.BudgetLevel = patch.BudgetLevel
	}
	if patch.UsagePattern != "" {
		car.UsagePattern = patch.UsagePattern
	}
	if patch.SizePreference != "" {
		car.SizePreference = patch.SizePreference
	}
	if patch.ComfortImportance != "" {
		car.ComfortImportance = patch.ComfortImportance
	}
	if patch.TechImportance != "" {
		car.TechImportance = patch.TechImportance
	}
	if patch.RiskProfile != "" {
		car.RiskProfile = patch.RiskProfile
	}
	car.DesignVibes = unionFold(car.DesignVibes, patch.DesignVibes)
	car.BrandLikes = unionFold(car.BrandLikes, patch.BrandLikes)
	car.BrandDislikes = unionFold(car.BrandDislikes, patch.BrandDislikes)
	car.DealBreakers = unionFold(car.DealBreakers, patch.DealBreakers)
}

func mergeConversation(dst *ConversationPreference, d ConversationPreference) {
	if d.KnowledgeLevel != "" {
		dst.KnowledgeLevel = d.KnowledgeLevel
	}
	if d.DesiredMode != "" {
		dst.DesiredMode = d.DesiredMode
	}
	if d.DetailLevel != "" {
		dst.DetailLevel = d.DetailLevel
	}
	if d.Tone != "" {
		dst.Tone = d.Tone
	}
	if d.WantsGuidedQuestions != nil {
		v := *d.WantsGuidedQuestions
		dst.WantsGuidedQuestions = &v
	}
}

func mergeStyle(dst *StylePreference, d StylePreference) {
	if d.Vibe != "" {
		dst.Vibe = d.Vibe
	}
	if d.Brevity != "" {
		dst.Brevity = d.Brevity
	}
}

func applyProfileDefaults(car *CarProfile) {
	def := DefaultCarProfile()
	if car.BudgetLevel == "" {
		car.BudgetLevel = def.BudgetLevel
	}
	if car.UsagePattern == "" {
		car.UsagePattern = def.UsagePattern
	}
	if car.SizePreference == "" {
		car.SizePreference = def.SizePreference
	}
	if car.ComfortImportance == "" {
		car.ComfortImportance = def.ComfortImportance
	}
	if car.TechImportance == "" {
		car.TechImportance = def.TechImportance
	}
	if car.RiskProfile == "" {
		car.RiskProfile = def.RiskProfile
	}
}

// #endregion merge-helpers

// #region union

// unionFold appends every entry of add that is not already present in dst
// under case-insensitive comparison. First-seen casing wins.
func unionFold(dst, add []string) []string {
	if len(add) == 0 {
		return dst
	}
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[strings.ToLower(strings.TrimSpace(v))] = true
	}
	for _, v := range add {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		dst = append(dst, strings.TrimSpace(v))
	}
	return dst
}

// #endregion union

// #region clone

func cloneData(d Data) Data {
	out := d
	out.Car.DesignVibes = append([]string(nil), d.Car.DesignVibes...)
	out.Car.BrandLikes = append([]string(nil), d.Car.BrandLikes...)
	out.Car.BrandDislikes = append([]string(nil), d.Car.BrandDislikes...)
	out.Car.DealBreakers = append([]string(nil), d.Car.DealBreakers...)
	out.Product.PreferredCategories = append([]string(nil), d.Product.PreferredCategories...)
	out.Product.ExcludedCategories = append([]string(nil), d.Product.ExcludedCategories...)
	out.Product.PreferredAttributes = append([]string(nil), d.Product.PreferredAttributes...)
	out.Product.ExcludedAttributes = append([]string(nil), d.Product.ExcludedAttributes...)
	out.Product.UseCases = append([]string(nil), d.Product.UseCases...)
	out.Product.Budget = cloneBudget(d.Product.Budget)
	if d.Conversation.WantsGuidedQuestions != nil {
		v := *d.Conversation.WantsGuidedQuestions
		out.Conversation.WantsGuidedQuestions = &v
	}
	return out
}

func cloneBudget(b *Budget) *Budget {
	if b == nil {
		return nil
	}
	out := &Budget{}
	if b.Min != nil {
		v := *b.Min
		out.Min = &v
	}
	if b.Max != nil {
		v := *b.Max
		out.Max = &v
	}
	return out
}

// #endregion clone
