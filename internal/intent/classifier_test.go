package intent

import "testing"

func TestClassifyCascade(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		label      Label
		confidence float64
	}{
		{"empty message", "", LabelNeedsClarification, 0.3},
		{"whitespace only", "   ", LabelNeedsClarification, 0.3},
		{"plain ok", "ok", LabelAffirmation, 0.9},
		{"ok with punctuation", "Okay!", LabelAffirmation, 0.9},
		{"passt", "passt", LabelAffirmation, 0.9},
		{"novice signal", "keine ahnung, ich bin neu hier", LabelKnowledgeSignal, 0.82},
		{"small talk", "wie geht es dir heute", LabelSmallTalk, 0.65},
		{"mode request", "stell mir fragen, das ist einfacher", LabelModeRequest, 0.8},
		{"meta question", "warum fragst du das alles", LabelMetaCommunication, 0.7},
		{"frustration", "das nervt mich langsam", LabelFrustration, 0.85},
		{"negative feedback", "die gefallen mir nicht", LabelFeedbackNegative, 0.8},
		{"positive feedback", "die schöne auswahl gefällt mir", LabelFeedbackPositive, 0.7},
		{"body style preference", "ich suche einen suv", LabelPreferenceChange, 0.78},
		{"known brand in sentence", "am liebsten einen bmw", LabelPreferenceChange, 0.78},
		{"exclusion only", "bitte kein diesel", LabelConstraintUpdate, 0.72},
		{"brevity request", "zu viel text bitte", LabelInformation, 0.6},
		{"unknown brand-like token", "koenigsegg", LabelPreferenceChange, 0.7},
		{"allowed short brand", "vw", LabelPreferenceChange, 0.78},
		{"too short", "hm", LabelNeedsClarification, 0.6},
		{"filler word", "also", LabelNeedsClarification, 0.6},
		{"default information", "ich fahre jeden tag zur arbeit", LabelInformation, 0.65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			if got.Label != tt.label {
				t.Fatalf("label: want %s, got %s", tt.label, got.Label)
			}
			if got.Confidence != tt.confidence {
				t.Fatalf("confidence: want %.2f, got %.2f", tt.confidence, got.Confidence)
			}
		})
	}
}

func TestClassifyRulePriority(t *testing.T) {
	// Frustration outranks a co-occurring preference signal.
	got := Classify("das nervt, ich will einen suv")
	if got.Label != LabelFrustration {
		t.Fatalf("want FRUSTRATION, got %s", got.Label)
	}
	if !got.Frustration {
		t.Fatal("frustration flag should be set")
	}

	// Negative feedback outranks positive: the negative phrase contains the
	// positive one as a substring, so ordering is what decides.
	got = Classify("das gefällt mir nicht")
	if got.Label != LabelFeedbackNegative {
		t.Fatalf("want FEEDBACK_NEGATIVE, got %s", got.Label)
	}
}

func TestClassifyKnowledgeSignalDelta(t *testing.T) {
	got := Classify("keine ahnung von autos")
	if got.Label != LabelKnowledgeSignal {
		t.Fatalf("want KNOWLEDGE_SIGNAL, got %s", got.Label)
	}
	if got.Delta == nil {
		t.Fatal("expected a delta")
	}
	conv := got.Delta.Conversation
	if conv.KnowledgeLevel != "beginner" || conv.DesiredMode != "onboarding" {
		t.Fatalf("unexpected conversation delta: %+v", conv)
	}
	if conv.WantsGuidedQuestions == nil || !*conv.WantsGuidedQuestions {
		t.Fatal("wants_guided_questions should be true")
	}
}

func TestClassifyBrandTokenBecomesCategory(t *testing.T) {
	got := Classify("koenigsegg")
	if got.Delta == nil {
		t.Fatal("expected a delta")
	}
	if len(got.Delta.Product.PreferredCategories) != 1 ||
		got.Delta.Product.PreferredCategories[0] != "koenigsegg" {
		t.Fatalf("unexpected categories: %v", got.Delta.Product.PreferredCategories)
	}
}

func TestClassifyBrevityDelta(t *testing.T) {
	got := Classify("bitte kürzer")
	if got.Label != LabelInformation {
		t.Fatalf("want INFORMATION, got %s", got.Label)
	}
	if got.Delta == nil || got.Delta.Style.Brevity != "short" {
		t.Fatalf("expected brevity delta, got %+v", got.Delta)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		got := Classify("ich suche einen kombi für die familie")
		if got.Label != LabelPreferenceChange {
			t.Fatalf("run %d: want PREFERENCE_CHANGE, got %s", i, got.Label)
		}
	}
}
