package profile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewStateDefaults(t *testing.T) {
	got := NewState().Snapshot().Car
	want := CarProfile{
		BudgetLevel:       "flexible",
		UsagePattern:      "mixed",
		SizePreference:    "no_preference",
		ComfortImportance: "medium",
		TechImportance:    "medium",
		RiskProfile:       "balanced",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeListUnion(t *testing.T) {
	s := NewState()
	s.Merge(Delta{Car: &CarPatch{BrandLikes: []string{"BMW"}}})
	s.Merge(Delta{Car: &CarPatch{BrandLikes: []string{"bmw", "Audi"}}})

	got := s.Snapshot().Car.BrandLikes
	// Case-insensitive union, first-seen casing wins, order preserved.
	want := []string{"BMW", "Audi"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("brand likes (-want +got):\n%s", diff)
	}
}

func TestMergeListsNeverShrink(t *testing.T) {
	s := NewState()
	s.Merge(Delta{Product: ProductPreference{UseCases: []string{"stadt", "familie"}}})
	s.Merge(Delta{Product: ProductPreference{UseCases: []string{"langstrecke"}}})

	got := s.Snapshot().Product.UseCases
	want := []string{"stadt", "familie", "langstrecke"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("use cases (-want +got):\n%s", diff)
	}
}

func TestMergeScalarOverwrite(t *testing.T) {
	s := NewState()
	s.Merge(Delta{Car: &CarPatch{SizePreference: "suv"}})
	s.Merge(Delta{Car: &CarPatch{SizePreference: "kombi"}})

	snap := s.Snapshot()
	if snap.Car.SizePreference != "kombi" {
		t.Fatalf("size preference: want kombi, got %s", snap.Car.SizePreference)
	}
	// The earlier implied category stays: lists only grow.
	cats := snap.Product.PreferredCategories
	if !contains(cats, "suv") || !contains(cats, "kombi") {
		t.Fatalf("preferred categories: %v", cats)
	}
}

func TestMergeAbsentScalarKeepsPrior(t *testing.T) {
	s := NewState()
	s.Merge(Delta{Car: &CarPatch{RiskProfile: "cautious"}})
	s.Merge(Delta{Car: &CarPatch{BrandLikes: []string{"toyota"}}})

	if got := s.Snapshot().Car.RiskProfile; got != "cautious" {
		t.Fatalf("risk profile: want cautious, got %s", got)
	}
}

func TestMergeFirstBudgetWins(t *testing.T) {
	first, second := 20000.0, 35000.0
	s := NewState()
	s.Merge(Delta{Product: ProductPreference{Budget: &Budget{Max: &first}}})
	s.Merge(Delta{Product: ProductPreference{Budget: &Budget{Max: &second}}})

	b := s.Snapshot().Product.Budget
	if b == nil || b.Max == nil {
		t.Fatal("expected a budget")
	}
	if *b.Max != first {
		t.Fatalf("budget max: want %.0f, got %.0f", first, *b.Max)
	}
}

func TestMergeIdempotent(t *testing.T) {
	delta := Delta{
		Product: ProductPreference{UseCases: []string{"stadt"}},
		Car:     &CarPatch{SizePreference: "suv", BrandLikes: []string{"bmw"}},
	}

	once := NewState()
	once.Merge(delta)
	twice := NewState()
	twice.Merge(delta)
	twice.Merge(delta)

	if diff := cmp.Diff(once.Snapshot(), twice.Snapshot()); diff != "" {
		t.Fatalf("double merge changed state (-once +twice):\n%s", diff)
	}
}

func TestMergeDerivesUseCaseFromUsagePattern(t *testing.T) {
	s := NewState()
	s.Merge(Delta{Car: &CarPatch{UsagePattern: "commute"}})

	if got := s.Snapshot().Product.UseCases; !contains(got, "pendeln") {
		t.Fatalf("use cases: %v", got)
	}
}

func TestMergeDealBreakerImpliesExclusion(t *testing.T) {
	s := NewState()
	s.Merge(Delta{Car: &CarPatch{DealBreakers: []string{"Diesel"}}})

	if got := s.Snapshot().Product.ExcludedCategories; !contains(got, "diesel") {
		t.Fatalf("excluded categories: %v", got)
	}
}

func TestFromDataAppliesDefaults(t *testing.T) {
	restored := FromData(Data{Car: CarProfile{SizePreference: "suv"}}).Snapshot().Car
	if restored.SizePreference != "suv" {
		t.Fatalf("explicit value lost: %+v", restored)
	}
	if restored.BudgetLevel != "flexible" || restored.RiskProfile != "balanced" {
		t.Fatalf("defaults not re-applied: %+v", restored)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewState()
	s.Merge(Delta{Car: &CarPatch{BrandLikes: []string{"bmw"}}})

	snap := s.Snapshot()
	snap.Car.BrandLikes[0] = "mutated"

	if got := s.Snapshot().Car.BrandLikes[0]; got != "bmw" {
		t.Fatalf("snapshot aliases internal state: %s", got)
	}
}

func TestEqualIgnoresCaseAndOrder(t *testing.T) {
	a := Data{Car: DefaultCarProfile()}
	a.Product.UseCases = []string{"Stadt", "familie"}
	b := Data{Car: DefaultCarProfile()}
	b.Product.UseCases = []string{"familie", "stadt"}

	if !Equal(a, b) {
		t.Fatal("expected equal")
	}

	b.Product.UseCases = append(b.Product.UseCases, "langstrecke")
	if Equal(a, b) {
		t.Fatal("expected not equal")
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func TestDeriveProductIdempotent(t *testing.T) {
	car := CarProfile{
		SizePreference: "suv",
		UsagePattern:   "family",
		DealBreakers:   []string{"diesel"},
	}
	first := DeriveProduct(car)
	second := DeriveProduct(car)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("derivation not stable (-first +second):\n%s", diff)
	}
	if !contains(first.PreferredCategories, "suv") ||
		!contains(first.UseCases, "familie") ||
		!contains(first.ExcludedCategories, "diesel") {
		t.Fatalf("unexpected derivation: %+v", first)
	}
}
