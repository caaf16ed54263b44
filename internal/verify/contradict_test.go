package verify

import (
	"testing"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
)

func TestDetector_YearConflict_SameSubject(t *testing.T) {
	detector := NewDetector(0, 0)

	claims := []model.Claim{
		{
			Statement: "Apple Inc was founded in 1976 by Steve Jobs and Steve Wozniak",
			Sources:   []string{"tavily"},
		},
		{
			Statement: "Apple Inc was founded in 1980 by Steve Jobs",
			Sources:   []string{"exa"},
		},
	}

	contradictions := detector.Detect(claims)
	if len(contradictions) == 0 {
		t.Fatal("Expected at least one contradiction for conflicting founding years")
	}

	found := false
	for _, c := range contradictions {
		if c.Type == model.ConflictYear {
			found = true
			if c.ValueA != "1976" || c.ValueB != "1980" {
				t.Errorf("Unexpected conflict values: %q vs %q", c.ValueA, c.ValueB)
			}
		}
	}
	if !found {
		t.Error("Expected a year conflict")
	}
}

func TestDetector_DifferentSubjects_NoConflict(t *testing.T) {
	detector := NewDetector(0, 0)

	claims := []model.Claim{
		{
			Statement: "Apple Inc was founded in 1976 by Steve Jobs and Steve Wozniak",
			Sources:   []string{"tavily"},
		},
		{
			Statement: "Microsoft Corporation was founded in 1975 by Bill Gates and Paul Allen",
			Sources:   []string{"exa"},
		},
	}

	contradictions := detector.Detect(claims)
	if len(contradictions) != 0 {
		t.Errorf("Expected zero contradictions for different subjects, got %d", len(contradictions))
	}
}

func TestDetector_SameSource_NoConflict(t *testing.T) {
	detector := NewDetector(0, 0)

	// Same source disagreeing with itself is not a cross-source conflict
	claims := []model.Claim{
		{Statement: "Apple Inc was founded in 1976 in California", Sources: []string{"tavily"}},
		{Statement: "Apple Inc was founded in 1980 in California", Sources: []string{"tavily"}},
	}

	if got := detector.Detect(claims); len(got) != 0 {
		t.Errorf("Expected zero contradictions for same-source pair, got %d", len(got))
	}
}

func TestDetector_AmountConflict(t *testing.T) {
	detector := NewDetector(0, 0)

	claims := []model.Claim{
		{
			Statement: "The company revenue reached $5 million during the fiscal period",
			Sources:   []string{"tavily"},
		},
		{
			Statement: "The company revenue reached $9 million during the fiscal period",
			Sources:   []string{"brave"},
		},
	}

	contradictions := detector.Detect(claims)
	if len(contradictions) == 0 {
		t.Fatal("Expected an amount conflict for 5M vs 9M revenue")
	}
	if contradictions[0].Type != model.ConflictAmount {
		t.Errorf("Expected amount conflict, got %s", contradictions[0].Type)
	}
}

func TestDetector_AmountWithinTolerance_NoConflict(t *testing.T) {
	detector := NewDetector(0, 0)

	// 100 vs 110 is a 9% relative difference, under the 20% threshold
	claims := []model.Claim{
		{
			Statement: "The facility processes 100 million liters annually of treated water",
			Sources:   []string{"tavily"},
		},
		{
			Statement: "The facility processes 110 million liters annually of treated water",
			Sources:   []string{"brave"},
		},
	}

	if got := detector.Detect(claims); len(got) != 0 {
		t.Errorf("Expected no conflict within tolerance, got %d", len(got))
	}
}

func TestDetector_MalformedAmounts_Skipped(t *testing.T) {
	detector := NewDetector(0, 0)

	// No parseable amounts or years: detection must not fail, just find nothing
	claims := []model.Claim{
		{Statement: "The ancient recipe traditions were passed down through generations carefully", Sources: []string{"tavily"}},
		{Statement: "The ancient recipe traditions were preserved through generations faithfully", Sources: []string{"exa"}},
	}

	if got := detector.Detect(claims); len(got) != 0 {
		t.Errorf("Expected zero contradictions, got %d", len(got))
	}
}

func TestDetector_Annotate(t *testing.T) {
	detector := NewDetector(0, 0)

	claims := []model.Claim{
		{Statement: "Apple Inc was founded in 1976 by Steve Jobs and Steve Wozniak", Sources: []string{"tavily"}},
		{Statement: "Apple Inc was founded in 1980 by Steve Jobs", Sources: []string{"exa"}},
		{Statement: "Laksa is a spicy noodle soup popular across Southeast Asia", Sources: []string{"crawler"}},
	}

	contradictions := detector.Detect(claims)
	annotated := detector.Annotate(claims, contradictions)

	if len(annotated[0].Contradictions) == 0 || len(annotated[1].Contradictions) == 0 {
		t.Error("Expected both conflicting claims to carry contradiction refs")
	}
	if len(annotated[2].Contradictions) != 0 {
		t.Error("Expected unrelated claim to carry no contradiction refs")
	}

	// Input must not be mutated
	if len(claims[0].Contradictions) != 0 {
		t.Error("Annotate mutated its input")
	}
}

func TestDetector_Jaccard_SameSubject(t *testing.T) {
	detector := NewDetector(0, 0)

	if !detector.sameSubject(
		"Apple Inc was founded in 1976 by Steve Jobs",
		"Apple Inc was founded in 1980 in California",
	) {
		t.Error("Expected same subject for overlapping statements")
	}

	if detector.sameSubject(
		"Apple Inc was founded in 1976 by Steve Jobs",
		"Microsoft Corporation was founded in 1975 by Bill Gates",
	) {
		t.Error("Expected different subjects for disjoint statements")
	}
}

func TestFirstAmount(t *testing.T) {
	tests := []struct {
		text   string
		want   float64
		wantOK bool
	}{
		{"revenue of $5 million last year", 5e6, true},
		{"growth of 12%", 12, true},
		{"around 3 thousand units", 3e3, true},
		{"about 2.5 billion people", 2.5e9, true},
		{"founded in 1976", 0, false}, // Years are not amounts
		{"no numbers here at all", 0, false},
	}

	for _, tt := range tests {
		got, _, ok := firstAmount(tt.text)
		if ok != tt.wantOK {
			t.Errorf("firstAmount(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("firstAmount(%q) = %f, want %f", tt.text, got, tt.want)
		}
	}
}
