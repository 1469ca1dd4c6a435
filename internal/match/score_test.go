package match

import (
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestScoreStrongMatchClampsAt100(t *testing.T) {
	lost := &model.Item{
		Name:        "Black iPhone 13",
		Description: "Lost my black iPhone 13 with a red case near the library",
		Category:    "Electronics",
		Color:       "Black",
		Location:    "Main Library",
		Type:        model.ItemTypeLost,
		DateLost:    date("2026-03-10"),
	}
	found := &model.Item{
		Name:        "iPhone found",
		Description: "black iphone with red case",
		Category:    "Electronics",
		Color:       "black",
		Location:    "library",
		Type:        model.ItemTypeFound,
		DateFound:   date("2026-03-11"),
	}

	// Category 30 + color 15 + location 20 + date 20 + keywords 20 + critical 5
	// exceeds the cap.
	if got := Score(lost, found); got != 100 {
		t.Errorf("Score() = %d, want 100", got)
	}
	if Confidence(Score(lost, found)) != ConfidenceHigh {
		t.Errorf("expected high confidence for a strong match")
	}
}

func TestScoreDeterministic(t *testing.T) {
	lost := &model.Item{Name: "Blue umbrella", Category: "Accessories", Color: "Blue"}
	found := &model.Item{Name: "umbrella", Category: "Accessories", Color: "blue"}

	first := Score(lost, found)
	for i := 0; i < 5; i++ {
		if got := Score(lost, found); got != first {
			t.Fatalf("Score() not deterministic: %d then %d", first, got)
		}
	}
}

func TestScoreCategory(t *testing.T) {
	tests := []struct {
		name     string
		lostCat  string
		foundCat string
		want     int
	}{
		{"match", "Electronics", "Electronics", 30},
		{"mismatch", "Electronics", "Clothing", 0}, // -20 clamped to 0
		{"lost missing", "", "Electronics", 0},
		{"found missing", "Electronics", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lost := &model.Item{Name: "x", Category: tt.lostCat}
			found := &model.Item{Name: "y", Category: tt.foundCat}
			if got := Score(lost, found); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreCategorySwing(t *testing.T) {
	lost := &model.Item{Name: "zzzz", Category: "Books", Color: "Red", Location: "dorm"}
	same := &model.Item{Name: "qqqq", Category: "Books", Color: "red", Location: "dorm"}
	diff := &model.Item{Name: "qqqq", Category: "Bags", Color: "red", Location: "dorm"}

	// Same base signals, only the category differs: 30 vs -20 is a 50 point swing.
	if d := Score(lost, same) - Score(lost, diff); d != 50 {
		t.Errorf("category swing = %d, want 50", d)
	}
}

func TestScoreColorCaseAndSpace(t *testing.T) {
	lost := &model.Item{Name: "x", Color: "  Navy Blue "}
	found := &model.Item{Name: "y", Color: "navy blue"}
	if got := Score(lost, found); got != 15 {
		t.Errorf("Score() = %d, want 15", got)
	}
}

func TestScoreLocationSubstringEitherDirection(t *testing.T) {
	tests := []struct {
		name       string
		lostLoc    string
		foundLoc   string
		wantPoints int
	}{
		{"found contains lost", "gym", "Sports Gym, 2nd floor", 20},
		{"lost contains found", "Sports Gym, 2nd floor", "gym", 20},
		{"no overlap", "gym", "cafeteria", 0},
		{"missing side", "", "gym", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lost := &model.Item{Name: "x", Location: tt.lostLoc}
			found := &model.Item{Name: "y", Location: tt.foundLoc}
			if got := Score(lost, found); got != tt.wantPoints {
				t.Errorf("Score() = %d, want %d", got, tt.wantPoints)
			}
		})
	}
}

func TestScoreDateTiers(t *testing.T) {
	tests := []struct {
		name      string
		dateFound string
		want      int
	}{
		{"same day", "2026-03-10", 20},
		{"next day", "2026-03-11", 20},
		{"three days", "2026-03-13", 10},
		{"week", "2026-03-17", 5},
		{"too far", "2026-03-20", 0}, // -5 clamped to 0
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lost := &model.Item{Name: "x", DateLost: date("2026-03-10")}
			found := &model.Item{Name: "y", DateFound: date(tt.dateFound)}
			if got := Score(lost, found); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreDateOrderIrrelevant(t *testing.T) {
	lost := &model.Item{Name: "x", DateLost: date("2026-03-12")}
	found := &model.Item{Name: "y", DateFound: date("2026-03-10")}
	if got := Score(lost, found); got != 10 {
		t.Errorf("Score() = %d, want 10", got)
	}
}

func TestScoreKeywordTiers(t *testing.T) {
	tests := []struct {
		name      string
		foundDesc string
		want      int
	}{
		{"none", "something else entirely", 0},
		{"one", "a calculator", 5},
		{"two", "a graphing calculator", 12},
		{"three", "a silver graphing calculator", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lost := &model.Item{Name: "Silver graphing calculator"}
			found := &model.Item{Name: "item", Description: tt.foundDesc}
			if got := Score(lost, found); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreShortTokensIgnored(t *testing.T) {
	// "red" and "of" are below the minimum token length.
	lost := &model.Item{Name: "red bag of", Description: ""}
	found := &model.Item{Name: "red bag of things"}
	if got := Score(lost, found); got != 0 {
		t.Errorf("Score() = %d, want 0 (short tokens must not count)", got)
	}
}

func TestScoreMoneyBoost(t *testing.T) {
	lost := &model.Item{Name: "envelope", Category: "Money"}
	found := &model.Item{Name: "something", Category: "Money"}
	// Category 30 + money boost 5.
	if got := Score(lost, found); got != 35 {
		t.Errorf("Score() = %d, want 35", got)
	}

	lost = &model.Item{Name: "zzzz", Description: "had some cash in it"}
	found = &model.Item{Name: "qqqq"}
	if got := Score(lost, found); got != 5 {
		t.Errorf("Score() = %d, want 5 for cash mention", got)
	}
}

func TestScoreCriticalKeywordBoostOnce(t *testing.T) {
	// Two critical keywords still boost only once.
	lost := &model.Item{Name: "zzzz", Description: "wallet and passport inside"}
	found := &model.Item{Name: "qqqq"}
	if got := Score(lost, found); got != 5 {
		t.Errorf("Score() = %d, want 5 (single critical boost)", got)
	}
}

func TestScoreNeverNegative(t *testing.T) {
	lost := &model.Item{Name: "x", Category: "Electronics", DateLost: date("2026-01-01")}
	found := &model.Item{Name: "y", Category: "Books", DateFound: date("2026-06-01")}
	if got := Score(lost, found); got != 0 {
		t.Errorf("Score() = %d, want 0", got)
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, ConfidenceHigh},
		{70, ConfidenceHigh},
		{69, ConfidenceMedium},
		{50, ConfidenceMedium},
		{49, ConfidenceLow},
		{0, ConfidenceLow},
	}
	for _, tt := range tests {
		if got := Confidence(tt.score); got != tt.want {
			t.Errorf("Confidence(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
