package match

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func newTestUser(t *testing.T, database *sql.DB, username string) *model.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), database, username, "hash", model.RoleStudent)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return user
}

func reportItem(t *testing.T, database *sql.DB, report store.NewItemReport) *model.Item {
	t.Helper()
	item, err := store.CreateItem(context.Background(), database, report)
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	return item
}

func TestFindRanksCandidates(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "owner")
	finder := newTestUser(t, database, "finder")

	when := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	lost := reportItem(t, database, store.NewItemReport{
		ReportedBy:  owner.ID,
		Name:        "Black iPhone 13",
		Description: "black iphone with a red case",
		Category:    "Electronics",
		Color:       "Black",
		Location:    "Main Library",
		Type:        model.ItemTypeLost,
		DateLost:    &when,
	})

	// Strong candidate: same category, color, overlapping location and text.
	strong := reportItem(t, database, store.NewItemReport{
		ReportedBy:  finder.ID,
		Name:        "iPhone",
		Description: "black iphone, red case",
		Category:    "Electronics",
		Color:       "black",
		Location:    "library",
		Type:        model.ItemTypeFound,
		DateFound:   &when,
	})

	// Weak candidate: only the category matches.
	weak := reportItem(t, database, store.NewItemReport{
		ReportedBy: finder.ID,
		Name:       "Charger",
		Category:   "Electronics",
		Type:       model.ItemTypeFound,
	})

	// Unrelated candidate: should fall below the default threshold.
	reportItem(t, database, store.NewItemReport{
		ReportedBy: finder.ID,
		Name:       "Scarf",
		Category:   "Clothing",
		Type:       model.ItemTypeFound,
	})

	results, err := Find(ctx, database, lost, 0, 0)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Find() returned %d results, want 2", len(results))
	}
	if results[0].Item.ID != strong.ID {
		t.Errorf("best result = item %d, want %d", results[0].Item.ID, strong.ID)
	}
	if results[1].Item.ID != weak.ID {
		t.Errorf("second result = item %d, want %d", results[1].Item.ID, weak.ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted by score: %d < %d", results[0].Score, results[1].Score)
	}
	if results[0].Confidence != ConfidenceHigh {
		t.Errorf("strong candidate confidence = %q, want %q", results[0].Confidence, ConfidenceHigh)
	}
}

func TestFindMinScoreFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "owner")
	finder := newTestUser(t, database, "finder")

	lost := reportItem(t, database, store.NewItemReport{
		ReportedBy: owner.ID,
		Name:       "Umbrella",
		Category:   "Accessories",
		Type:       model.ItemTypeLost,
	})
	reportItem(t, database, store.NewItemReport{
		ReportedBy: finder.ID,
		Name:       "Umbrella",
		Category:   "Accessories",
		Type:       model.ItemTypeFound,
	})

	// Category 30 + one keyword 5 = 35: passes at 35, filtered at 36.
	results, err := Find(ctx, database, lost, 35, 0)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Find(minScore=35) returned %d results, want 1", len(results))
	}

	results, err = Find(ctx, database, lost, 36, 0)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Find(minScore=36) returned %d results, want 0", len(results))
	}
}

func TestFindLimit(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "owner")
	finder := newTestUser(t, database, "finder")

	lost := reportItem(t, database, store.NewItemReport{
		ReportedBy: owner.ID,
		Name:       "Notebook",
		Category:   "Books",
		Type:       model.ItemTypeLost,
	})
	for range 4 {
		reportItem(t, database, store.NewItemReport{
			ReportedBy: finder.ID,
			Name:       "Notebook",
			Category:   "Books",
			Type:       model.ItemTypeFound,
		})
	}

	results, err := Find(ctx, database, lost, 0, 2)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Find(limit=2) returned %d results, want 2", len(results))
	}
}

func TestFindSkipsItemsOutOfPool(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "owner")
	finder := newTestUser(t, database, "finder")

	lost := reportItem(t, database, store.NewItemReport{
		ReportedBy: owner.ID,
		Name:       "Backpack",
		Category:   "Bags",
		Type:       model.ItemTypeLost,
	})
	taken := reportItem(t, database, store.NewItemReport{
		ReportedBy: finder.ID,
		Name:       "Backpack",
		Category:   "Bags",
		Type:       model.ItemTypeFound,
	})
	if err := store.UpdateItemStatus(ctx, database, taken.ID, model.ItemStatusReturned); err != nil {
		t.Fatalf("UpdateItemStatus() error = %v", err)
	}

	results, err := Find(ctx, database, lost, 0, 0)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Find() returned %d results, want 0 (item no longer available)", len(results))
	}
}

func TestFindForFoundReport(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := newTestUser(t, database, "owner")
	finder := newTestUser(t, database, "finder")

	reportItem(t, database, store.NewItemReport{
		ReportedBy: owner.ID,
		Name:       "Calculator",
		Category:   "Electronics",
		Type:       model.ItemTypeLost,
	})
	found := reportItem(t, database, store.NewItemReport{
		ReportedBy: finder.ID,
		Name:       "Calculator",
		Category:   "Electronics",
		Type:       model.ItemTypeFound,
	})

	// Searching from the found side scores against open lost reports.
	results, err := Find(ctx, database, found, 0, 0)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Find() returned %d results, want 1", len(results))
	}
	if results[0].Item.Type != model.ItemTypeLost {
		t.Errorf("candidate type = %q, want %q", results[0].Item.Type, model.ItemTypeLost)
	}
}
