package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestCreateItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reporter := testUser(t, database, "reporter", model.RoleStudent)

	when := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	item, err := CreateItem(ctx, database, NewItemReport{
		ReportedBy:  reporter.ID,
		Name:        "Green thermos",
		Description: "dented on one side",
		Category:    "Other",
		Color:       "Green",
		Location:    "lecture hall B",
		Type:        model.ItemTypeLost,
		DateLost:    &when,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Status != model.ItemStatusUnclaimed {
		t.Errorf("lost item status = %q, want %q", item.Status, model.ItemStatusUnclaimed)
	}
	if item.ReporterName != "reporter" {
		t.Errorf("reporter name = %q, want 'reporter'", item.ReporterName)
	}
	if item.DateLost == nil || !item.DateLost.Equal(when) {
		t.Errorf("date lost = %v, want %v", item.DateLost, when)
	}

	found, err := CreateItem(ctx, database, NewItemReport{
		ReportedBy: reporter.ID,
		Name:       "Thermos",
		Category:   "Other",
		Type:       model.ItemTypeFound,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if found.Status != model.ItemStatusUnclaimed {
		t.Errorf("found item status = %q, want %q", found.Status, model.ItemStatusUnclaimed)
	}
}

func TestCreateItemValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reporter := testUser(t, database, "reporter", model.RoleStudent)

	tests := []struct {
		name   string
		report NewItemReport
	}{
		{"missing name", NewItemReport{ReportedBy: reporter.ID, Category: "Other", Type: model.ItemTypeLost}},
		{"bad type", NewItemReport{ReportedBy: reporter.ID, Name: "x", Category: "Other", Type: "misplaced"}},
		{"bad category", NewItemReport{ReportedBy: reporter.ID, Name: "x", Category: "Furniture", Type: model.ItemTypeLost}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CreateItem(ctx, database, tt.report); !errors.Is(err, model.ErrValidation) {
				t.Errorf("CreateItem() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSearchItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice := testUser(t, database, "alice", model.RoleStudent)
	bob := testUser(t, database, "bob", model.RoleStudent)

	testItem(t, database, NewItemReport{
		ReportedBy:  alice.ID,
		Name:        "Black headphones",
		Description: "over-ear, noise cancelling",
		Category:    "Electronics",
		Color:       "Black",
		Location:    "library",
		Type:        model.ItemTypeLost,
	})
	scarf := testItem(t, database, NewItemReport{
		ReportedBy: bob.ID,
		Name:       "Red scarf",
		Category:   "Clothing",
		Color:      "Red",
		Location:   "gym",
		Type:       model.ItemTypeFound,
	})
	if err := UpdateItemStatus(ctx, database, scarf.ID, model.ItemStatusReturned); err != nil {
		t.Fatalf("UpdateItemStatus: %v", err)
	}

	tests := []struct {
		name   string
		filter ItemFilter
		want   int
	}{
		{"all", ItemFilter{}, 2},
		{"by type", ItemFilter{Type: model.ItemTypeLost}, 1},
		{"by status", ItemFilter{Status: model.ItemStatusReturned}, 1},
		{"by category", ItemFilter{Category: "Electronics"}, 1},
		{"by color case-insensitive", ItemFilter{Color: "black"}, 1},
		{"by location substring", ItemFilter{Location: "lib"}, 1},
		{"by keyword in description", ItemFilter{Keyword: "noise"}, 1},
		{"by reporter", ItemFilter{ReportedBy: bob.ID}, 1},
		{"no hits", ItemFilter{Keyword: "umbrella"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := SearchItems(ctx, database, tt.filter)
			if err != nil {
				t.Fatalf("SearchItems: %v", err)
			}
			if len(items) != tt.want {
				t.Errorf("SearchItems() returned %d items, want %d", len(items), tt.want)
			}
		})
	}
}

func TestSearchItemsDateRange(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reporter := testUser(t, database, "reporter", model.RoleStudent)

	early := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	testItem(t, database, NewItemReport{
		ReportedBy: reporter.ID, Name: "January glove", Category: "Clothing",
		Type: model.ItemTypeLost, DateLost: &early,
	})
	testItem(t, database, NewItemReport{
		ReportedBy: reporter.ID, Name: "May glove", Category: "Clothing",
		Type: model.ItemTypeLost, DateLost: &late,
	})

	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items, err := SearchItems(ctx, database, ItemFilter{Since: &cutoff})
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if len(items) != 1 || items[0].Name != "May glove" {
		t.Errorf("SearchItems(since) = %d items, want only the later report", len(items))
	}

	items, err = SearchItems(ctx, database, ItemFilter{Until: &cutoff})
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if len(items) != 1 || items[0].Name != "January glove" {
		t.Errorf("SearchItems(until) = %d items, want only the earlier report", len(items))
	}
}

func TestDeleteItemHidesFromSearch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reporter := testUser(t, database, "reporter", model.RoleStudent)
	item := testItem(t, database, NewItemReport{
		ReportedBy: reporter.ID,
		Name:       "Old badge",
		Category:   "Documents",
		Type:       model.ItemTypeFound,
	})

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	items, err := SearchItems(ctx, database, ItemFilter{})
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("deleted item still visible in search")
	}

	// Direct reads keep working for history.
	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil {
		t.Fatal("expected deleted item to stay readable by id")
	}
	if got.DeletedAt == nil {
		t.Error("expected deleted_at to be set")
	}
}

func TestItemImageRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reporter := testUser(t, database, "reporter", model.RoleStudent)
	item := testItem(t, database, NewItemReport{
		ReportedBy: reporter.ID,
		Name:       "Camera",
		Category:   "Electronics",
		Type:       model.ItemTypeFound,
	})

	data := []byte{0xff, 0xd8, 0xff, 0xe0}
	if err := SetItemImage(ctx, database, item.ID, data, "image/jpeg"); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}

	image, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg", mime)
	}
	if len(image) != len(data) {
		t.Errorf("image length = %d, want %d", len(image), len(data))
	}
}

func TestHasMatchingLostReport(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := testUser(t, database, "owner", model.RoleStudent)
	other := testUser(t, database, "other", model.RoleStudent)

	testItem(t, database, NewItemReport{
		ReportedBy: owner.ID,
		Name:       "Black leather wallet",
		Category:   "Accessories",
		Color:      "Black",
		Type:       model.ItemTypeLost,
	})
	found := &model.Item{Name: "wallet", Category: "Accessories", Color: "black"}

	has, err := HasMatchingLostReport(ctx, database, owner.ID, found)
	if err != nil {
		t.Fatalf("HasMatchingLostReport: %v", err)
	}
	if !has {
		t.Error("expected a matching lost report for the owner")
	}

	// Scoped to the claimant, not to everyone's reports.
	has, err = HasMatchingLostReport(ctx, database, other.ID, found)
	if err != nil {
		t.Fatalf("HasMatchingLostReport: %v", err)
	}
	if has {
		t.Error("expected no matching lost report for another user")
	}
}
