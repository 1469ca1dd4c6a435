package model

import "time"

// Item represents a single lost or found report.
type Item struct {
	ID          int64      `json:"id"`
	ReportedBy  int64      `json:"reported_by"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Color       string     `json:"color,omitempty"`
	Location    string     `json:"location,omitempty"`
	Type        string     `json:"item_type"`
	DateLost    *time.Time `json:"date_lost,omitempty"`
	DateFound   *time.Time `json:"date_found,omitempty"`
	Status      string     `json:"status"`
	ImageMime   string     `json:"image_mime,omitempty"`

	// MatchedLostItem links a found item back to the lost report it was
	// created from in the found-from-lost workflow. Cleared when the
	// match is rejected.
	MatchedLostItem *int64 `json:"matched_lost_item,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	ReporterName string `json:"reporter_name,omitempty"`
}

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item statuses.
const (
	ItemStatusUnmatched      = "unmatched"
	ItemStatusMatched        = "matched"
	ItemStatusPotentialMatch = "potential_match"
	ItemStatusClaimed        = "claimed"
	ItemStatusUnclaimed      = "unclaimed"
	ItemStatusReturned       = "returned"
	ItemStatusDisposed       = "disposed"
)

// Categories is the fixed item category vocabulary.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Accessories",
	"Bags",
	"Books",
	"Documents",
	"Money",
	"Living Things",
	"Other",
}

// ValidCategory reports whether category is part of the fixed vocabulary.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// RelevantDate returns the date used for temporal proximity: date_lost for
// lost items, date_found for found items. Nil if the reporter left it out.
func (i *Item) RelevantDate() *time.Time {
	if i.Type == ItemTypeLost {
		return i.DateLost
	}
	return i.DateFound
}
