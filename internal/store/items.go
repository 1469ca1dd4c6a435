package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// NewItemReport holds the reporter-supplied fields of a lost or found report.
type NewItemReport struct {
	ReportedBy  int64
	Name        string
	Description string
	Category    string
	Color       string
	Location    string
	Type        string
	DateLost    *time.Time
	DateFound   *time.Time
}

// CreateItem creates a new lost or found report. Both kinds enter the
// unclaimed pool, which is what the match finder searches; unmatched is the
// reset state for lost reports whose match fell through.
func CreateItem(ctx context.Context, db *sql.DB, report NewItemReport) (*model.Item, error) {
	if report.Name == "" {
		return nil, fmt.Errorf("%w: item name required", model.ErrValidation)
	}
	if report.Type != model.ItemTypeLost && report.Type != model.ItemTypeFound {
		return nil, fmt.Errorf("%w: invalid item type %q", model.ErrValidation, report.Type)
	}
	if !model.ValidCategory(report.Category) {
		return nil, fmt.Errorf("%w: invalid category %q", model.ErrValidation, report.Category)
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (reported_by, name, description, category, color, location,
		                    item_type, date_lost, date_found, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ReportedBy, report.Name, report.Description, report.Category,
		report.Color, report.Location, report.Type, report.DateLost, report.DateFound,
		model.ItemStatusUnclaimed,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

const itemColumns = `i.id, i.reported_by, i.name, i.description, i.category, i.color,
	i.location, i.item_type, i.date_lost, i.date_found, i.status,
	i.matched_lost_item, i.image_mime, i.created_at, i.updated_at, i.deleted_at,
	u.username AS reporter_name`

// GetItem returns an item by ID, including soft-deleted ones (for history).
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items i JOIN users u ON u.id = i.reported_by
		 WHERE i.id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ItemFilter narrows SearchItems results. Zero values mean "any".
type ItemFilter struct {
	Type       string
	Status     string
	Category   string
	Color      string
	Location   string
	Keyword    string // matched against name and description
	ReportedBy int64
	Since      *time.Time // relevant date (lost or found) on or after
	Until      *time.Time // relevant date (lost or found) on or before
}

// SearchItems returns all non-deleted items matching the filter, newest first.
func SearchItems(ctx context.Context, db *sql.DB, f ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + `
	          FROM items i JOIN users u ON u.id = i.reported_by
	          WHERE i.deleted_at IS NULL`
	var args []any

	if f.Type != "" {
		query += ` AND i.item_type = ?`
		args = append(args, f.Type)
	}
	if f.Status != "" {
		query += ` AND i.status = ?`
		args = append(args, f.Status)
	}
	if f.Category != "" {
		query += ` AND i.category LIKE '%' || ? || '%'`
		args = append(args, f.Category)
	}
	if f.Color != "" {
		query += ` AND lower(COALESCE(i.color, '')) LIKE '%' || lower(?) || '%'`
		args = append(args, f.Color)
	}
	if f.Location != "" {
		query += ` AND lower(COALESCE(i.location, '')) LIKE '%' || lower(?) || '%'`
		args = append(args, f.Location)
	}
	if f.Keyword != "" {
		query += ` AND (lower(i.name) LIKE '%' || lower(?) || '%'
		           OR lower(COALESCE(i.description, '')) LIKE '%' || lower(?) || '%')`
		args = append(args, f.Keyword, f.Keyword)
	}
	if f.ReportedBy > 0 {
		query += ` AND i.reported_by = ?`
		args = append(args, f.ReportedBy)
	}
	if f.Since != nil {
		query += ` AND (i.date_lost >= ? OR i.date_found >= ?)`
		args = append(args, f.Since, f.Since)
	}
	if f.Until != nil {
		query += ` AND (i.date_lost <= ? OR i.date_found <= ?)`
		args = append(args, f.Until, f.Until)
	}

	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpdateItemStatus sets an item's status.
func UpdateItemStatus(ctx context.Context, db *sql.DB, id int64, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	return nil
}

// DeleteItem soft-deletes an item (administrative removal).
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemImage sets an item's photo.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's photo data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// HasMatchingLostReport reports whether the user has any lost report that
// loosely matches the found item by name, color and category (case-insensitive
// containment). This is a cheap existence probe for the claim form, separate
// from the match scoring engine.
func HasMatchingLostReport(ctx context.Context, db *sql.DB, userID int64, found *model.Item) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items
		 WHERE reported_by = ? AND item_type = 'lost' AND deleted_at IS NULL
		   AND lower(name) LIKE '%' || lower(?) || '%'
		   AND lower(COALESCE(color, '')) LIKE '%' || lower(?) || '%'
		   AND lower(category) LIKE '%' || lower(?) || '%'`,
		userID, found.Name, found.Color, found.Category,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for matching lost report: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var description, color, location, imageMime sql.NullString
	var dateLost, dateFound sql.NullTime
	var matchedLost sql.NullInt64

	err := row.Scan(&item.ID, &item.ReportedBy, &item.Name, &description, &item.Category,
		&color, &location, &item.Type, &dateLost, &dateFound, &item.Status,
		&matchedLost, &imageMime, &item.CreatedAt, &item.UpdatedAt, &item.DeletedAt,
		&item.ReporterName)
	if err != nil {
		return nil, err
	}

	item.Description = description.String
	item.Color = color.String
	item.Location = location.String
	item.ImageMime = imageMime.String
	if dateLost.Valid {
		item.DateLost = &dateLost.Time
	}
	if dateFound.Valid {
		item.DateFound = &dateFound.Time
	}
	if matchedLost.Valid {
		item.MatchedLostItem = &matchedLost.Int64
	}
	return item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
