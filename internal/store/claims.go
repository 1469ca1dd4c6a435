package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// ClaimForm holds the claimant-supplied fields of a manual claim.
type ClaimForm struct {
	WhereLost        string
	WhenLost         *time.Time
	IdentifyingMarks string
	Message          string
}

// FoundReport holds the finder-supplied fields of a found-from-lost report.
// Name, category and color are copied from the lost item, not taken from here.
type FoundReport struct {
	Description string
	Location    string
	DateFound   *time.Time
}

// CreateClaim creates a manual claim against a found item. Admins review
// claims and therefore cannot submit them. Whether the claimant has a lost
// report loosely matching the item is recorded on the claim for review
// display; it does not gate creation.
func CreateClaim(ctx context.Context, db *sql.DB, itemID, claimantID int64, claimantRole string, form ClaimForm) (*model.Claim, error) {
	if claimantRole == model.RoleAdmin {
		return nil, fmt.Errorf("%w: admins cannot submit claims", model.ErrPermissionDenied)
	}

	item, err := GetItem(ctx, db, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.DeletedAt != nil || item.Type != model.ItemTypeFound {
		return nil, fmt.Errorf("%w: found item %d", model.ErrNotFound, itemID)
	}

	hasLost, err := HasMatchingLostReport(ctx, db, claimantID, item)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimed_by, matched_lost_exists,
		                     where_lost, when_lost, identifying_marks, message, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		itemID, claimantID, hasLost,
		form.WhereLost, form.WhenLost, form.IdentifyingMarks, form.Message,
		model.ClaimStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting claim id: %w", err)
	}

	return GetClaim(ctx, db, id)
}

// CreateFoundFromLost handles the "I found this item" workflow: a finder
// reports having found someone else's lost item. In one transaction it creates
// a found item copying name/category/color from the lost report, marks both
// items potential_match, auto-creates a pending system claim for the original
// loser, and notifies both users. Either everything is persisted or nothing.
func CreateFoundFromLost(ctx context.Context, db *sql.DB, lostItemID, finderID int64, report FoundReport) (*model.Claim, *model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	lost, err := getItemTx(ctx, tx, lostItemID)
	if err != nil {
		return nil, nil, err
	}
	if lost == nil || lost.DeletedAt != nil || lost.Type != model.ItemTypeLost {
		return nil, nil, fmt.Errorf("%w: lost item %d", model.ErrNotFound, lostItemID)
	}
	if lost.ReportedBy == finderID {
		return nil, nil, fmt.Errorf("%w: cannot mark your own item as found", model.ErrPermissionDenied)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (reported_by, name, description, category, color, location,
		                    item_type, date_found, status, matched_lost_item)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		finderID, lost.Name, report.Description, lost.Category, lost.Color,
		report.Location, model.ItemTypeFound, report.DateFound,
		model.ItemStatusPotentialMatch, lost.ID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating found item: %w", err)
	}
	foundID, err := result.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("getting found item id: %w", err)
	}

	if err := setItemStatusTx(ctx, tx, lost.ID, model.ItemStatusPotentialMatch); err != nil {
		return nil, nil, err
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimed_by, matched_found_item,
		                     created_by_system, matched_lost_exists, message, status)
		 VALUES (?, ?, ?, 1, 1, ?, ?)`,
		lost.ID, lost.ReportedBy, foundID,
		"System auto-created this claim because another user reported a found item matching your lost report.",
		model.ClaimStatusPending,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating system claim: %w", err)
	}
	claimID, err := result.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("getting claim id: %w", err)
	}

	err = notify(ctx, tx, lost.ReportedBy, fmt.Sprintf(
		"A possible match has been found for your lost item %q. Please visit the Lost & Found desk to confirm.",
		lost.Name))
	if err != nil {
		return nil, nil, err
	}
	err = notify(ctx, tx, finderID, fmt.Sprintf(
		"Thank you! Your found report for %q is pending confirmation by the owner and an admin.",
		lost.Name))
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing found-from-lost report: %w", err)
	}

	claim, err := GetClaim(ctx, db, claimID)
	if err != nil {
		return nil, nil, err
	}
	found, err := GetItem(ctx, db, foundID)
	if err != nil {
		return nil, nil, err
	}
	return claim, found, nil
}

// DecideClaim applies an admin decision to a pending claim and all of its
// side effects as a single transaction.
//
// Approve: the claim is approved, the claimed item (and a linked found item,
// for system claims) becomes returned, and every competing claim on the same
// item is rejected with a notification to its claimant. Two concurrent
// approvals on the same item cannot both succeed.
//
// Reject: the claim is rejected and the item goes back to the visible pool;
// a found item created by the found-from-lost workflow has its lost-item link
// cleared and the lost report reset to unmatched.
//
// Deciding a claim that is not pending fails with ErrInvalidTransition.
func DecideClaim(ctx context.Context, db *sql.DB, claimID int64, decision string, reviewerID int64, note string) (*model.Claim, error) {
	if decision != model.DecisionApprove && decision != model.DecisionReject {
		return nil, fmt.Errorf("%w: unknown decision %q", model.ErrValidation, decision)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	claim, err := getClaimTx(ctx, tx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, fmt.Errorf("%w: claim %d", model.ErrNotFound, claimID)
	}
	if claim.Status != model.ClaimStatusPending {
		return nil, fmt.Errorf("%w: claim %d is already %s", model.ErrInvalidTransition, claimID, claim.Status)
	}

	item, err := getItemTx(ctx, tx, claim.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %d", model.ErrNotFound, claim.ItemID)
	}

	switch decision {
	case model.DecisionApprove:
		err = approveClaimTx(ctx, tx, claim, item, reviewerID, note)
	case model.DecisionReject:
		err = rejectClaimTx(ctx, tx, claim, item, reviewerID, note)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim decision: %w", err)
	}

	return GetClaim(ctx, db, claimID)
}

func approveClaimTx(ctx context.Context, tx *sql.Tx, claim *model.Claim, item *model.Item, reviewerID int64, note string) error {
	if err := setClaimDecidedTx(ctx, tx, claim.ID, model.ClaimStatusApproved, reviewerID, note); err != nil {
		return err
	}

	if err := setItemStatusTx(ctx, tx, item.ID, model.ItemStatusReturned); err != nil {
		return err
	}
	if claim.MatchedFoundItem != nil {
		if err := setItemStatusTx(ctx, tx, *claim.MatchedFoundItem, model.ItemStatusReturned); err != nil {
			return err
		}
	}

	// Approving one claim ends every competing claim on the same item.
	rows, err := tx.QueryContext(ctx,
		`SELECT id, claimed_by FROM claims
		 WHERE item_id = ? AND id != ? AND status != ?`,
		item.ID, claim.ID, model.ClaimStatusRejected,
	)
	if err != nil {
		return fmt.Errorf("listing competing claims: %w", err)
	}
	defer rows.Close()

	type competitor struct{ id, claimant int64 }
	var others []competitor
	for rows.Next() {
		var c competitor
		if err := rows.Scan(&c.id, &c.claimant); err != nil {
			return fmt.Errorf("scanning competing claim: %w", err)
		}
		others = append(others, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("listing competing claims: %w", err)
	}

	for _, other := range others {
		if err := setClaimDecidedTx(ctx, tx, other.id, model.ClaimStatusRejected, reviewerID, "Another claim on this item was approved."); err != nil {
			return err
		}
		err := notify(ctx, tx, other.claimant, fmt.Sprintf(
			"Your claim for %q was automatically rejected because another claim was approved.", item.Name))
		if err != nil {
			return err
		}
	}

	return notify(ctx, tx, claim.ClaimedBy, fmt.Sprintf(
		"Your claim for %q has been approved. Please collect the item at the Lost & Found desk.", item.Name))
}

func rejectClaimTx(ctx context.Context, tx *sql.Tx, claim *model.Claim, item *model.Item, reviewerID int64, note string) error {
	if err := setClaimDecidedTx(ctx, tx, claim.ID, model.ClaimStatusRejected, reviewerID, note); err != nil {
		return err
	}

	if claim.MatchedFoundItem != nil {
		// System claim: the claimed item is the lost report. Reset it and
		// put the finder's found item back into the visible pool.
		if err := setItemStatusTx(ctx, tx, item.ID, model.ItemStatusUnmatched); err != nil {
			return err
		}
		found, err := getItemTx(ctx, tx, *claim.MatchedFoundItem)
		if err != nil {
			return err
		}
		if found != nil {
			if err := clearItemMatchTx(ctx, tx, found.ID, model.ItemStatusUnclaimed); err != nil {
				return err
			}
			err := notify(ctx, tx, found.ReportedBy, fmt.Sprintf(
				"The item you found (%q) was not matched and is visible again in Found Items.", item.Name))
			if err != nil {
				return err
			}
		}
	} else {
		// Manual claim: the claimed item is the found report. It goes back
		// to the visible pool, and a leftover lost-item link is unwound.
		if err := clearItemMatchTx(ctx, tx, item.ID, model.ItemStatusUnclaimed); err != nil {
			return err
		}
		if item.MatchedLostItem != nil {
			if err := setItemStatusTx(ctx, tx, *item.MatchedLostItem, model.ItemStatusUnmatched); err != nil {
				return err
			}
		}
		err := notify(ctx, tx, item.ReportedBy, fmt.Sprintf(
			"The item you found (%q) was not matched and is visible again in Found Items.", item.Name))
		if err != nil {
			return err
		}
	}

	return notify(ctx, tx, claim.ClaimedBy, fmt.Sprintf(
		"Your claim for %q has been rejected.", item.Name))
}

// MarkClaimReturned records that the physical handoff of an approved claim
// happened. Reviewer and decision timestamp stay as set by the approval.
func MarkClaimReturned(ctx context.Context, db *sql.DB, claimID int64) (*model.Claim, error) {
	claim, err := GetClaim(ctx, db, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, fmt.Errorf("%w: claim %d", model.ErrNotFound, claimID)
	}
	if claim.Status != model.ClaimStatusApproved {
		return nil, fmt.Errorf("%w: claim %d is %s, only approved claims can be marked returned",
			model.ErrInvalidTransition, claimID, claim.Status)
	}

	_, err = db.ExecContext(ctx,
		`UPDATE claims SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.ClaimStatusReturned, claimID,
	)
	if err != nil {
		return nil, fmt.Errorf("marking claim returned: %w", err)
	}

	return GetClaim(ctx, db, claimID)
}

const claimColumns = `c.id, c.item_id, c.claimed_by, c.matched_found_item,
	c.created_by_system, c.matched_lost_exists,
	c.where_lost, c.when_lost, c.identifying_marks, c.message,
	c.status, c.reviewed_by, c.reviewed_at, c.decision_note,
	c.created_at, c.updated_at,
	i.name AS item_name, u.username AS claimant_name`

const claimJoins = `FROM claims c
	JOIN items i ON i.id = c.item_id
	JOIN users u ON u.id = c.claimed_by`

// GetClaim returns a claim by ID.
func GetClaim(ctx context.Context, db *sql.DB, id int64) (*model.Claim, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` `+claimJoins+` WHERE c.id = ?`, id,
	)
	claim, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return claim, nil
}

// ClaimFilter narrows ListClaims results. Zero values mean "any".
type ClaimFilter struct {
	Status    string
	ClaimedBy int64
	ItemID    int64
}

// ListClaims returns claims matching the filter. Pending claims come oldest
// first (review queue order), everything else newest first.
func ListClaims(ctx context.Context, db *sql.DB, f ClaimFilter) ([]model.Claim, error) {
	query := `SELECT ` + claimColumns + ` ` + claimJoins + ` WHERE 1=1`
	var args []any

	if f.Status != "" {
		query += ` AND c.status = ?`
		args = append(args, f.Status)
	}
	if f.ClaimedBy > 0 {
		query += ` AND c.claimed_by = ?`
		args = append(args, f.ClaimedBy)
	}
	if f.ItemID > 0 {
		query += ` AND c.item_id = ?`
		args = append(args, f.ItemID)
	}

	if f.Status == model.ClaimStatusPending {
		query += ` ORDER BY c.created_at ASC, c.id ASC`
	} else {
		query += ` ORDER BY c.created_at DESC, c.id DESC`
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *claim)
	}
	return claims, rows.Err()
}

func scanClaim(row rowScanner) (*model.Claim, error) {
	claim := &model.Claim{}
	var matchedFound, reviewedBy sql.NullInt64
	var whenLost, reviewedAt sql.NullTime
	var whereLost, marks, message, note sql.NullString

	err := row.Scan(&claim.ID, &claim.ItemID, &claim.ClaimedBy, &matchedFound,
		&claim.CreatedBySystem, &claim.MatchedLostExists,
		&whereLost, &whenLost, &marks, &message,
		&claim.Status, &reviewedBy, &reviewedAt, &note,
		&claim.CreatedAt, &claim.UpdatedAt,
		&claim.ItemName, &claim.ClaimantName)
	if err != nil {
		return nil, err
	}

	if matchedFound.Valid {
		claim.MatchedFoundItem = &matchedFound.Int64
	}
	claim.WhereLost = whereLost.String
	if whenLost.Valid {
		claim.WhenLost = &whenLost.Time
	}
	claim.IdentifyingMarks = marks.String
	claim.Message = message.String
	if reviewedBy.Valid {
		claim.ReviewedBy = &reviewedBy.Int64
	}
	if reviewedAt.Valid {
		claim.ReviewedAt = &reviewedAt.Time
	}
	claim.DecisionNote = note.String
	return claim, nil
}

// getClaimTx reads a claim inside a transaction, without joined fields.
func getClaimTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Claim, error) {
	claim := &model.Claim{}
	var matchedFound sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT id, item_id, claimed_by, matched_found_item, created_by_system,
		        matched_lost_exists, status
		 FROM claims WHERE id = ?`, id,
	).Scan(&claim.ID, &claim.ItemID, &claim.ClaimedBy, &matchedFound,
		&claim.CreatedBySystem, &claim.MatchedLostExists, &claim.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	if matchedFound.Valid {
		claim.MatchedFoundItem = &matchedFound.Int64
	}
	return claim, nil
}

// getItemTx reads the decision-relevant item fields inside a transaction.
func getItemTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Item, error) {
	item := &model.Item{}
	var matchedLost sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT id, reported_by, name, category, COALESCE(color, ''), item_type,
		        status, matched_lost_item, deleted_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.ReportedBy, &item.Name, &item.Category, &item.Color,
		&item.Type, &item.Status, &matchedLost, &item.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	if matchedLost.Valid {
		item.MatchedLostItem = &matchedLost.Int64
	}
	return item, nil
}

func setItemStatusTx(ctx context.Context, tx *sql.Tx, id int64, status string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	return nil
}

// clearItemMatchTx clears an item's lost-item link and sets its status.
func clearItemMatchTx(ctx context.Context, tx *sql.Tx, id int64, status string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE items SET matched_lost_item = NULL, status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("clearing item match link: %w", err)
	}
	return nil
}

func setClaimDecidedTx(ctx context.Context, tx *sql.Tx, id int64, status string, reviewerID int64, note string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = ?, reviewed_by = ?, reviewed_at = CURRENT_TIMESTAMP,
		        decision_note = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status, reviewerID, note, id,
	)
	if err != nil {
		return fmt.Errorf("recording claim decision: %w", err)
	}
	return nil
}
