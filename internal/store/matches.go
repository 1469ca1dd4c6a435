package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// ListPotentialMatches returns found items awaiting match review, oldest first.
func ListPotentialMatches(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + `
	          FROM items i JOIN users u ON u.id = i.reported_by
	          WHERE i.deleted_at IS NULL AND i.item_type = ? AND i.status = ?
	          ORDER BY i.created_at ASC, i.id ASC`

	rows, err := db.QueryContext(ctx, query, model.ItemTypeFound, model.ItemStatusPotentialMatch)
	if err != nil {
		return nil, fmt.Errorf("listing potential matches: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// DecideMatch applies the admin gate on a potential match, upstream of any
// claim decision. Approve confirms the pair: both the found item and its
// linked lost report become matched. Reject unwinds it: the found item goes
// back to the unclaimed pool with the link cleared and the lost report resets
// to unmatched. Both reporters are notified either way, in one transaction.
func DecideMatch(ctx context.Context, db *sql.DB, foundItemID int64, decision string) (*model.Item, *model.Item, error) {
	if decision != model.DecisionApprove && decision != model.DecisionReject {
		return nil, nil, fmt.Errorf("%w: unknown decision %q", model.ErrValidation, decision)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	found, err := getItemTx(ctx, tx, foundItemID)
	if err != nil {
		return nil, nil, err
	}
	if found == nil || found.DeletedAt != nil || found.Type != model.ItemTypeFound {
		return nil, nil, fmt.Errorf("%w: found item %d", model.ErrNotFound, foundItemID)
	}
	if found.Status != model.ItemStatusPotentialMatch || found.MatchedLostItem == nil {
		return nil, nil, fmt.Errorf("%w: item %d is not awaiting match review", model.ErrInvalidTransition, foundItemID)
	}

	lost, err := getItemTx(ctx, tx, *found.MatchedLostItem)
	if err != nil {
		return nil, nil, err
	}
	if lost == nil {
		return nil, nil, fmt.Errorf("%w: lost item %d", model.ErrNotFound, *found.MatchedLostItem)
	}

	switch decision {
	case model.DecisionApprove:
		if err := setItemStatusTx(ctx, tx, found.ID, model.ItemStatusMatched); err != nil {
			return nil, nil, err
		}
		if err := setItemStatusTx(ctx, tx, lost.ID, model.ItemStatusMatched); err != nil {
			return nil, nil, err
		}
		err = notify(ctx, tx, lost.ReportedBy, fmt.Sprintf(
			"Match confirmed! Your item %q has been found. Please visit the Lost & Found desk.", lost.Name))
		if err != nil {
			return nil, nil, err
		}
		err = notify(ctx, tx, found.ReportedBy,
			"The item you reported as found has been confirmed by the owner.")
		if err != nil {
			return nil, nil, err
		}

	case model.DecisionReject:
		if err := clearItemMatchTx(ctx, tx, found.ID, model.ItemStatusUnclaimed); err != nil {
			return nil, nil, err
		}
		if err := setItemStatusTx(ctx, tx, lost.ID, model.ItemStatusUnmatched); err != nil {
			return nil, nil, err
		}
		err = notify(ctx, tx, lost.ReportedBy,
			"The found item did not match your lost item.")
		if err != nil {
			return nil, nil, err
		}
		err = notify(ctx, tx, found.ReportedBy,
			"Your reported found item did not match the lost report.")
		if err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing match decision: %w", err)
	}

	updatedFound, err := GetItem(ctx, db, found.ID)
	if err != nil {
		return nil, nil, err
	}
	updatedLost, err := GetItem(ctx, db, lost.ID)
	if err != nil {
		return nil, nil, err
	}
	return updatedFound, updatedLost, nil
}
