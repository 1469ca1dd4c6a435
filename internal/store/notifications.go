package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// execer covers *sql.DB and *sql.Tx so notifications produced by a
// multi-record effect land in the same transaction as the effect itself.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// notify records a fire-and-forget message for a user.
func notify(ctx context.Context, db execer, userID int64, message string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, message) VALUES (?, ?)`,
		userID, message,
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// CreateNotification records a message for a user outside any transaction.
func CreateNotification(ctx context.Context, db *sql.DB, userID int64, message string) error {
	return notify(ctx, db, userID, message)
}

// ListNotifications returns a user's notifications, newest first. If
// unreadOnly is set, read notifications are skipped.
func ListNotifications(ctx context.Context, db *sql.DB, userID int64, unreadOnly bool) ([]model.Notification, error) {
	query := `SELECT id, user_id, message, is_read, created_at
	          FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead marks one of a user's notifications as read.
func MarkNotificationRead(ctx context.Context, db *sql.DB, userID, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: notification %d", model.ErrNotFound, id)
	}
	return nil
}
