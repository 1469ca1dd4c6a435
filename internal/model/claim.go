package model

import "time"

// Claim represents a request that a found item belongs to a claimant.
// Claims are created either manually through the claim form or automatically
// by the found-from-lost workflow, and are decided exclusively by admin review.
type Claim struct {
	ID        int64 `json:"id"`
	ItemID    int64 `json:"item_id"`
	ClaimedBy int64 `json:"claimed_by"`

	// MatchedFoundItem is set only on system-generated claims: the found
	// item another user reported against the claimant's lost report.
	MatchedFoundItem *int64 `json:"matched_found_item,omitempty"`

	CreatedBySystem   bool `json:"created_by_system"`
	MatchedLostExists bool `json:"matched_lost_exists"`

	WhereLost        string     `json:"where_lost,omitempty"`
	WhenLost         *time.Time `json:"when_lost,omitempty"`
	IdentifyingMarks string     `json:"identifying_marks,omitempty"`
	Message          string     `json:"message,omitempty"`

	Status string `json:"status"`

	ReviewedBy   *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	DecisionNote string     `json:"decision_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ItemName     string `json:"item_name,omitempty"`
	ClaimantName string `json:"claimant_name,omitempty"`
}

// Claim statuses. Pending is the only non-terminal state.
const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
	ClaimStatusReturned = "returned"
)

// Review decisions.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)
