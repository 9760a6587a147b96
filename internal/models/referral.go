package models

import "time"

const (
	ReferralStatusPending   = "pending"
	ReferralStatusCompleted = "completed"
	ReferralStatusExpired   = "expired"
)

// Referral is a referral code issued by one member and redeemable by another.
type Referral struct {
	ID          string
	ReferrerID  string
	ReferredID  *string // set when the code is redeemed
	Code        string
	Status      string
	RewardType  string // "discount"
	RewardValue int    // percent
	ExpiresAt   time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// ReferralStats aggregates a member's referral activity.
type ReferralStats struct {
	Total     int
	Completed int
	Pending   int
}
