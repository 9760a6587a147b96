package models

import "time"

// MembershipPlan is a purchasable gym membership tier.
type MembershipPlan struct {
	ID           string
	Name         string
	Type         string // "basic", "premium", "elite"
	PriceMonthly float64
	PriceYearly  float64
	Features     []string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
