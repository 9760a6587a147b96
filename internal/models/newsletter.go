package models

import "time"

const (
	SubscriberStatusSubscribed   = "subscribed"
	SubscriberStatusUnsubscribed = "unsubscribed"
)

// NewsletterSubscriber is one email on the newsletter list.
type NewsletterSubscriber struct {
	ID             string
	Email          string
	FirstName      string
	LastName       string
	Status         string
	Frequency      string   // "daily", "weekly", "monthly"
	Categories     []string // e.g. "fitness", "nutrition", "wellness"
	SubscribedAt   time.Time
	UnsubscribedAt *time.Time
}

// NewsletterStats summarizes the subscriber list for the admin dashboard.
type NewsletterStats struct {
	TotalSubscribed   int
	TotalUnsubscribed int
	RecentSubscribers int // subscribed within the last 30 days
}

// CampaignResult reports the outcome of a newsletter campaign send.
type CampaignResult struct {
	Recipients int
	Sent       int
	Failed     int
}
