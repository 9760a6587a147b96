package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/gymverse/gymverse/internal/database"
	"github.com/gymverse/gymverse/internal/models"
)

const subscriberColumns = `id, email, first_name, last_name, status, frequency, categories, subscribed_at, unsubscribed_at`

type NewsletterRepository struct {
	pool *pgxpool.Pool
}

func NewNewsletterRepository(db *database.DB) *NewsletterRepository {
	return &NewsletterRepository{pool: db.Pool}
}

func scanSubscriberRow(scanner rowScanner) (*models.NewsletterSubscriber, error) {
	var sub models.NewsletterSubscriber
	var firstName, lastName *string

	err := scanner.Scan(
		&sub.ID, &sub.Email, &firstName, &lastName, &sub.Status,
		&sub.Frequency, pq.Array(&sub.Categories),
		&sub.SubscribedAt, &sub.UnsubscribedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if firstName != nil {
		sub.FirstName = *firstName
	}
	if lastName != nil {
		sub.LastName = *lastName
	}

	return &sub, nil
}

func (r *NewsletterRepository) GetByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM newsletter_subscribers WHERE email = $1`

	return scanSubscriberRow(r.pool.QueryRow(ctx, query, email))
}

func (r *NewsletterRepository) Create(ctx context.Context, sub *models.NewsletterSubscriber) (*models.NewsletterSubscriber, error) {
	sub.ID = uuid.New().String()
	sub.SubscribedAt = time.Now()

	query := `
		INSERT INTO newsletter_subscribers (id, email, first_name, last_name, status, frequency, categories, subscribed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + subscriberColumns

	return scanSubscriberRow(r.pool.QueryRow(ctx, query,
		sub.ID, sub.Email, nilIfEmpty(sub.FirstName), nilIfEmpty(sub.LastName),
		sub.Status, sub.Frequency, pq.Array(sub.Categories), sub.SubscribedAt,
	))
}

// Resubscribe reactivates an unsubscribed address with fresh preferences.
func (r *NewsletterRepository) Resubscribe(ctx context.Context, email, firstName, lastName, frequency string, categories []string) (*models.NewsletterSubscriber, error) {
	query := `
		UPDATE newsletter_subscribers
		SET status = $1, first_name = $2, last_name = $3, frequency = $4, categories = $5, subscribed_at = now(), unsubscribed_at = NULL
		WHERE email = $6
		RETURNING ` + subscriberColumns

	return scanSubscriberRow(r.pool.QueryRow(ctx, query,
		models.SubscriberStatusSubscribed, nilIfEmpty(firstName), nilIfEmpty(lastName),
		frequency, pq.Array(categories), email,
	))
}

func (r *NewsletterRepository) Unsubscribe(ctx context.Context, email string) error {
	query := `
		UPDATE newsletter_subscribers
		SET status = $1, unsubscribed_at = now()
		WHERE email = $2 AND status = $3
	`

	result, err := r.pool.Exec(ctx, query,
		models.SubscriberStatusUnsubscribed, email, models.SubscriberStatusSubscribed)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListSubscribed returns all active subscribers for a campaign send.
func (r *NewsletterRepository) ListSubscribed(ctx context.Context) ([]*models.NewsletterSubscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM newsletter_subscribers WHERE status = $1 ORDER BY subscribed_at ASC`

	rows, err := r.pool.Query(ctx, query, models.SubscriberStatusSubscribed)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	subs := make([]*models.NewsletterSubscriber, 0)
	for rows.Next() {
		sub, err := scanSubscriberRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return subs, nil
}

// Stats aggregates subscriber counts for the admin dashboard.
func (r *NewsletterRepository) Stats(ctx context.Context) (*models.NewsletterStats, error) {
	query := `
		SELECT
			count(*) FILTER (WHERE status = 'subscribed'),
			count(*) FILTER (WHERE status = 'unsubscribed'),
			count(*) FILTER (WHERE status = 'subscribed' AND subscribed_at > now() - interval '30 days')
		FROM newsletter_subscribers
	`

	var stats models.NewsletterStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalSubscribed, &stats.TotalUnsubscribed, &stats.RecentSubscribers,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &stats, nil
}
