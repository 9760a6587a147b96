package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gymverse/gymverse/internal/database"
	"github.com/gymverse/gymverse/internal/models"
)

const referralColumns = `id, referrer_id, referred_id, code, status, reward_type, reward_value, expires_at, completed_at, created_at`

type ReferralRepository struct {
	pool *pgxpool.Pool
}

func NewReferralRepository(db *database.DB) *ReferralRepository {
	return &ReferralRepository{pool: db.Pool}
}

func scanReferralRow(scanner rowScanner) (*models.Referral, error) {
	var ref models.Referral

	err := scanner.Scan(
		&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.Code, &ref.Status,
		&ref.RewardType, &ref.RewardValue, &ref.ExpiresAt, &ref.CompletedAt,
		&ref.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &ref, nil
}

func scanReferralRows(rows pgx.Rows) ([]*models.Referral, error) {
	defer rows.Close()

	referrals := make([]*models.Referral, 0)

	for rows.Next() {
		ref, err := scanReferralRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan referral: %w", err)
		}
		referrals = append(referrals, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return referrals, nil
}

func (r *ReferralRepository) Create(ctx context.Context, ref *models.Referral) (*models.Referral, error) {
	ref.ID = uuid.New().String()
	ref.CreatedAt = time.Now()

	query := `
		INSERT INTO referrals (id, referrer_id, referred_id, code, status, reward_type, reward_value, expires_at, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + referralColumns

	return scanReferralRow(r.pool.QueryRow(ctx, query,
		ref.ID, ref.ReferrerID, ref.ReferredID, ref.Code, ref.Status,
		ref.RewardType, ref.RewardValue, ref.ExpiresAt, ref.CompletedAt,
		ref.CreatedAt,
	))
}

func (r *ReferralRepository) GetByCode(ctx context.Context, code string) (*models.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE code = $1`

	return scanReferralRow(r.pool.QueryRow(ctx, query, code))
}

// CodeExists reports whether a referral code is already taken.
func (r *ReferralRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM referrals WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

// HasCompletedByReferred reports whether a user has already redeemed a
// referral code.
func (r *ReferralRepository) HasCompletedByReferred(ctx context.Context, referredID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM referrals WHERE referred_id = $1 AND status = $2)`,
		referredID, models.ReferralStatusCompleted).Scan(&exists)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

// ListByReferrer returns all referrals issued by a user, newest first.
func (r *ReferralRepository) ListByReferrer(ctx context.Context, referrerID string) ([]*models.Referral, error) {
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE referrer_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, referrerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query referrals: %w", err)
	}

	return scanReferralRows(rows)
}

// Complete marks a referral as redeemed by the given user.
func (r *ReferralRepository) Complete(ctx context.Context, id, referredID string) (*models.Referral, error) {
	query := `
		UPDATE referrals
		SET status = $1, referred_id = $2, completed_at = now()
		WHERE id = $3
		RETURNING ` + referralColumns

	return scanReferralRow(r.pool.QueryRow(ctx, query,
		models.ReferralStatusCompleted, referredID, id,
	))
}

// MarkExpired flips a pending referral to expired.
func (r *ReferralRepository) MarkExpired(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE referrals SET status = $1 WHERE id = $2 AND status = $3`,
		models.ReferralStatusExpired, id, models.ReferralStatusPending,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// StatsByReferrer aggregates referral counts for a user.
func (r *ReferralRepository) StatsByReferrer(ctx context.Context, referrerID string) (*models.ReferralStats, error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'completed'),
			count(*) FILTER (WHERE status = 'pending')
		FROM referrals WHERE referrer_id = $1
	`

	var stats models.ReferralStats
	err := r.pool.QueryRow(ctx, query, referrerID).Scan(
		&stats.Total, &stats.Completed, &stats.Pending,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &stats, nil
}
