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

const membershipColumns = `id, name, type, price_monthly, price_yearly, features, is_active, created_at, updated_at`

type MembershipRepository struct {
	pool *pgxpool.Pool
}

func NewMembershipRepository(db *database.DB) *MembershipRepository {
	return &MembershipRepository{pool: db.Pool}
}

func scanMembershipRow(scanner rowScanner) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan

	err := scanner.Scan(
		&plan.ID, &plan.Name, &plan.Type, &plan.PriceMonthly, &plan.PriceYearly,
		pq.Array(&plan.Features), &plan.IsActive, &plan.CreatedAt, &plan.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &plan, nil
}

// ListActive returns purchasable plans, cheapest first.
func (r *MembershipRepository) ListActive(ctx context.Context) ([]*models.MembershipPlan, error) {
	query := `SELECT ` + membershipColumns + ` FROM membership_plans WHERE is_active = true ORDER BY price_monthly ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query membership plans: %w", err)
	}
	defer rows.Close()

	plans := make([]*models.MembershipPlan, 0)
	for rows.Next() {
		plan, err := scanMembershipRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership plan: %w", err)
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return plans, nil
}

func (r *MembershipRepository) GetByID(ctx context.Context, id string) (*models.MembershipPlan, error) {
	query := `SELECT ` + membershipColumns + ` FROM membership_plans WHERE id = $1`

	return scanMembershipRow(r.pool.QueryRow(ctx, query, id))
}

func (r *MembershipRepository) Create(ctx context.Context, plan *models.MembershipPlan) (*models.MembershipPlan, error) {
	plan.ID = uuid.New().String()

	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	query := `
		INSERT INTO membership_plans (id, name, type, price_monthly, price_yearly, features, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + membershipColumns

	return scanMembershipRow(r.pool.QueryRow(ctx, query,
		plan.ID, plan.Name, plan.Type, plan.PriceMonthly, plan.PriceYearly,
		pq.Array(plan.Features), plan.IsActive, plan.CreatedAt, plan.UpdatedAt,
	))
}

func (r *MembershipRepository) Update(ctx context.Context, id string, plan *models.MembershipPlan) (*models.MembershipPlan, error) {
	plan.UpdatedAt = time.Now()

	query := `
		UPDATE membership_plans
		SET name = $1, type = $2, price_monthly = $3, price_yearly = $4, features = $5, is_active = $6, updated_at = $7
		WHERE id = $8
		RETURNING ` + membershipColumns

	return scanMembershipRow(r.pool.QueryRow(ctx, query,
		plan.Name, plan.Type, plan.PriceMonthly, plan.PriceYearly,
		pq.Array(plan.Features), plan.IsActive, plan.UpdatedAt, id,
	))
}

func (r *MembershipRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM membership_plans WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
