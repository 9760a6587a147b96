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

const programColumns = `id, trainer_id, title, description, category, difficulty, duration_weeks, price, is_published, created_at, updated_at`

type ProgramRepository struct {
	pool *pgxpool.Pool
}

func NewProgramRepository(db *database.DB) *ProgramRepository {
	return &ProgramRepository{pool: db.Pool}
}

func scanProgramRow(scanner rowScanner) (*models.Program, error) {
	var p models.Program
	var description *string

	err := scanner.Scan(
		&p.ID, &p.TrainerID, &p.Title, &description, &p.Category,
		&p.Difficulty, &p.DurationWks, &p.Price, &p.IsPublished,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if description != nil {
		p.Description = *description
	}

	return &p, nil
}

func scanProgramRows(rows pgx.Rows) ([]*models.Program, error) {
	defer rows.Close()

	programs := make([]*models.Program, 0)

	for rows.Next() {
		program, err := scanProgramRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, program)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return programs, nil
}

func (r *ProgramRepository) GetByID(ctx context.Context, id string) (*models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE id = $1`

	return scanProgramRow(r.pool.QueryRow(ctx, query, id))
}

// ListPublished returns published programs, newest first.
func (r *ProgramRepository) ListPublished(ctx context.Context, limit, offset int) ([]*models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE is_published = true ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}

	return scanProgramRows(rows)
}

// ListByTrainer returns all programs owned by a trainer, published or not.
func (r *ProgramRepository) ListByTrainer(ctx context.Context, trainerID string) ([]*models.Program, error) {
	query := `SELECT ` + programColumns + ` FROM programs WHERE trainer_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, trainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}

	return scanProgramRows(rows)
}

func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) (*models.Program, error) {
	program.ID = uuid.New().String()

	now := time.Now()
	program.CreatedAt = now
	program.UpdatedAt = now

	query := `
		INSERT INTO programs (id, trainer_id, title, description, category, difficulty, duration_weeks, price, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + programColumns

	return scanProgramRow(r.pool.QueryRow(ctx, query,
		program.ID, program.TrainerID, program.Title, nilIfEmpty(program.Description),
		program.Category, program.Difficulty, program.DurationWks, program.Price,
		program.IsPublished, program.CreatedAt, program.UpdatedAt,
	))
}

func (r *ProgramRepository) Update(ctx context.Context, id string, program *models.Program) (*models.Program, error) {
	program.UpdatedAt = time.Now()

	query := `
		UPDATE programs
		SET title = $1, description = $2, category = $3, difficulty = $4, duration_weeks = $5, price = $6, is_published = $7, updated_at = $8
		WHERE id = $9
		RETURNING ` + programColumns

	return scanProgramRow(r.pool.QueryRow(ctx, query,
		program.Title, nilIfEmpty(program.Description), program.Category,
		program.Difficulty, program.DurationWks, program.Price,
		program.IsPublished, program.UpdatedAt, id,
	))
}

func (r *ProgramRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AddFavorite marks a program as a favorite for a user. Re-favoriting an
// already favorited program is a no-op.
func (r *ProgramRepository) AddFavorite(ctx context.Context, userID, programID string) error {
	query := `
		INSERT INTO user_favorite_programs (user_id, program_id, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, program_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, userID, programID); err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

func (r *ProgramRepository) RemoveFavorite(ctx context.Context, userID, programID string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM user_favorite_programs WHERE user_id = $1 AND program_id = $2`,
		userID, programID,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// FavoriteIDs returns the set of program IDs the user has favorited.
func (r *ProgramRepository) FavoriteIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT program_id FROM user_favorite_programs WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		ids[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}
