package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kbo_pickem/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *Database
}

// GetByStudentNumber retrieves a user by the student number they log in with
func (r *UserRepository) GetByStudentNumber(ctx context.Context, studentNumber string) (user *models.User, err error) {
	defer observe("select", "users", time.Now(), &err)

	query := `
		SELECT id, student_number, username, created_at
		FROM users
		WHERE student_number = $1
	`

	var u models.User
	err = r.db.Pool.QueryRow(ctx, query, studentNumber).Scan(
		&u.ID, &u.StudentNumber, &u.Name, &u.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user student_number=%s", ErrNotFound, studentNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (user *models.User, err error) {
	defer observe("select", "users", time.Now(), &err)

	query := `
		SELECT id, student_number, username, created_at
		FROM users
		WHERE id = $1
	`

	var u models.User
	err = r.db.Pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.StudentNumber, &u.Name, &u.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user id=%s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// Create inserts a user. Registration happens outside the app; this backs seeding and tests.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (err error) {
	defer observe("insert", "users", time.Now(), &err)

	query := `
		INSERT INTO users (student_number, username)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err = r.db.Pool.QueryRow(ctx, query, user.StudentNumber, user.Name).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", classify(err))
	}

	log.Debug().
		Str("id", user.ID.String()).
		Str("student_number", user.StudentNumber).
		Msg("User created")

	return nil
}
