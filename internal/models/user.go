package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered member, identified externally by student number
type User struct {
	ID            uuid.UUID `db:"id" json:"id"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	Name          string    `db:"username" json:"name"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
}

// UserScore is a row of the aggregate score table
type UserScore struct {
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	Name          string    `db:"username" json:"name"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	TotalPoints   int       `db:"total_points" json:"score"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	Rank          int       `db:"rank" json:"rank"`
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	Name          string    `db:"username" json:"name"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	Score         int       `db:"total_points" json:"score"`
}
