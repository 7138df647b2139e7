package repository

import (
	"testing"

	"kbo_pickem/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)

	team := &models.Team{Name: "두산 베어스", ShortName: "두산"}

	// Insert new team
	err := db.Teams.Upsert(ctx, team)
	require.NoError(t, err, "Should successfully insert team")
	require.NotZero(t, team.ID)

	// Verify team was created
	retrieved, err := db.Teams.GetByID(ctx, team.ID)
	require.NoError(t, err, "Should retrieve inserted team")
	assert.Equal(t, "두산", retrieved.ShortName, "Short names should match")

	// Update existing team
	updatedTeam := &models.Team{Name: "두산 베어스", ShortName: "DOOSAN"}
	err = db.Teams.Upsert(ctx, updatedTeam)
	require.NoError(t, err, "Should successfully update team")
	assert.Equal(t, team.ID, updatedTeam.ID, "Upsert by name should keep the id")

	// Verify update
	updated, err := db.Teams.GetByID(ctx, team.ID)
	require.NoError(t, err, "Should retrieve updated team")
	assert.Equal(t, "DOOSAN", updated.ShortName, "Short name should be updated")
}

func TestTeamRepository_List(t *testing.T) {
	db, ctx := setupTestDB(t)

	// Insert multiple teams
	teams := []*models.Team{
		{Name: "삼성 라이온즈", ShortName: "삼성"},
		{Name: "롯데 자이언츠", ShortName: "롯데"},
		{Name: "한화 이글스", ShortName: "한화"},
	}

	for _, team := range teams {
		err := db.Teams.Upsert(ctx, team)
		require.NoError(t, err, "Should insert team")
	}

	// List all teams
	allTeams, err := db.Teams.List(ctx)
	require.NoError(t, err, "Should list teams")
	require.Len(t, allTeams, 3)
	assert.Equal(t, "삼성 라이온즈", allTeams[0].Name, "Teams should be ordered by id")

	count, err := db.Teams.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestTeamRepository_GetNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)

	// Try to get non-existent team
	_, err := db.Teams.GetByID(ctx, 99999)
	assert.ErrorIs(t, err, ErrNotFound, "Should return not found for non-existent team")
}

func TestUserRepository_GetByStudentNumber(t *testing.T) {
	db, ctx := setupTestDB(t)

	user := &models.User{StudentNumber: "2021123456", Name: "Kim"}
	require.NoError(t, db.Users.Create(ctx, user))

	retrieved, err := db.Users.GetByStudentNumber(ctx, "2021123456")
	require.NoError(t, err, "Should find the user")
	assert.Equal(t, user.ID, retrieved.ID)
	assert.Equal(t, "2021123456", retrieved.StudentNumber, "Student number should match the input")
	assert.Equal(t, "Kim", retrieved.Name)

	byID, err := db.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.StudentNumber, byID.StudentNumber)

	_, err = db.Users.GetByStudentNumber(ctx, "0000000000")
	assert.ErrorIs(t, err, ErrNotFound, "Unknown student number should be not found")

	// Duplicate student numbers are rejected
	err = db.Users.Create(ctx, &models.User{StudentNumber: "2021123456", Name: "Lee"})
	assert.ErrorIs(t, err, ErrConflict)
}
