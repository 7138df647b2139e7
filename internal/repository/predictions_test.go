package repository

import (
	"database/sql"
	"testing"

	"kbo_pickem/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionRepository_UpsertIsIdempotent(t *testing.T) {
	db, ctx := setupTestDB(t)
	f := seedFixture(t, db, ctx)

	// First pick
	saved, err := db.Predictions.UpsertMany(ctx, f.user.ID, []models.PredictionInput{
		{GameID: f.game.ID, PredictedWinnerTeamID: f.home.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved)

	// Second pick for the same game replaces the first
	_, err = db.Predictions.UpsertMany(ctx, f.user.ID, []models.PredictionInput{
		{GameID: f.game.ID, PredictedWinnerTeamID: f.away.ID},
	})
	require.NoError(t, err)

	var rows int
	err = db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM predictions WHERE user_id = $1 AND game_id = $2`, f.user.ID, f.game.ID).Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 1, rows, "Should keep exactly one row per user and game")

	pred, err := db.Predictions.Get(ctx, f.user.ID, f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, f.away.ID, pred.PredictedWinnerTeamID, "Should reflect the second submission")
}

func TestPredictionRepository_UpsertManyAtomic(t *testing.T) {
	db, ctx := setupTestDB(t)
	f := seedFixture(t, db, ctx)

	_, err := db.Predictions.UpsertMany(ctx, f.user.ID, []models.PredictionInput{
		{GameID: f.game.ID, PredictedWinnerTeamID: f.home.ID},
		{GameID: 999999, PredictedWinnerTeamID: f.home.ID},
	})
	require.Error(t, err, "Unknown game should fail the batch")
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = db.Predictions.Get(ctx, f.user.ID, f.game.ID)
	assert.ErrorIs(t, err, ErrNotFound, "No pick of the failed batch should be stored")
}

func TestPredictionRepository_ListForUserGames(t *testing.T) {
	db, ctx := setupTestDB(t)
	f := seedFixture(t, db, ctx)

	second := &models.Game{GameDate: f.date, HomeTeamID: f.away.ID, AwayTeamID: f.home.ID, Status: models.StatusScheduled}
	require.NoError(t, db.Games.Create(ctx, second))

	_, err := db.Predictions.UpsertMany(ctx, f.user.ID, []models.PredictionInput{
		{GameID: f.game.ID, PredictedWinnerTeamID: f.home.ID},
		{GameID: second.ID, PredictedWinnerTeamID: f.home.ID},
	})
	require.NoError(t, err)

	preds, err := db.Predictions.ListForUserGames(ctx, f.user.ID, []int{second.ID})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.Equal(t, second.ID, preds[0].GameID)

	none, err := db.Predictions.ListForUserGames(ctx, f.user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPredictionRepository_VotesByDate(t *testing.T) {
	db, ctx := setupTestDB(t)
	f := seedFixture(t, db, ctx)

	users := []*models.User{
		{StudentNumber: "2022000001", Name: "Park"},
		{StudentNumber: "2022000002", Name: "Choi"},
	}
	for _, u := range users {
		require.NoError(t, db.Users.Create(ctx, u))
	}

	quiet := &models.Game{GameDate: f.date, HomeTeamID: f.away.ID, AwayTeamID: f.home.ID, Status: models.StatusInProgress}
	require.NoError(t, db.Games.Create(ctx, quiet))

	picks := map[*models.User]int{f.user: f.home.ID, users[0]: f.home.ID, users[1]: f.away.ID}
	for u, team := range picks {
		_, err := db.Predictions.UpsertMany(ctx, u.ID, []models.PredictionInput{{GameID: f.game.ID, PredictedWinnerTeamID: team}})
		require.NoError(t, err)
	}

	// Scheduled games are not reported
	votes, err := db.Predictions.VotesByDate(ctx, f.date)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, quiet.ID, votes[0].GameID)
	assert.Equal(t, 0, votes[0].TotalVotes, "A game without picks reports zero votes")

	f.game.Status = models.StatusLive
	require.NoError(t, db.Games.Update(ctx, f.game))

	votes, err = db.Predictions.VotesByDate(ctx, f.date)
	require.NoError(t, err)
	require.Len(t, votes, 2)

	var live *models.PredictionVotes
	for _, v := range votes {
		if v.GameID == f.game.ID {
			live = v
		}
	}
	require.NotNil(t, live)
	assert.Equal(t, 2, live.HomeVotes)
	assert.Equal(t, 1, live.AwayVotes)
	assert.Equal(t, 3, live.TotalVotes)
	assert.Equal(t, f.home.Name, live.HomeTeamName)
}

func TestPredictionRepository_SettleGame(t *testing.T) {
	db, ctx := setupTestDB(t)
	f := seedFixture(t, db, ctx)

	rival := &models.User{StudentNumber: "2022000003", Name: "Jung"}
	require.NoError(t, db.Users.Create(ctx, rival))

	_, err := db.Predictions.UpsertMany(ctx, f.user.ID, []models.PredictionInput{{GameID: f.game.ID, PredictedWinnerTeamID: f.home.ID}})
	require.NoError(t, err)
	_, err = db.Predictions.UpsertMany(ctx, rival.ID, []models.PredictionInput{{GameID: f.game.ID, PredictedWinnerTeamID: f.away.ID}})
	require.NoError(t, err)

	// Not finished yet: nothing is settled
	settled, err := db.Predictions.SettleGame(ctx, f.game.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, settled)

	f.game.Status = models.StatusFinished
	f.game.HomeScore = sql.NullInt32{Int32: 5, Valid: true}
	f.game.AwayScore = sql.NullInt32{Int32: 3, Valid: true}
	require.NoError(t, db.Games.Update(ctx, f.game))

	settled, err = db.Predictions.SettleGame(ctx, f.game.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, settled)

	winner, err := db.Predictions.Get(ctx, f.user.ID, f.game.ID)
	require.NoError(t, err)
	assert.True(t, winner.IsSettled)
	assert.Equal(t, 10, winner.PointsEarned, "Home pick on a 5-3 home win earns points")

	loser, err := db.Predictions.Get(ctx, rival.ID, f.game.ID)
	require.NoError(t, err)
	assert.True(t, loser.IsSettled)
	assert.Equal(t, 0, loser.PointsEarned)

	// A tie pays nobody
	f.game.AwayScore = sql.NullInt32{Int32: 5, Valid: true}
	require.NoError(t, db.Games.Update(ctx, f.game))
	_, err = db.Predictions.SettleGame(ctx, f.game.ID, 10)
	require.NoError(t, err)

	winner, err = db.Predictions.Get(ctx, f.user.ID, f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, winner.PointsEarned, "Ties should earn nothing")
}
