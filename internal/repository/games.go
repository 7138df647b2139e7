package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kbo_pickem/server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// querier is the subset shared by the pool and a transaction
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

const gameColumns = `
	g.id, g.game_date, to_char(g.game_time, 'HH24:MI'),
	g.home_team_id, g.away_team_id, g.home_pitcher, g.away_pitcher,
	g.home_score, g.away_score, g.game_status, g.created_at, g.updated_at`

func gameDest(g *models.Game) []any {
	return []any{
		&g.ID, &g.GameDate, &g.GameTime,
		&g.HomeTeamID, &g.AwayTeamID, &g.HomePitcher, &g.AwayPitcher,
		&g.HomeScore, &g.AwayScore, &g.Status, &g.CreatedAt, &g.UpdatedAt,
	}
}

// Create inserts a new game
func (r *GameRepository) Create(ctx context.Context, game *models.Game) (err error) {
	defer observe("insert", "games", time.Now(), &err)
	return r.create(ctx, r.db.Pool, game)
}

func (r *GameRepository) create(ctx context.Context, q querier, game *models.Game) error {
	query := `
		INSERT INTO games (
			game_date, game_time, home_team_id, away_team_id,
			home_pitcher, away_pitcher, home_score, away_score, game_status
		) VALUES ($1, NULLIF($2::text, '')::time, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(
		ctx, query,
		game.GameDate, game.GameTime, game.HomeTeamID, game.AwayTeamID,
		game.HomePitcher, game.AwayPitcher, game.HomeScore, game.AwayScore, game.Status,
	).Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create game: %w", classify(err))
	}

	log.Debug().
		Int("id", game.ID).
		Str("date", game.GameDate.Format("2006-01-02")).
		Int("home_team_id", game.HomeTeamID).
		Int("away_team_id", game.AwayTeamID).
		Msg("Game created")

	return nil
}

// Update overwrites every editable column of a game
func (r *GameRepository) Update(ctx context.Context, game *models.Game) (err error) {
	defer observe("update", "games", time.Now(), &err)
	return r.update(ctx, r.db.Pool, game)
}

func (r *GameRepository) update(ctx context.Context, q querier, game *models.Game) error {
	query := `
		UPDATE games SET
			game_date = $1,
			game_time = NULLIF($2::text, '')::time,
			home_team_id = $3,
			away_team_id = $4,
			home_pitcher = $5,
			away_pitcher = $6,
			home_score = $7,
			away_score = $8,
			game_status = $9,
			updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`

	err := q.QueryRow(
		ctx, query,
		game.GameDate, game.GameTime, game.HomeTeamID, game.AwayTeamID,
		game.HomePitcher, game.AwayPitcher, game.HomeScore, game.AwayScore,
		game.Status, game.ID,
	).Scan(&game.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: game id=%d", ErrNotFound, game.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update game: %w", classify(err))
	}

	return nil
}

// SaveAll updates games that carry an id and inserts the rest, in one transaction
func (r *GameRepository) SaveAll(ctx context.Context, games []*models.Game) (err error) {
	defer observe("save_all", "games", time.Now(), &err)

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for i, game := range games {
			var err error
			if game.ID > 0 {
				err = r.update(ctx, tx, game)
			} else {
				err = r.create(ctx, tx, game)
			}
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		return nil
	})
}

// Delete deletes a game and, by cascade, its predictions
func (r *GameRepository) Delete(ctx context.Context, id int) (err error) {
	defer observe("delete", "games", time.Now(), &err)

	query := `DELETE FROM games WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: game id=%d", ErrNotFound, id)
	}

	log.Debug().Int("id", id).Msg("Game deleted")
	return nil
}

// GetByID retrieves a game by its database ID
func (r *GameRepository) GetByID(ctx context.Context, id int) (game *models.Game, err error) {
	defer observe("select", "games", time.Now(), &err)

	query := `SELECT ` + gameColumns + ` FROM games g WHERE g.id = $1`

	var g models.Game
	err = r.db.Pool.QueryRow(ctx, query, id).Scan(gameDest(&g)...)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: game id=%d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &g, nil
}

// ListByIDs retrieves the games with the given ids; missing ids are simply absent
func (r *GameRepository) ListByIDs(ctx context.Context, ids []int) (games []*models.Game, err error) {
	defer observe("select", "games", time.Now(), &err)

	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + gameColumns + ` FROM games g WHERE g.id = ANY($1) ORDER BY g.id`

	return r.listGames(ctx, query, ids)
}

// ListByDate retrieves all games of a date in start-time order
func (r *GameRepository) ListByDate(ctx context.Context, date time.Time) (games []*models.Game, err error) {
	defer observe("select", "games", time.Now(), &err)

	query := `
		SELECT ` + gameColumns + `
		FROM games g
		WHERE g.game_date = $1
		ORDER BY g.game_time NULLS LAST, g.id
	`

	return r.listGames(ctx, query, date)
}

func (r *GameRepository) listGames(ctx context.Context, query string, args ...any) ([]*models.Game, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(gameDest(&g)...); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// ListByDateWithTeams retrieves the games of a date joined with both teams
func (r *GameRepository) ListByDateWithTeams(ctx context.Context, date time.Time) (games []*models.GameWithTeams, err error) {
	defer observe("select", "games", time.Now(), &err)

	query := `
		SELECT ` + gameColumns + `,
		       ht.id, ht.name, aw.id, aw.name
		FROM games g
		JOIN teams ht ON ht.id = g.home_team_id
		JOIN teams aw ON aw.id = g.away_team_id
		WHERE g.game_date = $1
		ORDER BY g.game_time NULLS LAST, g.id
	`

	rows, err := r.db.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list games with teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g models.GameWithTeams
		dest := append(gameDest(&g.Game), &g.HomeTeam.ID, &g.HomeTeam.Name, &g.AwayTeam.ID, &g.AwayTeam.Name)
		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &g)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// ListFinishedWithUserPrediction retrieves the finished games of a date, each left-joined
// with the user's prediction
func (r *GameRepository) ListFinishedWithUserPrediction(ctx context.Context, userID uuid.UUID, date time.Time) (history []*models.HistoryRow, err error) {
	defer observe("select", "games", time.Now(), &err)

	query := `
		SELECT ` + gameColumns + `,
		       ht.id, ht.name, aw.id, aw.name,
		       p.predicted_winner_team_id, p.points_earned, p.is_settled
		FROM games g
		JOIN teams ht ON ht.id = g.home_team_id
		JOIN teams aw ON aw.id = g.away_team_id
		LEFT JOIN predictions p ON p.game_id = g.id AND p.user_id = $1
		WHERE g.game_date = $2
		  AND g.game_status = 'FINISHED'
		ORDER BY g.game_time NULLS LAST, g.id
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row       models.HistoryRow
			predicted *int
			points    *int
			settled   *bool
		)
		dest := append(gameDest(&row.Game), &row.HomeTeam.ID, &row.HomeTeam.Name, &row.AwayTeam.ID, &row.AwayTeam.Name,
			&predicted, &points, &settled)
		if err = rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		if predicted != nil {
			row.Prediction = &models.Prediction{
				UserID:                userID,
				GameID:                row.ID,
				PredictedWinnerTeamID: *predicted,
				PointsEarned:          derefInt(points),
				IsSettled:             settled != nil && *settled,
			}
		}
		history = append(history, &row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return history, nil
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
