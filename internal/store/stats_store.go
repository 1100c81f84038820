package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerStats struct {
	UserID       string
	GamesPlayed  int
	Wins         int
	Losses       int
	BestAttempts int // 0 until the first win
	UpdatedAt    time.Time
}

// GameResult is one finished game of a player.
type GameResult struct {
	GameID     string
	Won        bool
	Attempts   int
	FinishedAt time.Time
}

type StatsStore struct {
	db *pgxpool.Pool
}

func NewStatsStore(db *pgxpool.Pool) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) InitForUser(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO player_stats (user_id, games_played, wins, losses, best_attempts)
		VALUES ($1, 0, 0, 0, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (s *StatsStore) Get(ctx context.Context, userID string) (PlayerStats, error) {
	var st PlayerStats
	err := s.db.QueryRow(ctx, `
		SELECT user_id, games_played, wins, losses, best_attempts, updated_at
		FROM player_stats
		WHERE user_id=$1
	`, userID).Scan(&st.UserID, &st.GamesPlayed, &st.Wins, &st.Losses, &st.BestAttempts, &st.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// no games yet
		return PlayerStats{UserID: userID}, nil
	}
	if err != nil {
		return PlayerStats{}, err
	}
	return st, nil
}

// RecordResult stores a finished game and folds it into the player's stats.
// Recording the same game twice is a no-op.
func (s *StatsStore) RecordResult(ctx context.Context, userID, gameID string, won bool, attempts int) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO game_results (game_id, user_id, won, attempts)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (game_id) DO NOTHING
		`, gameID, userID, won, attempts)
		if err != nil {
			return fmt.Errorf("insert game result: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		win, loss, best := 0, 1, 0
		if won {
			win, loss, best = 1, 0, attempts
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO player_stats (user_id, games_played, wins, losses, best_attempts, updated_at)
			VALUES ($1, 1, $2, $3, $4, now())
			ON CONFLICT (user_id) DO UPDATE SET
				games_played  = player_stats.games_played + 1,
				wins          = player_stats.wins + EXCLUDED.wins,
				losses        = player_stats.losses + EXCLUDED.losses,
				best_attempts = CASE
					WHEN EXCLUDED.best_attempts = 0 THEN player_stats.best_attempts
					WHEN player_stats.best_attempts = 0 THEN EXCLUDED.best_attempts
					ELSE LEAST(player_stats.best_attempts, EXCLUDED.best_attempts)
				END,
				updated_at    = now()
		`, userID, win, loss, best)
		if err != nil {
			return fmt.Errorf("update player stats: %w", err)
		}
		return nil
	})
}

// Recent lists the player's latest finished games, newest first.
func (s *StatsStore) Recent(ctx context.Context, userID string, limit int) ([]GameResult, error) {
	rows, err := s.db.Query(ctx, `
		SELECT game_id, won, attempts, finished_at
		FROM game_results
		WHERE user_id=$1
		ORDER BY finished_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (GameResult, error) {
		var r GameResult
		err := row.Scan(&r.GameID, &r.Won, &r.Attempts, &r.FinishedAt)
		return r, err
	})
}
