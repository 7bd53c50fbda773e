package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/camp-scoreboard/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the default teams, players and games into an empty
// database. Aggregate rows come from the teams insert trigger.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM teams`); err != nil {
		return fmt.Errorf("count teams for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	seed := memory.DefaultSeed()
	exec := func(label, query string, arg map[string]any) error {
		sqlQuery, args, err := sqlx.Named(query, arg)
		if err != nil {
			return fmt.Errorf("bind seed %s query: %w", label, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed %s: %w", label, err)
		}
		return nil
	}

	for _, t := range seed.Teams {
		if err := exec("team "+t.ID, `
INSERT INTO teams (public_id, name, color, avatar_url)
VALUES (:public_id, :name, :color, :avatar_url)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":  t.ID,
			"name":       t.Name,
			"color":      t.Color,
			"avatar_url": optionalString(t.AvatarURL),
		}); err != nil {
			return err
		}
	}

	for _, p := range seed.Players {
		if err := exec("player "+p.ID, `
INSERT INTO players (public_id, team_public_id, name, phone)
VALUES (:public_id, :team_public_id, :name, :phone)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":      p.ID,
			"team_public_id": p.TeamID,
			"name":           p.Name,
			"phone":          optionalString(p.Phone),
		}); err != nil {
			return err
		}
	}

	for _, g := range seed.Games {
		if err := exec("game "+g.ID, `
INSERT INTO games (public_id, slug, title, description)
VALUES (:public_id, :slug, :title, :description)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":   g.ID,
			"slug":        g.Slug,
			"title":       g.Title,
			"description": optionalString(g.Description),
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
