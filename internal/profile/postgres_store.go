package profile

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/weatherbot/core/logger"
)

// Migrations holds the schema for PostgresStore under MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations holding the SQL files.
const MigrationsDir = "migrations"

type profileRow struct {
	UserID int64  `db:"user_id"`
	Name   string `db:"name"`
	City   string `db:"city"`
}

type historyRow struct {
	UserID int64  `db:"user_id"`
	City   string `db:"city"`
	SeenAt string `db:"seen_at"`
}

// PostgresStore keeps profiles in the profiles and profile_history tables.
// History rows are insert-only, so first-seen stamps survive concurrent writers.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open connection. Migrations must already be applied.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load reads every profile with its history.
func (s *PostgresStore) Load(ctx context.Context) (Profiles, error) {
	var rows []profileRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT user_id, name, city FROM profiles`); err != nil {
		return nil, fmt.Errorf("select profiles: %w", err)
	}
	var hist []historyRow
	if err := s.db.SelectContext(ctx, &hist, `SELECT user_id, city, seen_at FROM profile_history`); err != nil {
		return nil, fmt.Errorf("select profile history: %w", err)
	}

	ps := make(Profiles, len(rows))
	for _, r := range rows {
		p := newProfile(r.Name)
		p.City = r.City
		ps[r.UserID] = p
	}
	for _, h := range hist {
		if p, ok := ps[h.UserID]; ok {
			p.History[h.City] = Visit{Time: h.SeenAt}
		}
	}
	return ps, nil
}

// Save upserts every profile and inserts unseen history rows in one transaction.
func (s *PostgresStore) Save(ctx context.Context, ps Profiles) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for id, p := range ps {
		if p == nil {
			continue
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO profiles (user_id, name, city)
			VALUES (:user_id, :name, :city)
			ON CONFLICT (user_id) DO UPDATE
			SET name = EXCLUDED.name, city = EXCLUDED.city, updated_at = now()
			WHERE profiles.name IS DISTINCT FROM EXCLUDED.name
			   OR profiles.city IS DISTINCT FROM EXCLUDED.city`,
			profileRow{UserID: id, Name: p.Name, City: p.City},
		); err != nil {
			return fmt.Errorf("upsert profile %d: %w", id, err)
		}
		for city, v := range p.History {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO profile_history (user_id, city, seen_at)
				VALUES ($1, $2, $3)
				ON CONFLICT (user_id, city) DO NOTHING`,
				id, city, v.Time,
			)
			if err != nil {
				return fmt.Errorf("insert history %d/%s: %w", id, city, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted += int(n)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	logger.DB.LogAttrs(ctx, slog.LevelDebug, "profiles saved",
		slog.String("event", "profiles.save"),
		slog.String("driver", "postgres"),
		slog.Int("profiles", len(ps)),
		slog.Int("history_inserted", inserted),
	)
	return nil
}

// Count returns the number of stored profiles.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM profiles`); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return n, nil
}
