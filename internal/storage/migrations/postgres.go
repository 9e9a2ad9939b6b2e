package migrations

import (
	"context"

	"roulette-lab/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded PostgreSQL schema. Every
// statement is idempotent, so it is safe to run on each start.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	scripts, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	return apply(ctx, scripts, func(ctx context.Context, stmt string) error {
		_, err := pool.Exec(ctx, stmt)
		return err
	})
}
