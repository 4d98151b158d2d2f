package db

import (
	"context"
	"database/sql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

func GetConnection(dsn string) (*bun.DB, error) {
	sqlDb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqlDb, pgdialect.New())

	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),

		// BUNDEBUG=1 logs failed queries
		// BUNDEBUG=2 logs all queries
		bundebug.FromEnv("BUNDEBUG")))

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// InitSchema creates both tables and the entries indexes. Runs once at
// startup; everything is IF NOT EXISTS so restarts are safe.
func InitSchema(ctx context.Context, connection *bun.DB) error {
	if _, err := connection.NewCreateTable().
		Model((*LotModel)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}

	if _, err := connection.NewCreateTable().
		Model((*ReadingModel)(nil)).
		IfNotExists().
		ForeignKey(`("park_id") REFERENCES "lots" ("id")`).
		Exec(ctx); err != nil {
		return err
	}

	if _, err := connection.NewCreateIndex().
		Model((*ReadingModel)(nil)).
		IfNotExists().
		Index("idx_entries_park_id").
		Column("park_id").
		Exec(ctx); err != nil {
		return err
	}

	if _, err := connection.NewCreateIndex().
		Model((*ReadingModel)(nil)).
		IfNotExists().
		Index("idx_entries_timestamp").
		Column("timestamp").
		Exec(ctx); err != nil {
		return err
	}

	return nil
}

// CommitCycle upserts the cycle's lots and appends its readings inside a
// single transaction. Atomicity is per cycle: any failure rolls back both
// batches.
func CommitCycle(ctx context.Context, connection bun.IDB, lots []*LotModel, readings []*ReadingModel) error {
	if len(lots) == 0 && len(readings) == 0 {
		return nil
	}

	return connection.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if len(lots) > 0 {
			if _, err := tx.NewInsert().
				Model(&lots).
				On("CONFLICT (id) DO UPDATE").
				Set("name = EXCLUDED.name").
				Set("lat = EXCLUDED.lat").
				Set("lon = EXCLUDED.lon").
				Set("price = EXCLUDED.price").
				Set("info = EXCLUDED.info").
				Exec(ctx); err != nil {
				return err
			}
		}

		if len(readings) > 0 {
			if _, err := tx.NewInsert().
				Model(&readings).
				Exec(ctx); err != nil {
				return err
			}
		}

		return nil
	})
}
