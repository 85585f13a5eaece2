package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	appcfg "github.com/gymsaathiide/gymaccess/pkg/config"
)

func Connect(ctx context.Context, dbCfg appcfg.DatabaseConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		return nil, err
	}

	cfg.MinConns = dbCfg.MinConns
	cfg.MaxConns = dbCfg.MaxConns
	cfg.MaxConnLifetime = dbCfg.MaxLifetime
	cfg.HealthCheckPeriod = 30 * time.Second

	return pgxpool.NewWithConfig(ctx, cfg)
}
