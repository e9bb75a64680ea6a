package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/electronic-shop/internal/config"
	"github.com/rl1809/electronic-shop/internal/core/domain"
)

// OpenMySQL returns a pinged connection pool. Any failure wraps domain.ErrConnectionUnavailable.
func OpenMySQL(ctx context.Context, cfg config.MySQL) (*sql.DB, error) {
	dsn, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %w", domain.ErrConnectionUnavailable, err)
	}
	dsn.ParseTime = true

	connector, err := mysql.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connector: %w", domain.ErrConnectionUnavailable, err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping mysql: %w", domain.ErrConnectionUnavailable, err)
	}
	return db, nil
}
