package db

import (
	"context"
	_ "embed"
	"fmt"
	"net"
	"net/url"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the DDL of the blog tables. Used to bootstrap test
// databases and fresh dev instances.
//
//go:embed schema.sql
var Schema string

type NewDBPoolParams struct {
	DBHost         string
	DBPort         string
	DBName         string
	DBUser         string
	DBPassword     string
	TracingEnabled bool
}

func ConnString(params NewDBPoolParams) string {
	user := params.DBUser
	if user == "" {
		user = "postgres"
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(params.DBHost, params.DBPort),
		Path:   "/" + params.DBName,
	}
	if params.DBPassword != "" {
		u.User = url.UserPassword(user, params.DBPassword)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

func NewDBPool(ctx context.Context, params NewDBPoolParams) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(ConnString(params))
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if params.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	return db, nil
}

// ApplySchema runs the embedded DDL. Statements are idempotent.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
