package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type ConnectionInfo struct {
	Host     string
	Port     int
	Username string
	DBName   string
	SSLMode  string
	Password string

	MaxOpenConns int
	MaxIdleConns int
	PingTimeout  time.Duration
}

// DSN renders the keyword/value connection string understood by pgx.
func (info ConnectionInfo) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s password=%s",
		info.Host,
		info.Port,
		info.Username,
		info.DBName,
		info.SSLMode,
		info.Password,
	)
}

// NewPostgresConnection opens a pool on the "pgx" driver; the caller must
// import github.com/jackc/pgx/v5/stdlib.
func NewPostgresConnection(ctx context.Context, info ConnectionInfo) (*sql.DB, error) {
	db, err := sql.Open("pgx", info.DSN())
	if err != nil {
		return nil, err
	}

	if info.MaxOpenConns > 0 {
		db.SetMaxOpenConns(info.MaxOpenConns)
	}
	if info.MaxIdleConns > 0 {
		db.SetMaxIdleConns(info.MaxIdleConns)
	}

	timeout := info.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
