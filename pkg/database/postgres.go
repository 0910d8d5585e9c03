package database

import (
	"context"
	"database/sql"
	"fmt"

	"spelling-service/config"

	_ "github.com/lib/pq"
)

type PostgresClient struct {
	db     *sql.DB
	config *config.DBConfig
}

func NewPostgresClient(cfg *config.DBConfig) (*PostgresClient, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{
		db:     db,
		config: cfg,
	}, nil
}

func (c *PostgresClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *PostgresClient) GetDB() *sql.DB {
	return c.db
}

func (c *PostgresClient) InitSchema(ctx context.Context) error {
	createResultsTable := `
		CREATE TABLE IF NOT EXISTS results (
			id VARCHAR(64) PRIMARY KEY,
			participant_id VARCHAR(255) NOT NULL,
			class_id VARCHAR(255) NOT NULL,
			school_id VARCHAR(255),
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			mode VARCHAR(50) NOT NULL,
			time_taken_seconds INTEGER NOT NULL DEFAULT 0,
			recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_class_id ON results(class_id);
		CREATE INDEX IF NOT EXISTS idx_results_school_id ON results(school_id);
		CREATE INDEX IF NOT EXISTS idx_results_participant_id ON results(participant_id);
	`

	if _, err := c.db.ExecContext(ctx, createResultsTable); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}

	return nil
}
