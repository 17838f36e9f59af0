package ledger

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/shopspring/decimal"

	"github.com/meetbhatt/portfolio-tracker/internal/models"
)

const tradesSchema = `
CREATE TABLE IF NOT EXISTS trades (
    id          SERIAL PRIMARY KEY,
    ticker      TEXT NOT NULL,
    trade_date  DATE NOT NULL,
    side        TEXT NOT NULL,
    price       NUMERIC(18,6) NOT NULL,
    quantity    NUMERIC(18,6) NOT NULL,
    sector      TEXT NOT NULL DEFAULT '',
    commission  NUMERIC(18,6) NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore persists the ledger in a trades table. Records are only
// ever inserted or deleted; there is no update path.
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig carries the connection settings for OpenPostgres.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// OpenPostgres connects, verifies the connection and bootstraps the trades
// table.
func OpenPostgres(cfg PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(tradesSchema); err != nil {
		return nil, fmt.Errorf("error creating trades table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing connection, used by tests.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// List returns the full ledger ordered by trade date, with the serial id
// preserving insertion order within a day.
func (s *PostgresStore) List() ([]models.TradeRecord, error) {
	rows, err := s.db.Query(`
        SELECT id, ticker, trade_date, side, price, quantity, sector, commission, created_at
        FROM trades
        ORDER BY trade_date, id
    `)
	if err != nil {
		return nil, fmt.Errorf("error listing trades: %w", err)
	}
	defer rows.Close()

	var records []models.TradeRecord
	for rows.Next() {
		var id int64
		var rec models.TradeRecord
		var side string
		var price, quantity, commission string
		if err := rows.Scan(&id, &rec.Ticker, &rec.TradeDate, &side,
			&price, &quantity, &rec.Sector, &commission, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning trade: %w", err)
		}
		rec.ID = strconv.FormatInt(id, 10)
		rec.Side = models.Side(side)
		if rec.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("error parsing price for trade %d: %w", id, err)
		}
		if rec.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("error parsing quantity for trade %d: %w", id, err)
		}
		if rec.Commission, err = decimal.NewFromString(commission); err != nil {
			return nil, fmt.Errorf("error parsing commission for trade %d: %w", id, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Append(rec models.TradeRecord) (models.TradeRecord, error) {
	var id int64
	err := s.db.QueryRow(`
        INSERT INTO trades (ticker, trade_date, side, price, quantity, sector, commission)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `, rec.Ticker, rec.TradeDate, string(rec.Side), rec.Price.String(),
		rec.Quantity.String(), rec.Sector, rec.Commission.String(),
	).Scan(&id, &rec.CreatedAt)
	if err != nil {
		return models.TradeRecord{}, fmt.Errorf("error inserting trade: %w", err)
	}
	rec.ID = strconv.FormatInt(id, 10)
	return rec, nil
}

func (s *PostgresStore) Delete(id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.db.Exec("DELETE FROM trades WHERE id = $1", n)
	if err != nil {
		return fmt.Errorf("error deleting trade: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting trade: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
