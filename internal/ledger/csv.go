package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meetbhatt/portfolio-tracker/internal/models"
)

// CSV layout, trades.csv:
//
//	id,ticker,trade_date,side,price,quantity,sector,commission,created_at
//
// trade_date is day precision, created_at is RFC3339Nano. New trades are
// appended as single rows; only Delete rewrites the file (atomically,
// through a temp file).
var csvHeader = []string{"id", "ticker", "trade_date", "side", "price", "quantity", "sector", "commission", "created_at"}

// CSVStore persists the ledger to a single CSV file, mirroring the
// spreadsheet the tracker originally lived in.
type CSVStore struct {
	path string

	mu      sync.RWMutex
	records []models.TradeRecord
}

func NewCSVStore(dir string) (*CSVStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &CSVStore{path: filepath.Join(dir, "trades.csv")}
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CSVStore) ensureFile() error {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return atomicWriteCSV(s.path, [][]string{csvHeader})
	}
	return nil
}

func (s *CSVStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s: missing header row", s.path)
	}
	for i, row := range rows[1:] {
		rec, err := recordFromRow(row)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", s.path, i+2, err)
		}
		s.records = append(s.records, rec)
	}
	return nil
}

func (s *CSVStore) List() ([]models.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TradeRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *CSVStore) Append(rec models.TradeRecord) (models.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return models.TradeRecord{}, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(rowFromRecord(rec)); err != nil {
		f.Close()
		return models.TradeRecord{}, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return models.TradeRecord{}, err
	}
	if err := f.Close(); err != nil {
		return models.TradeRecord{}, err
	}

	s.records = append(s.records, rec)
	return rec, nil
}

func (s *CSVStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, rec := range s.records {
		if rec.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	kept := make([]models.TradeRecord, 0, len(s.records)-1)
	kept = append(kept, s.records[:idx]...)
	kept = append(kept, s.records[idx+1:]...)

	rows := make([][]string, 0, len(kept)+1)
	rows = append(rows, csvHeader)
	for _, rec := range kept {
		rows = append(rows, rowFromRecord(rec))
	}
	if err := atomicWriteCSV(s.path, rows); err != nil {
		return err
	}
	s.records = kept
	return nil
}

func rowFromRecord(rec models.TradeRecord) []string {
	return []string{
		rec.ID,
		rec.Ticker,
		rec.TradeDate.Format(models.TradeDateLayout),
		string(rec.Side),
		rec.Price.String(),
		rec.Quantity.String(),
		rec.Sector,
		rec.Commission.String(),
		rec.CreatedAt.Format(time.RFC3339Nano),
	}
}

func recordFromRow(row []string) (models.TradeRecord, error) {
	if len(row) != len(csvHeader) {
		return models.TradeRecord{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(row))
	}
	side, err := models.ParseSide(row[3])
	if err != nil {
		return models.TradeRecord{}, err
	}
	day, err := time.Parse(models.TradeDateLayout, row[2])
	if err != nil {
		return models.TradeRecord{}, fmt.Errorf("trade_date: %w", err)
	}
	price, err := decimal.NewFromString(row[4])
	if err != nil {
		return models.TradeRecord{}, fmt.Errorf("price: %w", err)
	}
	quantity, err := decimal.NewFromString(row[5])
	if err != nil {
		return models.TradeRecord{}, fmt.Errorf("quantity: %w", err)
	}
	commission, err := decimal.NewFromString(row[7])
	if err != nil {
		return models.TradeRecord{}, fmt.Errorf("commission: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, row[8])
	if err != nil {
		return models.TradeRecord{}, fmt.Errorf("created_at: %w", err)
	}
	return models.TradeRecord{
		ID:         row[0],
		Ticker:     row[1],
		TradeDate:  day,
		Side:       side,
		Price:      price,
		Quantity:   quantity,
		Sector:     row[6],
		Commission: commission,
		CreatedAt:  createdAt,
	}, nil
}

func atomicWriteCSV(path string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".trades-*.tmp")
	if err != nil {
		return err
	}
	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
