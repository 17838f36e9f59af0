package ledger

import (
	"errors"

	"github.com/meetbhatt/portfolio-tracker/internal/models"
)

// ErrNotFound is returned when a record id does not exist in the store.
var ErrNotFound = errors.New("trade record not found")

// Store is the ledger source: the system of record for trade entries.
// Implementations are append-oriented; nothing in the service rewrites the
// whole ledger to change one row. List returns records in insertion order
// within a trade date, which is what breaks ties for FIFO matching.
type Store interface {
	List() ([]models.TradeRecord, error)
	Append(rec models.TradeRecord) (models.TradeRecord, error)
	Delete(id string) error
}
