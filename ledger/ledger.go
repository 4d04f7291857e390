package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go-trade-game"
)

// Columns of the exported record set, in order
var Columns = []string{"time", "seller", "buyer", "item", "quantity", "price", "currency"}

// TimeLayout of the exported time column
const TimeLayout = "15:04:05"

// utf8BOM prefixes exports so spreadsheet tools detect the encoding of non-ASCII names
const utf8BOM = "\ufeff"

// Record a settled trade. Records are never mutated once appended.
type Record struct {
	ID        uuid.UUID
	Seq       int
	Timestamp time.Time
	Seller    string
	Buyer     string
	Item      string
	Quantity  int
	Price     game.Amount
	Currency  game.Currency
}

// Ledger append-only sequence of records in settlement order.
// Ledger is not concurrency safe, callers serialize access.
type Ledger struct {
	records []Record
}

// New returns an empty Ledger
func New() *Ledger {
	return &Ledger{}
}

// Append assigns the record an ID and sequence number and appends it
func (l *Ledger) Append(r Record) Record {
	r.ID = uuid.New()
	r.Seq = len(l.records) + 1
	l.records = append(l.records, r)
	return r
}

// Len number of records
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of all records in settlement order
func (l *Ledger) Records() []Record {
	return append([]Record(nil), l.records...)
}

// Row renders a record in Columns order
func (r Record) Row() []string {
	return []string{
		r.Timestamp.Format(TimeLayout),
		r.Seller,
		r.Buyer,
		r.Item,
		strconv.Itoa(r.Quantity),
		r.Price.String(),
		string(r.Currency),
	}
}

// WriteCSV exports the ledger as delimited text with a header row
func (l *Ledger) WriteCSV(w io.Writer) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("writing bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range l.records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("writing record %d: %w", r.Seq, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
