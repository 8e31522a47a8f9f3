package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"corpusqa/internal/domain"
)

// ErrMissingColumn is returned when the table header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Columns lists the header names the transaction table must provide.
var Columns = []string{
	"transaction_id", "time_stamp", "status", "channel", "payment_method",
	"cust_location", "quantity", "item_type", "price_per_unit", "total_revenue",
}

// CSVReader reads the transaction table from a CSV file with a header row.
type CSVReader struct{}

func NewCSVReader() *CSVReader { return &CSVReader{} }

// ReadRows returns the rows of the file at path in file order.
func (r *CSVReader) ReadRows(path string) ([]domain.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ParseRows(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

// ParseRows reads transactions from CSV data. Extra columns are ignored.
func ParseRows(in io.Reader) ([]domain.Transaction, error) {
	cr := csv.NewReader(in)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty table")
		}
		return nil, err
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	idx := make([]int, len(Columns))
	for i, c := range Columns {
		p, ok := pos[c]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, c)
		}
		idx[i] = p
	}

	var rows []domain.Transaction
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(i int) string { return strings.TrimSpace(rec[idx[i]]) }
		rows = append(rows, domain.Transaction{
			TransactionID: get(0),
			TimeStamp:     get(1),
			Status:        get(2),
			Channel:       get(3),
			PaymentMethod: get(4),
			CustLocation:  get(5),
			Quantity:      get(6),
			ItemType:      get(7),
			PricePerUnit:  get(8),
			TotalRevenue:  get(9),
		})
	}
	return rows, nil
}
