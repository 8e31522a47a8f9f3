package chunker

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"corpusqa/internal/domain"
)

// GroupSeparator joins the row fragments that share one combined fragment.
const GroupSeparator = " ; "

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// RowSentence renders one transaction as a natural-language sentence that
// carries every field of the row.
func RowSentence(t domain.Transaction) string {
	return fmt.Sprintf(
		"Transaksi %s tercatat saat %s dengan status %s. "+
			"Transaksi dilakukan melalui %s dengan metode pembayaran %s. "+
			"Pelanggan berada di %s dan membeli %s unit %s dengan harga %s per unit. "+
			"Total pendapatan transaksi ini adalah %s.",
		t.TransactionID, t.TimeStamp, t.Status,
		t.Channel, t.PaymentMethod,
		t.CustLocation, t.Quantity, t.ItemType, t.PricePerUnit,
		t.TotalRevenue,
	)
}

// RowFragments returns one sentence per row followed by the per-date,
// per-payment-method and per-location aggregate sentences.
func RowFragments(rows []domain.Transaction) ([]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(rows)+8)
	for _, r := range rows {
		out = append(out, RowSentence(r))
	}

	daily, err := dailySummaries(rows)
	if err != nil {
		return nil, err
	}
	out = append(out, daily...)

	payments := make([]string, len(rows))
	locations := make([]string, len(rows))
	for i, r := range rows {
		payments[i] = r.PaymentMethod
		locations[i] = r.CustLocation
	}
	for _, c := range valueCounts(payments) {
		out = append(out, fmt.Sprintf("Metode pembayaran %s digunakan sebanyak %d kali.", c.value, c.count))
	}
	for _, c := range valueCounts(locations) {
		out = append(out, fmt.Sprintf("Lokasi pelanggan %s memiliki %d transaksi.", c.value, c.count))
	}
	return out, nil
}

// Group joins consecutive fragments size at a time. The result has
// ceil(len(fragments)/size) entries and preserves order.
func Group(fragments []string, size int) []string {
	if size <= 0 {
		size = 2
	}
	out := make([]string, 0, (len(fragments)+size-1)/size)
	for i := 0; i < len(fragments); i += size {
		end := i + size
		if end > len(fragments) {
			end = len(fragments)
		}
		out = append(out, strings.Join(fragments[i:end], GroupSeparator))
	}
	return out
}

type dayTotal struct {
	count    int
	quantity float64
}

func dailySummaries(rows []domain.Transaction) ([]string, error) {
	days := make(map[string]*dayTotal)
	for _, r := range rows {
		ts, err := parseTimestamp(r.TimeStamp)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", r.TransactionID, err)
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(r.Quantity), 64)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: invalid quantity %q: %w", r.TransactionID, r.Quantity, err)
		}
		key := ts.Format("2006-01-02")
		d, ok := days[key]
		if !ok {
			d = &dayTotal{}
			days[key] = d
		}
		d.count++
		d.quantity += qty
	}
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		d := days[k]
		out = append(out, fmt.Sprintf("Pada tanggal %s, terdapat %d transaksi. Total volume adalah %s unit.",
			k, d.count, strconv.FormatFloat(d.quantity, 'f', -1, 64)))
	}
	return out, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

type valueCount struct {
	value string
	count int
}

// valueCounts counts exact values, most frequent first; ties keep first-seen order.
func valueCounts(values []string) []valueCount {
	idx := make(map[string]int)
	var counts []valueCount
	for _, v := range values {
		if i, ok := idx[v]; ok {
			counts[i].count++
			continue
		}
		idx[v] = len(counts)
		counts = append(counts, valueCount{value: v, count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].count > counts[j].count })
	return counts
}
