package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpusqa/internal/domain"
)

func sampleRows() []domain.Transaction {
	return []domain.Transaction{
		{TransactionID: "TRX001", TimeStamp: "2024-03-01 10:00:00", Status: "Selesai", Channel: "Online", PaymentMethod: "QRIS", CustLocation: "Jakarta", Quantity: "2", ItemType: "VOC 50ml", PricePerUnit: "75000", TotalRevenue: "150000"},
		{TransactionID: "TRX002", TimeStamp: "2024-03-01 12:30:00", Status: "Selesai", Channel: "Toko", PaymentMethod: "Cash", CustLocation: "Bandung", Quantity: "3", ItemType: "VOC 100ml", PricePerUnit: "120000", TotalRevenue: "360000"},
		{TransactionID: "TRX003", TimeStamp: "2024-03-02 09:00:00", Status: "Batal", Channel: "Online", PaymentMethod: "QRIS", CustLocation: "Jakarta", Quantity: "1", ItemType: "VOC 50ml", PricePerUnit: "75000", TotalRevenue: "75000"},
	}
}

func TestRowSentenceCarriesEveryField(t *testing.T) {
	r := sampleRows()[0]
	s := RowSentence(r)
	for _, field := range []string{r.TransactionID, r.TimeStamp, r.Status, r.Channel, r.PaymentMethod, r.CustLocation, r.Quantity, r.ItemType, r.PricePerUnit, r.TotalRevenue} {
		assert.Contains(t, s, field)
	}
	assert.True(t, strings.HasPrefix(s, "Transaksi TRX001 tercatat saat 2024-03-01 10:00:00"))
}

func TestRowFragmentsAggregates(t *testing.T) {
	frags, err := RowFragments(sampleRows())
	require.NoError(t, err)
	require.Len(t, frags, 9)

	assert.Equal(t, []string{
		"Pada tanggal 2024-03-01, terdapat 2 transaksi. Total volume adalah 5 unit.",
		"Pada tanggal 2024-03-02, terdapat 1 transaksi. Total volume adalah 1 unit.",
		"Metode pembayaran QRIS digunakan sebanyak 2 kali.",
		"Metode pembayaran Cash digunakan sebanyak 1 kali.",
		"Lokasi pelanggan Jakarta memiliki 2 transaksi.",
		"Lokasi pelanggan Bandung memiliki 1 transaksi.",
	}, frags[3:])
}

func TestRowFragmentsTiesKeepFirstSeenOrder(t *testing.T) {
	rows := sampleRows()[:2]
	frags, err := RowFragments(rows)
	require.NoError(t, err)
	assert.Contains(t, frags, "Metode pembayaran QRIS digunakan sebanyak 1 kali.")
	assert.Less(t, indexOf(frags, "Metode pembayaran QRIS digunakan sebanyak 1 kali."),
		indexOf(frags, "Metode pembayaran Cash digunakan sebanyak 1 kali."))
}

func TestRowFragmentsRejectsBadTimestamp(t *testing.T) {
	rows := sampleRows()
	rows[1].TimeStamp = "kemarin"
	_, err := RowFragments(rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRX002")
}

func TestRowFragmentsEmpty(t *testing.T) {
	frags, err := RowFragments(nil)
	require.NoError(t, err)
	assert.Empty(t, frags)
}

func TestGroupCountAndCoverage(t *testing.T) {
	for _, size := range []int{1, 2, 3} {
		for n := 1; n <= 7; n++ {
			var frags []string
			for i := 0; i < n; i++ {
				frags = append(frags, fmt.Sprintf("fragmen-%d.", i))
			}
			grouped := Group(frags, size)
			assert.Len(t, grouped, (n+size-1)/size, "n=%d size=%d", n, size)
			joined := strings.Join(grouped, GroupSeparator)
			assert.Equal(t, strings.Join(frags, GroupSeparator), joined)
		}
	}
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
