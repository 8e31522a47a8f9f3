package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokensKeepDigits(t *testing.T) {
	assert.Equal(t, []string{"transaksi", "trx001", "jakarta"}, Tokens("Transaksi TRX001, Jakarta."))
}

func TestContentTokensDropsStopwords(t *testing.T) {
	assert.Equal(t, []string{"lokasi", "pelanggan", "trx001"}, ContentTokens("lokasi pelanggan pada TRX001 dengan"))
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace("  a\n\n b \t\r\n c  "))
	assert.Equal(t, "", CollapseWhitespace(" \n "))
}

func TestSentences(t *testing.T) {
	assert.Equal(t, []string{"Satu.", "Dua!", "Tiga?"}, Sentences("Satu. Dua! Tiga?"))
	assert.Empty(t, Sentences("  "))
}

func TestSentencesKeepsUnterminatedTail(t *testing.T) {
	got := Sentences("Vnelia VOC dikemas dalam botol kaca. Distribusi dilakukan melalui 40 kota di Jawa dan")
	assert.Equal(t, []string{
		"Vnelia VOC dikemas dalam botol kaca.",
		"Distribusi dilakukan melalui 40 kota di Jawa dan",
	}, got)
}

func TestSentencesKeepsDecimalNumbers(t *testing.T) {
	assert.Equal(t, []string{"Harga per unit 75.000 rupiah untuk VOC 50ml"},
		Sentences("Harga per unit 75.000 rupiah untuk VOC 50ml"))
	assert.Equal(t, []string{"Wow?!", "Oke..."}, Sentences("Wow?! Oke..."))
}
