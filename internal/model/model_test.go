package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceRef(t *testing.T) {
	tests := []struct {
		txn  string
		want string
	}{
		{"INV-001", "INV-001"},
		{"", "Opening Balance"},
		{"  ", "Opening Balance"},
		{"CF-OB", "CF-OB"},
	}
	for _, tt := range tests {
		inv := Invoice{TransactionNumber: tt.txn}
		assert.Equal(t, tt.want, inv.Ref(), "Ref(%q)", tt.txn)
	}
}

func TestInvoiceIsCarryForward(t *testing.T) {
	assert.True(t, Invoice{TransactionNumber: "CF-INV-001"}.IsCarryForward())
	assert.False(t, Invoice{TransactionNumber: "INV-001"}.IsCarryForward())
}

func TestLedgerRowClassification(t *testing.T) {
	tests := []struct {
		name        string
		invoice     string
		payment     string
		wantInvoice bool
		wantPayment bool
	}{
		{"invoice only", "100", "0", true, false},
		{"payment only", "0", "50.25", false, true},
		{"both", "100", "50", true, true},
		{"neither", "0", "0", false, false},
		{"negative is inert", "-10", "-10", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := LedgerRow{
				InvoiceAmount:   decimal.RequireFromString(tt.invoice),
				ReceivedPayment: decimal.RequireFromString(tt.payment),
			}
			assert.Equal(t, tt.wantInvoice, row.IsInvoice())
			assert.Equal(t, tt.wantPayment, row.IsPayment())
		})
	}
}
