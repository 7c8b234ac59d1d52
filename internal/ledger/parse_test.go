package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-04-01", "2024-04-01"},
		{"01-04-2024", "2024-04-01"},
		{"1-4-2024", "2024-04-01"},
		{"01/04/2024", "2024-04-01"},
		{"01.04.2024", "2024-04-01"},
		{"01-Apr-2024", "2024-04-01"},
		{"1-apr-2024", "2024-04-01"},
		{"1-Apr-24", "2024-04-01"},
		{"01 Apr 2024", "2024-04-01"},
		{"Apr 1, 2024", "2024-04-01"},
		{"2024-04-01 13:45:00", "2024-04-01"},
		{"2024-04-01T13:45:00Z", "2024-04-01"},
		{"  2024-04-01  ", "2024-04-01"},
		{"45383", "2024-04-01"},
		{"45383.75", "2024-04-01"},
		{"45292", "2024-01-01"},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.input)
		if assert.True(t, ok, "ParseDate(%q) should succeed", tt.input) {
			assert.Equal(t, tt.want, got.Format("2006-01-02"), "ParseDate(%q)", tt.input)
			assert.Equal(t, 0, got.Hour(), "ParseDate(%q) keeps only the calendar date", tt.input)
		}
	}
}

func TestParseDate_Unparseable(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"N/A",
		"Opening Balance",
		"31-02-2024",
		"-5",
		"0",
		"3000000",
		"2024/13/45",
	} {
		_, ok := ParseDate(input)
		assert.False(t, ok, "ParseDate(%q) should fail", input)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
		state AmountState
	}{
		{"1000", "1000", AmountParsed},
		{"1,00,000.50", "100000.50", AmountParsed},
		{"₹ 250", "250", AmountParsed},
		{"Rs. 1,200", "1200", AmountParsed},
		{"INR 12.5", "12.5", AmountParsed},
		{"(75.00)", "-75", AmountParsed},
		{"0", "0", AmountParsed},
		{"", "0", AmountEmpty},
		{"   ", "0", AmountEmpty},
		{"abc", "0", AmountInvalid},
		{"12abc", "0", AmountInvalid},
		{"₹", "0", AmountInvalid},
		{"1.5e3", "1500", AmountParsed},
		{"999999999999999", "999999999999999", AmountParsed},
		{"0.30000000000000004", "0.30000000000000004", AmountParsed},
		{"1e30000000", "0", AmountInvalid},
		{"1e-30000000", "0", AmountInvalid},
		{"0e99999999", "0", AmountInvalid},
		{"1000000000000000", "0", AmountInvalid},
		{"(1e2000000000)", "0", AmountInvalid},
	}
	for _, tt := range tests {
		got := ParseAmount(tt.input)
		assert.Equal(t, tt.state, got.State, "ParseAmount(%q) state", tt.input)
		assert.True(t, got.Value.Equal(dec(tt.want)), "ParseAmount(%q) = %s, want %s", tt.input, got.Value, tt.want)
	}
}

func TestParseAmount_DistinguishesZeroFromFailure(t *testing.T) {
	zero := ParseAmount("0.00")
	bad := ParseAmount("n/a")

	assert.True(t, zero.Value.Equal(bad.Value))
	assert.Equal(t, AmountParsed, zero.State)
	assert.Equal(t, AmountInvalid, bad.State)
	assert.Equal(t, AmountEmpty, ParseAmount("").State)
}
