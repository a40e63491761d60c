package resolver

import (
	"errors"
	"testing"

	"mmove/internal/ledger"
)

func TestParseTimestampYear(t *testing.T) {
	tests := []struct {
		text    string
		want    ledger.Year
		wantErr bool
	}{
		{"1999-06-01", ledger.Resolved(1999), false},
		{" 1999-06-01 ", ledger.Resolved(1999), false},
		{"1999-06-01T10:00:00", ledger.Resolved(1999), false},
		{"1999", ledger.Resolved(1999), false},
		{"1999-06", ledger.Unknown(), false},
		{"1999-06-01-02", ledger.Unknown(), false},
		{"-5", ledger.Unknown(), false},
		{"0", ledger.Unknown(), false},
		{"0000-01-01", ledger.Unknown(), false},
		{"19x9", ledger.Unknown(), true},
		{"", ledger.Unknown(), true},
		{"abcd-ef-gh", ledger.Unknown(), true},
	}
	for _, tt := range tests {
		got, err := ParseTimestampYear(tt.text)
		if tt.wantErr != (err != nil) {
			t.Errorf("ParseTimestampYear(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrMalformedYear) {
			t.Errorf("ParseTimestampYear(%q) error = %v, want ErrMalformedYear", tt.text, err)
		}
		if got != tt.want {
			t.Errorf("ParseTimestampYear(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
