package market

import "testing"

func TestFallbackTable_Price(t *testing.T) {
	table := DefaultFallbackTable()

	tests := []struct {
		zip  string
		want float64
	}{
		{"75011", 500},
		{"75000", 500},
		{"75999", 500},
		{"13008", 300},
		{"03100", 100},
		{"76000", 100},
		{" 13001 ", 300},
		{"2A004", 100},
		{"", 100},
	}

	for _, tt := range tests {
		if got := table.Price(tt.zip); got != tt.want {
			t.Errorf("Price(%q) = %v, want %v", tt.zip, got, tt.want)
		}
	}
}
