package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateLoginID(t *testing.T) {
	joined := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		first  string
		last   string
		serial int
		want   string
	}{
		{"regular names", "Hana", "Kusuma", 3, "OIHAKU202503"},
		{"lowercase input", "ravi", "patel", 12, "OIRAPA202512"},
		{"short names padded", "A", "", 1, "OIAXXX202501"},
		{"serial beyond two digits", "Ida", "Ng", 101, "OIIDNG2025101"},
		{"surrounding spaces", "  jo ", " li", 7, "OIJOLI202507"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateLoginID(tt.first, tt.last, joined, tt.serial))
		})
	}
}
