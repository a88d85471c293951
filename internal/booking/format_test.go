package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatPtBR(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "morning single digit hour",
			in:   time.Date(2030, time.January, 2, 8, 30, 0, 0, time.UTC),
			want: "dia 02 de janeiro, às 8:30h",
		},
		{
			name: "afternoon",
			in:   time.Date(2030, time.September, 15, 14, 0, 0, 0, time.UTC),
			want: "dia 15 de setembro, às 14:00h",
		},
		{
			name: "march keeps the cedilla",
			in:   time.Date(2030, time.March, 1, 9, 5, 0, 0, time.UTC),
			want: "dia 01 de março, às 9:05h",
		},
		{
			name: "end of year",
			in:   time.Date(2030, time.December, 31, 23, 59, 0, 0, time.UTC),
			want: "dia 31 de dezembro, às 23:59h",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPtBR(tt.in))
		})
	}
}

func TestStartOfHour(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	in := time.Date(2030, time.May, 10, 16, 45, 12, 999, loc)

	got := StartOfHour(in)

	assert.Equal(t, time.Date(2030, time.May, 10, 16, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}
