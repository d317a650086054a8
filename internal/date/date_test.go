package date

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 10, d.Day())
	assert.Equal(t, "2024-03-10", d.String())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("10/03/2024")
	assert.Error(t, err)
}

func TestYearMonth(t *testing.T) {
	assert.Equal(t, "2024-03", MustParse("2024-03-31").YearMonth())
	assert.Equal(t, "2024-12", MustParse("2024-12-01").YearMonth())
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name  string
		start string
		n     int
		want  string
	}{
		{"same day next month", "2024-01-05", 1, "2024-02-05"},
		{"two months", "2024-01-05", 2, "2024-03-05"},
		{"year rollover", "2024-11-15", 3, "2025-02-15"},
		{"negative", "2024-03-10", -1, "2024-02-10"},
		{"end of month overflow", "2024-01-31", 1, "2024-03-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustParse(tt.start).AddMonths(tt.n)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestMonthBounds(t *testing.T) {
	d := MustParse("2024-02-14")
	assert.Equal(t, "2024-02-01", d.MonthStart().String())
	assert.Equal(t, "2024-02-29", d.MonthEnd().String())
}

func TestOrdering(t *testing.T) {
	a := MustParse("2024-03-10")
	b := MustParse("2024-03-15")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
}

func TestJSONRoundTrip(t *testing.T) {
	d := MustParse("2024-07-04")
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-07-04"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
}

func TestScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-03-10"))
	assert.Equal(t, MustParse("2024-03-10"), d)

	require.NoError(t, d.Scan([]byte("2025-01-01")))
	assert.Equal(t, MustParse("2025-01-01"), d)

	assert.Error(t, d.Scan(42))
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 30, 0, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, "2024-03-10", Today(now).String())
}
