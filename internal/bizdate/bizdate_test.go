package bizdate_test

import (
	"testing"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf_CrossesMidnightInJakarta(t *testing.T) {
	// 18:30 UTC on the 11th is 01:30 WIB on the 12th.
	d := bizdate.Of(time.Date(2026, 5, 11, 18, 30, 0, 0, time.UTC))
	assert.Equal(t, "2026-05-12", bizdate.Format(d))
	assert.Equal(t, "20260512", bizdate.Compact(d))
}

func TestParse(t *testing.T) {
	d, err := bizdate.Parse("2026-02-28")
	require.NoError(t, err)
	assert.True(t, d.Valid)

	_, err = bizdate.Parse("28/02/2026")
	assert.ErrorIs(t, err, bizdate.ErrInvalidDate)

	d, err = bizdate.ParseOptional("")
	require.NoError(t, err)
	assert.False(t, d.Valid)
	assert.Nil(t, bizdate.FormatPtr(d))
}

func TestMonthStartAndStartOfDay(t *testing.T) {
	d, _ := bizdate.Parse("2026-05-17")
	assert.Equal(t, "2026-05-01", bizdate.Format(bizdate.MonthStart(d)))

	start := bizdate.StartOfDay(d)
	assert.Equal(t, time.Date(2026, 5, 16, 17, 0, 0, 0, time.UTC), start.UTC())
}
