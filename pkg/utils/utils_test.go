package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBase64Key(t *testing.T) {
	key, err := GenerateBase64Key(32)
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	_, err = GenerateBase64Key(16)
	assert.Error(t, err)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name         string
		page, limit  string
		wantP, wantL int64
	}{
		{"defaults", "", "", 1, 20},
		{"explicit", "3", "10", 3, 10},
		{"capped", "1", "500", 1, 50},
		{"garbage", "x", "-2", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, l := ParsePagination(tt.page, tt.limit, 20, 50)
			assert.Equal(t, tt.wantP, p)
			assert.Equal(t, tt.wantL, l)
		})
	}
}

func TestStartOfDayAndParseDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	ts := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC) // 01:30 next day in IST
	day := StartOfDay(ts, loc)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, loc), day)

	parsed, err := ParseDate("2025-03-11", loc)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(day))
	assert.Equal(t, "2025-03-11", FormatDate(parsed))

	_, err = ParseDate("11/03/2025", loc)
	assert.Error(t, err)
}

func TestWorkdayCalendar(t *testing.T) {
	cal, err := NewWorkdayCalendar("FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR", time.UTC)
	require.NoError(t, err)

	monday := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)
	assert.True(t, cal.IsWorkday(monday))
	assert.False(t, cal.IsWorkday(saturday))

	days := cal.Workdays(monday, monday.AddDate(0, 0, 6))
	assert.Len(t, days, 5)

	_, err = NewWorkdayCalendar("FREQ=NEVER", time.UTC)
	assert.Error(t, err)
	assert.NoError(t, ValidateWorkdayRule("FREQ=DAILY"))
}

type sample struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,hasuppercase"`
}

func TestValidateStruct(t *testing.T) {
	assert.Empty(t, ValidateStruct(sample{Email: "a@b.co", Password: "Secret"}))

	errs := ValidateStruct(sample{Email: "nope", Password: "lower"})
	require.Len(t, errs, 2)
	assert.Equal(t, "Email", errs[0].Field)
	assert.Equal(t, "Invalid email format.", errs[0].Msg)
	assert.Equal(t, "hasuppercase", errs[1].Tag)
}
