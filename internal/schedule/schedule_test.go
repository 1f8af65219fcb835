// ABOUTME: Tests for the business hours <-> Week transform
// ABOUTME: Covers defaults for missing days, ordering, round trips, and validation

package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestToSchedule_SingleOpenDay(t *testing.T) {
	hours := []BusinessHour{
		{DayOfWeek: 2, IsClosed: false, OpenTime: str("10:00:00"), CloseTime: str("19:00:00")},
	}

	week := ToSchedule(hours)

	require.Len(t, week, DaysPerWeek)
	for day, ds := range week {
		assert.Equal(t, day, ds.DayOfWeek)
		assert.Equal(t, DayNames[day], ds.Name)
		if day == 2 {
			assert.True(t, ds.IsOpen)
			assert.Equal(t, "10:00", ds.OpenTime)
			assert.Equal(t, "19:00", ds.CloseTime)
			continue
		}
		assert.False(t, ds.IsOpen, "day %d should default to closed", day)
		assert.Equal(t, DefaultOpenTime, ds.OpenTime)
		assert.Equal(t, DefaultCloseTime, ds.CloseTime)
	}
}

func TestToSchedule_EmptyInput(t *testing.T) {
	week := ToSchedule(nil)

	for day, ds := range week {
		assert.Equal(t, day, ds.DayOfWeek)
		assert.False(t, ds.IsOpen)
		assert.Equal(t, "09:00", ds.OpenTime)
		assert.Equal(t, "18:00", ds.CloseTime)
		assert.Empty(t, ds.Error)
	}
}

func TestToSchedule_OrderIndependent(t *testing.T) {
	hours := []BusinessHour{
		{DayOfWeek: 6, IsClosed: true},
		{DayOfWeek: 0, OpenTime: str("08:30:00"), CloseTime: str("17:15:00")},
		{DayOfWeek: 3, OpenTime: str("11:00:00"), CloseTime: str("20:00:00")},
	}
	reversed := []BusinessHour{hours[2], hours[1], hours[0]}

	assert.Equal(t, ToSchedule(hours), ToSchedule(reversed))

	week := ToSchedule(hours)
	assert.True(t, week[0].IsOpen)
	assert.Equal(t, "08:30", week[0].OpenTime)
	assert.Equal(t, "17:15", week[0].CloseTime)
	assert.False(t, week[6].IsOpen)
}

func TestToSchedule_NullTimesOnOpenDay(t *testing.T) {
	week := ToSchedule([]BusinessHour{{DayOfWeek: 4, IsClosed: false}})

	assert.True(t, week[4].IsOpen)
	assert.Equal(t, DefaultOpenTime, week[4].OpenTime)
	assert.Equal(t, DefaultCloseTime, week[4].CloseTime)
}

func TestToSchedule_IgnoresOutOfRangeAndDuplicates(t *testing.T) {
	hours := []BusinessHour{
		{DayOfWeek: 9, OpenTime: str("01:00:00"), CloseTime: str("02:00:00")},
		{DayOfWeek: 1, OpenTime: str("07:00:00"), CloseTime: str("15:00:00")},
		{DayOfWeek: 1, IsClosed: true},
	}

	week := ToSchedule(hours)

	assert.True(t, week[1].IsOpen, "first record for a day wins")
	assert.Equal(t, "07:00", week[1].OpenTime)
}

func TestToWire(t *testing.T) {
	var week Week
	for day := range week {
		week[day] = DaySchedule{DayOfWeek: day, OpenTime: "09:00", CloseTime: "18:00"}
	}
	week[1].IsOpen = true
	week[1].OpenTime = "10:30"
	week[1].CloseTime = "21:00"

	hours := ToWire(week)

	require.Len(t, hours, DaysPerWeek)
	for day, h := range hours {
		assert.Equal(t, day, h.DayOfWeek)
		if day == 1 {
			assert.False(t, h.IsClosed)
			require.NotNil(t, h.OpenTime)
			require.NotNil(t, h.CloseTime)
			assert.Equal(t, "10:30:00", *h.OpenTime)
			assert.Equal(t, "21:00:00", *h.CloseTime)
			continue
		}
		assert.True(t, h.IsClosed)
		assert.Nil(t, h.OpenTime)
		assert.Nil(t, h.CloseTime)
	}
}

func TestToWire_UsesIndexForDay(t *testing.T) {
	var week Week
	week[3] = DaySchedule{DayOfWeek: 99, IsOpen: true, OpenTime: "09:00", CloseTime: "10:00"}

	hours := ToWire(week)

	assert.Equal(t, 3, hours[3].DayOfWeek)
}

func TestRoundTrip_PreservesClosedAndTimes(t *testing.T) {
	in := []BusinessHour{
		{DayOfWeek: 5, OpenTime: str("12:00:45"), CloseTime: str("16:30:00")},
		{DayOfWeek: 0, IsClosed: true},
		{DayOfWeek: 2, OpenTime: str("10:00:00"), CloseTime: str("19:00:00")},
	}

	out := ToWire(ToSchedule(in))

	for _, h := range in {
		got := out[h.DayOfWeek]
		assert.Equal(t, h.IsClosed, got.IsClosed, "day %d", h.DayOfWeek)
		if h.IsClosed {
			continue
		}
		assert.Equal(t, (*h.OpenTime)[:5]+":00", *got.OpenTime)
		assert.Equal(t, (*h.CloseTime)[:5]+":00", *got.CloseTime)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		day     DaySchedule
		wantErr string
	}{
		{"closed day ignores times", DaySchedule{IsOpen: false, OpenTime: "bad", CloseTime: "bad"}, ""},
		{"valid open day", DaySchedule{IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"}, ""},
		{"bad open time", DaySchedule{IsOpen: true, OpenTime: "9am", CloseTime: "18:00"}, ErrInvalidOpenTime.Error()},
		{"bad close time", DaySchedule{IsOpen: true, OpenTime: "09:00", CloseTime: "25:00"}, ErrInvalidCloseTime.Error()},
		{"single digit open hour", DaySchedule{IsOpen: true, OpenTime: "9:00", CloseTime: "18:00"}, ErrInvalidOpenTime.Error()},
		{"single digit close minute", DaySchedule{IsOpen: true, OpenTime: "09:00", CloseTime: "18:0"}, ErrInvalidCloseTime.Error()},
		{"seconds not allowed", DaySchedule{IsOpen: true, OpenTime: "09:00:00", CloseTime: "18:00"}, ErrInvalidOpenTime.Error()},
		{"close before open", DaySchedule{IsOpen: true, OpenTime: "18:00", CloseTime: "09:00"}, ErrCloseBeforeOpen.Error()},
		{"close equals open", DaySchedule{IsOpen: true, OpenTime: "10:00", CloseTime: "10:00"}, ErrCloseBeforeOpen.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := ToSchedule(nil)
			week[0] = tt.day

			ok := Validate(&week)

			assert.Equal(t, tt.wantErr == "", ok)
			assert.Equal(t, tt.wantErr, week[0].Error)
		})
	}
}

func TestValidate_ClearsPreviousErrors(t *testing.T) {
	week := ToSchedule(nil)
	week[2].IsOpen = true
	week[2].OpenTime = "20:00"
	require.False(t, Validate(&week))

	week[2].OpenTime = "08:00"
	assert.True(t, Validate(&week))
	assert.Empty(t, week[2].Error)
}
