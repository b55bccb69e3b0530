package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-03-07 is a Friday.
var friday = time.Date(2025, 3, 7, 15, 30, 0, 0, time.UTC)

func TestGenerate_SkipsWeekendsAndToday(t *testing.T) {
	got := Generate(friday, 7)

	// Sat and Sun skipped: Mon..Fri of the next week remain.
	require.Len(t, got, 5*6)
	assert.Equal(t, "2025-03-10", got[0].Date)
	assert.Equal(t, "Monday, March 10, 2025", got[0].DateFormatted)
	assert.Equal(t, "09:00", got[0].Time)
	assert.Equal(t, "Morning - 9:00 AM", got[0].Label)
	assert.Equal(t, "2025-03-14", got[len(got)-1].Date)
	assert.Equal(t, "16:00", got[len(got)-1].Time)

	for _, s := range got {
		day, err := time.Parse("2006-01-02", s.Date)
		require.NoError(t, err)
		assert.NotEqual(t, time.Saturday, day.Weekday())
		assert.NotEqual(t, time.Sunday, day.Weekday())
	}
}

func TestGenerate_FromMonday(t *testing.T) {
	monday := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	got := Generate(monday, 7)

	var dates []string
	for _, s := range got {
		if len(dates) == 0 || dates[len(dates)-1] != s.Date {
			dates = append(dates, s.Date)
		}
	}
	assert.Equal(t, []string{"2025-03-11", "2025-03-12", "2025-03-13", "2025-03-14", "2025-03-17"}, dates)
	assert.Len(t, got, 5*6)
	assert.Equal(t, "Monday, March 17, 2025", got[len(got)-1].DateFormatted)
}

func TestGenerate_IsPure(t *testing.T) {
	assert.Equal(t, Generate(friday, 3), Generate(friday, 3))
	assert.Empty(t, Generate(friday, 0))
}

func TestTimesAndLabels(t *testing.T) {
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}, Times())

	label, ok := LabelFor("15:00")
	assert.True(t, ok)
	assert.Equal(t, "Afternoon - 3:00 PM", label)

	_, ok = LabelFor("12:00")
	assert.False(t, ok)
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"9", "09:00", true},
		{"9am", "09:00", true},
		{"9 am", "09:00", true},
		{"9:00", "09:00", true},
		{"9:00am", "09:00", true},
		{"09:00", "09:00", true},
		{"10 AM", "10:00", true},
		{"11", "11:00", true},
		{"2", "14:00", true},
		{"2pm", "14:00", true},
		{"2 pm", "14:00", true},
		{"2:00", "14:00", true},
		{"2:00 p.m.", "14:00", true},
		{"14:00", "14:00", true},
		{"3", "15:00", true},
		{"4pm", "16:00", true},
		{"16:00", "16:00", true},
		{"13:00", "", false},
		{"12pm", "", false},
		{"9:30", "", false},
		{"9pm", "", false},
		{"noon", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeTime(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpokenDate(t *testing.T) {
	assert.Equal(t, "Monday, March 10", SpokenDate("2025-03-10"))
	assert.Equal(t, "next tuesday", SpokenDate("next tuesday"))
	assert.True(t, IsValidDate("2025-03-10"))
	assert.False(t, IsValidDate("2025-02-30"))
}

func TestFormatForSpeech(t *testing.T) {
	assert.Equal(t, NoSlotsSentence, FormatForSpeech(nil, 6))

	all := Generate(friday, 7)

	got := FormatForSpeech(all, 6)
	assert.Equal(t, "On Monday, March 10, 2025, I have Morning - 9:00 AM, Morning - 10:00 AM, Morning - 11:00 AM, Afternoon - 2:00 PM, Afternoon - 3:00 PM and Afternoon - 4:00 PM.", got)

	mixed := []Slot{all[5], all[6], all[7]}
	got = FormatForSpeech(mixed, 6)
	assert.Equal(t, "On Monday, March 10, 2025, I have Afternoon - 4:00 PM. On Tuesday, March 11, 2025, I have Morning - 9:00 AM and Morning - 10:00 AM.", got)
}
