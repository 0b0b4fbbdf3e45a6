package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventOverlaps(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{"inside", Event{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)}, true},
		{"ends at range start", Event{Start: day.Add(-time.Hour), End: day}, false},
		{"starts at range end", Event{Start: next, End: next.Add(time.Hour)}, false},
		{"spans range", Event{Start: day.Add(-time.Hour), End: next.Add(time.Hour)}, true},
		{"all day", Event{Start: day, End: next, AllDay: true}, true},
		{"zero length inside", Event{Start: day.Add(time.Hour), End: day.Add(time.Hour)}, true},
		{"zero length at end", Event{Start: next, End: next}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Overlaps(day, next))
		})
	}
}

func TestEventMatches(t *testing.T) {
	e := Event{Title: "Dentist", Notes: "Bring X-rays", Location: "Main Street"}

	assert.True(t, e.Matches("dent"))
	assert.True(t, e.Matches("X-RAYS"))
	assert.True(t, e.Matches("street"))
	assert.False(t, e.Matches("doctor"))
	assert.False(t, e.Matches("   "))
}

func TestNewEventValidate(t *testing.T) {
	start := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		ev    NewEvent
		field string
	}{
		{"valid", NewEvent{CalendarID: "c", Title: "x", Start: start, End: start.Add(time.Hour)}, ""},
		{"no calendar", NewEvent{Title: "x", Start: start, End: start}, "calendar"},
		{"blank title", NewEvent{CalendarID: "c", Title: "  ", Start: start, End: start}, "title"},
		{"no start", NewEvent{CalendarID: "c", Title: "x"}, "start"},
		{"inverted", NewEvent{CalendarID: "c", Title: "x", Start: start, End: start.Add(-time.Minute)}, "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			if assert.True(t, errors.As(err, &verr)) {
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}
}

func TestSortEvents(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "4", Title: "Late", Start: day.Add(15 * time.Hour)},
		{ID: "3", Title: "B", Start: day.Add(9 * time.Hour)},
		{ID: "2", Title: "A", Start: day.Add(9 * time.Hour)},
		{ID: "1", Title: "Holiday", Start: day, AllDay: true},
		{ID: "0", Title: "Midnight", Start: day},
	}

	SortEvents(events)

	var ids []string
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"1", "0", "2", "3", "4"}, ids)
}

func TestFilterCalendars(t *testing.T) {
	events := []Event{{ID: "a", CalendarID: "work"}, {ID: "b", CalendarID: "home"}}

	assert.Len(t, FilterCalendars(events, nil), 2)
	assert.Equal(t, []Event{{ID: "b", CalendarID: "home"}}, FilterCalendars(events, map[string]bool{"home": true}))
	assert.Empty(t, FilterCalendars(events, map[string]bool{}))
}

func TestStoreErrorUnwraps(t *testing.T) {
	err := storeErr("delete event", ErrReadOnly)
	assert.True(t, errors.Is(err, ErrReadOnly))
	assert.Equal(t, "delete event: calendar is read-only", err.Error())
	assert.Nil(t, storeErr("noop", nil))
}
