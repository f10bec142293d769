package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDemoEvent(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
	}{
		{
			name:      "morning",
			now:       time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
			wantStart: time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC),
		},
		{
			name:      "after 14:00",
			now:       time.Date(2026, 10, 14, 23, 59, 59, 0, time.UTC),
			wantStart: time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC),
		},
		{
			name:      "year rollover",
			now:       time.Date(2026, 12, 31, 12, 0, 0, 0, time.UTC),
			wantStart: time.Date(2027, 1, 1, 14, 0, 0, 0, time.UTC),
		},
		{
			name:      "leap day",
			now:       time.Date(2028, 2, 28, 12, 0, 0, 0, time.UTC),
			wantStart: time.Date(2028, 2, 29, 14, 0, 0, 0, time.UTC),
		},
		{
			// 01:00 on the 15th in UTC+5 is still the 14th in UTC.
			name:      "local zone ahead of UTC",
			now:       time.Date(2026, 10, 15, 1, 0, 0, 0, time.FixedZone("UTC+5", 5*3600)),
			wantStart: time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := DemoEvent(tt.now)

			assert.Equal(t, tt.wantStart, ev.Start)
			assert.Equal(t, time.Hour, ev.End.Sub(ev.Start))
			assert.Equal(t, "UTC", ev.TimeZone)
			assert.Equal(t, DemoSummary, ev.Summary)
			assert.Equal(t, DemoDescription, ev.Description)
		})
	}
}
