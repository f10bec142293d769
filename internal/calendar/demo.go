package calendar

import "time"

// Demo event contents.
const (
	DemoSummary     = "Test Event - AI Calendar Agent"
	DemoDescription = "This is a test event created by the AI Calendar Agent"
)

// DemoEvent returns the sample event inserted by the setup check: one hour
// starting at 14:00 UTC on the UTC day after now.
func DemoEvent(now time.Time) EventInput {
	today := now.UTC()
	start := time.Date(today.Year(), today.Month(), today.Day()+1, 14, 0, 0, 0, time.UTC)

	return EventInput{
		Summary:     DemoSummary,
		Description: DemoDescription,
		Start:       start,
		End:         start.Add(time.Hour),
		TimeZone:    "UTC",
	}
}
