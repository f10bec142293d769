// Package calendar is a thin client for the two Google Calendar API calls the
// setup tool makes: listing the user's calendars and inserting an event.
//
// Every call is traced as google.calendar.<operation> and counted in the
// Google API operation metrics.
//
//	ts := manager.TokenSource(ctx, cred)
//	client, err := calendar.NewClient(ctx, ts, metrics)
//	if err != nil {
//	    return err
//	}
//	calendars, err := client.ListCalendars(ctx)
package calendar
