// Package setup runs the two smoke tests of the calendar integration:
// listing the user's calendars and inserting a demo event.
//
// Each check obtains a credential first and converts every failure into a
// Result whose Kind tells the caller what went wrong, so no error escapes
// to the command layer unprinted.
package setup
