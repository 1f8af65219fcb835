// Package schedule converts weekly business hours between the API wire format and the
// per-day schedule shown to operators.
//
// # Wire Format
//
// The API returns one BusinessHour per weekday, with times as "HH:MM:SS" strings and
// null times for closed days:
//
//	{"day_of_week": 2, "open_time": "10:00:00", "close_time": "19:00:00", "is_closed": false}
//
// Day 0 is Monday, day 6 is Sunday.
//
// # Week
//
// A Week always holds exactly seven DaySchedule values in day order. Days missing from
// the wire collection are closed with 09:00-18:00 placeholder times so an operator can
// open them without typing times first.
//
//	week := schedule.ToSchedule(hours)
//	week[5].IsOpen = true
//	if schedule.Validate(&week) {
//	    hours = schedule.ToWire(week)
//	}
package schedule
