// Package calendar lists Google Calendar events for the handoff calendar
// scan. Recurring events are expanded into single instances and returned in
// start time order across all result pages.
package calendar
