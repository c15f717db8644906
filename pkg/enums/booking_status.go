package enums

import (
	"fmt"
	"strings"
)

// BookingStatus tracks the lifecycle of a booking (order).
type BookingStatus string

const (
	BookingStatusPending      BookingStatus = "pending"
	BookingStatusUnassigned   BookingStatus = "unassigned"
	BookingStatusAssigned     BookingStatus = "assigned"
	BookingStatusConfirmed    BookingStatus = "confirmed"
	BookingStatusRejected     BookingStatus = "rejected"
	BookingStatusCompleted    BookingStatus = "completed"
	BookingStatusNotCompleted BookingStatus = "not_completed"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusUnassigned,
	BookingStatusAssigned,
	BookingStatusConfirmed,
	BookingStatusRejected,
	BookingStatusCompleted,
	BookingStatusNotCompleted,
}

// String implements fmt.Stringer.
func (s BookingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BookingStatus.
func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition may leave this status.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCompleted, BookingStatusNotCompleted:
		return true
	}
	return false
}

// Normalize maps legacy stored values onto the canonical set. An empty
// status and "unassigned" both behave as pending.
func (s BookingStatus) Normalize() BookingStatus {
	if s == "" || s == BookingStatusUnassigned {
		return BookingStatusPending
	}
	return s
}

// ParseBookingStatus converts raw input into a BookingStatus. "accepted" is
// accepted as an alias of confirmed.
func ParseBookingStatus(value string) (BookingStatus, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "accepted" {
		return BookingStatusConfirmed, nil
	}
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
