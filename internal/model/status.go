package model

import (
	"fmt"
	"strings"
)

// BookingStatus is the lifecycle state of a room booking request.
// PENDING is the only non-terminal value.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingApproved  BookingStatus = "APPROVED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// ParseBookingStatus converts raw request text into a BookingStatus.
// Matching is case-insensitive; unknown values are rejected.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case BookingPending, BookingApproved, BookingRejected, BookingCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown booking status: %q", s)
	}
}

// Terminal reports whether no further status change is allowed.
func (s BookingStatus) Terminal() bool { return s != BookingPending }

// Resolving reports whether s is a valid target for deciding a pending request.
func (s BookingStatus) Resolving() bool {
	return s == BookingApproved || s == BookingRejected || s == BookingCancelled
}

// BookingStatuses lists every value in display order.
func BookingStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingApproved, BookingRejected, BookingCancelled}
}

// MaintenanceStatus is the state of a maintenance request.  Any value may
// follow any other; COMPLETED and CANCELLED are terminal only by convention.
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "PENDING"
	MaintenanceInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceCompleted  MaintenanceStatus = "COMPLETED"
	MaintenanceCancelled  MaintenanceStatus = "CANCELLED"
)

// ParseMaintenanceStatus converts raw request text into a MaintenanceStatus.
func ParseMaintenanceStatus(s string) (MaintenanceStatus, error) {
	switch st := MaintenanceStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case MaintenancePending, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown maintenance status: %q", s)
	}
}

// MaintenanceStatuses lists every value in display order.
func MaintenanceStatuses() []MaintenanceStatus {
	return []MaintenanceStatus{MaintenancePending, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled}
}
