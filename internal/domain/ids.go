package domain

import (
	"fmt"
	"time"
)

// UserID identifies a user for the lifetime of a session. Its format is an
// opaque random token fabricated at login/signup.
type UserID string

// TripID is an internal identifier for a trip record.
type TripID string

// OptionID identifies a proposal option within a trip.
type OptionID string

// ItemID identifies a packing-list item within a trip.
type ItemID string

// NewTripID derives a trip id from creation time. Trip ids are
// timestamp-based rather than random tokens.
func NewTripID(now time.Time) TripID {
	return TripID(fmt.Sprintf("trip-%d", now.UnixMilli()))
}

// NewItemID derives a packing-item id from creation time.
func NewItemID(now time.Time) ItemID {
	return ItemID(fmt.Sprintf("item-%d", now.UnixMilli()))
}

// NewOptionID derives an option id from creation time, prefixed per option
// kind ("date-", "dest-", "trans-").
func NewOptionID(kind OptionKind, now time.Time) OptionID {
	return OptionID(fmt.Sprintf("%s-%d", kind.idPrefix(), now.UnixMilli()))
}
