package domain

import (
	"fmt"
	"time"
)

type TripStatus string

const (
	TripStatusPlanning  TripStatus = "planning"
	TripStatusVoting    TripStatus = "voting"
	TripStatusConfirmed TripStatus = "confirmed"
)

func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusPlanning, TripStatusVoting, TripStatusConfirmed:
		return true
	}
	return false
}

// OptionKind distinguishes the three proposal lists a trip carries.
type OptionKind string

const (
	OptionKindDate        OptionKind = "dates"
	OptionKindDestination OptionKind = "destinations"
	OptionKindTransport   OptionKind = "transport"
)

func (k OptionKind) Valid() bool {
	switch k {
	case OptionKindDate, OptionKindDestination, OptionKindTransport:
		return true
	}
	return false
}

func (k OptionKind) idPrefix() string {
	switch k {
	case OptionKindDate:
		return "date"
	case OptionKindDestination:
		return "dest"
	case OptionKindTransport:
		return "trans"
	default:
		return "opt"
	}
}

// ParseOptionKind maps the wire form to an OptionKind.
func ParseOptionKind(s string) (OptionKind, error) {
	k := OptionKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown option kind %q", s)
	}
	return k, nil
}

// Member is a user's participation record within a trip. The creator is
// always an admin; a trip may hold more than one admin.
type Member struct {
	ID      UserID  `json:"id"`
	Name    string  `json:"name"`
	Avatar  *string `json:"avatar,omitempty"`
	IsAdmin bool    `json:"isAdmin"`
	Role    string  `json:"role,omitempty"`
}

// Vote records that a user voted for an option.
type Vote struct {
	UserID UserID `json:"userId"`
}

// Option is a proposed value (date, destination, or transport) with the
// votes cast for it. Proposal lists are append-only; identical values are
// not deduplicated.
type Option struct {
	ID    OptionID `json:"id"`
	Value string   `json:"value"`
	Votes []Vote   `json:"votes"`
}

// HasVote reports whether the given user already voted for this option.
func (o Option) HasVote(id UserID) bool {
	for _, v := range o.Votes {
		if v.UserID == id {
			return true
		}
	}
	return false
}

type PackingCategory string

const (
	CategoryEssentials  PackingCategory = "essentials"
	CategoryClothing    PackingCategory = "clothing"
	CategoryElectronics PackingCategory = "electronics"
	CategoryToiletries  PackingCategory = "toiletries"
	CategoryDocuments   PackingCategory = "documents"
	CategoryMisc        PackingCategory = "misc"
)

func (c PackingCategory) Valid() bool {
	switch c {
	case CategoryEssentials, CategoryClothing, CategoryElectronics,
		CategoryToiletries, CategoryDocuments, CategoryMisc:
		return true
	}
	return false
}

func ParsePackingCategory(s string) (PackingCategory, error) {
	c := PackingCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown packing category %q", s)
	}
	return c, nil
}

// PackingItem is an entry on a trip's shared packing list. Items are created
// via explicit add and mutated only via pin toggling.
type PackingItem struct {
	ID          ItemID          `json:"id"`
	Name        string          `json:"name"`
	Category    PackingCategory `json:"category"`
	AddedBy     UserID          `json:"addedBy"`
	IsPinned    bool            `json:"isPinned"`
	IsEssential bool            `json:"isEssential"`
	IsChecked   bool            `json:"isChecked"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Trip is the shared planning unit: members, proposal lists, and a packing
// list, joined by invite code.
type Trip struct {
	ID          TripID     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      TripStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`

	// InviteCode grants join access. Matching is case-insensitive.
	InviteCode string `json:"inviteCode"`

	Members []Member `json:"members"`

	DateOptions        []Option `json:"dateOptions"`
	DestinationOptions []Option `json:"destinationOptions"`
	TransportOptions   []Option `json:"transportOptions"`

	PackingList []PackingItem `json:"packingList"`

	SelectedDate        *string `json:"selectedDate"`
	SelectedDestination *string `json:"selectedDestination"`
}

// HasMember reports whether the user already belongs to the trip. Member ids
// are unique within a trip; joins check this before appending.
func (t Trip) HasMember(id UserID) bool {
	for _, m := range t.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Options returns the proposal list for the given kind.
func (t Trip) Options(kind OptionKind) []Option {
	switch kind {
	case OptionKindDate:
		return t.DateOptions
	case OptionKindDestination:
		return t.DestinationOptions
	case OptionKindTransport:
		return t.TransportOptions
	default:
		return nil
	}
}

// WithOptions returns a copy of the trip with the proposal list for the
// given kind replaced. The receiver is not mutated.
func (t Trip) WithOptions(kind OptionKind, opts []Option) Trip {
	switch kind {
	case OptionKindDate:
		t.DateOptions = opts
	case OptionKindDestination:
		t.DestinationOptions = opts
	case OptionKindTransport:
		t.TransportOptions = opts
	}
	return t
}

// Clone returns a deep copy of the trip so callers can hand out trips
// without sharing backing slices.
func (t Trip) Clone() Trip {
	cp := t
	if t.Members != nil {
		cp.Members = make([]Member, len(t.Members))
		for i, m := range t.Members {
			cp.Members[i] = m
			cp.Members[i].Avatar = cloneStringPtr(m.Avatar)
		}
	}
	cp.DateOptions = cloneOptions(t.DateOptions)
	cp.DestinationOptions = cloneOptions(t.DestinationOptions)
	cp.TransportOptions = cloneOptions(t.TransportOptions)
	if t.PackingList != nil {
		cp.PackingList = append([]PackingItem(nil), t.PackingList...)
	}
	cp.SelectedDate = cloneStringPtr(t.SelectedDate)
	cp.SelectedDestination = cloneStringPtr(t.SelectedDestination)
	return cp
}

func cloneOptions(opts []Option) []Option {
	if opts == nil {
		return nil
	}
	out := make([]Option, len(opts))
	for i, o := range opts {
		out[i] = o
		if o.Votes != nil {
			out[i].Votes = append([]Vote(nil), o.Votes...)
		}
	}
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
