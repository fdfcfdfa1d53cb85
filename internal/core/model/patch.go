package model

import "time"

// UserPatch is a merge-style partial update of a user document. Only the
// non-nil fields are written, so concurrent editors of disjoint fields do
// not overwrite each other. A pointer to an empty slice clears the field.
type UserPatch struct {
	Username        *string
	FirstName       *string
	LastName        *string
	Email           *string
	PhoneNumber     *string
	Country         *string
	PasswordHash    *string
	Following       *[]string
	Followers       *[]string
	PendingRequests *[]string
	JoinedEvents    *[]string
	MyEvents        *[]string
	MyFavorites     *[]string
	Tags            *[]string
	Rating          *Rating
}

// IsZero reports whether the patch carries no field at all.
func (p *UserPatch) IsZero() bool {
	return p == nil || *p == UserPatch{}
}

// EventPatch is a merge-style partial update of an event document.
type EventPatch struct {
	Title               *string
	Description         *string
	Location            *Location
	Date                *time.Time
	Time                *string
	Price               *float64
	URL                 *string
	PendingParticipants *[]string
	Participants        *[]string
	VisibleToIfPrivate  *[]string
	MaxParticipants     *int
	Public              *bool
	Tags                *[]string
	Images              *[]string
	NViews              *int64
	Ratings             *map[string]int
}
