package model

import (
	"strings"
	"time"
)

// User represents a user profile document. Membership state for a
// (user, event) pair is stored redundantly on both the user and the
// event document; the two sides must agree eventually.
type User struct {
	// UID unique identifier of the user. Immutable after creation.
	UID string `json:"uid"`

	// Username is the public handle of the user.
	Username string `json:"username"`

	// FirstName is the user first name.
	FirstName string `json:"first_name"`

	// LastName is the user last name.
	LastName string `json:"last_name"`

	// Email is the user email
	Email string `json:"email"`

	// PhoneNumber is the user phone number.
	PhoneNumber string `json:"phone_number"`

	// Country is the user country
	Country string `json:"country"`

	// PasswordHash contains the password hash.
	PasswordHash string `json:"password_hash,omitempty"`

	// Following are the UIDs of the users this user follows.
	Following []string `json:"following"`

	// Followers are the UIDs of the users following this user.
	Followers []string `json:"followers"`

	// PendingRequests are the event-ids of pending invitations. At most
	// one entry per event-id.
	PendingRequests []string `json:"pending_requests"`

	// JoinedEvents are the event-ids the user attends.
	JoinedEvents []string `json:"joined_events"`

	// MyEvents are the event-ids the user holds a ticket for or created.
	MyEvents []string `json:"my_events"`

	// MyFavorites are the event-ids the user favorited.
	MyFavorites []string `json:"my_favorites"`

	// Tags are the user interest tags, in preference order.
	Tags []string `json:"tags"`

	// Rating is the aggregate rating the user received as an event creator.
	Rating Rating `json:"rating"`

	// CreatedAt is the time at which the user was created in the system.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the time at which the user was last updated
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Rating is a running (sum, count) aggregate of received ratings.
type Rating struct {
	Sum   int64 `json:"sum"`
	Count int64 `json:"count"`
}

// MatchesQuery reports whether the user matches a free-text search query.
func (u *User) MatchesQuery(query string) bool {
	combinations := []string{
		u.Username,
		u.FirstName + u.LastName,
		u.FirstName + " " + u.LastName,
	}
	for _, c := range combinations {
		if containsFold(c, query) {
			return true
		}
	}
	return false
}

// Location is a named geographic point.
type Location struct {
	// Latitude of the location.
	Latitude float64 `json:"latitude"`

	// Longitude of the location.
	Longitude float64 `json:"longitude"`

	// Name is the display name of the location.
	Name string `json:"name"`
}

// Event represents an event document.
type Event struct {
	// EventID unique identifier of the event.
	EventID string `json:"event_id"`

	// CreatorID is the UID of the event creator. The creator is always a
	// participant.
	CreatorID string `json:"creator_id"`

	// Title of the event.
	Title string `json:"title"`

	// Description of the event.
	Description string `json:"description"`

	// Location of the event.
	Location Location `json:"location"`

	// Date is the calendar day of the event (midnight UTC).
	Date time.Time `json:"date"`

	// Time is the wall-clock start time, HH:MM.
	Time string `json:"time"`

	// Price of the event.
	Price float64 `json:"price"`

	// URL is the event website or ticket link.
	URL string `json:"url"`

	// PendingParticipants are the UIDs of invited users that did not
	// answer yet. Disjoint from Participants at all times.
	PendingParticipants []string `json:"pending_participants"`

	// Participants are the UIDs of joined users.
	Participants []string `json:"participants"`

	// VisibleToIfPrivate are the UIDs that can see the event when it is
	// private.
	VisibleToIfPrivate []string `json:"visible_to_if_private"`

	// MaxParticipants is the participant capacity. Zero means unbounded.
	MaxParticipants int `json:"max_participants"`

	// Public is true when the event is visible to everyone.
	Public bool `json:"public"`

	// Tags of the event.
	Tags []string `json:"tags"`

	// Images of the event.
	Images []string `json:"images"`

	// NViews counts how many times the event was viewed. Never negative.
	NViews int64 `json:"n_views"`

	// Ratings maps a rater UID to the rating it gave the event.
	Ratings map[string]int `json:"ratings"`

	// CreatedAt is the time at which the event was created in the system.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the time at which the event was last updated
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// MatchesQuery reports whether the event matches a free-text search query.
func (e *Event) MatchesQuery(query string) bool {
	combinations := []string{
		e.Title + e.Description,
		e.Title + " " + e.Description,
		e.CreatorID,
		e.Location.Name,
	}
	for _, c := range combinations {
		if containsFold(c, query) {
			return true
		}
	}
	return false
}

// IsPast reports whether the event day is strictly before the given time's day.
func (e *Event) IsPast(now time.Time) bool {
	y1, m1, d1 := e.Date.UTC().Date()
	y2, m2, d2 := now.UTC().Date()
	day := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}

// HasJoined reports whether the user is a participant according to the
// event document alone. Cross-document membership is the conjunction of
// this and the user document's JoinedEvents.
func (e *Event) HasJoined(uid string) bool {
	for _, p := range e.Participants {
		if p == uid {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
