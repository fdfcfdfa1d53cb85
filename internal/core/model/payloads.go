package model

import "time"

// RegisterUserArgs contain the arguments of the Register method.
type RegisterUserArgs struct {
	// UID is the identity-provider id of the user. Generated when empty.
	UID string

	// Username is the public handle of the user.
	Username string

	// FirstName is the user first name.
	FirstName string

	// LastName is the user last name.
	LastName string

	// Email is the user email
	Email string

	// PhoneNumber is the user phone number.
	PhoneNumber string

	// Country is the user country
	Country string

	// Password is the user password.
	Password string

	// Tags are the user interest tags, in preference order.
	Tags []string
}

// CreateEventArgs contain the arguments of the CreateEvent method.
type CreateEventArgs struct {
	// EventID of the event. Generated when empty.
	EventID string

	// CreatorID is the UID of the creating user.
	CreatorID string

	// Title of the event.
	Title string

	// Description of the event.
	Description string

	// Location of the event.
	Location Location

	// Date is the calendar day of the event.
	Date time.Time

	// Time is the wall-clock start time, HH:MM.
	Time string

	// Price of the event.
	Price float64

	// URL is the event website or ticket link.
	URL string

	// Participants are UIDs joined from the start. The creator is added
	// if absent.
	Participants []string

	// PendingParticipants are UIDs invited from the start.
	PendingParticipants []string

	// VisibleToIfPrivate are the UIDs that can see the event when private.
	VisibleToIfPrivate []string

	// MaxParticipants is the participant capacity. Zero means unbounded.
	MaxParticipants int

	// Public is true when the event is visible to everyone.
	Public bool

	// Tags of the event.
	Tags []string

	// Images of the event.
	Images []string
}

// SearchResults contains the users and public events matching a search query.
type SearchResults struct {
	// Users matching the query.
	Users []User

	// Events matching the query.
	Events []Event
}
