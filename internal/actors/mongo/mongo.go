package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB is a mongo adapter for the document store. Users and events
// live in two collections keyed by their natural string ids; there is
// no cross-collection transaction, which is what the callers expect.
type MongoDB struct {
	userCollection  *mongo.Collection
	eventCollection *mongo.Collection
	nowFunc         func() time.Time
}

// MongoDBArgs are the mandatory arguments for the creation of a MongoDB.
type MongoDBArgs struct {
	// UserCollection is the mongo collection holding user documents.
	UserCollection *mongo.Collection

	// EventCollection is the mongo collection holding event documents.
	EventCollection *mongo.Collection
}

// MongoDBOptArgs are the optional arguments for building a MongoDB.
type MongoDBOptArgs = func(*MongoDB)

// WithNowFunc can be used to override the nowFunc. Useful for testing.
func WithNowFunc(nowFunc func() time.Time) MongoDBOptArgs {
	return func(m *MongoDB) {
		m.nowFunc = nowFunc
	}
}

// NewMongoDB creates a new MongoDB.
func NewMongoDB(args MongoDBArgs, optArgs ...MongoDBOptArgs) (*MongoDB, error) {
	m := &MongoDB{
		userCollection:  args.UserCollection,
		eventCollection: args.EventCollection,
		nowFunc:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range optArgs {
		opt(m)
	}
	return m, nil
}

// GetUser returns the user document. It returns model.ErrNotFound if the
// document does not exist.
func (m *MongoDB) GetUser(ctx context.Context, uid string) (*model.User, error) {
	doc := new(userDoc)
	err := m.userCollection.FindOne(ctx, bson.D{{Key: "_id", Value: uid}}).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user := userDocToModel(*doc)
	return &user, nil
}

// PutUser creates or overwrites the user document.
func (m *MongoDB) PutUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("nil user passed to put method")
	}
	doc := m.userToDoc(user)
	opts := options.Replace().SetUpsert(true)
	if _, err := m.userCollection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.UID}}, doc, opts); err != nil {
		return err
	}
	user.CreatedAt = doc.CreatedAt
	user.UpdatedAt = doc.UpdatedAt
	return nil
}

// UpdateUserFields applies the non-nil fields of the patch to the user
// document. It returns model.ErrNotFound if the document does not exist.
func (m *MongoDB) UpdateUserFields(ctx context.Context, uid string, patch *model.UserPatch) error {
	if patch == nil || patch.IsZero() {
		return nil
	}
	res, err := m.userCollection.UpdateByID(ctx, uid, userPatchToUpdate(patch, m.nowFunc()))
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteUser removes the user document.
func (m *MongoDB) DeleteUser(ctx context.Context, uid string) error {
	_, err := m.userCollection.DeleteOne(ctx, bson.D{{Key: "_id", Value: uid}})
	return err
}

// ListUsers lists users matching the query parameters.
func (m *MongoDB) ListUsers(ctx context.Context, query ports.ListUsersQuery) ([]model.User, error) {
	filters := bson.M{}
	if query.FollowingContains != "" {
		filters["following"] = query.FollowingContains
	}

	var docs []userDoc
	cursor, err := m.userCollection.Find(ctx, filters, listOptions(query.Limit, query.Offset))
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]model.User, len(docs))
	for i, doc := range docs {
		users[i] = userDocToModel(doc)
	}
	return users, nil
}

// GetEvent returns the event document. It returns model.ErrNotFound if
// the document does not exist.
func (m *MongoDB) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	doc := new(eventDoc)
	err := m.eventCollection.FindOne(ctx, bson.D{{Key: "_id", Value: eventID}}).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	event := eventDocToModel(*doc)
	return &event, nil
}

// PutEvent creates or overwrites the event document.
func (m *MongoDB) PutEvent(ctx context.Context, event *model.Event) error {
	if event == nil {
		return errors.New("nil event passed to put method")
	}
	doc := m.eventToDoc(event)
	opts := options.Replace().SetUpsert(true)
	if _, err := m.eventCollection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.EventID}}, doc, opts); err != nil {
		return err
	}
	event.CreatedAt = doc.CreatedAt
	event.UpdatedAt = doc.UpdatedAt
	return nil
}

// UpdateEventFields applies the non-nil fields of the patch to the event
// document. It returns model.ErrNotFound if the document does not exist.
func (m *MongoDB) UpdateEventFields(ctx context.Context, eventID string, patch *model.EventPatch) error {
	if patch == nil {
		return nil
	}
	update := eventPatchToUpdate(patch, m.nowFunc())
	res, err := m.eventCollection.UpdateByID(ctx, eventID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteEvent removes the event document.
func (m *MongoDB) DeleteEvent(ctx context.Context, eventID string) error {
	_, err := m.eventCollection.DeleteOne(ctx, bson.D{{Key: "_id", Value: eventID}})
	return err
}

// ListEvents lists events matching the query parameters.
func (m *MongoDB) ListEvents(ctx context.Context, query ports.ListEventsQuery) ([]model.Event, error) {
	filters := bson.M{}
	if query.PublicOnly {
		filters["public"] = true
	}
	if query.CreatorID != "" {
		filters["creator_id"] = query.CreatorID
	}

	var docs []eventDoc
	cursor, err := m.eventCollection.Find(ctx, filters, listOptions(query.Limit, query.Offset))
	if err != nil {
		return nil, err
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]model.Event, len(docs))
	for i, doc := range docs {
		events[i] = eventDocToModel(doc)
	}
	return events, nil
}

func listOptions(limit, offset uint32) *options.FindOptions {
	opts := new(options.FindOptions)
	if limit != uint32(0) {
		l := int64(limit)
		opts.Limit = &l
	}
	if offset != uint32(0) {
		s := int64(offset)
		opts.Skip = &s
	}
	return opts.SetSort(bson.D{{Key: "created_at", Value: 1}})
}

func (m *MongoDB) userToDoc(user *model.User) *userDoc {
	doc := &userDoc{
		UID:             user.UID,
		Username:        user.Username,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		Email:           user.Email,
		PhoneNumber:     user.PhoneNumber,
		Country:         user.Country,
		PasswordHash:    user.PasswordHash,
		Following:       user.Following,
		Followers:       user.Followers,
		PendingRequests: user.PendingRequests,
		JoinedEvents:    user.JoinedEvents,
		MyEvents:        user.MyEvents,
		MyFavorites:     user.MyFavorites,
		Tags:            user.Tags,
		RatingSum:       user.Rating.Sum,
		RatingCount:     user.Rating.Count,
		CreatedAt:       user.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = m.nowFunc()
	}
	doc.UpdatedAt = m.nowFunc()
	return doc
}

func userDocToModel(doc userDoc) model.User {
	return model.User{
		UID:             doc.UID,
		Username:        doc.Username,
		FirstName:       doc.FirstName,
		LastName:        doc.LastName,
		Email:           doc.Email,
		PhoneNumber:     doc.PhoneNumber,
		Country:         doc.Country,
		PasswordHash:    doc.PasswordHash,
		Following:       doc.Following,
		Followers:       doc.Followers,
		PendingRequests: doc.PendingRequests,
		JoinedEvents:    doc.JoinedEvents,
		MyEvents:        doc.MyEvents,
		MyFavorites:     doc.MyFavorites,
		Tags:            doc.Tags,
		Rating:          model.Rating{Sum: doc.RatingSum, Count: doc.RatingCount},
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

func userPatchToUpdate(patch *model.UserPatch, now time.Time) bson.D {
	toUpdate := bson.D{}
	if patch.Username != nil {
		toUpdate = append(toUpdate, bson.E{Key: "username", Value: *patch.Username})
	}
	if patch.FirstName != nil {
		toUpdate = append(toUpdate, bson.E{Key: "first_name", Value: *patch.FirstName})
	}
	if patch.LastName != nil {
		toUpdate = append(toUpdate, bson.E{Key: "last_name", Value: *patch.LastName})
	}
	if patch.Email != nil {
		toUpdate = append(toUpdate, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.PhoneNumber != nil {
		toUpdate = append(toUpdate, bson.E{Key: "phone_number", Value: *patch.PhoneNumber})
	}
	if patch.Country != nil {
		toUpdate = append(toUpdate, bson.E{Key: "country", Value: *patch.Country})
	}
	if patch.PasswordHash != nil {
		toUpdate = append(toUpdate, bson.E{Key: "password_hash", Value: *patch.PasswordHash})
	}
	if patch.Following != nil {
		toUpdate = append(toUpdate, bson.E{Key: "following", Value: *patch.Following})
	}
	if patch.Followers != nil {
		toUpdate = append(toUpdate, bson.E{Key: "followers", Value: *patch.Followers})
	}
	if patch.PendingRequests != nil {
		toUpdate = append(toUpdate, bson.E{Key: "pending_requests", Value: *patch.PendingRequests})
	}
	if patch.JoinedEvents != nil {
		toUpdate = append(toUpdate, bson.E{Key: "joined_events", Value: *patch.JoinedEvents})
	}
	if patch.MyEvents != nil {
		toUpdate = append(toUpdate, bson.E{Key: "my_events", Value: *patch.MyEvents})
	}
	if patch.MyFavorites != nil {
		toUpdate = append(toUpdate, bson.E{Key: "my_favorites", Value: *patch.MyFavorites})
	}
	if patch.Tags != nil {
		toUpdate = append(toUpdate, bson.E{Key: "tags", Value: *patch.Tags})
	}
	if patch.Rating != nil {
		toUpdate = append(toUpdate, bson.E{Key: "rating_sum", Value: patch.Rating.Sum})
		toUpdate = append(toUpdate, bson.E{Key: "rating_count", Value: patch.Rating.Count})
	}
	toUpdate = append(toUpdate, bson.E{Key: "updated_at", Value: now})
	return bson.D{{Key: "$set", Value: toUpdate}}
}

func (m *MongoDB) eventToDoc(event *model.Event) *eventDoc {
	doc := &eventDoc{
		EventID:             event.EventID,
		CreatorID:           event.CreatorID,
		Title:               event.Title,
		Description:         event.Description,
		Latitude:            event.Location.Latitude,
		Longitude:           event.Location.Longitude,
		LocationName:        event.Location.Name,
		Date:                event.Date,
		Time:                event.Time,
		Price:               event.Price,
		URL:                 event.URL,
		PendingParticipants: event.PendingParticipants,
		Participants:        event.Participants,
		VisibleToIfPrivate:  event.VisibleToIfPrivate,
		MaxParticipants:     event.MaxParticipants,
		Public:              event.Public,
		Tags:                event.Tags,
		Images:              event.Images,
		NViews:              event.NViews,
		Ratings:             event.Ratings,
		CreatedAt:           event.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = m.nowFunc()
	}
	doc.UpdatedAt = m.nowFunc()
	return doc
}

func eventDocToModel(doc eventDoc) model.Event {
	return model.Event{
		EventID:     doc.EventID,
		CreatorID:   doc.CreatorID,
		Title:       doc.Title,
		Description: doc.Description,
		Location: model.Location{
			Latitude:  doc.Latitude,
			Longitude: doc.Longitude,
			Name:      doc.LocationName,
		},
		Date:                doc.Date,
		Time:                doc.Time,
		Price:               doc.Price,
		URL:                 doc.URL,
		PendingParticipants: doc.PendingParticipants,
		Participants:        doc.Participants,
		VisibleToIfPrivate:  doc.VisibleToIfPrivate,
		MaxParticipants:     doc.MaxParticipants,
		Public:              doc.Public,
		Tags:                doc.Tags,
		Images:              doc.Images,
		NViews:              doc.NViews,
		Ratings:             doc.Ratings,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}
}

func eventPatchToUpdate(patch *model.EventPatch, now time.Time) bson.D {
	toUpdate := bson.D{}
	if patch.Title != nil {
		toUpdate = append(toUpdate, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Description != nil {
		toUpdate = append(toUpdate, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Location != nil {
		toUpdate = append(toUpdate, bson.E{Key: "latitude", Value: patch.Location.Latitude})
		toUpdate = append(toUpdate, bson.E{Key: "longitude", Value: patch.Location.Longitude})
		toUpdate = append(toUpdate, bson.E{Key: "location_name", Value: patch.Location.Name})
	}
	if patch.Date != nil {
		toUpdate = append(toUpdate, bson.E{Key: "date", Value: *patch.Date})
	}
	if patch.Time != nil {
		toUpdate = append(toUpdate, bson.E{Key: "time", Value: *patch.Time})
	}
	if patch.Price != nil {
		toUpdate = append(toUpdate, bson.E{Key: "price", Value: *patch.Price})
	}
	if patch.URL != nil {
		toUpdate = append(toUpdate, bson.E{Key: "url", Value: *patch.URL})
	}
	if patch.PendingParticipants != nil {
		toUpdate = append(toUpdate, bson.E{Key: "pending_participants", Value: *patch.PendingParticipants})
	}
	if patch.Participants != nil {
		toUpdate = append(toUpdate, bson.E{Key: "participants", Value: *patch.Participants})
	}
	if patch.VisibleToIfPrivate != nil {
		toUpdate = append(toUpdate, bson.E{Key: "visible_to_if_private", Value: *patch.VisibleToIfPrivate})
	}
	if patch.MaxParticipants != nil {
		toUpdate = append(toUpdate, bson.E{Key: "max_participants", Value: *patch.MaxParticipants})
	}
	if patch.Public != nil {
		toUpdate = append(toUpdate, bson.E{Key: "public", Value: *patch.Public})
	}
	if patch.Tags != nil {
		toUpdate = append(toUpdate, bson.E{Key: "tags", Value: *patch.Tags})
	}
	if patch.Images != nil {
		toUpdate = append(toUpdate, bson.E{Key: "images", Value: *patch.Images})
	}
	if patch.NViews != nil {
		toUpdate = append(toUpdate, bson.E{Key: "n_views", Value: *patch.NViews})
	}
	if patch.Ratings != nil {
		toUpdate = append(toUpdate, bson.E{Key: "ratings", Value: *patch.Ratings})
	}
	toUpdate = append(toUpdate, bson.E{Key: "updated_at", Value: now})
	return bson.D{{Key: "$set", Value: toUpdate}}
}

type userDoc struct {
	// UID unique identifier of the user, used as the document key.
	UID string `bson:"_id"`

	// Username is the public handle of the user.
	Username string `bson:"username"`

	// FirstName is the user first name.
	FirstName string `bson:"first_name"`

	// LastName is the user last name.
	LastName string `bson:"last_name"`

	// Email is the user email
	Email string `bson:"email"`

	// PhoneNumber is the user phone number.
	PhoneNumber string `bson:"phone_number"`

	// Country is the user country
	Country string `bson:"country"`

	// PasswordHash contains the password hash.
	PasswordHash string `bson:"password_hash"`

	// Following are the UIDs of the users this user follows.
	Following []string `bson:"following"`

	// Followers are the UIDs of the users following this user.
	Followers []string `bson:"followers"`

	// PendingRequests are the event-ids of pending invitations.
	PendingRequests []string `bson:"pending_requests"`

	// JoinedEvents are the event-ids the user attends.
	JoinedEvents []string `bson:"joined_events"`

	// MyEvents are the event-ids the user created.
	MyEvents []string `bson:"my_events"`

	// MyFavorites are the event-ids the user favorited.
	MyFavorites []string `bson:"my_favorites"`

	// Tags are the user interest tags.
	Tags []string `bson:"tags"`

	// RatingSum is the sum part of the aggregate creator rating.
	RatingSum int64 `bson:"rating_sum"`

	// RatingCount is the count part of the aggregate creator rating.
	RatingCount int64 `bson:"rating_count"`

	// CreatedAt is the time at which the user was created in the system.
	CreatedAt time.Time `bson:"created_at"`

	// UpdatedAt is the time at which the user was last updated
	UpdatedAt time.Time `bson:"updated_at"`
}

type eventDoc struct {
	// EventID unique identifier of the event, used as the document key.
	EventID string `bson:"_id"`

	// CreatorID is the UID of the event creator.
	CreatorID string `bson:"creator_id"`

	// Title of the event.
	Title string `bson:"title"`

	// Description of the event.
	Description string `bson:"description"`

	// Latitude of the event location.
	Latitude float64 `bson:"latitude"`

	// Longitude of the event location.
	Longitude float64 `bson:"longitude"`

	// LocationName is the display name of the event location.
	LocationName string `bson:"location_name"`

	// Date is the calendar day of the event.
	Date time.Time `bson:"date"`

	// Time is the wall-clock start time, HH:MM.
	Time string `bson:"time"`

	// Price of the event.
	Price float64 `bson:"price"`

	// URL is the event website or ticket link.
	URL string `bson:"url"`

	// PendingParticipants are the UIDs of invited users.
	PendingParticipants []string `bson:"pending_participants"`

	// Participants are the UIDs of joined users.
	Participants []string `bson:"participants"`

	// VisibleToIfPrivate are the UIDs that can see the event when private.
	VisibleToIfPrivate []string `bson:"visible_to_if_private"`

	// MaxParticipants is the participant capacity. Zero means unbounded.
	MaxParticipants int `bson:"max_participants"`

	// Public is true when the event is visible to everyone.
	Public bool `bson:"public"`

	// Tags of the event.
	Tags []string `bson:"tags"`

	// Images of the event.
	Images []string `bson:"images"`

	// NViews counts how many times the event was viewed.
	NViews int64 `bson:"n_views"`

	// Ratings maps a rater UID to the rating it gave the event.
	Ratings map[string]int `bson:"ratings"`

	// CreatedAt is the time at which the event was created in the system.
	CreatedAt time.Time `bson:"created_at"`

	// UpdatedAt is the time at which the event was last updated
	UpdatedAt time.Time `bson:"updated_at"`
}
