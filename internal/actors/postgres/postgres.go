package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
)

// PostgresDB is a postgres adapter for the document store. Each user and
// event is one row keyed by its natural string id; the set-valued fields
// are text arrays and the ratings map is a jsonb column.
type PostgresDB struct {
	db      *pg.DB
	nowFunc func() time.Time
}

// PostgresDBArgs are the mandatory arguments for the creation of a PostgresDB.
type PostgresDBArgs struct {
	// DB is a postgres database handle
	DB *pg.DB
}

// PostgresDBOptArgs are the optional arguments for building a PostgresDB.
type PostgresDBOptArgs = func(*PostgresDB)

// WithNowFunc can be used to override the nowFunc. Useful for testing.
func WithNowFunc(nowFunc func() time.Time) PostgresDBOptArgs {
	return func(p *PostgresDB) {
		p.nowFunc = nowFunc
	}
}

// NewPostgresDB creates a new PostgresDB.
func NewPostgresDB(args PostgresDBArgs, optArgs ...PostgresDBOptArgs) (*PostgresDB, error) {
	p := &PostgresDB{db: args.DB, nowFunc: func() time.Time { return time.Now().UTC() }}
	for _, opt := range optArgs {
		opt(p)
	}
	return p, nil
}

// GetUser returns the user document. It returns model.ErrNotFound if the
// row does not exist.
func (p *PostgresDB) GetUser(ctx context.Context, uid string) (*model.User, error) {
	row := &userRow{UID: uid}
	err := p.db.ModelContext(ctx, row).WherePK().Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user := userRowToModel(*row)
	return &user, nil
}

// PutUser creates or overwrites the user row.
func (p *PostgresDB) PutUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("nil user passed to put method")
	}
	row := p.userToRow(user)
	_, err := p.db.ModelContext(ctx, row).
		OnConflict("(uid) DO UPDATE").
		Set("username = EXCLUDED.username, first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, email = EXCLUDED.email, phone_number = EXCLUDED.phone_number, country = EXCLUDED.country, password_hash = EXCLUDED.password_hash, following = EXCLUDED.following, followers = EXCLUDED.followers, pending_requests = EXCLUDED.pending_requests, joined_events = EXCLUDED.joined_events, my_events = EXCLUDED.my_events, my_favorites = EXCLUDED.my_favorites, tags = EXCLUDED.tags, rating_sum = EXCLUDED.rating_sum, rating_count = EXCLUDED.rating_count, updated_at = EXCLUDED.updated_at").
		Insert()
	if err != nil {
		return err
	}
	user.CreatedAt = row.CreatedAt
	user.UpdatedAt = row.UpdatedAt
	return nil
}

// UpdateUserFields applies the non-nil fields of the patch to the user
// row. It returns model.ErrNotFound if the row does not exist.
func (p *PostgresDB) UpdateUserFields(ctx context.Context, uid string, patch *model.UserPatch) error {
	if patch == nil || patch.IsZero() {
		return nil
	}

	conn := p.db.Conn()
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := &userRow{UID: uid}
	err = tx.ModelContext(ctx, row).WherePK().Select()
	if errors.Is(err, pg.ErrNoRows) {
		return model.ErrNotFound
	}
	if err != nil {
		return err
	}

	applyUserPatch(row, patch)
	row.UpdatedAt = p.nowFunc()
	if _, err := tx.ModelContext(ctx, row).WherePK().Update(); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteUser removes the user row.
func (p *PostgresDB) DeleteUser(ctx context.Context, uid string) error {
	_, err := p.db.ModelContext(ctx, &userRow{UID: uid}).WherePK().Delete()
	if errors.Is(err, pg.ErrNoRows) {
		return nil
	}
	return err
}

// ListUsers lists users matching the query parameters.
func (p *PostgresDB) ListUsers(ctx context.Context, query ports.ListUsersQuery) ([]model.User, error) {
	var rows []userRow
	q := p.db.ModelContext(ctx, &rows).Order("created_at ASC")

	if query.FollowingContains != "" {
		q = q.Where("? = ANY (following)", query.FollowingContains)
	}
	if query.Limit != uint32(0) {
		q = q.Limit(int(query.Limit))
	}
	if query.Offset != uint32(0) {
		q = q.Offset(int(query.Offset))
	}
	if err := q.Select(); err != nil && !errors.Is(err, pg.ErrNoRows) {
		return nil, err
	}

	users := make([]model.User, len(rows))
	for i, row := range rows {
		users[i] = userRowToModel(row)
	}
	return users, nil
}

// GetEvent returns the event document. It returns model.ErrNotFound if
// the row does not exist.
func (p *PostgresDB) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	row := &eventRow{EventID: eventID}
	err := p.db.ModelContext(ctx, row).WherePK().Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	event := eventRowToModel(*row)
	return &event, nil
}

// PutEvent creates or overwrites the event row.
func (p *PostgresDB) PutEvent(ctx context.Context, event *model.Event) error {
	if event == nil {
		return errors.New("nil event passed to put method")
	}
	row := p.eventToRow(event)
	_, err := p.db.ModelContext(ctx, row).
		OnConflict("(event_id) DO UPDATE").
		Set("creator_id = EXCLUDED.creator_id, title = EXCLUDED.title, description = EXCLUDED.description, latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, location_name = EXCLUDED.location_name, date = EXCLUDED.date, time = EXCLUDED.time, price = EXCLUDED.price, url = EXCLUDED.url, pending_participants = EXCLUDED.pending_participants, participants = EXCLUDED.participants, visible_to_if_private = EXCLUDED.visible_to_if_private, max_participants = EXCLUDED.max_participants, public = EXCLUDED.public, tags = EXCLUDED.tags, images = EXCLUDED.images, n_views = EXCLUDED.n_views, ratings = EXCLUDED.ratings, updated_at = EXCLUDED.updated_at").
		Insert()
	if err != nil {
		return err
	}
	event.CreatedAt = row.CreatedAt
	event.UpdatedAt = row.UpdatedAt
	return nil
}

// UpdateEventFields applies the non-nil fields of the patch to the event
// row. It returns model.ErrNotFound if the row does not exist.
func (p *PostgresDB) UpdateEventFields(ctx context.Context, eventID string, patch *model.EventPatch) error {
	if patch == nil {
		return nil
	}

	conn := p.db.Conn()
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := &eventRow{EventID: eventID}
	err = tx.ModelContext(ctx, row).WherePK().Select()
	if errors.Is(err, pg.ErrNoRows) {
		return model.ErrNotFound
	}
	if err != nil {
		return err
	}

	applyEventPatch(row, patch)
	row.UpdatedAt = p.nowFunc()
	if _, err := tx.ModelContext(ctx, row).WherePK().Update(); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteEvent removes the event row.
func (p *PostgresDB) DeleteEvent(ctx context.Context, eventID string) error {
	_, err := p.db.ModelContext(ctx, &eventRow{EventID: eventID}).WherePK().Delete()
	if errors.Is(err, pg.ErrNoRows) {
		return nil
	}
	return err
}

// ListEvents lists events matching the query parameters.
func (p *PostgresDB) ListEvents(ctx context.Context, query ports.ListEventsQuery) ([]model.Event, error) {
	var rows []eventRow
	q := p.db.ModelContext(ctx, &rows).Order("created_at ASC")

	if query.PublicOnly {
		q = q.Where("public = TRUE")
	}
	if query.CreatorID != "" {
		q = q.Where("creator_id = ?", query.CreatorID)
	}
	if query.Limit != uint32(0) {
		q = q.Limit(int(query.Limit))
	}
	if query.Offset != uint32(0) {
		q = q.Offset(int(query.Offset))
	}
	if err := q.Select(); err != nil && !errors.Is(err, pg.ErrNoRows) {
		return nil, err
	}

	events := make([]model.Event, len(rows))
	for i, row := range rows {
		events[i] = eventRowToModel(row)
	}
	return events, nil
}

func (p *PostgresDB) userToRow(user *model.User) *userRow {
	row := &userRow{
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
	if row.CreatedAt.IsZero() {
		row.CreatedAt = p.nowFunc()
	}
	row.UpdatedAt = p.nowFunc()
	return row
}

func userRowToModel(row userRow) model.User {
	return model.User{
		UID:             row.UID,
		Username:        row.Username,
		FirstName:       row.FirstName,
		LastName:        row.LastName,
		Email:           row.Email,
		PhoneNumber:     row.PhoneNumber,
		Country:         row.Country,
		PasswordHash:    row.PasswordHash,
		Following:       row.Following,
		Followers:       row.Followers,
		PendingRequests: row.PendingRequests,
		JoinedEvents:    row.JoinedEvents,
		MyEvents:        row.MyEvents,
		MyFavorites:     row.MyFavorites,
		Tags:            row.Tags,
		Rating:          model.Rating{Sum: row.RatingSum, Count: row.RatingCount},
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func applyUserPatch(row *userRow, patch *model.UserPatch) {
	if patch.Username != nil {
		row.Username = *patch.Username
	}
	if patch.FirstName != nil {
		row.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		row.LastName = *patch.LastName
	}
	if patch.Email != nil {
		row.Email = *patch.Email
	}
	if patch.PhoneNumber != nil {
		row.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Country != nil {
		row.Country = *patch.Country
	}
	if patch.PasswordHash != nil {
		row.PasswordHash = *patch.PasswordHash
	}
	if patch.Following != nil {
		row.Following = *patch.Following
	}
	if patch.Followers != nil {
		row.Followers = *patch.Followers
	}
	if patch.PendingRequests != nil {
		row.PendingRequests = *patch.PendingRequests
	}
	if patch.JoinedEvents != nil {
		row.JoinedEvents = *patch.JoinedEvents
	}
	if patch.MyEvents != nil {
		row.MyEvents = *patch.MyEvents
	}
	if patch.MyFavorites != nil {
		row.MyFavorites = *patch.MyFavorites
	}
	if patch.Tags != nil {
		row.Tags = *patch.Tags
	}
	if patch.Rating != nil {
		row.RatingSum = patch.Rating.Sum
		row.RatingCount = patch.Rating.Count
	}
}

func (p *PostgresDB) eventToRow(event *model.Event) *eventRow {
	row := &eventRow{
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
	if row.CreatedAt.IsZero() {
		row.CreatedAt = p.nowFunc()
	}
	row.UpdatedAt = p.nowFunc()
	return row
}

func eventRowToModel(row eventRow) model.Event {
	return model.Event{
		EventID:     row.EventID,
		CreatorID:   row.CreatorID,
		Title:       row.Title,
		Description: row.Description,
		Location: model.Location{
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
			Name:      row.LocationName,
		},
		Date:                row.Date,
		Time:                row.Time,
		Price:               row.Price,
		URL:                 row.URL,
		PendingParticipants: row.PendingParticipants,
		Participants:        row.Participants,
		VisibleToIfPrivate:  row.VisibleToIfPrivate,
		MaxParticipants:     row.MaxParticipants,
		Public:              row.Public,
		Tags:                row.Tags,
		Images:              row.Images,
		NViews:              row.NViews,
		Ratings:             row.Ratings,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func applyEventPatch(row *eventRow, patch *model.EventPatch) {
	if patch.Title != nil {
		row.Title = *patch.Title
	}
	if patch.Description != nil {
		row.Description = *patch.Description
	}
	if patch.Location != nil {
		row.Latitude = patch.Location.Latitude
		row.Longitude = patch.Location.Longitude
		row.LocationName = patch.Location.Name
	}
	if patch.Date != nil {
		row.Date = *patch.Date
	}
	if patch.Time != nil {
		row.Time = *patch.Time
	}
	if patch.Price != nil {
		row.Price = *patch.Price
	}
	if patch.URL != nil {
		row.URL = *patch.URL
	}
	if patch.PendingParticipants != nil {
		row.PendingParticipants = *patch.PendingParticipants
	}
	if patch.Participants != nil {
		row.Participants = *patch.Participants
	}
	if patch.VisibleToIfPrivate != nil {
		row.VisibleToIfPrivate = *patch.VisibleToIfPrivate
	}
	if patch.MaxParticipants != nil {
		row.MaxParticipants = *patch.MaxParticipants
	}
	if patch.Public != nil {
		row.Public = *patch.Public
	}
	if patch.Tags != nil {
		row.Tags = *patch.Tags
	}
	if patch.Images != nil {
		row.Images = *patch.Images
	}
	if patch.NViews != nil {
		row.NViews = *patch.NViews
	}
	if patch.Ratings != nil {
		row.Ratings = *patch.Ratings
	}
}

type userRow struct {
	tableName struct{} `pg:"venn.users"`

	// UID unique identifier of the user, used as the primary key.
	UID string `pg:"uid,pk"`

	// Username is the public handle of the user.
	Username string `pg:"username,use_zero"`

	// FirstName is the user first name.
	FirstName string `pg:"first_name,use_zero"`

	// LastName is the user last name.
	LastName string `pg:"last_name,use_zero"`

	// Email is the user email
	Email string `pg:"email,use_zero"`

	// PhoneNumber is the user phone number.
	PhoneNumber string `pg:"phone_number,use_zero"`

	// Country is the user country
	Country string `pg:"country,use_zero"`

	// PasswordHash contains the password hash.
	PasswordHash string `pg:"password_hash,use_zero"`

	// Following are the UIDs of the users this user follows.
	Following []string `pg:"following,array"`

	// Followers are the UIDs of the users following this user.
	Followers []string `pg:"followers,array"`

	// PendingRequests are the event-ids of pending invitations.
	PendingRequests []string `pg:"pending_requests,array"`

	// JoinedEvents are the event-ids the user attends.
	JoinedEvents []string `pg:"joined_events,array"`

	// MyEvents are the event-ids the user created.
	MyEvents []string `pg:"my_events,array"`

	// MyFavorites are the event-ids the user favorited.
	MyFavorites []string `pg:"my_favorites,array"`

	// Tags are the user interest tags.
	Tags []string `pg:"tags,array"`

	// RatingSum is the sum part of the aggregate creator rating.
	RatingSum int64 `pg:"rating_sum,use_zero"`

	// RatingCount is the count part of the aggregate creator rating.
	RatingCount int64 `pg:"rating_count,use_zero"`

	// CreatedAt is the time at which the user was created in the system.
	CreatedAt time.Time `pg:"created_at"`

	// UpdatedAt is the time at which the user was last updated
	UpdatedAt time.Time `pg:"updated_at"`
}

type eventRow struct {
	tableName struct{} `pg:"venn.events"`

	// EventID unique identifier of the event, used as the primary key.
	EventID string `pg:"event_id,pk"`

	// CreatorID is the UID of the event creator.
	CreatorID string `pg:"creator_id,use_zero"`

	// Title of the event.
	Title string `pg:"title,use_zero"`

	// Description of the event.
	Description string `pg:"description,use_zero"`

	// Latitude of the event location.
	Latitude float64 `pg:"latitude,use_zero"`

	// Longitude of the event location.
	Longitude float64 `pg:"longitude,use_zero"`

	// LocationName is the display name of the event location.
	LocationName string `pg:"location_name,use_zero"`

	// Date is the calendar day of the event.
	Date time.Time `pg:"date"`

	// Time is the wall-clock start time, HH:MM.
	Time string `pg:"time,use_zero"`

	// Price of the event.
	Price float64 `pg:"price,use_zero"`

	// URL is the event website or ticket link.
	URL string `pg:"url,use_zero"`

	// PendingParticipants are the UIDs of invited users.
	PendingParticipants []string `pg:"pending_participants,array"`

	// Participants are the UIDs of joined users.
	Participants []string `pg:"participants,array"`

	// VisibleToIfPrivate are the UIDs that can see the event when private.
	VisibleToIfPrivate []string `pg:"visible_to_if_private,array"`

	// MaxParticipants is the participant capacity. Zero means unbounded.
	MaxParticipants int `pg:"max_participants,use_zero"`

	// Public is true when the event is visible to everyone.
	Public bool `pg:"public,use_zero"`

	// Tags of the event.
	Tags []string `pg:"tags,array"`

	// Images of the event.
	Images []string `pg:"images,array"`

	// NViews counts how many times the event was viewed.
	NViews int64 `pg:"n_views,use_zero"`

	// Ratings maps a rater UID to the rating it gave the event.
	Ratings map[string]int `pg:"ratings,type:jsonb"`

	// CreatedAt is the time at which the event was created in the system.
	CreatedAt time.Time `pg:"created_at"`

	// UpdatedAt is the time at which the event was last updated
	UpdatedAt time.Time `pg:"updated_at"`
}
