package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/venn-app/venn/internal/core/model"
	"github.com/venn-app/venn/internal/core/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBTestSuite struct {
	suite.Suite
	db           *mongo.Client
	users        *mongo.Collection
	events       *mongo.Collection
	mongoAdapter *MongoDB
}

var dummyTime = time.Now().Truncate(time.Second).UTC()

func (suite *MongoDBTestSuite) SetupSuite() {
	url := os.Getenv("MONGODB_URL")
	if url == "" {
		suite.T().Skip("MONGODB_URL not set; skipping mongo suite")
	}

	clientOptions := options.Client().ApplyURI(url)
	db, err := mongo.Connect(context.Background(), clientOptions)
	suite.Require().NoError(err)
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	suite.Require().NoError(db.Ping(timeoutCtx, nil))

	users := db.Database("venn").Collection("users")
	events := db.Database("venn").Collection("events")
	dummyTimeFunc := func() time.Time {
		return dummyTime
	}
	mongoAdapter, err := NewMongoDB(MongoDBArgs{UserCollection: users, EventCollection: events}, WithNowFunc(dummyTimeFunc))
	suite.Require().NoError(err)
	suite.mongoAdapter = mongoAdapter
	suite.db = db
	suite.users = users
	suite.events = events
}

func (suite *MongoDBTestSuite) SetupTest() {
	_, err := suite.users.DeleteMany(context.Background(), bson.D{})
	suite.Require().NoError(err)
	_, err = suite.events.DeleteMany(context.Background(), bson.D{})
	suite.Require().NoError(err)
}

func (suite *MongoDBTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.db.Disconnect(context.Background()))
}

func (suite *MongoDBTestSuite) TestPutAndGetUser() {
	user := &model.User{
		UID:          "user-1",
		Username:     "ada",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		Country:      "UK",
		Following:    []string{"user-2"},
		JoinedEvents: []string{"event-1"},
		Tags:         []string{"math"},
		Rating:       model.Rating{Sum: 9, Count: 2},
	}
	suite.Require().NoError(suite.mongoAdapter.PutUser(context.Background(), user))
	suite.Equal(dummyTime, user.CreatedAt)

	got, err := suite.mongoAdapter.GetUser(context.Background(), "user-1")
	suite.Require().NoError(err)
	suite.Equal(user.Username, got.Username)
	suite.Equal(user.Following, got.Following)
	suite.Equal(user.JoinedEvents, got.JoinedEvents)
	suite.Equal(user.Rating, got.Rating)

	// put overwrites the whole document
	user.Username = "lovelace"
	suite.Require().NoError(suite.mongoAdapter.PutUser(context.Background(), user))
	got, err = suite.mongoAdapter.GetUser(context.Background(), "user-1")
	suite.Require().NoError(err)
	suite.Equal("lovelace", got.Username)
}

func (suite *MongoDBTestSuite) TestGetUserNotFound() {
	_, err := suite.mongoAdapter.GetUser(context.Background(), "nope")
	suite.ErrorIs(err, model.ErrNotFound)
}

func (suite *MongoDBTestSuite) TestUpdateUserFields() {
	user := &model.User{
		UID:          "user-1",
		Username:     "ada",
		Country:      "UK",
		JoinedEvents: []string{"event-1"},
		Tags:         []string{"math", "music"},
	}
	suite.Require().NoError(suite.mongoAdapter.PutUser(context.Background(), user))

	joined := []string{"event-1", "event-2"}
	cleared := []string{}
	patch := &model.UserPatch{JoinedEvents: &joined, Tags: &cleared}
	suite.Require().NoError(suite.mongoAdapter.UpdateUserFields(context.Background(), "user-1", patch))

	got, err := suite.mongoAdapter.GetUser(context.Background(), "user-1")
	suite.Require().NoError(err)
	suite.Equal([]string{"event-1", "event-2"}, got.JoinedEvents)
	suite.Empty(got.Tags)
	// untouched fields survive
	suite.Equal("ada", got.Username)
	suite.Equal("UK", got.Country)
}

func (suite *MongoDBTestSuite) TestUpdateUserFieldsNotFound() {
	username := "ghost"
	err := suite.mongoAdapter.UpdateUserFields(context.Background(), "nope", &model.UserPatch{Username: &username})
	suite.ErrorIs(err, model.ErrNotFound)
}

func (suite *MongoDBTestSuite) TestDeleteUser() {
	suite.Require().NoError(suite.mongoAdapter.PutUser(context.Background(), &model.User{UID: "user-1"}))
	suite.Require().NoError(suite.mongoAdapter.DeleteUser(context.Background(), "user-1"))

	_, err := suite.mongoAdapter.GetUser(context.Background(), "user-1")
	suite.ErrorIs(err, model.ErrNotFound)

	// deleting a missing document is not an error
	suite.NoError(suite.mongoAdapter.DeleteUser(context.Background(), "user-1"))
}

func (suite *MongoDBTestSuite) TestListUsers() {
	existing := []*model.User{
		{UID: "u1", Username: "ada", Following: []string{"star"}, CreatedAt: dummyTime.Add(-10 * time.Minute)},
		{UID: "u2", Username: "grace", Following: []string{"star", "other"}, CreatedAt: dummyTime.Add(-5 * time.Minute)},
		{UID: "u3", Username: "alan", Following: []string{"other"}, CreatedAt: dummyTime.Add(-1 * time.Minute)},
	}
	for _, u := range existing {
		suite.Require().NoError(suite.mongoAdapter.PutUser(context.Background(), u))
	}

	tests := []struct {
		name         string
		query        ports.ListUsersQuery
		expectedUIDs []string
	}{
		{
			name:         "all users sorted by creation time",
			query:        ports.ListUsersQuery{},
			expectedUIDs: []string{"u1", "u2", "u3"},
		},
		{
			name:         "following filter",
			query:        ports.ListUsersQuery{FollowingContains: "star"},
			expectedUIDs: []string{"u1", "u2"},
		},
		{
			name:         "pagination",
			query:        ports.ListUsersQuery{Limit: 2, Offset: 2},
			expectedUIDs: []string{"u3"},
		},
		{
			name:         "offset out of range returns no item",
			query:        ports.ListUsersQuery{Limit: 2, Offset: 3},
			expectedUIDs: []string{},
		},
	}

	for _, test := range tests {
		suite.Run(test.name, func() {
			users, err := suite.mongoAdapter.ListUsers(context.Background(), test.query)
			suite.Require().NoError(err)
			uids := make([]string, len(users))
			for i, u := range users {
				uids[i] = u.UID
			}
			suite.Equal(test.expectedUIDs, uids)
		})
	}
}

func (suite *MongoDBTestSuite) TestPutAndGetEvent() {
	event := &model.Event{
		EventID:      "event-1",
		CreatorID:    "user-1",
		Title:        "Jazz night",
		Location:     model.Location{Latitude: 46.52, Longitude: 6.63, Name: "Lausanne"},
		Date:         dummyTime.Truncate(24 * time.Hour),
		Time:         "20:00",
		Participants: []string{"user-1"},
		Public:       true,
		Tags:         []string{"music"},
		NViews:       3,
		Ratings:      map[string]int{"user-2": 4},
	}
	suite.Require().NoError(suite.mongoAdapter.PutEvent(context.Background(), event))

	got, err := suite.mongoAdapter.GetEvent(context.Background(), "event-1")
	suite.Require().NoError(err)
	suite.Equal(event.Title, got.Title)
	suite.Equal(event.Location, got.Location)
	suite.Equal(event.Participants, got.Participants)
	suite.Equal(event.Ratings, got.Ratings)
	suite.Equal(int64(3), got.NViews)
}

func (suite *MongoDBTestSuite) TestUpdateEventFields() {
	event := &model.Event{
		EventID:             "event-1",
		CreatorID:           "user-1",
		Title:               "Jazz night",
		PendingParticipants: []string{"user-2"},
		Participants:        []string{"user-1"},
	}
	suite.Require().NoError(suite.mongoAdapter.PutEvent(context.Background(), event))

	// the accept transition: one write folds both membership field changes
	pending := []string{}
	participants := []string{"user-1", "user-2"}
	patch := &model.EventPatch{PendingParticipants: &pending, Participants: &participants}
	suite.Require().NoError(suite.mongoAdapter.UpdateEventFields(context.Background(), "event-1", patch))

	got, err := suite.mongoAdapter.GetEvent(context.Background(), "event-1")
	suite.Require().NoError(err)
	suite.Empty(got.PendingParticipants)
	suite.Equal([]string{"user-1", "user-2"}, got.Participants)
	suite.Equal("Jazz night", got.Title)
}

func (suite *MongoDBTestSuite) TestListEvents() {
	existing := []*model.Event{
		{EventID: "e1", CreatorID: "u1", Public: true, CreatedAt: dummyTime.Add(-10 * time.Minute)},
		{EventID: "e2", CreatorID: "u2", Public: false, CreatedAt: dummyTime.Add(-5 * time.Minute)},
		{EventID: "e3", CreatorID: "u1", Public: true, CreatedAt: dummyTime.Add(-1 * time.Minute)},
	}
	for _, e := range existing {
		suite.Require().NoError(suite.mongoAdapter.PutEvent(context.Background(), e))
	}

	events, err := suite.mongoAdapter.ListEvents(context.Background(), ports.ListEventsQuery{PublicOnly: true})
	suite.Require().NoError(err)
	suite.Len(events, 2)

	events, err = suite.mongoAdapter.ListEvents(context.Background(), ports.ListEventsQuery{CreatorID: "u1"})
	suite.Require().NoError(err)
	suite.Len(events, 2)

	events, err = suite.mongoAdapter.ListEvents(context.Background(), ports.ListEventsQuery{PublicOnly: true, CreatorID: "u2"})
	suite.Require().NoError(err)
	suite.Empty(events)
}

func (suite *MongoDBTestSuite) TestDeleteEvent() {
	suite.Require().NoError(suite.mongoAdapter.PutEvent(context.Background(), &model.Event{EventID: "event-1"}))
	suite.Require().NoError(suite.mongoAdapter.DeleteEvent(context.Background(), "event-1"))

	_, err := suite.mongoAdapter.GetEvent(context.Background(), "event-1")
	suite.ErrorIs(err, model.ErrNotFound)
}

func TestMongoDBSuite(t *testing.T) {
	suite.Run(t, new(MongoDBTestSuite))
}
