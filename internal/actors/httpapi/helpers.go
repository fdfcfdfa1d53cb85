package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/venn-app/venn/internal/core/model"
)

type membershipOp = func(ctx context.Context, event *model.Event, user *model.User) error

// membershipOp loads the (event, user) snapshots named by the route and
// runs the transition on them.
func (s *Server) membershipOp(c *gin.Context, op membershipOp) {
	event, user, ok := s.pair(c)
	if !ok {
		return
	}
	if err := op(c.Request.Context(), event, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) pair(c *gin.Context) (*model.Event, *model.User, bool) {
	event, ok := s.event(c, c.Param("event_id"))
	if !ok {
		return nil, nil, false
	}
	user, ok := s.user(c, c.Param("uid"))
	if !ok {
		return nil, nil, false
	}
	return event, user, true
}

func (s *Server) userPair(c *gin.Context, uid, target string) (*model.User, *model.User, bool) {
	sender, ok := s.user(c, uid)
	if !ok {
		return nil, nil, false
	}
	receiver, ok := s.user(c, target)
	if !ok {
		return nil, nil, false
	}
	return sender, receiver, true
}

func (s *Server) user(c *gin.Context, uid string) (*model.User, bool) {
	user, err := s.users.GetUser(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return nil, false
	}
	return user, true
}

func (s *Server) event(c *gin.Context, eventID string) (*model.Event, bool) {
	event, err := s.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return nil, false
	}
	return event, true
}

// sanitizeUser strips the password hash before serialization.
func sanitizeUser(user *model.User) *model.User {
	out := *user
	out.PasswordHash = ""
	return &out
}

func sanitizeUsers(users []model.User) []model.User {
	out := make([]model.User, len(users))
	for i, u := range users {
		u.PasswordHash = ""
		out[i] = u
	}
	return out
}

// isNotFound unwraps to the store sentinel through the usecase wrapping.
func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
