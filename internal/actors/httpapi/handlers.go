package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/venn-app/venn/internal/core/model"
)

type registerUserRequest struct {
	UID         string   `json:"uid"`
	Username    string   `json:"username" binding:"required"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number"`
	Country     string   `json:"country"`
	Password    string   `json:"password"`
	Tags        []string `json:"tags"`
}

func (s *Server) registerUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	user, err := s.users.Register(c.Request.Context(), model.RegisterUserArgs{
		UID:         req.UID,
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Country:     req.Country,
		Password:    req.Password,
		Tags:        req.Tags,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sanitizeUser(user))
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.users.GetUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, sanitizeUser(user))
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.GetAllUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sanitizeUsers(users))
}

type editUserRequest struct {
	Username    *string   `json:"username"`
	FirstName   *string   `json:"first_name"`
	LastName    *string   `json:"last_name"`
	Email       *string   `json:"email"`
	PhoneNumber *string   `json:"phone_number"`
	Country     *string   `json:"country"`
	Tags        *[]string `json:"tags"`
}

func (s *Server) editUser(c *gin.Context) {
	var req editUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	patch := &model.UserPatch{
		Username:    req.Username,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Country:     req.Country,
		Tags:        req.Tags,
	}
	if err := s.users.EditUser(c.Request.Context(), c.Param("uid"), patch); err != nil {
		status := http.StatusInternalServerError
		if isNotFound(err) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteUser(c *gin.Context) {
	if err := s.users.DeleteUser(c.Request.Context(), c.Param("uid")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getFollowers(c *gin.Context) {
	followers, err := s.social.GetFollowers(c.Request.Context(), c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sanitizeUsers(followers))
}

func (s *Server) follow(c *gin.Context) {
	sender, receiver, ok := s.userPair(c, c.Param("uid"), c.Param("target"))
	if !ok {
		return
	}
	if err := s.social.Follow(c.Request.Context(), sender, receiver); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) unfollow(c *gin.Context) {
	sender, receiver, ok := s.userPair(c, c.Param("uid"), c.Param("target"))
	if !ok {
		return
	}
	if err := s.social.Unfollow(c.Request.Context(), sender, receiver); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) toggleFavorite(c *gin.Context) {
	user, ok := s.user(c, c.Param("uid"))
	if !ok {
		return
	}
	favorited, err := s.favorites.ToggleFavorite(c.Request.Context(), user, c.Param("event_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

type createEventRequest struct {
	EventID             string         `json:"event_id"`
	CreatorID           string         `json:"creator_id" binding:"required"`
	Title               string         `json:"title" binding:"required"`
	Description         string         `json:"description"`
	Location            model.Location `json:"location"`
	Date                time.Time      `json:"date"`
	Time                string         `json:"time"`
	Price               float64        `json:"price"`
	URL                 string         `json:"url"`
	Participants        []string       `json:"participants"`
	PendingParticipants []string       `json:"pending_participants"`
	VisibleToIfPrivate  []string       `json:"visible_to_if_private"`
	MaxParticipants     int            `json:"max_participants"`
	Public              bool           `json:"public"`
	Tags                []string       `json:"tags"`
	Images              []string       `json:"images"`
}

func (s *Server) createEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	event, err := s.events.CreateEvent(c.Request.Context(), model.CreateEventArgs{
		EventID:             req.EventID,
		CreatorID:           req.CreatorID,
		Title:               req.Title,
		Description:         req.Description,
		Location:            req.Location,
		Date:                req.Date,
		Time:                req.Time,
		Price:               req.Price,
		URL:                 req.URL,
		Participants:        req.Participants,
		PendingParticipants: req.PendingParticipants,
		VisibleToIfPrivate:  req.VisibleToIfPrivate,
		MaxParticipants:     req.MaxParticipants,
		Public:              req.Public,
		Tags:                req.Tags,
		Images:              req.Images,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (s *Server) getEvent(c *gin.Context) {
	event, ok := s.event(c, c.Param("event_id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, event)
}

// listEvents returns all events ranked for the viewer given by the
// optional viewer query parameter.
func (s *Server) listEvents(c *gin.Context) {
	events, err := s.events.GetAllEvents(c.Request.Context(), c.Query("viewer"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

type editEventRequest struct {
	Title               *string         `json:"title"`
	Description         *string         `json:"description"`
	Location            *model.Location `json:"location"`
	Date                *time.Time      `json:"date"`
	Time                *string         `json:"time"`
	Price               *float64        `json:"price"`
	URL                 *string         `json:"url"`
	VisibleToIfPrivate  *[]string       `json:"visible_to_if_private"`
	MaxParticipants     *int            `json:"max_participants"`
	Public              *bool           `json:"public"`
	Tags                *[]string       `json:"tags"`
	Images              *[]string       `json:"images"`
}

func (s *Server) editEvent(c *gin.Context) {
	var req editEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	patch := &model.EventPatch{
		Title:              req.Title,
		Description:        req.Description,
		Location:           req.Location,
		Date:               req.Date,
		Time:               req.Time,
		Price:              req.Price,
		URL:                req.URL,
		VisibleToIfPrivate: req.VisibleToIfPrivate,
		MaxParticipants:    req.MaxParticipants,
		Public:             req.Public,
		Tags:               req.Tags,
		Images:             req.Images,
	}
	if err := s.events.EditEvent(c.Request.Context(), c.Param("event_id"), patch); err != nil {
		status := http.StatusInternalServerError
		if isNotFound(err) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) removeEvent(c *gin.Context) {
	event, ok := s.event(c, c.Param("event_id"))
	if !ok {
		return
	}
	if err := s.events.RemoveEvent(c.Request.Context(), event.CreatorID, event.EventID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) sawEvent(c *gin.Context) {
	if err := s.events.SawEvent(c.Request.Context(), c.Query("viewer"), c.Param("event_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type rateEventRequest struct {
	UID    string `json:"uid" binding:"required"`
	Rating int    `json:"rating" binding:"required"`
}

func (s *Server) rateEvent(c *gin.Context) {
	var req rateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	event, ok := s.event(c, c.Param("event_id"))
	if !ok {
		return
	}
	if err := s.events.RateEvent(c.Request.Context(), event, req.UID, req.Rating); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidRating) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) invite(c *gin.Context) {
	s.membershipOp(c, s.membership.Invite)
}

func (s *Server) cancelInvitation(c *gin.Context) {
	s.membershipOp(c, s.membership.CancelInvitation)
}

func (s *Server) acceptInvitation(c *gin.Context) {
	s.membershipOp(c, s.membership.AcceptInvitation)
}

func (s *Server) declineInvitation(c *gin.Context) {
	s.membershipOp(c, s.membership.DeclineInvitation)
}

func (s *Server) joinEvent(c *gin.Context) {
	s.membershipOp(c, s.membership.JoinEvent)
}

func (s *Server) leaveEvent(c *gin.Context) {
	s.membershipOp(c, s.membership.LeaveEvent)
}

func (s *Server) kickParticipant(c *gin.Context) {
	s.membershipOp(c, s.membership.KickParticipant)
}

func (s *Server) membershipState(c *gin.Context) {
	event, user, ok := s.pair(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":  s.membership.StateOf(event, user).String(),
		"member": s.membership.IsMember(event, user),
	})
}

func (s *Server) searchAll(c *gin.Context) {
	results, err := s.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":  sanitizeUsers(results.Users),
		"events": results.Events,
	})
}
