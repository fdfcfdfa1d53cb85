package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/venn-app/venn/internal/core/usecase"
)

// ServerArgs contains the mandatory arguments for the HTTP server.
type ServerArgs struct {
	Users      *usecase.UserService
	Events     *usecase.EventService
	Membership *usecase.MembershipService
	Social     *usecase.SocialGraphService
	Favorites  *usecase.FavoritesService
	Search     *usecase.SearchService
}

// ServerOptArgs are the optional arguments for building a Server.
type ServerOptArgs = func(*Server)

// WithRateLimit applies a per-IP request rate limit to all routes.
func WithRateLimit(limit int64, period time.Duration) ServerOptArgs {
	return func(s *Server) {
		s.rateLimit = &limiter.Rate{Limit: limit, Period: period}
	}
}

// Server is the HTTP actor. It exposes the usecases as a JSON API and
// owns no domain logic of its own.
type Server struct {
	users      *usecase.UserService
	events     *usecase.EventService
	membership *usecase.MembershipService
	social     *usecase.SocialGraphService
	favorites  *usecase.FavoritesService
	search     *usecase.SearchService
	rateLimit  *limiter.Rate

	router *gin.Engine
}

// NewServer creates a new Server with all routes registered.
func NewServer(args ServerArgs, optArgs ...ServerOptArgs) *Server {
	s := &Server{
		users:      args.Users,
		events:     args.Events,
		membership: args.Membership,
		social:     args.Social,
		favorites:  args.Favorites,
		search:     args.Search,
	}
	for _, opt := range optArgs {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if s.rateLimit != nil {
		instance := limiter.New(memory.NewStore(), *s.rateLimit)
		router.Use(ginlimiter.NewMiddleware(instance))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/users", s.registerUser)
		v1.GET("/users", s.listUsers)
		v1.GET("/users/:uid", s.getUser)
		v1.PATCH("/users/:uid", s.editUser)
		v1.DELETE("/users/:uid", s.deleteUser)
		v1.GET("/users/:uid/followers", s.getFollowers)
		v1.POST("/users/:uid/following/:target", s.follow)
		v1.DELETE("/users/:uid/following/:target", s.unfollow)
		v1.POST("/users/:uid/favorites/:event_id", s.toggleFavorite)

		v1.POST("/events", s.createEvent)
		v1.GET("/events", s.listEvents)
		v1.GET("/events/:event_id", s.getEvent)
		v1.PATCH("/events/:event_id", s.editEvent)
		v1.DELETE("/events/:event_id", s.removeEvent)
		v1.POST("/events/:event_id/views", s.sawEvent)
		v1.POST("/events/:event_id/ratings", s.rateEvent)

		v1.POST("/events/:event_id/invitations/:uid", s.invite)
		v1.DELETE("/events/:event_id/invitations/:uid", s.cancelInvitation)
		v1.POST("/events/:event_id/invitations/:uid/accept", s.acceptInvitation)
		v1.POST("/events/:event_id/invitations/:uid/decline", s.declineInvitation)
		v1.POST("/events/:event_id/participants/:uid", s.joinEvent)
		v1.DELETE("/events/:event_id/participants/:uid", s.leaveEvent)
		v1.DELETE("/events/:event_id/participants/:uid/kick", s.kickParticipant)
		v1.GET("/events/:event_id/participants/:uid", s.membershipState)

		v1.GET("/search", s.searchAll)
	}

	s.router = router
	return s
}

// Handler returns the http handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}
