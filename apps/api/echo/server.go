package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/announcement"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/venue"
	"github.com/theadruss/Clix-App/core/volunteer"
	"github.com/theadruss/Clix-App/services/ratelimit"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Limiter    ratelimit.Store
		Assistant  core.Assistant

		UserSvc         *user.Service
		ClubSvc         *club.Service
		VenueSvc        *venue.Service
		EventSvc        *event.Service
		VolunteerSvc    *volunteer.Service
		SocialSvc       *social.Service
		AnnouncementSvc *announcement.Service
	}

	Server struct {
		app      *echo.Echo
		conf     *core.Config
		auth     *Authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		app:      echo.New(),
		conf:     deps.Conf,
		auth:     NewAuthenticator(deps.Conf, deps.UserSvc),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup(deps)
	return s
}

func (s *Server) setup(deps ServerDeps) {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{s.conf.FrontendBaseURL},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, s.SignalShutdown)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", home)

	limit := rateLimitMiddleware(deps.Limiter, deps.Logger)
	g := s.app.Group("/api")
	authed := g.Group("", s.auth.Middleware(), s.auth.userMiddleware, limit)

	registerAuthAPI(g.Group("/auth", limit), authed, s.auth, deps.UserSvc, deps.Validate)
	registerUserAPI(authed, deps.UserSvc, deps.EventSvc, deps.VolunteerSvc, deps.Validate)
	registerVenueAPI(authed, deps.VenueSvc, deps.Validate)
	registerClubAPI(authed, deps.ClubSvc, deps.UserSvc, deps.AnnouncementSvc, deps.SocialSvc, deps.Validate)
	registerEventAPI(authed, deps.EventSvc, deps.VolunteerSvc, deps.Validate)
	registerVolunteerAPI(authed, deps.VolunteerSvc, deps.Validate)
	registerSocialAPI(authed, deps.SocialSvc, deps.Validate)
	registerAssistAPI(authed, deps.Assistant, deps.Validate)
}

func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors receives the error that stopped the server.
func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Clix API!")
}
