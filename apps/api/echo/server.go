package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/announcement"
	"github.com/Treasure123-school/THS/core/auth"
	"github.com/Treasure123-school/THS/core/contact"
	"github.com/Treasure123-school/THS/core/gallery"
	"github.com/Treasure123-school/THS/core/user"
	feedsvc "github.com/Treasure123-school/THS/services/feed"
)

type (
	ServerDeps struct {
		Conf            *core.Config
		Logger          core.Logger
		AuthSvc         *auth.Service
		UserSvc         user.Service
		AnnouncementSvc *announcement.Service
		GallerySvc      *gallery.Service
		ContactSvc      *contact.Service
		FeedHub         *feedsvc.Hub
		Validate        *validator.Validate
		Translator      ut.Translator
	}

	Server struct {
		ServerDeps
		app      *echo.Echo
		cookies  *cookieCodec
		upgrader *websocket.Upgrader
		shutdown chan os.Signal
		errors   chan error
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		cookies:    newCookieCodec(deps.Conf),
		upgrader:   feedsvc.NewUpgrader(deps.Conf.Server.AllowedOrigin),
		shutdown:   make(chan os.Signal, 1),
		errors:     make(chan error, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	debug := s.Conf.Debug

	s.app.HideBanner = true
	s.app.Debug = debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, debug, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestID())
	if !s.Conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.Secure())
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{s.Conf.Server.AllowedOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	s.app.Use(sessionMiddleware(s.cookies, s.AuthSvc))

	api := s.app.Group("/api")
	api.GET("/health", health)
	api.GET("/exams", exams, authenticated())
	api.GET("/question-bank", questionBank, authorize(user.RoleAdmin, user.RoleTeacher))

	registerAuthAPI(api, s)
	registerAnnouncementAPI(api, s)
	registerGalleryAPI(api, s)
	registerContactAPI(api, s)
	registerAdminAPI(api, s)
}

// Start blocks until the server stops. Unexpected failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return errors.Wrap(s.app.Shutdown(ctx), "shutting down server")
}

func (s *Server) Close() error {
	return errors.Wrap(s.app.Close(), "closing server")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// Handlers

type (
	MessageResponse struct {
		Message string `json:"message"`
	}

	HealthResponse struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
)

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, HealthResponse{Status: "ok", Timestamp: core.NowFunc()})
}

func exams(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Exam system coming soon", "exams": []interface{}{}})
}

func questionBank(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Question bank coming soon", "questions": []interface{}{}})
}
