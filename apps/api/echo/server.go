package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/madamaths/madamaths/core"
	"github.com/madamaths/madamaths/core/account"
	"github.com/madamaths/madamaths/core/content"
	"github.com/madamaths/madamaths/core/coursework"
	"github.com/madamaths/madamaths/core/message"
)

type (
	Deps struct {
		Config        *core.Config
		Logger        core.Logger
		Validate      *validator.Validate
		Translator    ut.Translator
		Tokens        *account.TokenService
		AccountSvc    *account.Service
		ContentSvc    *content.Service
		CourseworkSvc *coursework.Service
		MessageSvc    *message.Service
	}

	Server struct {
		app      *echo.Echo
		deps     *Deps
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps *Deps) *Server {
	s := &Server{
		app:      echo.New(),
		deps:     deps,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Config

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	g := s.app.Group("/api")
	gate := newGate(s.deps.Tokens, s.deps.AccountSvc)

	registerAccountAPI(g, gate, s.deps)
	registerContentAPI(g, gate, s.deps)
	registerCourseworkAPI(g, gate, s.deps)
	registerMessageAPI(g, gate, s.deps)
}

// Start listens on the configured address. Listener errors are reported on Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Config.Server.Address); err != nil && err != http.ErrServerClosed {
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
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Config.AppName+" API!")
}
