// Package httpapi is the request gateway: it parses capability request
// bodies, composes prompts, invokes the generation backend, extracts the
// payload, and emits either the payload or the uniform {error} envelope.
// Handlers are stateless; the only process-wide state they touch is the
// read-only capability registry and the configuration struct.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/sweetpotato0/dealsense/config"
	"github.com/sweetpotato0/dealsense/delivery"
	"github.com/sweetpotato0/dealsense/errors"
	"github.com/sweetpotato0/dealsense/generation"
	"github.com/sweetpotato0/dealsense/pkg/logging"
)

// EmailSender delivers one transactional email.
type EmailSender interface {
	Send(ctx context.Context, req *delivery.Request) (*delivery.Result, error)
}

// Server wires the capability endpoints onto a gin engine.
type Server struct {
	cfg       *config.Config
	generator generation.Generator
	email     EmailSender
	logger    *slog.Logger
	engine    *gin.Engine
	http      *http.Server
}

// New builds the gateway. The generator and sender are constructed by the
// caller so tests can substitute fakes.
func New(cfg *config.Config, generator generation.Generator, email EmailSender) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:       cfg,
		generator: generator,
		email:     email,
		logger:    logging.WithComponent("httpapi"),
		engine:    gin.New(),
	}

	s.engine.Use(
		Recovery(),
		RequestLogger(),
		otelgin.Middleware("dealsense"),
		CORS(),
	)
	s.routes()

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() {
	post := func(path string, handler gin.HandlerFunc) {
		s.engine.POST(path, handler)
		// The CORS middleware answers preflights before this handler runs.
		s.engine.OPTIONS(path, func(*gin.Context) {})
	}

	post("/score-deal", s.scoreDeal)
	post("/account-health", s.accountHealth)
	post("/crm-insights", s.crmInsights)
	post("/battlecard", s.battlecard)
	post("/cold-email", s.coldEmail)
	post("/find-leads", s.findLeads)
	post("/research", s.research)
	post("/generate-image", s.generateImage)
	post("/send-email", s.sendEmail)

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// respond emits the success payload as the JSON root.
func (s *Server) respond(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// fail converts any error into the envelope. Every failure kind maps to
// status 500; callers distinguish them by message text only.
func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Error("request failed",
		"path", c.Request.URL.Path,
		"kind", string(errors.KindOf(err)),
		"error", err.Error(),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": errors.MessageOf(err)})
}
