package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/openefficiency/aegisv11-sub000/internal/intake"
	"github.com/openefficiency/aegisv11-sub000/internal/ratelimit"
	"github.com/openefficiency/aegisv11-sub000/internal/vapi"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// CallFetcher loads a call record from the voice vendor.
type CallFetcher interface {
	Call(ctx context.Context, callID string) (*vapi.Call, json.RawMessage, error)
}

// RecordingArchiver copies a voice case's recording out of the vendor's
// storage and returns where it was put.
type RecordingArchiver interface {
	Archive(ctx context.Context, c *types.Case) (string, error)
}

type Service struct {
	logger     *logrus.Logger
	config     *types.Config
	pipeline   *intake.Pipeline
	calls      CallFetcher
	recordings RecordingArchiver
	tracking   *ratelimit.Limiter

	handler    http.Handler
	server     *http.Server
	background sync.WaitGroup
}

// New wires the HTTP boundary. calls and recordings may be nil when the vendor
// API or the archive bucket is not configured, and tracking may be nil to
// leave lookups unlimited.
func New(
	config *types.Config,
	logger *logrus.Logger,
	pipeline *intake.Pipeline,
	calls CallFetcher,
	recordings RecordingArchiver,
	tracking *ratelimit.Limiter,
) *Service {
	mux := flow.New()

	s := &Service{
		logger:     logger,
		config:     config,
		pipeline:   pipeline,
		calls:      calls,
		recordings: recordings,
		tracking:   tracking,
		handler:    mux,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	if config.VapiWebhookSecret == "" {
		logger.Warn("VAPI_WEBHOOK_SECRET is not set, the voice webhook accepts unsigned posts")
	}

	return s
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

// Stop shuts the server down and then waits for background archive uploads,
// giving up when ctx is done.
func (s *Service) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.LimitBody)

		r.HandleFunc("/api/reports/manual", s.handleSubmitReport(types.ReportSourceManual), http.MethodPost)
		r.HandleFunc("/api/reports/map", s.handleSubmitReport(types.ReportSourceMap), http.MethodPost)
		r.HandleFunc("/api/reports/voice", s.handleSubmitReport(types.ReportSourceVoice), http.MethodPost)

		r.HandleFunc("/api/vapi/webhook", s.handleVapiWebhook, http.MethodPost)
		r.HandleFunc("/api/vapi/calls/:callID/import", s.handleVapiImport, http.MethodPost)

		r.HandleFunc("/api/track", s.handleTrack, http.MethodPost)
	})
}
