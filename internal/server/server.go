package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"relieflink/internal/decision"
	"relieflink/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// Decider is the decision layer the API exposes.
type Decider interface {
	Validate(ctx context.Context, content types.SubmissionContent) decision.Outcome[types.ValidationOutcome]
	Match(ctx context.Context, req types.MatchRequest) decision.Outcome[types.MatchSet]
	AssignVolunteer(ctx context.Context, req types.AssignmentRequest) decision.Outcome[types.VolunteerAssignment]
	Converse(ctx context.Context, req types.ConversationRequest) decision.Outcome[types.ConversationReply]
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	decisions Decider
	handler   http.Handler

	server *http.Server
}

func New(config *types.Config, logger *logrus.Logger, decisions Decider) *Service {
	mux := flow.New()

	s := &Service{
		logger:    logger,
		config:    config,
		decisions: decisions,
		handler:   mux,
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

	return s
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(s.Recoverer)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireJSON)

		r.HandleFunc("/v1/validate", s.handleValidate, http.MethodPost)
		r.HandleFunc("/v1/match", s.handleMatch, http.MethodPost)
		r.HandleFunc("/v1/assign", s.handleAssign, http.MethodPost)
		r.HandleFunc("/v1/converse", s.handleConverse, http.MethodPost)
	})

	r.HandleFunc("/v1/eta", s.handleETA, http.MethodGet)
}
