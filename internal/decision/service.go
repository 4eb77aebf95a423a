package decision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"relieflink/internal/agent"
	"relieflink/internal/fallback"
	"relieflink/internal/utils"
	"relieflink/pkg/types"
)

type Source string

const (
	SourceAgent    Source = "agent"
	SourceFallback Source = "fallback"
)

const DefaultRecordTimeout = 10 * time.Second

// Outcome is what every decision resolves to. Success is always true; a
// result computed locally is flagged Degraded with the reason the agent
// could not be used.
type Outcome[T any] struct {
	Success        bool   `json:"success"`
	Data           T      `json:"data"`
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degradedReason,omitempty"`
	Source         Source `json:"source"`
}

type AgentCaller interface {
	Call(ctx context.Context, capability agent.Capability, payload any) agent.Result
}

type Fallback interface {
	Validate(content types.SubmissionContent) types.ValidationOutcome
	Match(req types.MatchRequest) types.MatchSet
	AssignVolunteer(req types.AssignmentRequest) types.VolunteerAssignment
	Converse(req types.ConversationRequest) types.ConversationReply
}

// Recorder persists resolved decisions. Failures are logged and never
// change the outcome returned to the caller.
type Recorder interface {
	Record(ctx context.Context, collection string, record any) error
}

type Record struct {
	ID             string           `json:"id"`
	Capability     agent.Capability `json:"capability"`
	Source         Source           `json:"source"`
	Degraded       bool             `json:"degraded"`
	DegradedReason string           `json:"degradedReason,omitempty"`
	Request        any              `json:"request"`
	Result         any              `json:"result"`
	DecidedAt      time.Time        `json:"decidedAt"`
}

var collections = map[agent.Capability]string{
	agent.CapabilityValidate: "validations",
	agent.CapabilityMatch:    "matches",
	agent.CapabilityRoute:    "assignments",
	agent.CapabilityChat:     "conversations",
}

type Service struct {
	agent         AgentCaller
	fallback      Fallback
	recorders     []Recorder
	recordTimeout time.Duration
	agentTimeout  time.Duration
	language      types.Language
	logger        logrus.FieldLogger

	records sync.WaitGroup
}

type Option func(*Service)

// WithRecorder adds a recorder. Every recorder sees every decision.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorders = append(s.recorders, r)
		}
	}
}

// WithAgentTimeout bounds each agent call, including callers that ignore
// their context.
func WithAgentTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.agentTimeout = d
		}
	}
}

func WithRecordTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.recordTimeout = d
		}
	}
}

func WithLanguage(lang types.Language) Option {
	return func(s *Service) {
		if lang != "" {
			s.language = lang
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(caller AgentCaller, fb Fallback, opts ...Option) *Service {
	s := &Service{
		agent:         caller,
		fallback:      fb,
		recordTimeout: DefaultRecordTimeout,
		agentTimeout:  agent.DefaultTimeout,
		language:      types.LanguageEnglish,
		logger:        logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Close waits for outstanding decision records to finish.
func (s *Service) Close() {
	s.records.Wait()
}

func (s *Service) Validate(ctx context.Context, content types.SubmissionContent) Outcome[types.ValidationOutcome] {
	return decide(ctx, s, agent.CapabilityValidate, content,
		func(out *types.ValidationOutcome) error {
			out.ApplyThresholds()
			return nil
		},
		func() types.ValidationOutcome {
			return s.fallback.Validate(content)
		},
		func() types.ValidationOutcome {
			var out types.ValidationOutcome
			out.ApplyThresholds()
			return out
		},
	)
}

func (s *Service) Match(ctx context.Context, req types.MatchRequest) Outcome[types.MatchSet] {
	out := decide(ctx, s, agent.CapabilityMatch, req,
		func(set *types.MatchSet) error {
			set.Normalize()
			return nil
		},
		func() types.MatchSet {
			return s.fallback.Match(req)
		},
		func() types.MatchSet {
			var set types.MatchSet
			set.Normalize()
			return set
		},
	)
	if out.Data.Matches == nil {
		out.Data.Matches = []types.MatchCandidate{}
	}
	return out
}

func (s *Service) AssignVolunteer(ctx context.Context, req types.AssignmentRequest) Outcome[types.VolunteerAssignment] {
	return decide(ctx, s, agent.CapabilityRoute, req,
		func(a *types.VolunteerAssignment) error {
			if a.AssignedVolunteer.ID == "" && a.AssignedVolunteer.Name == "" {
				return errors.New("assignment names no volunteer")
			}
			if a.Status == "" {
				a.Status = types.AssignmentAssigned
			}
			if a.MatchID == "" {
				a.MatchID = req.MatchID
			}
			return nil
		},
		func() types.VolunteerAssignment {
			return s.fallback.AssignVolunteer(req)
		},
		func() types.VolunteerAssignment {
			return types.VolunteerAssignment{Status: types.AssignmentPending, MatchID: req.MatchID}
		},
	)
}

func (s *Service) Converse(ctx context.Context, req types.ConversationRequest) Outcome[types.ConversationReply] {
	req.Language = fallback.ResolveLanguage(req.Language, req.Message, s.language)

	return decide(ctx, s, agent.CapabilityChat, req,
		func(reply *types.ConversationReply) error {
			if strings.TrimSpace(reply.Response) == "" {
				return errors.New("empty response")
			}
			if reply.Intent == "" {
				reply.Intent = fallback.Classify(req.Language, req.Message)
			}
			return nil
		},
		func() types.ConversationReply {
			return s.fallback.Converse(req)
		},
		func() types.ConversationReply {
			return fallback.HelpReply(req.Language)
		},
	)
}

// decide makes exactly one remote attempt and resolves to the fallback on
// any failure, including a panic in the attempt or in normalize. A panic in
// the fallback resolves to last, a fixed answer that needs no reference data.
func decide[T any](
	ctx context.Context,
	s *Service,
	capability agent.Capability,
	payload any,
	normalize func(*T) error,
	local func() T,
	last func() T,
) (out Outcome[T]) {
	logger := s.logger.WithField("capability", capability)

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("fallback panicked")
			out = Outcome[T]{
				Success:        true,
				Data:           lastResort(logger, last),
				Degraded:       true,
				DegradedReason: "decision failed",
				Source:         SourceFallback,
			}
		}
		s.record(ctx, Record{
			Capability:     capability,
			Source:         out.Source,
			Degraded:       out.Degraded,
			DegradedReason: out.DegradedReason,
			Request:        payload,
			Result:         out.Data,
		})
	}()

	data, err := attempt(ctx, s.agent, s.agentTimeout, capability, payload, normalize)
	if err == nil {
		logger.Debug("agent result accepted")
		return Outcome[T]{Success: true, Data: data, Source: SourceAgent}
	}

	logger.WithError(err).Info("using fallback")

	return Outcome[T]{
		Success:        true,
		Data:           local(),
		Degraded:       true,
		DegradedReason: err.Error(),
		Source:         SourceFallback,
	}
}

func lastResort[T any](logger logrus.FieldLogger, last func() T) (data T) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("default answer panicked")
		}
	}()
	return last()
}

// attempt bounds the agent call by timeout even when the caller ignores its
// context; a call still running at the deadline is abandoned.
func attempt[T any](
	ctx context.Context,
	caller AgentCaller,
	timeout time.Duration,
	capability agent.Capability,
	payload any,
	normalize func(*T) error,
) (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent result panicked: %v", r)
		}
	}()

	if caller == nil {
		return data, errors.New("agent not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan agent.Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- agent.Result{
					Capability: capability,
					Failure:    agent.FailurePanic,
					Err:        fmt.Errorf("agent call panicked: %v", r),
				}
			}
		}()
		done <- caller.Call(ctx, capability, payload)
	}()

	var res agent.Result
	select {
	case res = <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return data, errors.New("agent timed out")
		}
		return data, errors.New("agent call canceled")
	}

	if !res.OK {
		return data, errors.New(degradedReason(res))
	}

	if err := res.Decode(&data); err != nil {
		return data, fmt.Errorf("agent result invalid: %w", err)
	}

	if normalize != nil {
		if err := normalize(&data); err != nil {
			return data, fmt.Errorf("agent result invalid: %w", err)
		}
	}

	return data, nil
}

func degradedReason(res agent.Result) string {
	switch res.Failure {
	case agent.FailureUnconfigured:
		return "agent not configured"
	case agent.FailureTimeout:
		return "agent timed out"
	case agent.FailureTransport:
		return "agent unreachable"
	case agent.FailureHTTPStatus:
		return fmt.Sprintf("agent returned HTTP %d", res.StatusCode)
	case agent.FailureDecode:
		return "agent response could not be decoded"
	case agent.FailureUnrecognizedShape:
		return "agent response in unrecognized shape"
	case agent.FailurePanic:
		return res.Err.Error()
	default:
		return "agent call failed"
	}
}

func (s *Service) record(ctx context.Context, rec Record) {
	if len(s.recorders) == 0 {
		return
	}

	rec.ID = utils.NanoID()
	rec.DecidedAt = time.Now().UTC()
	collection := collections[rec.Capability]
	ctx = context.WithoutCancel(ctx)

	for _, recorder := range s.recorders {
		s.records.Add(1)
		go func() {
			defer s.records.Done()

			ctx, cancel := context.WithTimeout(ctx, s.recordTimeout)
			defer cancel()

			if err := recorder.Record(ctx, collection, rec); err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"capability": rec.Capability,
					"collection": collection,
					"record_id":  rec.ID,
				}).Warn("failed to record decision")
			}
		}()
	}
}
