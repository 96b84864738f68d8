// Package chat contains the conversation state machine driving the booking
// dialogue and the orchestration of external search requests. It is transport
// agnostic: replies are emitted through a caller-supplied sink.
package chat

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/hussainn7/TravellingService/core/logger"
	"github.com/hussainn7/TravellingService/internal/history"
	"github.com/hussainn7/TravellingService/internal/session"
	"github.com/hussainn7/TravellingService/internal/tourvisor"
)

// Searcher is the slice of the tour backend the machine depends on.
type Searcher interface {
	Submit(ctx context.Context, req tourvisor.SearchRequest) (string, error)
	Status(ctx context.Context, requestID string) (tourvisor.Status, error)
	Results(ctx context.Context, requestID string) ([]tourvisor.Hotel, error)
}

// Resolver maps free-text destination input to a country code.
type Resolver interface {
	Resolve(ctx context.Context, text string) (string, error)
}

// Completer issues one text-completion request for free-form replies.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Recorder persists completed searches. A nil Recorder disables recording.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Options wires the machine's collaborators.
type Options struct {
	Store    *session.Store
	Resolver Resolver
	Search   Searcher
	// AI may be nil; free-form replies then fall back to the trigger hint.
	AI Completer
	// History may be nil.
	History Recorder

	// PollInterval between status checks; 0 -> 5s.
	PollInterval time.Duration
	// MaxWait bounds total status polling per search; 0 -> 60s.
	MaxWait time.Duration
	// Now is injectable for tests; nil -> time.Now.
	Now func() time.Time
}

// Machine is the conversation controller. One message is one turn; turns for
// the same sender are serialized through the session store, turns for
// different senders run independently.
type Machine struct {
	store    *session.Store
	resolver Resolver
	search   Searcher
	ai       Completer
	history  Recorder

	pollInterval time.Duration
	maxWait      time.Duration
	now          func() time.Time
}

// New constructs a Machine.
func New(opts Options) *Machine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = 60 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Machine{
		store:        opts.Store,
		resolver:     opts.Resolver,
		search:       opts.Search,
		ai:           opts.AI,
		history:      opts.History,
		pollInterval: opts.PollInterval,
		maxWait:      opts.MaxWait,
		now:          opts.Now,
	}
}

// Handle processes one inbound message and emits the ordered replies through
// the sink. It blocks until the turn completes, including any search.
func (m *Machine) Handle(ctx context.Context, senderID, text string, reply func(string)) {
	release := m.store.BeginTurn(senderID)
	defer release()

	sess, created := m.store.GetOrCreate(senderID)
	ctx = logger.WithStage(ctx, string(sess.Stage))

	// Fail closed: a panic mid-flow resets the session instead of wedging it.
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "chat", "turn.panic",
				slog.String("sender_id", senderID),
				slog.String("stage", string(sess.Stage)),
				slog.Any("err", r),
				slog.String("stack", string(debug.Stack())),
			)
			sess.Reset()
			reply(msgFlowFailure)
		}
	}()

	if created {
		logger.Info(ctx, "chat", "session.created", slog.String("sender_id", senderID))
		reply(msgGreeting)
		return
	}

	trimmed := strings.TrimSpace(text)
	if isTrigger(trimmed) {
		// Starting a new booking always supersedes an in-flight one.
		sess.Reset()
		sess.Stage = session.StageAwaitingDeparture
		reply(msgAskDeparture)
		return
	}

	switch sess.Stage {
	case session.StageAwaitingDeparture:
		sess.DepartureCity = trimmed
		sess.Stage = session.StageAwaitingCountry
		reply(msgAskCountry)

	case session.StageAwaitingCountry:
		m.handleCountry(ctx, sess, trimmed, reply)

	case session.StageAwaitingNights:
		rng, ok := parseNightsRange(trimmed)
		if !ok {
			reply(msgNightsFormat)
			return
		}
		sess.Nights = rng
		sess.Stage = session.StageAwaitingAdults
		reply(msgAskAdults)

	case session.StageAwaitingAdults:
		n, ok := parseCount(trimmed, 1, 6)
		if !ok {
			reply(msgAdultsFormat)
			return
		}
		sess.Adults = n
		sess.Stage = session.StageAwaitingChildren
		reply(msgAskChildren)

	case session.StageAwaitingChildren:
		n, ok := parseCount(trimmed, 0, 4)
		if !ok {
			reply(msgChildrenFormat)
			return
		}
		sess.Children = n
		sess.Stage = session.StageSearching
		m.runSearch(ctx, sess, reply)
		// Single-shot flow: back to idle whatever the outcome.
		sess.Reset()

	default:
		reply(m.freeform(ctx, trimmed))
	}
}

func (m *Machine) handleCountry(ctx context.Context, sess *session.Session, text string, reply func(string)) {
	code, err := m.resolver.Resolve(ctx, text)
	if err != nil {
		// A miss is recoverable: stay in the stage and ask again, without
		// any retry limit.
		logger.Debug(ctx, "chat", "country.miss",
			slog.String("sender_id", sess.SenderID),
			slog.String("input", logger.SanitizeLimit(text, 64)),
		)
		reply(msgCountryUnknown)
		return
	}
	sess.DestinationCode = code
	sess.Stage = session.StageAwaitingNights
	reply(msgAskNights)
}

func (m *Machine) freeform(ctx context.Context, text string) string {
	if m.ai == nil {
		return msgIdleHint
	}
	answer, err := m.ai.Complete(ctx, personaPrompt, text)
	if err != nil {
		logger.Warn(ctx, "chat", "freeform.fail", slog.String("err", err.Error()))
		return msgFreeformFailure
	}
	return answer
}

func isTrigger(text string) bool {
	return strings.EqualFold(text, "тур") || strings.EqualFold(text, "tour")
}

// parseNightsRange parses "min-max" into an ordered range of positive ints.
func parseNightsRange(text string) (session.NightsRange, bool) {
	parts := strings.SplitN(text, "-", 2)
	if len(parts) != 2 {
		return session.NightsRange{}, false
	}
	min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return session.NightsRange{}, false
	}
	max, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return session.NightsRange{}, false
	}
	if min <= 0 || max <= 0 || min > max {
		return session.NightsRange{}, false
	}
	return session.NightsRange{Min: min, Max: max}, true
}

func parseCount(text string, min, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < min || n > max {
		return 0, false
	}
	return n, true
}
