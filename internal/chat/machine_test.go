package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hussainn7/TravellingService/internal/geo"
	"github.com/hussainn7/TravellingService/internal/history"
	"github.com/hussainn7/TravellingService/internal/session"
	"github.com/hussainn7/TravellingService/internal/tourvisor"
)

type fakeSearch struct {
	mu sync.Mutex

	submitID  string
	submitErr error

	statuses  []tourvisor.Status
	statusErr error

	hotels     []tourvisor.Hotel
	resultsErr error

	submitDelay time.Duration

	submitCalls  int
	statusCalls  int
	resultsCalls int
}

func (f *fakeSearch) Submit(ctx context.Context, _ tourvisor.SearchRequest) (string, error) {
	f.mu.Lock()
	f.submitCalls++
	f.mu.Unlock()
	if f.submitDelay > 0 {
		select {
		case <-time.After(f.submitDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.submitID, nil
}

func (f *fakeSearch) Status(ctx context.Context, _ string) (tourvisor.Status, error) {
	if err := ctx.Err(); err != nil {
		return tourvisor.Status{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return tourvisor.Status{}, f.statusErr
	}
	if len(f.statuses) == 0 {
		return tourvisor.Status{State: "searching"}, nil
	}
	st := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return st, nil
}

func (f *fakeSearch) Results(ctx context.Context, _ string) ([]tourvisor.Hotel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resultsCalls++
	if f.resultsErr != nil {
		return nil, f.resultsErr
	}
	return f.hotels, nil
}

type fakeAI struct {
	answer string
	err    error
}

func (f *fakeAI) Complete(_ context.Context, _, _ string) (string, error) {
	return f.answer, f.err
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []history.Entry
}

func (f *fakeRecorder) Record(_ context.Context, e history.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func finishedStatus() tourvisor.Status {
	return tourvisor.Status{State: "finished", HotelsFound: 1, ToursFound: 3, MinPrice: "54300"}
}

func oneHotel() []tourvisor.Hotel {
	return []tourvisor.Hotel{{
		Name:    "Sunrise Resort",
		Stars:   "5",
		Country: "Турция",
		Region:  "Анталья",
		Price:   "81200",
		Tours: []tourvisor.Tour{
			{FlyDate: "12.03.2026", Nights: 7, Price: "81200", Meal: "Все включено"},
		},
	}}
}

type testBot struct {
	machine *Machine
	store   *session.Store
	search  *fakeSearch
}

func newTestBot(t *testing.T, opts Options) *testBot {
	t.Helper()
	if opts.Store == nil {
		opts.Store = session.NewStore()
	}
	if opts.Resolver == nil {
		opts.Resolver = geo.NewResolver(nil)
	}
	search, _ := opts.Search.(*fakeSearch)
	if search == nil {
		search = &fakeSearch{submitID: "12345", statuses: []tourvisor.Status{finishedStatus()}, hotels: oneHotel()}
		opts.Search = search
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Millisecond
	}
	if opts.MaxWait == 0 {
		opts.MaxWait = 100 * time.Millisecond
	}
	return &testBot{machine: New(opts), store: opts.Store, search: search}
}

func (b *testBot) send(t *testing.T, senderID, text string) []string {
	t.Helper()
	var replies []string
	b.machine.Handle(context.Background(), senderID, text, func(msg string) {
		replies = append(replies, msg)
	})
	return replies
}

// advance walks a fresh sender to the awaiting-children stage.
func (b *testBot) advanceToChildren(t *testing.T, senderID string) {
	t.Helper()
	require.Equal(t, []string{msgGreeting}, b.send(t, senderID, "привет"))
	require.Equal(t, []string{msgAskDeparture}, b.send(t, senderID, "тур"))
	require.Equal(t, []string{msgAskCountry}, b.send(t, senderID, "Москва"))
	require.Equal(t, []string{msgAskNights}, b.send(t, senderID, "Турция"))
	require.Equal(t, []string{msgAskAdults}, b.send(t, senderID, "7-14"))
	require.Equal(t, []string{msgAskChildren}, b.send(t, senderID, "2"))
}

func TestFirstContactGreetsOnly(t *testing.T) {
	bot := newTestBot(t, Options{})

	replies := bot.send(t, "u1", "тур")
	assert.Equal(t, []string{msgGreeting}, replies, "triggering message is not otherwise processed on first contact")

	sess, ok := bot.store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, session.StageIdle, sess.Stage)
}

func TestIdleWithoutAI(t *testing.T) {
	bot := newTestBot(t, Options{})
	bot.send(t, "u1", "привет")

	replies := bot.send(t, "u1", "как дела?")
	assert.Equal(t, []string{msgIdleHint}, replies)
}

func TestFreeformReply(t *testing.T) {
	t.Run("answer returned verbatim", func(t *testing.T) {
		bot := newTestBot(t, Options{AI: &fakeAI{answer: "Здравствуйте! Чем помочь?"}})
		bot.send(t, "u1", "привет")
		assert.Equal(t, []string{"Здравствуйте! Чем помочь?"}, bot.send(t, "u1", "как дела?"))
	})

	t.Run("failure yields fixed message", func(t *testing.T) {
		bot := newTestBot(t, Options{AI: &fakeAI{err: errors.New("api down")}})
		bot.send(t, "u1", "привет")
		assert.Equal(t, []string{msgFreeformFailure}, bot.send(t, "u1", "как дела?"))
	})
}

func TestTriggerKeyword(t *testing.T) {
	cases := []string{"тур", "ТУР", "Tour", "  тур  "}
	for _, keyword := range cases {
		t.Run(keyword, func(t *testing.T) {
			bot := newTestBot(t, Options{})
			bot.send(t, "u1", "привет")
			assert.Equal(t, []string{msgAskDeparture}, bot.send(t, "u1", keyword))
		})
	}
}

func TestTriggerResetsMidFlow(t *testing.T) {
	bot := newTestBot(t, Options{})
	bot.send(t, "u1", "привет")
	bot.send(t, "u1", "тур")
	bot.send(t, "u1", "Москва")
	bot.send(t, "u1", "Турция")
	bot.send(t, "u1", "7-14")

	// Restart supersedes the in-flight booking and clears everything.
	assert.Equal(t, []string{msgAskDeparture}, bot.send(t, "u1", "тур"))

	sess, ok := bot.store.Get("u1")
	require.True(t, ok)
	assert.Equal(t, session.StageAwaitingDeparture, sess.Stage)
	assert.Empty(t, sess.DepartureCity)
	assert.Empty(t, sess.DestinationCode)
	assert.Zero(t, sess.Nights)
}

func TestCountryRetriesUnbounded(t *testing.T) {
	bot := newTestBot(t, Options{})
	bot.send(t, "u1", "привет")
	bot.send(t, "u1", "тур")
	bot.send(t, "u1", "Москва")

	for i := 0; i < 4; i++ {
		assert.Equal(t, []string{msgCountryUnknown}, bot.send(t, "u1", "Нарния"))
	}

	sess, _ := bot.store.Get("u1")
	assert.Equal(t, session.StageAwaitingCountry, sess.Stage)

	assert.Equal(t, []string{msgAskNights}, bot.send(t, "u1", "Египет"))
	sess, _ = bot.store.Get("u1")
	assert.Equal(t, "1", sess.DestinationCode)
}

func TestNightsValidation(t *testing.T) {
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"valid range", "7-14", true},
		{"single night", "7-7", true},
		{"reversed", "14-7", false},
		{"letters", "abc", false},
		{"no separator", "714", false},
		{"zero nights", "0-5", false},
		{"negative", "-3-5", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bot := newTestBot(t, Options{})
			bot.send(t, "u1", "привет")
			bot.send(t, "u1", "тур")
			bot.send(t, "u1", "Москва")
			bot.send(t, "u1", "Турция")

			replies := bot.send(t, "u1", tc.input)
			sess, _ := bot.store.Get("u1")
			if tc.ok {
				assert.Equal(t, []string{msgAskAdults}, replies)
				assert.Equal(t, session.StageAwaitingAdults, sess.Stage)
			} else {
				assert.Equal(t, []string{msgNightsFormat}, replies)
				assert.Equal(t, session.StageAwaitingNights, sess.Stage, "rejection never advances the stage")
			}
		})
	}
}

func TestPartySizeValidation(t *testing.T) {
	bot := newTestBot(t, Options{})
	bot.send(t, "u1", "привет")
	bot.send(t, "u1", "тур")
	bot.send(t, "u1", "Москва")
	bot.send(t, "u1", "Турция")
	bot.send(t, "u1", "7-14")

	assert.Equal(t, []string{msgAdultsFormat}, bot.send(t, "u1", "0"))
	assert.Equal(t, []string{msgAdultsFormat}, bot.send(t, "u1", "семь"))
	assert.Equal(t, []string{msgAskChildren}, bot.send(t, "u1", "2"))

	assert.Equal(t, []string{msgChildrenFormat}, bot.send(t, "u1", "5"))
	assert.Equal(t, []string{msgChildrenFormat}, bot.send(t, "u1", "-1"))
}

func TestHappyPathScenario(t *testing.T) {
	recorder := &fakeRecorder{}
	bot := newTestBot(t, Options{History: recorder})
	bot.advanceToChildren(t, "u1")

	replies := bot.send(t, "u1", "0")

	require.Len(t, replies, 4)
	assert.Equal(t, msgSearchStarted, replies[0])
	assert.Contains(t, replies[1], "Поиск завершен!")
	assert.Contains(t, replies[2], "Sunrise Resort")
	assert.Equal(t, msgResultsFooter, replies[3])

	sess, _ := bot.store.Get("u1")
	assert.Equal(t, session.StageIdle, sess.Stage)
	assert.Empty(t, sess.DepartureCity, "flow fields cleared after the single-shot search")

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, "u1", entry.SenderID)
	assert.Equal(t, "Москва", entry.Departure)
	assert.Equal(t, "4", entry.Country)
	assert.Equal(t, 7, entry.NightsFrom)
	assert.Equal(t, 14, entry.NightsTo)
	assert.Equal(t, 2, entry.Adults)
	assert.Equal(t, 0, entry.Children)
	assert.Equal(t, 1, entry.HotelsFound)
	assert.Equal(t, "54300", entry.MinPrice)
}

func TestSearchWindow(t *testing.T) {
	var captured tourvisor.SearchRequest
	search := &fakeSearch{submitID: "12345", statuses: []tourvisor.Status{finishedStatus()}, hotels: oneHotel()}
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	store := session.NewStore()
	machine := New(Options{
		Store:        store,
		Resolver:     geo.NewResolver(nil),
		Search:       captureSubmit(search, &captured),
		PollInterval: time.Millisecond,
		MaxWait:      100 * time.Millisecond,
		Now:          func() time.Time { return now },
	})
	bot := &testBot{machine: machine, store: store, search: search}
	bot.advanceToChildren(t, "u1")
	bot.send(t, "u1", "1")

	assert.Equal(t, time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC), captured.DateFrom)
	assert.Equal(t, time.Date(2026, 4, 3, 12, 0, 0, 0, time.UTC), captured.DateTo)
	assert.Equal(t, "Москва", captured.Departure)
	assert.Equal(t, "4", captured.Country)
	assert.Equal(t, 2, captured.Adults)
	assert.Equal(t, 1, captured.Children)
}

// submitCapturer records the request passed to Submit before delegating.
type submitCapturer struct {
	*fakeSearch
	captured *tourvisor.SearchRequest
}

func captureSubmit(f *fakeSearch, into *tourvisor.SearchRequest) Searcher {
	return &submitCapturer{fakeSearch: f, captured: into}
}

func (s *submitCapturer) Submit(ctx context.Context, req tourvisor.SearchRequest) (string, error) {
	*s.captured = req
	return s.fakeSearch.Submit(ctx, req)
}

func TestSubmitFailureNeverPolls(t *testing.T) {
	search := &fakeSearch{submitErr: &tourvisor.ParseError{Op: "submit", Err: tourvisor.ErrNoRequestID}}
	bot := newTestBot(t, Options{Search: search})
	bot.advanceToChildren(t, "u1")

	replies := bot.send(t, "u1", "0")

	assert.Equal(t, []string{msgSearchStarted, msgSubmitFailed}, replies)
	assert.Zero(t, search.statusCalls, "missing job identifier never invokes polling")
	assert.Zero(t, search.resultsCalls)

	sess, _ := bot.store.Get("u1")
	assert.Equal(t, session.StageIdle, sess.Stage)
}

func TestPollTimeout(t *testing.T) {
	t.Run("fallback fetch succeeds", func(t *testing.T) {
		search := &fakeSearch{
			submitID: "12345",
			statuses: []tourvisor.Status{{State: "searching"}},
			hotels:   oneHotel(),
		}
		bot := newTestBot(t, Options{Search: search, PollInterval: time.Millisecond, MaxWait: 10 * time.Millisecond})
		bot.advanceToChildren(t, "u1")

		replies := bot.send(t, "u1", "0")

		require.GreaterOrEqual(t, len(replies), 3)
		assert.Equal(t, msgSearchStarted, replies[0])
		assert.Contains(t, replies[1], "Sunrise Resort", "no completion summary when polling never saw finished")
		assert.Equal(t, msgResultsFooter, replies[len(replies)-1])
	})

	t.Run("fallback fetch fails", func(t *testing.T) {
		search := &fakeSearch{
			submitID:   "12345",
			statuses:   []tourvisor.Status{{State: "searching"}},
			resultsErr: &tourvisor.TransportError{Op: "result", Err: errors.New("connection refused")},
		}
		bot := newTestBot(t, Options{Search: search, PollInterval: time.Millisecond, MaxWait: 10 * time.Millisecond})
		bot.advanceToChildren(t, "u1")

		replies := bot.send(t, "u1", "0")
		assert.Equal(t, []string{msgSearchStarted, msgSearchTimeout}, replies)
	})
}

func TestNoResultsVsParseFailure(t *testing.T) {
	t.Run("zero hotels", func(t *testing.T) {
		search := &fakeSearch{submitID: "12345", statuses: []tourvisor.Status{finishedStatus()}, hotels: nil}
		bot := newTestBot(t, Options{Search: search})
		bot.advanceToChildren(t, "u1")

		replies := bot.send(t, "u1", "0")
		require.Len(t, replies, 3)
		assert.Equal(t, msgNoResults, replies[2])
	})

	t.Run("malformed results body", func(t *testing.T) {
		search := &fakeSearch{
			submitID:   "12345",
			statuses:   []tourvisor.Status{finishedStatus()},
			resultsErr: &tourvisor.ParseError{Op: "result", Err: errors.New("unexpected EOF")},
		}
		bot := newTestBot(t, Options{Search: search})
		bot.advanceToChildren(t, "u1")

		replies := bot.send(t, "u1", "0")
		require.Len(t, replies, 3)
		assert.Equal(t, msgResultsFailed, replies[2], "parse failure message differs from the no-results one")
	})
}

func TestSameSenderTurnsAreSerialized(t *testing.T) {
	search := &fakeSearch{
		submitID:    "12345",
		submitDelay: 30 * time.Millisecond,
		statuses:    []tourvisor.Status{finishedStatus()},
		hotels:      oneHotel(),
	}
	bot := newTestBot(t, Options{Search: search})
	bot.advanceToChildren(t, "u1")

	var wg sync.WaitGroup
	wg.Add(2)
	firstDone := make(chan struct{})
	go func() {
		defer wg.Done()
		bot.machine.Handle(context.Background(), "u1", "0", func(string) {})
		close(firstDone)
	}()
	go func() {
		defer wg.Done()
		// Give the first turn time to take the sender lock.
		time.Sleep(5 * time.Millisecond)
		bot.machine.Handle(context.Background(), "u1", "тур", func(string) {})
		select {
		case <-firstDone:
		default:
			panic("second turn finished before the first")
		}
	}()
	wg.Wait()

	// The queued trigger was processed after the search turn.
	sess, _ := bot.store.Get("u1")
	assert.Equal(t, session.StageAwaitingDeparture, sess.Stage)
}

func TestDifferentSendersIndependent(t *testing.T) {
	bot := newTestBot(t, Options{})
	bot.send(t, "u1", "привет")
	bot.send(t, "u2", "привет")
	bot.send(t, "u1", "тур")

	sess1, _ := bot.store.Get("u1")
	sess2, _ := bot.store.Get("u2")
	assert.Equal(t, session.StageAwaitingDeparture, sess1.Stage)
	assert.Equal(t, session.StageIdle, sess2.Stage)
}
