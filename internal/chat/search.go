package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hussainn7/TravellingService/core/logger"
	"github.com/hussainn7/TravellingService/internal/history"
	"github.com/hussainn7/TravellingService/internal/session"
	"github.com/hussainn7/TravellingService/internal/tourvisor"
)

// searchWindowDays is the fixed lookahead of the date window: tomorrow
// through tomorrow+29 days. Not user-configurable.
const searchWindowDays = 29

// runSearch drives one search to completion: submit, poll status until the
// backend finishes or the wait budget runs out, then fetch results once and
// render them. All replies of the search are emitted through the sink.
func (m *Machine) runSearch(ctx context.Context, sess *session.Session, reply func(string)) {
	searchID := uuid.NewString()
	ctx = logger.WithRID(ctx, searchID)

	reply(msgSearchStarted)

	req := m.buildRequest(sess)
	requestID, err := m.search.Submit(ctx, req)
	if err != nil {
		logger.Error(ctx, "chat", "search.submit",
			slog.String("sender_id", sess.SenderID),
			slog.String("country", req.Country),
			slog.String("err", err.Error()),
		)
		reply(msgSubmitFailed)
		return
	}

	// The poll context is cancelled as soon as this turn ends, so a session
	// leaving the searching stage can never receive a stale poll reply.
	pollCtx, cancel := context.WithTimeout(ctx, m.maxWait)
	defer cancel()

	status, finished := m.pollStatus(pollCtx, requestID)
	if finished {
		reply(formatStatusSummary(status))
	}

	// One results fetch regardless of how polling ended; the recommended
	// superset of the two historical variants.
	fetchCtx, cancelFetch := context.WithTimeout(ctx, 30*time.Second)
	defer cancelFetch()

	hotels, err := m.search.Results(fetchCtx, requestID)
	if err != nil {
		logger.Error(ctx, "chat", "search.results",
			slog.String("sender_id", sess.SenderID),
			slog.String("request_id", requestID),
			slog.String("err", err.Error()),
		)
		if !finished {
			reply(msgSearchTimeout)
			return
		}
		reply(msgResultsFailed)
		return
	}

	if len(hotels) == 0 {
		reply(msgNoResults)
		m.record(ctx, sess, status, 0)
		return
	}

	for _, msg := range formatHotels(hotels) {
		reply(msg)
	}
	reply(msgResultsFooter)
	m.record(ctx, sess, status, len(hotels))

	logger.Info(ctx, "chat", "search.done",
		slog.String("sender_id", sess.SenderID),
		slog.String("request_id", requestID),
		slog.Int("hotels", len(hotels)),
	)
}

// pollStatus checks the job at a fixed interval until the backend reports
// completion or ctx expires. Only one timer is outstanding at a time.
func (m *Machine) pollStatus(ctx context.Context, requestID string) (tourvisor.Status, bool) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	var last tourvisor.Status
	for {
		st, err := m.search.Status(ctx, requestID)
		switch {
		case err == nil && st.Finished():
			return st, true
		case err == nil:
			last = st
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return last, false
		default:
			// Transient status failures are tolerated; the next tick retries.
			logger.Warn(ctx, "chat", "search.status",
				slog.String("request_id", requestID),
				slog.String("err", err.Error()),
			)
		}

		select {
		case <-ctx.Done():
			return last, false
		case <-ticker.C:
		}
	}
}

func (m *Machine) buildRequest(sess *session.Session) tourvisor.SearchRequest {
	tomorrow := m.now().AddDate(0, 0, 1)
	return tourvisor.SearchRequest{
		Departure:  sess.DepartureCity,
		Country:    sess.DestinationCode,
		DateFrom:   tomorrow,
		DateTo:     tomorrow.AddDate(0, 0, searchWindowDays),
		NightsFrom: sess.Nights.Min,
		NightsTo:   sess.Nights.Max,
		Adults:     sess.Adults,
		Children:   sess.Children,
	}
}

func (m *Machine) record(ctx context.Context, sess *session.Session, st tourvisor.Status, hotels int) {
	if m.history == nil {
		return
	}
	entry := history.Entry{
		SenderID:    sess.SenderID,
		Departure:   sess.DepartureCity,
		Country:     sess.DestinationCode,
		NightsFrom:  sess.Nights.Min,
		NightsTo:    sess.Nights.Max,
		Adults:      sess.Adults,
		Children:    sess.Children,
		HotelsFound: hotels,
		MinPrice:    st.MinPrice,
	}
	if err := m.history.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "chat", "history.record",
			slog.String("sender_id", sess.SenderID),
			slog.String("err", err.Error()),
		)
	}
}
