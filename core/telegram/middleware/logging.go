// Package middleware holds the global Telebot middleware chain: panic
// recovery and per-update receipt logging with request correlation.
package middleware

import (
	"log/slog"
	"strconv"

	"github.com/hussainn7/TravellingService/core/logger"
	tghelpers "github.com/hussainn7/TravellingService/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware logs a single receipt line per update and seeds the
// request context with rid and sender metadata.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()

		senderID := ""
		if user := c.Sender(); user != nil {
			senderID = strconv.FormatInt(user.ID, 10)
		}

		rid := logger.BuildRID(upd.ID, senderID)
		c.Set("rid", rid)

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, senderID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		attrs := []slog.Attr{
			slog.String("rid", rid),
			slog.Int("update_id", upd.ID),
		}
		if senderID != "" {
			attrs = append(attrs, slog.String("sender_id", senderID))
		}
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
		logger.Debug(ctx, "tg", "update.received", attrs...)

		return next(c)
	}
}
