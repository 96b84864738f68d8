// Package telegram composes the Telebot transport: long polling, middleware,
// the outbound dispatcher and the single text route feeding the dialogue
// handler.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/hussainn7/TravellingService/core/config"
	"github.com/hussainn7/TravellingService/core/logger"
	"github.com/hussainn7/TravellingService/core/netutil"
	tghelpers "github.com/hussainn7/TravellingService/core/telegram/helpers"
	"github.com/hussainn7/TravellingService/core/telegram/middleware"
	tgsender "github.com/hussainn7/TravellingService/core/telegram/sender"
)

// Handler processes one inbound text message and emits replies through the
// sink, in order. It blocks until the turn completes.
type Handler interface {
	Handle(ctx context.Context, senderID, text string, reply func(string))
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config  *coreconfig.Config
	Handler Handler

	DispatcherOptions tgsender.Options
}

// RunTelegram composes and runs the bot until the provided context is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	if opts.Handler == nil {
		return fmt.Errorf("telegram: nil handler provided")
	}

	cfg := opts.Config

	timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 10
	}

	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: time.Duration(timeoutSec) * time.Second},
		Client: netutil.BuildHTTPClient(),
	}

	buildStart := time.Now()
	bot, err := tele.NewBot(settings)
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}

	logger.Info(ctx, "tg", "mode",
		slog.String("mode", "polling"),
		slog.Int("timeout_seconds", timeoutSec),
		slog.Duration("duration", logger.RoundMS(time.Since(buildStart))),
	)

	dispatcher := tgsender.NewDispatcher(opts.DispatcherOptions)

	bot.Use(middleware.RecoverMiddleware)
	bot.Use(middleware.LoggerMiddleware)

	bot.Handle(tele.OnText, textRoute(opts.Handler, dispatcher))

	runDone := make(chan struct{})
	go func() {
		bot.Start()
		close(runDone)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-runDone
		runErr = ctx.Err()
	case <-runDone:
	}

	dispatcher.Close()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// textRoute adapts a Telebot update into one dialogue turn. Replies go
// through the dispatcher so a slow Telegram API never blocks the turn, while
// the single-worker queue keeps them in order.
func textRoute(handler Handler, dispatcher *tgsender.Dispatcher) tele.HandlerFunc {
	return func(c tele.Context) error {
		msg := c.Message()
		user := c.Sender()
		if msg == nil || user == nil || user.IsBot {
			return nil
		}

		ctx := tghelpers.Context(c)
		senderID := strconv.FormatInt(user.ID, 10)
		chat := c.Chat()

		handler.Handle(ctx, senderID, c.Text(), func(text string) {
			err := dispatcher.Enqueue(ctx, "send_message", func() error {
				_, sendErr := c.Bot().Send(chat, text)
				return sendErr
			})
			if err != nil {
				logger.Warn(ctx, "tg", "send.enqueue.fail",
					slog.String("sender_id", senderID),
					slog.String("err", err.Error()),
				)
			}
		})
		return nil
	}
}
