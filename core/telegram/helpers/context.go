// Package helpers provides small utilities shared between the transport run
// loop and its middleware.
package helpers

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

const ctxKey = "handler_ctx"

// StoreContext attaches a request context to the Telebot context so
// downstream handlers can pick it up.
func StoreContext(c tele.Context, ctx context.Context) {
	c.Set(ctxKey, ctx)
}

// Context returns the request context stored by middleware, or Background.
func Context(c tele.Context) context.Context {
	if v := c.Get(ctxKey); v != nil {
		if ctx, ok := v.(context.Context); ok {
			return ctx
		}
	}
	return context.Background()
}
