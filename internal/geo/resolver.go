// Package geo resolves free-text destination input to Tourvisor country codes.
package geo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hussainn7/TravellingService/core/logger"
)

// ErrNotFound is returned when input cannot be mapped to a destination code.
// It is a first-class result: callers re-prompt the user instead of failing.
var ErrNotFound = errors.New("geo: destination not found")

// Completer issues a single text-completion request. It is satisfied by the
// openai client; a nil Completer disables the AI fallback.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Resolver maps country or city names to destination codes: first by
// case-insensitive prefix against the country table, then by exact city
// lookup, then through the AI fallback.
type Resolver struct {
	ai Completer
}

// NewResolver constructs a Resolver with an optional AI fallback.
func NewResolver(ai Completer) *Resolver {
	return &Resolver{ai: ai}
}

// Resolve returns the destination code for the given free-text input,
// or ErrNotFound when every lookup misses.
func (r *Resolver) Resolve(ctx context.Context, text string) (string, error) {
	norm := strings.ToLower(strings.TrimSpace(text))
	if norm == "" {
		return "", ErrNotFound
	}

	for _, c := range Countries {
		if strings.HasPrefix(strings.ToLower(c.Name), norm) {
			return c.Code, nil
		}
	}

	if code, ok := cityCodes[norm]; ok {
		return code, nil
	}

	return r.resolveWithAI(ctx, norm)
}

const resolverSystemPrompt = "Ты справочник туристических направлений. " +
	"По названию города или страны ответь только числовым кодом страны из известного списка. " +
	"Если направление неизвестно, ответь словом NONE."

func (r *Resolver) resolveWithAI(ctx context.Context, norm string) (string, error) {
	if r.ai == nil {
		return "", ErrNotFound
	}

	var list strings.Builder
	for _, c := range Countries {
		fmt.Fprintf(&list, "%s=%s\n", c.Code, c.Name)
	}
	prompt := fmt.Sprintf("Известные направления:\n%sГород или страна: %s", list.String(), norm)

	answer, err := r.ai.Complete(ctx, resolverSystemPrompt, prompt)
	if err != nil {
		logger.Warn(ctx, "geo", "resolve.ai",
			slog.String("input", logger.SanitizeLimit(norm, 64)),
			slog.String("err", err.Error()),
		)
		return "", ErrNotFound
	}

	code := strings.TrimSpace(answer)
	// The model output is never trusted as-is: an unknown code is a miss.
	if !KnownCode(code) {
		logger.Debug(ctx, "geo", "resolve.ai.unknown_code",
			slog.String("input", logger.SanitizeLimit(norm, 64)),
			slog.String("answer", logger.SanitizeLimit(code, 32)),
		)
		return "", ErrNotFound
	}
	return code, nil
}
