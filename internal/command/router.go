// Package command implements the message command router: an ordered list of
// trigger-pattern registrations dispatched against the normalized text of
// inbound message activities.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/dooriya/WorkflowBot/internal/activity"
)

// Router errors.
var ErrDuplicatePattern = errors.New("trigger pattern already registered")

// Message is the normalized command text handed to a handler, together with
// the capture groups of a matching regular expression pattern.
type Message struct {
	Text    string
	Matches []string
}

// HandlerFunc processes a matched command and returns the reply activity to
// send, or nil to suppress delivery for this handler.
type HandlerFunc func(ctx context.Context, tc *activity.TurnContext, msg Message) (*activity.Activity, error)

// Pattern is a single trigger: a literal matched case- and
// whitespace-insensitively, or a regular expression.
type Pattern struct {
	source  string
	literal string
	re      *regexp.Regexp
}

// NewPattern builds a trigger from a literal string. Literals match as a
// substring ignoring case and whitespace, so `helloWorld` triggers on
// "hello world" as well.
func NewPattern(literal string) (Pattern, error) {
	folded := foldPattern(literal)
	if folded == "" {
		return Pattern{}, errors.New("trigger pattern cannot be empty")
	}

	return Pattern{source: literal, literal: folded}, nil
}

// NewRegexpPattern builds a trigger from a compiled regular expression. Its
// capture groups are passed to the handler on match.
func NewRegexpPattern(re *regexp.Regexp) Pattern {
	return Pattern{source: re.String(), re: re}
}

// match tests the pattern against the normalized text. For regular expression
// patterns the submatches are returned, mirroring the difference between a
// literal test and a capturing match.
func (p Pattern) match(text string) (bool, []string) {
	if text == "" {
		return false, nil
	}
	if p.re != nil {
		matches := p.re.FindStringSubmatch(text)
		return matches != nil, matches
	}

	return strings.Contains(foldPattern(text), p.literal), nil
}

// foldPattern lowers a literal and strips its whitespace, so casing and word
// spacing do not affect literal matching.
func foldPattern(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

type registration struct {
	patterns []Pattern
	handler  HandlerFunc
}

// Router holds the ordered command registrations. Registrations are
// append-only; a duplicate pattern is a construction-time error so an earlier
// handler can never be silently shadowed.
type Router struct {
	logger        *slog.Logger
	registrations []registration
	seen          map[string]struct{}
}

// NewRouter creates an empty command router.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Router{
		logger: logger.With("component", "command_router"),
		seen:   make(map[string]struct{}),
	}
}

// Register appends a handler triggered by any of the given patterns.
func (r *Router) Register(handler HandlerFunc, patterns ...Pattern) error {
	if handler == nil {
		return errors.New("command handler cannot be nil")
	}
	if len(patterns) == 0 {
		return errors.New("command registration needs at least one pattern")
	}
	for _, p := range patterns {
		if _, dup := r.seen[p.source]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicatePattern, p.source)
		}
	}
	for _, p := range patterns {
		r.seen[p.source] = struct{}{}
	}
	r.registrations = append(r.registrations, registration{patterns: patterns, handler: handler})

	return nil
}

// Dispatch normalizes the message text and invokes every registration whose
// pattern matches, in registration order, sending each non-nil reply as it is
// produced. Matching deliberately does not stop at the first hit; handlers
// run sequentially so outbound sends stay deterministic. A handler error
// propagates immediately, after any sends already made.
func (r *Router) Dispatch(ctx context.Context, tc *activity.TurnContext) error {
	if tc.Activity == nil || tc.Activity.Type != activity.TypeMessage {
		return nil
	}

	text := activity.RemoveRecipientMention(tc.Activity)
	log := r.logger.With("text", text)

	for _, reg := range r.registrations {
		matched, captures := matchAny(reg.patterns, text)
		if !matched {
			continue
		}

		reply, err := reg.handler(ctx, tc, Message{Text: text, Matches: captures})
		if err != nil {
			return fmt.Errorf("command handler failed: %w", err)
		}
		if reply == nil {
			continue
		}
		if _, err := tc.SendActivity(ctx, reply); err != nil {
			log.ErrorContext(ctx, "Failed to send command reply", "error", err)
			return fmt.Errorf("failed to send command reply: %w", err)
		}
	}

	return nil
}

// matchAny tries each pattern in order until one matches.
func matchAny(patterns []Pattern, text string) (bool, []string) {
	for _, p := range patterns {
		if ok, captures := p.match(text); ok {
			return true, captures
		}
	}

	return false, nil
}
