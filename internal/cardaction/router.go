package cardaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dooriya/WorkflowBot/internal/activity"
)

// ResponseBehavior controls how a handler's card reaches the conversation.
type ResponseBehavior int

const (
	// ReplaceForInteractor delivers the card inside the invoke acknowledgment
	// only, replacing the view of the user who clicked. Default.
	ReplaceForInteractor ResponseBehavior = iota
	// ReplaceForAll updates the triggering message in place for every
	// participant, and the acknowledgment carries the same card.
	ReplaceForAll
	// NewForAll closes the invoke with the default acknowledgment, then sends
	// the card as a brand-new message visible to everyone.
	NewForAll
)

// String returns the behavior name for logging.
func (b ResponseBehavior) String() string {
	switch b {
	case ReplaceForAll:
		return "replace_for_all"
	case NewForAll:
		return "new_for_all"
	default:
		return "replace_for_interactor"
	}
}

// Router errors.
var (
	ErrDuplicateVerb     = errors.New("card action verb already registered")
	ErrInvalidActionData = errors.New("invalid card action data")
)

// HandlerFunc processes a decoded card action payload and returns the card to
// deliver, or nil to fall back to the default acknowledgment.
type HandlerFunc[T any] func(ctx context.Context, tc *activity.TurnContext, data T) (*AdaptiveCard, error)

// rawHandler is the erased form stored in the verb table; it decodes the raw
// action data before invoking the typed handler.
type rawHandler func(ctx context.Context, tc *activity.TurnContext, data json.RawMessage) (*AdaptiveCard, error)

type registration struct {
	verb     string
	behavior ResponseBehavior
	handle   rawHandler
}

// Router dispatches adaptive card action invokes by verb. Registrations are
// append-only; registering the same verb twice is a construction-time error
// so a handler can never be silently shadowed.
type Router struct {
	logger        *slog.Logger
	registrations map[string]*registration
}

// NewRouter creates an empty card action router.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Router{
		logger:        logger.With("component", "card_action_router"),
		registrations: make(map[string]*registration),
	}
}

// Option customizes a verb registration.
type Option func(*registration)

// WithResponseBehavior overrides the registration's delivery behavior.
func WithResponseBehavior(behavior ResponseBehavior) Option {
	return func(r *registration) {
		r.behavior = behavior
	}
}

// Register binds a verb to a typed handler. The action data of a matching
// invoke is decoded into T at the router boundary before the handler runs;
// a payload that does not decode never reaches the handler.
func Register[T any](r *Router, verb string, handler HandlerFunc[T], opts ...Option) error {
	if verb == "" {
		return errors.New("card action verb cannot be empty")
	}
	if _, exists := r.registrations[verb]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateVerb, verb)
	}

	reg := &registration{
		verb:     verb,
		behavior: ReplaceForInteractor,
		handle: func(ctx context.Context, tc *activity.TurnContext, data json.RawMessage) (*AdaptiveCard, error) {
			var payload T
			if len(data) > 0 {
				if err := json.Unmarshal(data, &payload); err != nil {
					return nil, fmt.Errorf("%w: verb %q: %v", ErrInvalidActionData, verb, err)
				}
			}
			return handler(ctx, tc, payload)
		},
	}
	for _, opt := range opts {
		opt(reg)
	}
	r.registrations[verb] = reg

	return nil
}

// Dispatch routes a card action invoke to its verb's handler and delivers the
// result according to the resolved behavior. The outstanding invoke is always
// closed: unregistered verbs get an empty acknowledgment, and every failure
// path sends a best-effort fallback acknowledgment before the error is
// returned to the turn boundary.
func (r *Router) Dispatch(ctx context.Context, tc *activity.TurnContext) error {
	verb, data := actionOf(tc.Activity)

	reg, ok := r.registrations[verb]
	if !ok {
		r.logger.DebugContext(ctx, "No handler registered for card action verb", "verb", verb)
		return tc.SendInvokeResponse(ctx, newEmptyResponse())
	}

	log := r.logger.With("verb", verb)

	card, err := reg.handle(ctx, tc, data)
	if err != nil {
		if errors.Is(err, ErrInvalidActionData) {
			log.WarnContext(ctx, "Card action data failed to decode", "error", err)
			if ackErr := tc.SendInvokeResponse(ctx, newBadRequestResponse("invalid action data")); ackErr != nil {
				log.ErrorContext(ctx, "Failed to send bad request acknowledgment", "error", ackErr)
			}
			return err
		}

		log.ErrorContext(ctx, "Card action handler failed", "error", err)
		if ackErr := tc.SendInvokeResponse(ctx, newDefaultResponse()); ackErr != nil {
			log.ErrorContext(ctx, "Failed to send fallback acknowledgment", "error", ackErr)
		}
		return fmt.Errorf("card action %q: %w", verb, err)
	}

	if card == nil {
		return tc.SendInvokeResponse(ctx, newDefaultResponse())
	}
	if err := card.validate(); err != nil {
		if ackErr := tc.SendInvokeResponse(ctx, newDefaultResponse()); ackErr != nil {
			log.ErrorContext(ctx, "Failed to send fallback acknowledgment", "error", ackErr)
		}
		return fmt.Errorf("card action %q: %w", verb, err)
	}

	behavior := resolveBehavior(reg.behavior, card)
	if behavior != reg.behavior {
		log.DebugContext(ctx, "Escalated delivery behavior for refreshable card",
			"configured", reg.behavior.String(), "resolved", behavior.String())
	}

	return r.deliver(ctx, tc, card, behavior, log)
}

// resolveBehavior computes the effective delivery behavior for one dispatch.
// A self-refreshing card cannot be privately replaced, so ReplaceForInteractor
// escalates to ReplaceForAll. The registration itself is never mutated.
func resolveBehavior(configured ResponseBehavior, card *AdaptiveCard) ResponseBehavior {
	if card.Refresh != nil && configured == ReplaceForInteractor {
		return ReplaceForAll
	}

	return configured
}

func (r *Router) deliver(ctx context.Context, tc *activity.TurnContext, card *AdaptiveCard, behavior ResponseBehavior, log *slog.Logger) error {
	response, err := NewAdaptiveCardResponse(card)
	if err != nil {
		return err
	}

	switch behavior {
	case NewForAll:
		if err := tc.SendInvokeResponse(ctx, newDefaultResponse()); err != nil {
			return fmt.Errorf("failed to close invoke: %w", err)
		}
		if _, err := tc.SendActivity(ctx, activity.NewCardMessage(card)); err != nil {
			return fmt.Errorf("failed to send card message: %w", err)
		}

	case ReplaceForAll:
		update := activity.NewCardMessage(card)
		update.ID = tc.Activity.ReplyToID
		if err := tc.UpdateActivity(ctx, update); err != nil {
			log.ErrorContext(ctx, "Failed to update card message", "error", err)
			if ackErr := tc.SendInvokeResponse(ctx, newDefaultResponse()); ackErr != nil {
				log.ErrorContext(ctx, "Failed to send fallback acknowledgment", "error", ackErr)
			}
			return fmt.Errorf("failed to update card message: %w", err)
		}
		if err := tc.SendInvokeResponse(ctx, response); err != nil {
			return fmt.Errorf("failed to close invoke: %w", err)
		}

	default: // ReplaceForInteractor
		if err := tc.SendInvokeResponse(ctx, response); err != nil {
			return fmt.Errorf("failed to close invoke: %w", err)
		}
	}

	return nil
}

// actionOf extracts the verb and raw data of a card action invoke. Malformed
// activities yield an empty verb, which dispatches as unregistered.
func actionOf(a *activity.Activity) (string, json.RawMessage) {
	if a == nil || a.Value == nil || a.Value.Action == nil {
		return "", nil
	}

	return a.Value.Action.Verb, a.Value.Action.Data
}
