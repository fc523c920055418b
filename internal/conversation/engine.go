package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/wolfman30/review-collector/internal/observability/metrics"
	"github.com/wolfman30/review-collector/internal/review"
	"github.com/wolfman30/review-collector/pkg/logging"
)

// Result is what the engine hands back to the webhook adapter.
type Result struct {
	// Reply is the conversational response to send to the contact.
	Reply string
	// Review is set when this message completed the dialogue.
	Review *review.Review
}

const (
	replyRetry   = "Sorry, I didn't catch that. Please send the text again."
	replyReset   = "Conversation reset. Which product is this review for?"
	replyAskName = "Thanks! What's your name?"

	// unknownField fills user or product name when a state reaches the final
	// step without them. That should be impossible through the normal flow;
	// kept so a manually edited row cannot block review collection.
	unknownField = "Unknown"
)

var resetKeywords = map[string]struct{}{
	"reset":   {},
	"restart": {},
	"start":   {},
}

// Engine drives the three-step review dialogue. It owns every lifecycle
// transition of conversation state and the construction of review records;
// the store owns persistence, per-contact serialization, and the atomic
// write of a completed review.
type Engine struct {
	states  Store
	metrics *metrics.ConversationMetrics
	logger  *logging.Logger
}

// NewEngine creates a conversation engine. metrics may be nil.
func NewEngine(states Store, m *metrics.ConversationMetrics, logger *logging.Logger) *Engine {
	if states == nil {
		panic("conversation: state store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		states:  states,
		metrics: m,
		logger:  logger,
	}
}

// Process applies one message from a contact to their conversation and
// returns the reply to send back. Exactly one state transition happens per
// call; a storage failure aborts the transition and surfaces as an error,
// never as reply text.
func (e *Engine) Process(ctx context.Context, contactNumber, body string) (Result, error) {
	text := strings.TrimSpace(body)
	if text == "" {
		return Result{Reply: replyRetry}, nil
	}

	// Reset wins over whatever step the contact is on, including mid-review.
	if _, ok := resetKeywords[strings.ToLower(text)]; ok {
		if err := e.states.Reset(ctx, contactNumber); err != nil {
			return Result{}, fmt.Errorf("conversation: reset %s: %w", contactNumber, err)
		}
		e.metrics.ObserveTransition("reset")
		e.logger.Info("conversation reset", "contact", contactNumber)
		return Result{Reply: replyReset}, nil
	}

	var res Result
	var observedStep Step
	err := e.states.Transition(ctx, contactNumber, func(state *State) (Outcome, error) {
		observedStep = state.Step
		switch state.Step {
		case StepProduct:
			state.ProductName = text
			state.Step = StepUser
			res.Reply = replyAskName
			return KeepState, nil

		case StepUser:
			state.UserName = text
			state.Step = StepReview
			res.Reply = fmt.Sprintf("Hi %s! Please send your review for %s.", titleCase(state.UserName), state.ProductName)
			return KeepState, nil

		case StepReview:
			rec := review.Review{
				ID:            uuid.New(),
				ContactNumber: state.ContactNumber,
				UserName:      orUnknown(state.UserName),
				ProductName:   orUnknown(state.ProductName),
				Body:          text,
				CreatedAt:     time.Now().UTC(),
			}
			res.Review = &rec
			res.Reply = fmt.Sprintf("Thanks %s — your review for %s has been recorded.", rec.UserName, rec.ProductName)
			return CompleteReview(rec), nil

		default:
			// The stores reject unknown steps on read, so this is unreachable.
			return KeepState, fmt.Errorf("conversation: %w: %q", ErrUnknownStep, state.Step)
		}
	})
	if err != nil {
		return Result{}, err
	}

	e.metrics.ObserveTransition(string(observedStep))
	if res.Review != nil {
		e.metrics.ObserveCompleted()
		e.logger.Info("review recorded",
			"contact", contactNumber,
			"review_id", res.Review.ID,
			"product", res.Review.ProductName,
		)
	}
	return res, nil
}

func orUnknown(value string) string {
	if value == "" {
		return unknownField
	}
	return value
}

// titleCase uppercases the first letter of each word and lowercases the
// rest, matching how the greeting addresses the reviewer.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
