package conversation

import (
	"errors"
	"fmt"
	"time"
)

// Step identifies which piece of the review dialogue is collected next.
type Step string

const (
	// StepProduct waits for the product name. Every conversation starts here.
	StepProduct Step = "product"
	// StepUser waits for the reviewer's name.
	StepUser Step = "user"
	// StepReview waits for the review text itself.
	StepReview Step = "review"
)

// ErrUnknownStep is returned when storage yields a step outside the three
// defined dialogue phases.
var ErrUnknownStep = errors.New("unknown conversation step")

// ParseStep converts a stored string into a Step, rejecting anything that is
// not one of the three defined phases.
func ParseStep(s string) (Step, error) {
	switch Step(s) {
	case StepProduct, StepUser, StepReview:
		return Step(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
}

// State tracks a single contact's progress through the review dialogue.
// At most one State exists per contact number.
type State struct {
	ContactNumber string
	Step          Step
	ProductName   string // empty until the product step completes
	UserName      string // empty until the user step completes
	UpdatedAt     time.Time
}

// NewState returns a fresh state at the start of the dialogue.
func NewState(contactNumber string) *State {
	return &State{
		ContactNumber: contactNumber,
		Step:          StepProduct,
		UpdatedAt:     time.Now().UTC(),
	}
}
