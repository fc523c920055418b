package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wolfman30/review-collector/internal/review"
)

// ReviewSink persists a completed review.
type ReviewSink interface {
	Insert(ctx context.Context, rec review.Review) (review.Review, error)
}

// Outcome tells the store what to do with the state once a transition ran.
type Outcome struct {
	deleteState bool
	review      *review.Review
}

// KeepState persists the (possibly mutated) state.
var KeepState = Outcome{}

// DeleteState removes the contact's state entirely.
var DeleteState = Outcome{deleteState: true}

// CompleteReview removes the contact's state and persists rec in the same
// atomic unit as the deletion. A failure of either write leaves neither
// behind, so a retried delivery finds the state where it was.
func CompleteReview(rec review.Review) Outcome {
	return Outcome{deleteState: true, review: &rec}
}

// TransitionFunc mutates a contact's state and reports whether the state
// should be kept, deleted, or completed into a review. Returning an error
// aborts the transition and leaves stored state untouched.
type TransitionFunc func(state *State) (Outcome, error)

// Store persists at most one conversation state per contact number.
//
// Implementations must serialize all operations for the same contact number:
// two simultaneous transitions for one contact must run one after the other,
// each seeing the state the previous one left behind. Operations for
// different contacts must not block each other.
type Store interface {
	// Transition runs fn with exclusive access to the contact's state,
	// creating it at StepProduct if absent. The get-or-create, fn, and
	// persist-or-delete sequence is a single atomic unit; an outcome carrying
	// a review persists it within that same unit.
	Transition(ctx context.Context, contactNumber string, fn TransitionFunc) error
	// Reset atomically returns the contact to a fresh StepProduct state,
	// discarding any partially collected fields. Safe when no state exists.
	Reset(ctx context.Context, contactNumber string) error
	// Delete removes any state for the contact. Absent state is not an error.
	Delete(ctx context.Context, contactNumber string) error
}

// InMemoryStore keeps conversation state in process memory. Used for local
// development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	states  map[string]State
	locks   sync.Map // contactNumber -> *sync.Mutex
	reviews ReviewSink
}

// NewInMemoryStore creates an empty in-memory conversation store. Completed
// reviews are written to reviews.
func NewInMemoryStore(reviews ReviewSink) *InMemoryStore {
	if reviews == nil {
		panic("conversation: review sink cannot be nil")
	}
	return &InMemoryStore{states: make(map[string]State), reviews: reviews}
}

func (s *InMemoryStore) lockFor(contactNumber string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(contactNumber, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Transition implements Store.
func (s *InMemoryStore) Transition(ctx context.Context, contactNumber string, fn TransitionFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.lockFor(contactNumber)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	state, ok := s.states[contactNumber]
	s.mu.RUnlock()
	if !ok {
		state = *NewState(contactNumber)
	}

	// fn works on a copy so an aborted transition leaves nothing behind.
	outcome, err := fn(&state)
	if err != nil {
		return err
	}

	// The review insert happens before the state change so an insert failure
	// keeps the state for the contact to retry.
	if outcome.review != nil {
		if _, err := s.reviews.Insert(ctx, *outcome.review); err != nil {
			return fmt.Errorf("conversation: store review: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if outcome.deleteState {
		delete(s.states, contactNumber)
	} else {
		state.UpdatedAt = time.Now().UTC()
		s.states[contactNumber] = state
	}
	return nil
}

// Reset implements Store.
func (s *InMemoryStore) Reset(ctx context.Context, contactNumber string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.lockFor(contactNumber)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	s.states[contactNumber] = *NewState(contactNumber)
	s.mu.Unlock()
	return nil
}

// Delete implements Store.
func (s *InMemoryStore) Delete(ctx context.Context, contactNumber string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.lockFor(contactNumber)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	delete(s.states, contactNumber)
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the contact's state, if present. Test helper.
func (s *InMemoryStore) Get(contactNumber string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[contactNumber]
	return state, ok
}
