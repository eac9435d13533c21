package editor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"grouporder/apperr"
	"grouporder/models"
)

type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateFailed     State = "failed"
	// StateSubmitting is stored before the order write. A session found in
	// this state may already be part of the order and cannot submit again.
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
)

// Session is the state of one order form: the producer being ordered from
// and the entries the user is editing. It replaces any view-global state.
type Session struct {
	ID           string               `json:"id"`
	OrderID      string               `json:"orderId"`
	Producer     models.ProducerInfo  `json:"producer"`
	Entries      Sequence             `json:"entries"`
	State        State                `json:"state"`
	Error        string               `json:"error,omitempty"`
	MemberKey    string               `json:"memberKey,omitempty"`
	OrderedItems []models.OrderedItem `json:"orderedItems,omitempty"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}

func NewSession(orderID string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		State:     StateLoading,
		UpdatedAt: time.Now().UTC(),
	}
}

func (s *Session) Ready(producer models.ProducerInfo, entries Sequence) {
	s.Producer = producer
	s.Entries = entries
	s.State = StateReady
	s.Error = ""
	s.touch()
}

func (s *Session) Fail(err error) {
	s.State = StateFailed
	s.Error = err.Error()
	s.touch()
}

// Edit applies op to the entries. Only ready sessions accept edits.
func (s *Session) Edit(op Op) error {
	if err := s.editable(); err != nil {
		return err
	}
	next, err := s.Entries.Apply(op)
	if err != nil {
		return err
	}
	s.Entries = next
	s.touch()
	return nil
}

func (s *Session) editable() error {
	switch s.State {
	case StateReady:
		return nil
	case StateSubmitted, StateSubmitting:
		return apperr.ErrSessionClosed
	default:
		return apperr.Invalidf("state", "session is %s", s.State)
	}
}

// CanSubmit reports whether the session may be handed to the aggregator.
func (s *Session) CanSubmit() error {
	return s.editable()
}

// BeginSubmit moves a ready session to submitting.
func (s *Session) BeginSubmit() error {
	if err := s.editable(); err != nil {
		return err
	}
	s.State = StateSubmitting
	s.touch()
	return nil
}

// AbortSubmit puts a session whose submit never reached the order back to ready.
func (s *Session) AbortSubmit() {
	if s.State == StateSubmitting {
		s.State = StateReady
		s.touch()
	}
}

func (s *Session) MarkSubmitted(memberKey string, items []models.OrderedItem) {
	s.State = StateSubmitted
	s.MemberKey = memberKey
	s.OrderedItems = items
	s.touch()
}

func (s *Session) touch() { s.UpdatedAt = time.Now().UTC() }

// SessionStore keeps sessions between requests. Acquire gives the caller
// exclusive use of one session until release is called; a second Acquire
// fails with apperr.ErrBusy instead of waiting.
type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Acquire(ctx context.Context, id string) (release func(), err error)
}
