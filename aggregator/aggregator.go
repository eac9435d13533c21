// Package aggregator merges one session's entries into the shared order
// document and keeps the order's running total.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"grouporder/apperr"
	"grouporder/editor"
	"grouporder/logger"
	"grouporder/models"
	"grouporder/store"
)

// Policy selects how Total_Amount is updated.
type Policy string

const (
	// PolicyAtomic adds the session total server-side in the same update that
	// writes the member. Concurrent submitters never lose each other's amount.
	PolicyAtomic Policy = "atomic"
	// PolicyReadModifyWrite reads the total, adds locally and writes it back.
	// Two submitters that both read before either writes lose one update.
	PolicyReadModifyWrite Policy = "read-modify-write"
)

const maxKeyAttempts = 8

// Recorder receives one call per submit attempt.
type Recorder interface {
	ObserveSubmission(policy, outcome string, amount float64)
}

type Result struct {
	OrderID      string               `json:"orderId"`
	MemberKey    string               `json:"memberKey"`
	Member       models.Member        `json:"member"`
	Items        []models.OrderedItem `json:"orderedItems"`
	SessionTotal decimal.Decimal      `json:"sessionTotal"`
	TotalAmount  float64              `json:"totalAmount"`
}

type Aggregator struct {
	orders   store.OrderStore
	policy   Policy
	now      func() time.Time
	log      *logger.Logger
	recorder Recorder
}

type Option func(*Aggregator)

func WithPolicy(p Policy) Option { return func(a *Aggregator) { a.policy = p } }

func WithClock(now func() time.Time) Option { return func(a *Aggregator) { a.now = now } }

func WithLogger(l *logger.Logger) Option { return func(a *Aggregator) { a.log = l } }

func WithRecorder(r Recorder) Option { return func(a *Aggregator) { a.recorder = r } }

func New(orders store.OrderStore, opts ...Option) *Aggregator {
	a := &Aggregator{
		orders: orders,
		policy: PolicyAtomic,
		now:    time.Now,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Policy() Policy { return a.policy }

// Submit records name's entries as a new member of the order and updates
// the order total. Nothing is written when validation fails or the order does
// not exist. Store failures come back as *apperr.WriteFailure.
func (a *Aggregator) Submit(ctx context.Context, orderID, name string, entries []editor.Entry) (*Result, error) {
	if strings.TrimSpace(orderID) == "" {
		a.observe("not_found", 0)
		return nil, apperr.NotFound("order", orderID)
	}

	member, items, sessionTotal, err := BuildSubmission(name, entries)
	if err != nil {
		a.observe("invalid", 0)
		return nil, err
	}

	var update store.TotalUpdate
	switch a.policy {
	case PolicyReadModifyWrite:
		order, err := a.orders.FindOrder(ctx, orderID)
		if err != nil {
			return nil, a.fail(orderID, "read order", err)
		}
		current := decimal.NewFromFloat(order.TotalAmount)
		update = store.TotalUpdate{Value: current.Add(sessionTotal).InexactFloat64()}
	default:
		update = store.TotalUpdate{Increment: true, Value: sessionTotal.InexactFloat64()}
	}

	key, stored, err := a.writeMember(ctx, orderID, member, update)
	if err != nil {
		return nil, a.fail(orderID, "write member", err)
	}

	a.observe("ok", sessionTotal.InexactFloat64())
	a.log.Info("order submission stored",
		"order_id", orderID,
		"member_key", key,
		"lines", len(items),
		"session_total", sessionTotal.StringFixed(2),
		"total_amount", stored,
		"policy", string(a.policy),
	)

	return &Result{
		OrderID:      orderID,
		MemberKey:    key,
		Member:       member,
		Items:        items,
		SessionTotal: sessionTotal,
		TotalAmount:  stored,
	}, nil
}

// writeMember keys the member by submission time. When two submitters land
// on the same millisecond the later one moves forward a millisecond.
func (a *Aggregator) writeMember(ctx context.Context, orderID string, member models.Member, update store.TotalUpdate) (string, float64, error) {
	at := a.now()
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key := models.MemberKey(at)
		stored, err := a.orders.AddMember(ctx, orderID, key, member, update)
		if errors.Is(err, store.ErrMemberExists) {
			at = at.Add(time.Millisecond)
			continue
		}
		return key, stored, err
	}
	return "", 0, fmt.Errorf("no free member key after %d attempts: %w", maxKeyAttempts, store.ErrMemberExists)
}

func (a *Aggregator) fail(orderID, op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		a.observe("not_found", 0)
		return apperr.NotFound("order", orderID)
	}
	a.observe("write_failed", 0)
	a.log.Warn("order submission failed", "order_id", orderID, "op", op, "error", err)
	return &apperr.WriteFailure{Op: op, Err: err}
}

func (a *Aggregator) observe(outcome string, amount float64) {
	if a.recorder != nil {
		a.recorder.ObserveSubmission(string(a.policy), outcome, amount)
	}
}
