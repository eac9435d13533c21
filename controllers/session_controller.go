package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"grouporder/aggregator"
	"grouporder/apperr"
	"grouporder/catalog"
	"grouporder/confirmation"
	"grouporder/editor"
	"grouporder/logger"
)

// SessionController drives the order form: open a session for an order,
// edit its entries one operation at a time, then submit it.
type SessionController struct {
	sessions   editor.SessionStore
	loader     *catalog.Loader
	aggregator *aggregator.Aggregator
	currency   string
	timeout    time.Duration
	log        *logger.Logger
}

func NewSessionController(sessions editor.SessionStore, loader *catalog.Loader, agg *aggregator.Aggregator, currency string, timeout time.Duration, log *logger.Logger) *SessionController {
	return &SessionController{
		sessions:   sessions,
		loader:     loader,
		aggregator: agg,
		currency:   currency,
		timeout:    timeout,
		log:        log,
	}
}

// Create loads the order's producer and stores a ready session. If the
// client goes away during the load, nothing is stored.
func (s *SessionController) Create(c *gin.Context) {
	orderID := c.Param("orderId")
	ctx, cancel := requestContext(c, s.timeout)
	defer cancel()

	sess := editor.NewSession(orderID)
	cat, err := s.loader.LoadForOrder(ctx, orderID)
	if c.Request.Context().Err() != nil {
		s.log.Debug("order form abandoned", "order_id", orderID, "session_id", sess.ID)
		return
	}
	if apperr.IsNotFound(err) {
		respondAppError(c, s.log, err)
		return
	}
	if err != nil {
		sess.Fail(err)
		if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
			s.log.Warn("save failed session", "session_id", sess.ID, "error", saveErr)
		}
		s.log.Warn("order form load failed", "order_id", orderID, "session_id", sess.ID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   APIError{Code: "load_failed", Message: "Could not load the order form"},
			"session": sess,
		})
		return
	}

	sess.Ready(cat.Producer, cat.Entries)
	if err := s.sessions.Save(ctx, sess); err != nil {
		respondAppError(c, s.log, &apperr.WriteFailure{Op: "save session", Err: err})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sess})
}

func (s *SessionController) Get(c *gin.Context) {
	ctx, cancel := requestContext(c, s.timeout)
	defer cancel()

	sess, err := s.sessions.Load(ctx, c.Param("sessionId"))
	if err != nil {
		respondAppError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

func (s *SessionController) Increment(c *gin.Context) { s.edit(c, editor.OpIncrement) }

func (s *SessionController) Decrement(c *gin.Context) { s.edit(c, editor.OpDecrement) }

func (s *SessionController) Duplicate(c *gin.Context) { s.edit(c, editor.OpDuplicate) }

func (s *SessionController) Remove(c *gin.Context) { s.edit(c, editor.OpRemove) }

func (s *SessionController) SetOption(c *gin.Context) { s.edit(c, editor.OpSetOption) }

func (s *SessionController) edit(c *gin.Context, kind editor.OpKind) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondAppError(c, s.log, apperr.Invalid("index", "must be an integer"))
		return
	}
	op := editor.Op{Kind: kind, Index: index}
	if kind == editor.OpSetOption {
		var body struct {
			Option string `json:"option" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondAppError(c, s.log, apperr.Invalid("option", "is required"))
			return
		}
		op.Option = body.Option
	}

	ctx, cancel := requestContext(c, s.timeout)
	defer cancel()

	id := c.Param("sessionId")
	release, err := s.sessions.Acquire(ctx, id)
	if err != nil {
		respondAppError(c, s.log, err)
		return
	}
	defer release()

	sess, err := s.sessions.Load(ctx, id)
	if err != nil {
		respondAppError(c, s.log, err)
		return
	}
	if err := sess.Edit(op); err != nil {
		respondAppError(c, s.log, err)
		return
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		respondAppError(c, s.log, &apperr.WriteFailure{Op: "save session", Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

// Submit hands the session's entries to the aggregator. The session lock is
// held for the whole submit, so a second submit gets 409 while the first is
// in flight. The session is stored as submitting before the order write, so
// it cannot be replayed even if the final save is lost. On a failed write the
// session goes back to ready with its entries and can be submitted again,
// unless the write timed out and may have landed.
func (s *SessionController) Submit(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondAppError(c, s.log, apperr.Invalid("body", "expected a JSON object with a name"))
		return
	}

	ctx, cancel := requestContext(c, s.timeout)
	defer cancel()

	id := c.Param("sessionId")
	release, err := s.sessions.Acquire(ctx, id)
	if err != nil {
		respondAppError(c, s.log, err)
		return
	}
	defer release()

	sess, err := s.sessions.Load(ctx, id)
	if err != nil {
		respondAppError(c, s.log, err)
		return
	}
	if err := sess.CanSubmit(); err != nil {
		respondAppError(c, s.log, err)
		return
	}
	entries := sess.Entries.Entries()
	if _, _, _, err := aggregator.BuildSubmission(body.Name, entries); err != nil {
		respondAppError(c, s.log, err)
		return
	}

	if err := sess.BeginSubmit(); err != nil {
		respondAppError(c, s.log, err)
		return
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		respondAppError(c, s.log, &apperr.WriteFailure{Op: "save session", Err: err})
		return
	}

	res, err := s.aggregator.Submit(ctx, sess.OrderID, body.Name, entries)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			// The write may have landed; the session stays submitting.
			s.log.Warn("submit outcome unknown", "session_id", sess.ID, "order_id", sess.OrderID, "error", err)
			respondAppError(c, s.log, err)
			return
		}
		sess.AbortSubmit()
		if saveErr := s.persist(ctx, sess); saveErr != nil {
			s.log.Error("restore session after failed submit", "session_id", sess.ID, "error", saveErr)
		}
		respondAppError(c, s.log, err)
		return
	}

	sess.MarkSubmitted(res.MemberKey, res.Items)
	if err := s.persist(ctx, sess); err != nil {
		// The stored session stays submitting and refuses another submit.
		s.log.Warn("save submitted session", "session_id", sess.ID, "member_key", res.MemberKey, "error", err)
	}

	receipt := confirmation.Render(res.Items)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Order submitted successfully",
		"orderId":      res.OrderID,
		"memberKey":    res.MemberKey,
		"orderedItems": res.Items,
		"sessionTotal": res.SessionTotal.StringFixed(2),
		"totalAmount":  res.TotalAmount,
		"receipt":      receipt,
		"text":         receipt.Text(s.currency),
	})
}

// persist saves the session after the order write. It outlives the request
// deadline so a slow write does not leave the stored state behind.
func (s *SessionController) persist(ctx context.Context, sess *editor.Session) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout())
	defer cancel()
	return s.sessions.Save(ctx, sess)
}

func (s *SessionController) persistTimeout() time.Duration {
	if s.timeout <= 0 {
		return 5 * time.Second
	}
	return s.timeout
}
