package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"grouporder/apperr"
	"grouporder/logger"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Code: code, Message: message}})
}

// respondAppError maps the apperr taxonomy onto HTTP statuses.
func respondAppError(c *gin.Context, log *logger.Logger, err error) {
	var (
		nf *apperr.NotFoundError
		v  *apperr.ValidationError
		wf *apperr.WriteFailure
	)
	switch {
	case errors.As(err, &nf):
		respondError(c, http.StatusNotFound, "not_found", nf.Error())
	case errors.As(err, &v):
		respondError(c, http.StatusBadRequest, "invalid", v.Error())
	case errors.Is(err, apperr.ErrBusy):
		respondError(c, http.StatusConflict, "busy", err.Error())
	case errors.Is(err, apperr.ErrSessionClosed):
		respondError(c, http.StatusConflict, "session_closed", err.Error())
	case errors.As(err, &wf):
		log.Warn("store write failed", "path", c.FullPath(), "op", wf.Op, "error", wf.Err)
		respondError(c, http.StatusBadGateway, "write_failed", "Order could not be saved, try again")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "timeout", "Store did not answer in time")
	default:
		_ = c.Error(err)
		log.Error("request failed", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "internal", "Internal error")
	}
}

func requestContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}
