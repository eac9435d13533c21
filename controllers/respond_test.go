package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grouporder/apperr"
	"grouporder/logger"
)

func TestRespondAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.NotFound("order", "o1"), http.StatusNotFound, "not_found"},
		{fmt.Errorf("load: %w", apperr.NotFound("producer", "p1")), http.StatusNotFound, "not_found"},
		{apperr.Invalid("name", "is required"), http.StatusBadRequest, "invalid"},
		{apperr.ErrBusy, http.StatusConflict, "busy"},
		{apperr.ErrSessionClosed, http.StatusConflict, "session_closed"},
		{&apperr.WriteFailure{Op: "write member", Err: errors.New("socket closed")}, http.StatusBadGateway, "write_failed"},
		{fmt.Errorf("find order: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondAppError(c, logger.Nop(), tc.err)

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		var body ErrorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Error.Code)
		assert.NotEmpty(t, body.Error.Message)
	}
}
