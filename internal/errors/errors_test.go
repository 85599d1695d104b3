package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pribylovaa/go-threads/internal/service"
	"github.com/pribylovaa/go-threads/internal/validation"
	"github.com/stretchr/testify/require"
)

func TestToHTTP_BaseMapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"invalid_argument", fmt.Errorf("op: %w", service.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{"bad_request", ErrBadRequest, http.StatusBadRequest, "invalid_argument"},
		{"not_found", fmt.Errorf("op: %w", service.ErrNotFound), http.StatusNotFound, "not_found"},
		{"unauth", fmt.Errorf("op: %w", service.ErrUnauthenticated), http.StatusUnauthorized, "unauthenticated"},
		{"deadline", fmt.Errorf("op: %w: %w", service.ErrInternal, context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"canceled", context.Canceled, StatusClientClosedRequest, "canceled"},
		{"internal", fmt.Errorf("op: %w", service.ErrInternal), http.StatusInternalServerError, "internal"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

// TestToHTTP_ValidationFields — ошибки валидации отдают поля формы.
func TestToHTTP_ValidationFields(t *testing.T) {
	verr := validation.Post("ab", "")
	err := fmt.Errorf("op: %w: %w", service.ErrInvalidArgument, verr)

	gotStatus, resp := ToHTTP(err)
	require.Equal(t, http.StatusBadRequest, gotStatus)
	require.Len(t, resp.Error.Fields, 2)
	require.Equal(t, "post", resp.Error.Fields[0].Field)
	require.Equal(t, "minimum 3 characters", resp.Error.Fields[0].Message)
	require.Equal(t, "accountId", resp.Error.Fields[1].Field)
}

// TestWriteError_IncludesRequestID — конверт ошибки несёт X-Request-Id и не раскрывает детали.
func TestWriteError_IncludesRequestID(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "rid-1")

	WriteError(rr, req, fmt.Errorf("mongo: secret host unreachable"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Equal(t, "rid-1", body.Error.RequestID)
	require.Equal(t, "internal error", body.Error.Message)
	require.NotContains(t, rr.Body.String(), "secret host")
}
