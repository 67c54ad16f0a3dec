package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewRESTClient(Options{BaseURL: srv.URL + "/", APIKey: "anon"})
}

func TestDo_SendsHeadersAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/rest/v1/devices", r.URL.Path)
		assert.Equal(t, "eq.cnc-001", r.URL.Query().Get("id"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "operational", body["status"])

		_, _ = io.WriteString(w, `[{"id":"cnc-001","status":"operational"}]`)
	})

	var rows []map[string]any
	err := c.Do(context.Background(), Request{
		Method:               http.MethodPatch,
		Path:                 TablePath("devices"),
		Query:                url.Values{"id": {EqFilter("cnc-001")}},
		Token:                "tok",
		Body:                 map[string]string{"status": "operational"},
		ReturnRepresentation: true,
		Result:               &rows,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "cnc-001", rows[0]["id"])
}

func TestDo_AnonymousUsesAPIKeyAsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Prefer"))
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.Do(context.Background(), Request{Method: http.MethodDelete, Path: TablePath("devices")}))
}

func TestDo_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		is     []error
		code   string
		msg    string
	}{
		{
			name:   "unique violation",
			status: http.StatusConflict,
			body:   `{"code":"23505","message":"duplicate key value violates unique constraint \"spare_parts_sku_key\""}`,
			is:     []error{common.ErrRemoteRequestFailed, common.ErrConflict},
			code:   "23505",
			msg:    `duplicate key value violates unique constraint "spare_parts_sku_key"`,
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"msg":"JWT expired"}`,
			is:     []error{common.ErrRemoteRequestFailed, common.ErrAuthenticationRequired},
			msg:    "JWT expired",
		},
		{
			name:   "auth error description",
			status: http.StatusBadRequest,
			body:   `{"error":"invalid_grant","error_description":"Invalid login credentials"}`,
			is:     []error{common.ErrRemoteRequestFailed},
			msg:    "Invalid login credentials",
		},
		{
			name:   "plain text",
			status: http.StatusBadGateway,
			body:   "upstream down",
			is:     []error{common.ErrRemoteRequestFailed},
			msg:    "upstream down",
		},
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   ``,
			is:     []error{common.ErrRemoteRequestFailed, common.ErrNotFound},
			msg:    "Not Found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			err := c.Do(context.Background(), Request{Path: TablePath("spare_parts")})
			require.Error(t, err)
			for _, target := range tt.is {
				assert.ErrorIs(t, err, target)
			}
			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.msg, apiErr.Message)
		})
	}
}

func TestDo_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewRESTClient(Options{BaseURL: srv.URL, APIKey: "anon"})
	err := c.Do(context.Background(), Request{Path: TablePath("devices")})
	require.ErrorIs(t, err, common.ErrUnavailable)
	require.False(t, errors.Is(err, common.ErrRemoteRequestFailed))
}

func TestDo_EmptyBodyWithResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	var rows []map[string]any
	err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: TablePath("devices"), Result: &rows})
	require.ErrorIs(t, err, common.ErrEmptyResponse)
}

func TestDo_RateLimitedClientStillServes(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c := NewRESTClient(Options{BaseURL: srv.URL, APIKey: "anon", RequestsPerSecond: 1000})
	for i := 0; i < 3; i++ {
		var rows []any
		require.NoError(t, c.Do(context.Background(), Request{Path: TablePath("devices"), Result: &rows}))
	}
	require.Equal(t, int32(3), calls.Load())
}

func TestDo_RateLimiterHonoursCancelledContext(t *testing.T) {
	c := NewRESTClient(Options{BaseURL: "http://127.0.0.1:1", RequestsPerSecond: 0.001})
	// Drain the only token so the next call has to wait.
	c.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Do(ctx, Request{Path: TablePath("devices")})
	require.ErrorIs(t, err, common.ErrUnavailable)
}
