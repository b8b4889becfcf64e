package rpc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebamiro/trustly/fault"
)

func TestClientPost(t *testing.T) {
	var gotPath, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)

		switch r.URL.Query().Get("status") {
		case "400":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`bad request`))
		case "503":
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`down`))
		default:
			_, _ = w.Write([]byte(`{"version":"1.1"}`))
		}
	}))
	defer srv.Close()

	client := Client{URL: srv.URL}

	t.Run("Success", func(t *testing.T) {
		reply, err := client.Post(context.Background(), "/api/1", "Deposit", []byte(`{"method":"Deposit"}`))
		require.NoError(t, err)

		assert.Equal(t, "/api/1", gotPath)
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, `{"method":"Deposit"}`, gotBody)
		assert.Equal(t, http.StatusOK, reply.Status)
		assert.Equal(t, "OK", reply.Reason)
		assert.Equal(t, `{"version":"1.1"}`, string(reply.Body))
	})

	t.Run("Client error is a data fault", func(t *testing.T) {
		_, err := client.Post(context.Background(), "/api/1?status=400", "Refund", []byte(`{"a":1}`))
		require.Error(t, err)
		assert.ErrorIs(t, err, fault.ErrData)

		var f *fault.Error
		require.True(t, errors.As(err, &f))
		assert.Equal(t, http.StatusBadRequest, f.Status)
		assert.Equal(t, "bad request", f.Body)
		assert.Equal(t, "Refund", f.Method)
		assert.Equal(t, `{"a":1}`, f.RequestBody)
		assert.Equal(t, `the server responded with status 400 -> 400: bad request - Refund, {"a":1}`, f.Error())
	})

	t.Run("Server error is a connection fault", func(t *testing.T) {
		_, err := client.Post(context.Background(), "/api/1?status=503", "Refund", nil)
		assert.ErrorIs(t, err, fault.ErrConnection)
	})

	t.Run("Cancelled context is a connection fault", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.Post(ctx, "/api/1", "Refund", nil)
		assert.ErrorIs(t, err, fault.ErrConnection)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type failingHTTP struct{ err error }

func (f failingHTTP) Do(*http.Request) (*http.Response, error) { return nil, f.err }

func TestClientPostNetworkFailure(t *testing.T) {
	cause := errors.New("connection refused")
	client := Client{HTTP: failingHTTP{err: cause}, URL: "https://test.trustly.com"}

	_, err := client.Post(context.Background(), "/api/1", "Void", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrConnection)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "rpc, request execution")
}

func TestClientPostBadURL(t *testing.T) {
	client := Client{URL: "://missing-scheme"}

	_, err := client.Post(context.Background(), "/api/1", "Void", nil)
	assert.ErrorIs(t, err, fault.ErrConfiguration)
}
