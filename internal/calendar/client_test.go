package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientFromEnv(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")

		_, err := NewClientFromEnv()
		assert.ErrorIs(t, err, ErrNoToken)
	})

	t.Run("token set", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "ya29.token")

		client, err := NewClientFromEnv()
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestUpcoming(t *testing.T) {
	var gotAuth string
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		q := r.URL.Query()
		gotQuery = map[string]string{
			"singleEvents": q.Get("singleEvents"),
			"orderBy":      q.Get("orderBy"),
			"maxResults":   q.Get("maxResults"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{"summary": "Standup", "status": "confirmed", "start": {"dateTime": "2026-09-01T09:30:00+02:00"}},
				{"summary": "Cancelled sync", "status": "cancelled", "start": {"dateTime": "2026-09-01T11:00:00+02:00"}},
				{"summary": "Company offsite", "status": "confirmed", "start": {"date": "2026-09-02"}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClientWithHTTP("ya29.token", server.URL, server.Client())
	client.now = func() time.Time {
		return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	}

	events, err := client.Upcoming(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer ya29.token", gotAuth)
	assert.Equal(t, "true", gotQuery["singleEvents"])
	assert.Equal(t, "startTime", gotQuery["orderBy"])
	assert.Equal(t, "10", gotQuery["maxResults"])

	require.Len(t, events, 2)
	assert.Equal(t, Event{Summary: "Standup", Start: "2026-09-01T09:30:00+02:00"}, events[0])
	assert.Equal(t, Event{Summary: "Company offsite", Start: "2026-09-02"}, events[1])
}

func TestUpcoming_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"code": 401}}`))
	}))
	defer server.Close()

	client := NewClientWithHTTP("expired", server.URL, server.Client())

	_, err := client.Upcoming(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected the token")
}

func TestUpcoming_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithHTTP("ya29.token", server.URL, server.Client())

	_, err := client.Upcoming(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
