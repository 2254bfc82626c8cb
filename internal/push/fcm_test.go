package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFCMSenderReportsInvalidTokens(t *testing.T) {
	var got fcmRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": 1,
			"failure": 2,
			"results": []map[string]string{
				{"message_id": "m1"},
				{"error": "NotRegistered"},
				{"error": "InvalidRegistration"},
			},
		})
	}))
	defer server.Close()

	sender := NewFCMSender(server.URL, "test-key")
	invalid, err := sender.Send(context.Background(), []string{"tok-a", "tok-b", "tok-c"}, Message{
		Title: "New expense",
		Body:  "Alice added an expense",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"tok-b", "tok-c"}, invalid)
	assert.Equal(t, []string{"tok-a", "tok-b", "tok-c"}, got.RegistrationIDs)
	assert.Equal(t, "New expense", got.Notification.Title)
}

func TestFCMSenderEmptyTokens(t *testing.T) {
	sender := NewFCMSender("http://unused", "key")
	invalid, err := sender.Send(context.Background(), nil, Message{})
	require.NoError(t, err)
	assert.Empty(t, invalid)
}

func TestFCMSenderProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sender := NewFCMSender(server.URL, "bad-key")
	_, err := sender.Send(context.Background(), []string{"tok"}, Message{})
	assert.Error(t, err)
}
