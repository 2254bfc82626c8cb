package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FCMSender delivers messages through the Firebase Cloud Messaging HTTP API
// in one batched call per Send.
type FCMSender struct {
	endpoint  string
	serverKey string
	client    *http.Client
}

// NewFCMSender creates an FCM-backed sender
func NewFCMSender(endpoint, serverKey string) *FCMSender {
	return &FCMSender{
		endpoint:  endpoint,
		serverKey: serverKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type fcmRequest struct {
	RegistrationIDs []string `json:"registration_ids"`
	Notification    struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"notification"`
	Data map[string]string `json:"data,omitempty"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id,omitempty"`
		Error     string `json:"error,omitempty"`
	} `json:"results"`
}

// Send implements Sender. Tokens the provider reports as NotRegistered or
// InvalidRegistration are returned for deactivation; partial failure is not
// an error.
func (s *FCMSender) Send(ctx context.Context, tokens []string, msg Message) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	payload := fcmRequest{RegistrationIDs: tokens, Data: msg.Data}
	payload.Notification.Title = msg.Title
	payload.Notification.Body = msg.Body

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.serverKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("push provider returned status %d", resp.StatusCode)
	}

	var result fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}

	var invalid []string
	for i, r := range result.Results {
		if i >= len(tokens) {
			break
		}
		if r.Error == "NotRegistered" || r.Error == "InvalidRegistration" {
			invalid = append(invalid, tokens[i])
		}
	}
	return invalid, nil
}
