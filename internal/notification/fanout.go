package notification

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jdoshi/famledger/internal/push"
)

// Dispatcher persists notification events and attempts push delivery.
// Implementations must never fail the caller: push problems are logged and
// swallowed.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt Event)
}

// DeviceResolver resolves users to their deliverable push tokens and prunes
// tokens the provider reports as stale.
type DeviceResolver interface {
	Tokens(ctx context.Context, userIDs []string) ([]string, error)
	DeactivateToken(ctx context.Context, token string) error
}

// Fanout writes one inbox row per receiver and sends one batched push call
// covering all receivers' devices.
type Fanout struct {
	store   Store
	devices DeviceResolver
	sender  push.Sender
	logger  zerolog.Logger
}

// NewFanout creates a notification fan-out dispatcher
func NewFanout(store Store, devices DeviceResolver, sender push.Sender, logger zerolog.Logger) *Fanout {
	return &Fanout{store: store, devices: devices, sender: sender, logger: logger}
}

// Dispatch implements Dispatcher
func (f *Fanout) Dispatch(ctx context.Context, evt Event) {
	for _, receiverID := range evt.Receivers {
		n := &Notification{
			Type:       evt.Type,
			Title:      evt.Title,
			Message:    evt.Message,
			ReceiverID: receiverID,
			Actionable: evt.Actionable,
		}
		if evt.FamilyID != "" {
			n.FamilyID = strPtr(evt.FamilyID)
		}
		if evt.FamilyAlias != "" {
			n.FamilyAlias = strPtr(evt.FamilyAlias)
		}
		if evt.SenderID != "" {
			n.SenderID = strPtr(evt.SenderID)
		}
		if evt.SenderName != "" {
			n.SenderName = strPtr(evt.SenderName)
		}

		if _, err := f.store.Create(ctx, n); err != nil {
			f.logger.Error().Err(err).
				Str("receiver_id", receiverID).
				Str("type", string(evt.Type)).
				Msg("failed to persist notification")
		}
	}

	f.pushToReceivers(ctx, evt)
}

func (f *Fanout) pushToReceivers(ctx context.Context, evt Event) {
	tokens, err := f.devices.Tokens(ctx, evt.Receivers)
	if err != nil {
		f.logger.Warn().Err(err).Msg("failed to resolve push tokens")
		return
	}
	if len(tokens) == 0 {
		return
	}

	msg := push.Message{
		Title: evt.Title,
		Body:  evt.Message,
		Data: map[string]string{
			"type": string(evt.Type),
		},
	}
	if evt.FamilyID != "" {
		msg.Data["family_id"] = evt.FamilyID
	}

	invalid, err := f.sender.Send(ctx, tokens, msg)
	if err != nil {
		f.logger.Warn().Err(err).Int("tokens", len(tokens)).Msg("push delivery failed")
		return
	}

	for _, token := range invalid {
		if err := f.devices.DeactivateToken(ctx, token); err != nil {
			f.logger.Warn().Err(err).Msg("failed to deactivate stale token")
		}
	}
}

func strPtr(s string) *string {
	return &s
}
