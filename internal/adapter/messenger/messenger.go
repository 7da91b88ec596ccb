package messenger

import (
	"context"

	"github.com/Temutjin2k/ride-hail-system/pkg/logger"
	"github.com/Temutjin2k/ride-hail-system/pkg/uuid"
	ws "github.com/Temutjin2k/ride-hail-system/pkg/wsHub"
)

// PhoneDirectory resolves an opaque phone identifier to the registered-user
// id the websocket hub keys live connections by.
type PhoneDirectory interface {
	ResolveByPhone(ctx context.Context, phone string) (uuid.UUID, error)
}

// WSMessenger implements the matching core's Messenger port over the
// shared websocket connection hub: it resolves the phone to a connected
// entity and pushes the text as a structured message, falling back to a
// logged no-op "SMS" send when nobody is connected (no chat transport is
// wired). A phone that cannot be resolved at all,
// or that has no live connection, is logged and reported as a successful
// send: the notification ledger already recorded the attempt, and the
// timeout manager is the real safety net for an unreachable driver.
type WSMessenger struct {
	hub    *ws.ConnectionHub
	phones PhoneDirectory
	log    logger.Logger
}

func NewWSMessenger(hub *ws.ConnectionHub, phones PhoneDirectory, log logger.Logger) *WSMessenger {
	return &WSMessenger{hub: hub, phones: phones, log: log}
}

func (m *WSMessenger) Send(ctx context.Context, phone, text string) error {
	id, err := m.phones.ResolveByPhone(ctx, phone)
	if err != nil {
		m.log.Info(ctx, "sms fallback (phone not resolvable)", "phone", phone)
		return nil
	}

	if err := m.hub.SendTo(id, map[string]any{"type": "offer", "text": text}); err != nil {
		m.log.Info(ctx, "sms fallback (no live connection)", "phone", phone, "err", err.Error())
	}
	return nil
}
