package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/gridpulse/streetlight-dispatch/internal/config"
	"github.com/gridpulse/streetlight-dispatch/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	cfg           config.NotificationConfig
	subscriptions []events.Unsubscribe
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events. Call Stop to tear the
// subscriptions back down.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.subscriptions = append(n.subscriptions,
		n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated),
		n.dispatcher.Subscribe(events.EventTicketClaimed, n.handleTicketClaimed),
		n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned),
		n.dispatcher.Subscribe(events.EventTicketResolved, n.handleTicketResolved),
		n.dispatcher.Subscribe(events.EventAssetStatusChanged, n.handleAssetStatusChanged),
	)
}

// Stop disposes all event subscriptions. Safe to call more than once.
func (n *NotificationService) Stop() {
	for _, unsubscribe := range n.subscriptions {
		unsubscribe()
	}
	n.subscriptions = nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketClaimed(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketClaimed", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketResolved(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketResolved", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAssetStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("AssetStatusChanged", zap.String("asset_id", event.AssetID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
