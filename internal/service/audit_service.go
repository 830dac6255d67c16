package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/AYOPELUMI/support-ticket-system/internal/config"
	"github.com/AYOPELUMI/support-ticket-system/internal/events"
	"github.com/AYOPELUMI/support-ticket-system/internal/persistence"
)

// AuditService is the event-logging collaborator: every domain event
// becomes a structured log record and, best effort, a JSON message on a
// Redis channel for external consumers. A Redis outage never fails the
// request that produced the event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	redis      *persistence.Redis
	cfg        config.AuditConfig
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, redis *persistence.Redis, cfg config.AuditConfig) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		redis:      redis,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to all audited event types.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserLoggedIn,
		events.EventUserLoggedOut,
		events.EventAuthRejected,
		events.EventTicketCreated,
		events.EventTicketClosed,
	} {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *AuditService) record(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}

	// Rejections carry their internal reason here and nowhere else.
	if event.Type == events.EventAuthRejected {
		a.logger.Warn("audit", fields...)
	} else {
		a.logger.Info("audit", fields...)
	}

	a.publishToChannel(ctx, event)
	return nil
}

func (a *AuditService) publishToChannel(ctx context.Context, event events.Event) {
	if a.redis == nil || a.cfg.Channel == "" {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		a.logger.Error("marshal audit event", zap.Error(err))
		return
	}
	if err := a.redis.Publish(ctx, a.cfg.Channel, payload); err != nil {
		a.logger.Warn("publish audit event", zap.Error(err))
	}
}
