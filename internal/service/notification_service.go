package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"family-stories-be/internal/model"
	"family-stories-be/internal/pkg/logger"
	"family-stories-be/internal/repository"
	"family-stories-be/pkg/events"
	pktNats "family-stories-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates. Implemented by
// the websocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus with a durable consumer.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	config, err := s.repo.GetNotificationTypeByCode(ctx, typeCode)
	if err != nil {
		return err
	}
	if config == nil {
		s.logger.Warn("NotificationService", "No notification type registered for event", map[string]interface{}{"code": typeCode})
		return nil
	}
	if !config.IsActive {
		return nil
	}

	recipients, err := s.resolveRecipients(ctx, config, event)
	if err != nil {
		s.logger.Error("NotificationService", "Error resolving recipients", map[string]interface{}{
			"type":  typeCode,
			"error": err.Error(),
		})
		return err // NATS redelivers on error
	}

	for _, userID := range recipients {
		notif := s.buildNotification(userID, config, event)

		if err := s.repo.CreateNotification(ctx, &notif); err != nil {
			s.logger.Error("NotificationService", "Error saving notification", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
			continue
		}

		if s.delivery != nil {
			s.delivery.Send(userID, notif)
		}
	}

	return nil
}

func (s *NotificationService) resolveRecipients(ctx context.Context, config *model.NotificationType, event events.Event) ([]uuid.UUID, error) {
	payload := event.Payload()

	switch config.TargetType {
	case "SELF":
		if uidStr, ok := payload["user_id"].(string); ok {
			if uid, err := uuid.Parse(uidStr); err == nil {
				return []uuid.UUID{uid}, nil
			}
		}
		s.logger.Warn("NotificationService", "TargetType SELF but no user_id in payload", map[string]interface{}{"type": event.EventType()})
		return nil, nil

	case "PROJECT":
		pidStr, ok := payload["project_id"].(string)
		if !ok {
			return nil, nil
		}
		pid, err := uuid.Parse(pidStr)
		if err != nil {
			return nil, nil
		}
		members, err := s.repo.GetActiveProjectMemberIDs(ctx, pid)
		if err != nil {
			return nil, err
		}
		// The actor already knows what they did.
		if actorStr, ok := payload["actor_id"].(string); ok {
			if actor, err := uuid.Parse(actorStr); err == nil {
				filtered := members[:0]
				for _, m := range members {
					if m != actor {
						filtered = append(filtered, m)
					}
				}
				members = filtered
			}
		}
		return members, nil

	case "ADMIN":
		return s.repo.GetAdminUserIDs(ctx)
	}

	return nil, nil
}

func (s *NotificationService) buildNotification(userID uuid.UUID, config *model.NotificationType, event events.Event) model.Notification {
	msg := config.Template
	payload := event.Payload()

	for k, v := range payload {
		placeholder := fmt.Sprintf("{%s}", k)
		msg = strings.ReplaceAll(msg, placeholder, fmt.Sprintf("%v", v))
	}

	var actorID *uuid.UUID
	if actorStr, ok := payload["actor_id"].(string); ok {
		if aid, err := uuid.Parse(actorStr); err == nil {
			actorID = &aid
		}
	}

	entityType := ""
	var entityID *uuid.UUID
	if et, ok := payload["entity_type"].(string); ok {
		entityType = et
	}
	if eidStr, ok := payload["entity_id"].(string); ok {
		if eid, err := uuid.Parse(eidStr); err == nil {
			entityID = &eid
		}
	}

	metaJSON, _ := json.Marshal(payload)

	return model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		ActorID:    actorID,
		TypeCode:   config.Code,
		Title:      config.DisplayName,
		Message:    msg,
		Metadata:   datatypes.JSON(metaJSON),
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
		IsRead:     false,
	}
}

// GetNotifications fetches a page of notifications for a user.
func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
