package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g. "STORY_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes published by the application.
const (
	TypeStoryCreated   = "STORY_CREATED"
	TypeMemberInvited  = "MEMBER_INVITED"
	TypeFollowUpQueued = "FOLLOW_UP_QUEUED"
	TypeSubscription   = "SUBSCRIPTION_CREATED"
)

func NewStoryCreated(projectId, storyId, tellerId uuid.UUID, title string) Event {
	return BaseEvent{
		Type: TypeStoryCreated,
		Data: map[string]interface{}{
			"project_id": projectId.String(),
			"story_id":   storyId.String(),
			"teller_id":  tellerId.String(),
			"title":      title,
		},
		OccurredAt: time.Now(),
	}
}

func NewMemberInvited(projectId, userId, invitedBy uuid.UUID, projectName string) Event {
	return BaseEvent{
		Type: TypeMemberInvited,
		Data: map[string]interface{}{
			"project_id":   projectId.String(),
			"user_id":      userId.String(),
			"invited_by":   invitedBy.String(),
			"project_name": projectName,
		},
		OccurredAt: time.Now(),
	}
}

func NewFollowUpQueued(projectId, userPromptId, storyId uuid.UUID) Event {
	return BaseEvent{
		Type: TypeFollowUpQueued,
		Data: map[string]interface{}{
			"project_id":     projectId.String(),
			"user_prompt_id": userPromptId.String(),
			"story_id":       storyId.String(),
		},
		OccurredAt: time.Now(),
	}
}

func NewSubscriptionCreated(userId uuid.UUID, planSlug, fullName string) Event {
	return BaseEvent{
		Type: TypeSubscription,
		Data: map[string]interface{}{
			"user_id":   userId.String(),
			"plan_slug": planSlug,
			"full_name": fullName,
		},
		OccurredAt: time.Now(),
	}
}
