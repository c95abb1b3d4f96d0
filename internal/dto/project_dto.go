package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=3"`
	Description string `json:"description"`
}

type CreateProjectResponse struct {
	Id uuid.UUID `json:"id"`
}

type ProjectMemberResponse struct {
	Id       uuid.UUID `json:"id"`
	UserId   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
}

type ShowProjectResponse struct {
	Id          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	CoverURL    *string                 `json:"cover_url,omitempty"`
	CreatedBy   uuid.UUID               `json:"created_by"`
	CreatedAt   time.Time               `json:"created_at"`
	Members     []ProjectMemberResponse `json:"members"`
	StoryCount  int64                   `json:"story_count"`
}

type GetAllProjectsResponse struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Role        string    `json:"role"` // the caller's role on this project
	CreatedAt   time.Time `json:"created_at"`
}

type InviteMemberRequest struct {
	ProjectId uuid.UUID
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=facilitator storyteller"`
}

type InviteMemberResponse struct {
	MemberId uuid.UUID `json:"member_id"`
	Status   string    `json:"status"`
}

type AcceptInviteResponse struct {
	MemberId uuid.UUID `json:"member_id"`
	Status   string    `json:"status"`
}
