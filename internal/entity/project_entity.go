package entity

import (
	"time"

	"github.com/google/uuid"
)

type MemberRole string
type MemberStatus string

const (
	MemberRoleFacilitator MemberRole = "facilitator"
	MemberRoleStoryteller MemberRole = "storyteller"

	MemberStatusActive  MemberStatus = "active"
	MemberStatusInvited MemberStatus = "invited"
	MemberStatusRemoved MemberStatus = "removed"
)

// Project is a family story collection owned by a facilitator.
type Project struct {
	Id          uuid.UUID
	Name        string
	Description string
	CoverURL    *string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}

type ProjectMember struct {
	Id        uuid.UUID
	ProjectId uuid.UUID
	UserId    uuid.UUID
	Role      MemberRole
	Status    MemberStatus
	InvitedBy *uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
}
