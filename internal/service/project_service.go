package service

import (
	"context"
	"time"

	"family-stories-be/internal/dto"
	"family-stories-be/internal/entity"
	"family-stories-be/internal/pkg/logger"
	"family-stories-be/internal/pkg/mailer"
	"family-stories-be/internal/pkg/serverutils"
	"family-stories-be/internal/repository/specification"
	"family-stories-be/internal/repository/unitofwork"
	"family-stories-be/pkg/events"
	pktNats "family-stories-be/pkg/nats"

	"github.com/google/uuid"
)

type IProjectService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllProjectsResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error

	InviteMember(ctx context.Context, userId uuid.UUID, req *dto.InviteMemberRequest) (*dto.InviteMemberResponse, error)
	AcceptInvite(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) (*dto.AcceptInviteResponse, error)
	RemoveMember(ctx context.Context, userId uuid.UUID, projectId, memberId uuid.UUID) error
}

type projectService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewProjectService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IProjectService {
	return &projectService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (c *projectService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project := entity.Project{
		Id:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userId,
		CreatedAt:   time.Now(),
	}

	// The creator becomes an active facilitator in the same transaction so
	// the project is never left memberless.
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ProjectRepository().Create(ctx, &project); err != nil {
		return nil, err
	}

	member := entity.ProjectMember{
		Id:        uuid.New(),
		ProjectId: project.Id,
		UserId:    userId,
		Role:      entity.MemberRoleFacilitator,
		Status:    entity.MemberStatusActive,
		CreatedAt: time.Now(),
	}
	if err := uow.ProjectMemberRepository().Create(ctx, &member); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CreateProjectResponse{Id: project.Id}, nil
}

func (c *projectService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	ok, err := uow.ProjectMemberRepository().HasActiveMember(ctx, id, userId)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.NotDeleted{},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}

	members, err := uow.ProjectMemberRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: id},
	)
	if err != nil {
		return nil, err
	}

	userIds := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		userIds = append(userIds, m.UserId)
	}
	users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: userIds})
	if err != nil {
		return nil, err
	}
	usersById := make(map[uuid.UUID]*entity.User, len(users))
	for _, u := range users {
		usersById[u.Id] = u
	}

	storyCount, err := uow.StoryRepository().Count(ctx,
		specification.ByProjectID{ProjectID: id},
		specification.NotDeleted{},
	)
	if err != nil {
		return nil, err
	}

	resp := &dto.ShowProjectResponse{
		Id:          project.Id,
		Name:        project.Name,
		Description: project.Description,
		CoverURL:    project.CoverURL,
		CreatedBy:   project.CreatedBy,
		CreatedAt:   project.CreatedAt,
		Members:     make([]dto.ProjectMemberResponse, 0, len(members)),
		StoryCount:  storyCount,
	}
	for _, m := range members {
		if m.Status == entity.MemberStatusRemoved {
			continue
		}
		item := dto.ProjectMemberResponse{
			Id:     m.Id,
			UserId: m.UserId,
			Role:   string(m.Role),
			Status: string(m.Status),
		}
		if u, found := usersById[m.UserId]; found {
			item.FullName = u.FullName
			item.Email = u.Email
		}
		resp.Members = append(resp.Members, item)
	}
	return resp, nil
}

func (c *projectService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllProjectsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	memberships, err := uow.ProjectMemberRepository().FindAll(ctx,
		specification.ByUserID{UserID: userId},
		specification.WithMemberStatus{Status: string(entity.MemberStatusActive)},
	)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []*dto.GetAllProjectsResponse{}, nil
	}

	projectIds := make([]uuid.UUID, 0, len(memberships))
	roleByProject := make(map[uuid.UUID]entity.MemberRole, len(memberships))
	for _, m := range memberships {
		projectIds = append(projectIds, m.ProjectId)
		roleByProject[m.ProjectId] = m.Role
	}

	projects, err := uow.ProjectRepository().FindAll(ctx,
		specification.ByIDs{IDs: projectIds},
		specification.NotDeleted{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GetAllProjectsResponse, 0, len(projects))
	for _, p := range projects {
		result = append(result, &dto.GetAllProjectsResponse{
			Id:          p.Id,
			Name:        p.Name,
			Description: p.Description,
			Role:        string(roleByProject[p.Id]),
			CreatedAt:   p.CreatedAt,
		})
	}
	return result, nil
}

func (c *projectService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.NotDeleted{},
	)
	if err != nil {
		return err
	}
	if project == nil {
		return serverutils.NewNotFound("project not found")
	}
	if project.CreatedBy != userId {
		return serverutils.NewUnauthorized("only the project owner can delete it")
	}

	return uow.ProjectRepository().Delete(ctx, id)
}

func (c *projectService) InviteMember(ctx context.Context, userId uuid.UUID, req *dto.InviteMemberRequest) (*dto.InviteMemberResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	inviter, err := uow.ProjectMemberRepository().FindOne(ctx,
		specification.ByProjectID{ProjectID: req.ProjectId},
		specification.ByUserID{UserID: userId},
		specification.WithMemberStatus{Status: string(entity.MemberStatusActive)},
	)
	if err != nil {
		return nil, err
	}
	if inviter == nil {
		return nil, serverutils.NewNotFound("project not found")
	}
	if inviter.Role != entity.MemberRoleFacilitator {
		return nil, serverutils.NewUnauthorized("only facilitators can invite members")
	}

	invitee, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if invitee == nil {
		return nil, serverutils.NewNotFound("no account with that email")
	}

	existing, err := uow.ProjectMemberRepository().FindOne(ctx,
		specification.ByProjectID{ProjectID: req.ProjectId},
		specification.ByUserID{UserID: invitee.Id},
	)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if existing != nil {
		if existing.Status != entity.MemberStatusRemoved {
			return nil, serverutils.NewConflict("user is already a member")
		}
		// Re-inviting a removed member reuses the row.
		existing.Role = entity.MemberRole(req.Role)
		existing.Status = entity.MemberStatusInvited
		existing.InvitedBy = &userId
		existing.UpdatedAt = &now
		if err := uow.ProjectMemberRepository().Update(ctx, existing); err != nil {
			return nil, err
		}
		c.notifyInvite(ctx, uow, req.ProjectId, invitee, userId)
		return &dto.InviteMemberResponse{MemberId: existing.Id, Status: string(existing.Status)}, nil
	}

	member := entity.ProjectMember{
		Id:        uuid.New(),
		ProjectId: req.ProjectId,
		UserId:    invitee.Id,
		Role:      entity.MemberRole(req.Role),
		Status:    entity.MemberStatusInvited,
		InvitedBy: &userId,
		CreatedAt: now,
	}
	if err := uow.ProjectMemberRepository().Create(ctx, &member); err != nil {
		return nil, err
	}

	c.notifyInvite(ctx, uow, req.ProjectId, invitee, userId)
	return &dto.InviteMemberResponse{MemberId: member.Id, Status: string(member.Status)}, nil
}

func (c *projectService) notifyInvite(ctx context.Context, uow unitofwork.UnitOfWork, projectId uuid.UUID, invitee *entity.User, invitedBy uuid.UUID) {
	project, err := uow.ProjectRepository().FindOne(ctx, specification.ByID{ID: projectId})
	if err != nil || project == nil {
		return
	}
	inviter, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: invitedBy})
	inviterName := "A facilitator"
	if err == nil && inviter != nil {
		inviterName = inviter.FullName
	}

	go func() {
		if err := c.emailService.SendProjectInvite(invitee.Email, inviterName, project.Name); err != nil {
			c.logger.Warn("ProjectService", "Failed to send invite email", map[string]interface{}{"error": err.Error()})
		}
	}()

	if c.eventPublisher != nil {
		evt := events.NewMemberInvited(projectId, invitee.Id, invitedBy, project.Name)
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.logger.Warn("ProjectService", "Failed to publish MEMBER_INVITED event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (c *projectService) AcceptInvite(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) (*dto.AcceptInviteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	member, err := uow.ProjectMemberRepository().FindOne(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.ByUserID{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Status == entity.MemberStatusRemoved {
		return nil, serverutils.NewNotFound("no pending invite for this project")
	}
	if member.Status == entity.MemberStatusActive {
		return &dto.AcceptInviteResponse{MemberId: member.Id, Status: string(member.Status)}, nil
	}

	now := time.Now()
	member.Status = entity.MemberStatusActive
	member.UpdatedAt = &now
	if err := uow.ProjectMemberRepository().Update(ctx, member); err != nil {
		return nil, err
	}

	return &dto.AcceptInviteResponse{MemberId: member.Id, Status: string(member.Status)}, nil
}

func (c *projectService) RemoveMember(ctx context.Context, userId uuid.UUID, projectId, memberId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	actor, err := uow.ProjectMemberRepository().FindOne(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.ByUserID{UserID: userId},
		specification.WithMemberStatus{Status: string(entity.MemberStatusActive)},
	)
	if err != nil {
		return err
	}
	if actor == nil {
		return serverutils.NewNotFound("project not found")
	}
	if actor.Role != entity.MemberRoleFacilitator {
		return serverutils.NewUnauthorized("only facilitators can remove members")
	}

	member, err := uow.ProjectMemberRepository().FindOne(ctx,
		specification.ByID{ID: memberId},
		specification.ByProjectID{ProjectID: projectId},
	)
	if err != nil {
		return err
	}
	if member == nil {
		return serverutils.NewNotFound("member not found")
	}
	if member.UserId == userId {
		return serverutils.NewBadRequest("facilitators cannot remove themselves")
	}

	now := time.Now()
	member.Status = entity.MemberStatusRemoved
	member.UpdatedAt = &now
	return uow.ProjectMemberRepository().Update(ctx, member)
}
