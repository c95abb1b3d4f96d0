package service

import (
	"context"
	"encoding/json"
	"time"

	"family-stories-be/internal/dto"
	"family-stories-be/internal/entity"
	"family-stories-be/internal/pkg/logger"
	"family-stories-be/internal/pkg/serverutils"
	"family-stories-be/internal/repository/specification"
	"family-stories-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IInteractionService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateInteractionRequest) (*dto.CreateInteractionResponse, error)
	List(ctx context.Context, userId uuid.UUID, storyId uuid.UUID) ([]*dto.InteractionResponse, error)
}

type interactionService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewInteractionService(uowFactory unitofwork.RepositoryFactory, publisherService IPublisherService, log logger.ILogger) IInteractionService {
	return &interactionService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           log,
	}
}

func (c *interactionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateInteractionRequest) (*dto.CreateInteractionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	story, err := uow.StoryRepository().FindOne(ctx,
		specification.ByID{ID: req.StoryId},
		specification.NotDeleted{},
	)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, serverutils.NewNotFound("story not found")
	}

	member, err := uow.ProjectMemberRepository().FindOne(ctx,
		specification.ByProjectID{ProjectID: story.ProjectId},
		specification.ByUserID{UserID: userId},
		specification.WithMemberStatus{Status: string(entity.MemberStatusActive)},
	)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, serverutils.NewNotFound("story not found")
	}

	kind := entity.InteractionKind(req.Kind)
	if kind == entity.InteractionKindFollowUp && member.Role != entity.MemberRoleFacilitator {
		return nil, serverutils.NewUnauthorized("only facilitators can ask follow-up questions")
	}

	interaction := entity.Interaction{
		Id:        uuid.New(),
		StoryId:   story.Id,
		ProjectId: story.ProjectId,
		AuthorId:  userId,
		Kind:      kind,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := uow.InteractionRepository().Create(ctx, &interaction); err != nil {
		return nil, err
	}

	// Follow-ups become queued prompts asynchronously. The interaction is
	// already saved, so a publish failure degrades to "comment only" and
	// is logged rather than surfaced.
	if kind == entity.InteractionKindFollowUp {
		msg := dto.ConvertFollowUpMessage{
			InteractionId: interaction.Id,
			ProjectId:     story.ProjectId,
			StoryId:       story.Id,
			AuthorId:      userId,
			Content:       req.Content,
		}
		payload, err := json.Marshal(msg)
		if err == nil {
			err = c.publisherService.Publish(ctx, payload)
		}
		if err != nil {
			c.logger.Error("InteractionService", "Failed to enqueue follow-up conversion", map[string]interface{}{
				"interaction_id": interaction.Id,
				"error":          err.Error(),
			})
		}
	}

	return &dto.CreateInteractionResponse{Id: interaction.Id}, nil
}

func (c *interactionService) List(ctx context.Context, userId uuid.UUID, storyId uuid.UUID) ([]*dto.InteractionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	story, err := uow.StoryRepository().FindOne(ctx,
		specification.ByID{ID: storyId},
		specification.NotDeleted{},
	)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, serverutils.NewNotFound("story not found")
	}

	ok, err := uow.ProjectMemberRepository().HasActiveMember(ctx, story.ProjectId, userId)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, serverutils.NewNotFound("story not found")
	}

	interactions, err := uow.InteractionRepository().FindAll(ctx,
		specification.ByStoryID{StoryID: storyId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.InteractionResponse, 0, len(interactions))
	for _, in := range interactions {
		result = append(result, &dto.InteractionResponse{
			Id:        in.Id,
			AuthorId:  in.AuthorId,
			Kind:      string(in.Kind),
			Content:   in.Content,
			CreatedAt: in.CreatedAt,
		})
	}
	return result, nil
}
