package service

import (
	"context"
	"time"

	"family-stories-be/internal/dto"
	"family-stories-be/internal/entity"
	"family-stories-be/internal/pkg/logger"
	"family-stories-be/internal/pkg/serverutils"
	"family-stories-be/internal/repository/specification"
	"family-stories-be/internal/repository/unitofwork"
	"family-stories-be/pkg/events"
	pktNats "family-stories-be/pkg/nats"

	"github.com/google/uuid"
)

type IStoryService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateStoryRequest) (*dto.CreateStoryResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowStoryResponse, error)
	List(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.ListStoriesResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateStoryRequest) (*dto.UpdateStoryResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type storyService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewStoryService(uowFactory unitofwork.RepositoryFactory, eventPublisher *pktNats.Publisher, log logger.ILogger) IStoryService {
	return &storyService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (c *storyService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateStoryRequest) (*dto.CreateStoryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	ok, err := uow.ProjectMemberRepository().HasActiveMember(ctx, req.ProjectId, userId)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, serverutils.NewNotFound("project not found")
	}

	story := entity.Story{
		Id:           uuid.New(),
		ProjectId:    req.ProjectId,
		TellerId:     userId,
		Title:        req.Title,
		Content:      req.Content,
		PromptId:     req.PromptId,
		UserPromptId: req.UserPromptId,
		AudioURL:     req.AudioURL,
		CreatedAt:    time.Now(),
	}
	if err := uow.StoryRepository().Create(ctx, &story); err != nil {
		return nil, err
	}

	if c.eventPublisher != nil {
		evt := events.NewStoryCreated(story.ProjectId, story.Id, userId, story.Title)
		if err := c.eventPublisher.Publish(ctx, evt); err != nil {
			c.logger.Warn("StoryService", "Failed to publish STORY_CREATED event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.CreateStoryResponse{Id: story.Id}, nil
}

func (c *storyService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowStoryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	story, err := c.findAccessible(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, nil
	}

	interactions, err := uow.InteractionRepository().FindAll(ctx,
		specification.ByStoryID{StoryID: id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	resp := &dto.ShowStoryResponse{
		Id:           story.Id,
		ProjectId:    story.ProjectId,
		TellerId:     story.TellerId,
		Title:        story.Title,
		Content:      story.Content,
		PromptId:     story.PromptId,
		UserPromptId: story.UserPromptId,
		AudioURL:     story.AudioURL,
		CreatedAt:    story.CreatedAt,
		UpdatedAt:    story.UpdatedAt,
		Interactions: make([]dto.InteractionResponse, 0, len(interactions)),
	}
	for _, in := range interactions {
		resp.Interactions = append(resp.Interactions, dto.InteractionResponse{
			Id:        in.Id,
			AuthorId:  in.AuthorId,
			Kind:      string(in.Kind),
			Content:   in.Content,
			CreatedAt: in.CreatedAt,
		})
	}
	return resp, nil
}

func (c *storyService) List(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.ListStoriesResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	ok, err := uow.ProjectMemberRepository().HasActiveMember(ctx, projectId, userId)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, serverutils.NewNotFound("project not found")
	}

	stories, err := uow.StoryRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.NotDeleted{},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ListStoriesResponse, 0, len(stories))
	for _, s := range stories {
		result = append(result, &dto.ListStoriesResponse{
			Id:        s.Id,
			Title:     s.Title,
			TellerId:  s.TellerId,
			CreatedAt: s.CreatedAt,
		})
	}
	return result, nil
}

func (c *storyService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateStoryRequest) (*dto.UpdateStoryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	story, err := c.findAccessible(ctx, uow, userId, req.Id)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, serverutils.NewNotFound("story not found")
	}
	// Only the teller edits their own story.
	if story.TellerId != userId {
		return nil, serverutils.NewUnauthorized("only the storyteller can edit this story")
	}

	story.Title = req.Title
	story.Content = req.Content
	now := time.Now()
	story.UpdatedAt = &now
	if err := uow.StoryRepository().Update(ctx, story); err != nil {
		return nil, err
	}

	return &dto.UpdateStoryResponse{Id: story.Id}, nil
}

func (c *storyService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	story, err := c.findAccessible(ctx, uow, userId, id)
	if err != nil {
		return err
	}
	if story == nil {
		return serverutils.NewNotFound("story not found")
	}
	if story.TellerId != userId {
		return serverutils.NewUnauthorized("only the storyteller can delete this story")
	}

	return uow.StoryRepository().Delete(ctx, id)
}

// findAccessible loads a story and checks the caller is an active member of
// its project. Returns nil when the story does not exist or is out of reach.
func (c *storyService) findAccessible(ctx context.Context, uow unitofwork.UnitOfWork, userId, storyId uuid.UUID) (*entity.Story, error) {
	story, err := uow.StoryRepository().FindOne(ctx,
		specification.ByID{ID: storyId},
		specification.NotDeleted{},
	)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, nil
	}

	ok, err := uow.ProjectMemberRepository().HasActiveMember(ctx, story.ProjectId, userId)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return story, nil
}
