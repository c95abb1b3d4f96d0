package service

import (
	"context"
	"time"

	"family-stories-be/internal/dto"
	"family-stories-be/internal/entity"
	"family-stories-be/internal/pkg/serverutils"
	"family-stories-be/internal/repository/specification"
	"family-stories-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const catalogCacheKey = "catalog:chapters"

type ICatalogService interface {
	// ListCurriculum returns the active chapters with their active prompts,
	// in curriculum order. Served from an in-process cache; curriculum
	// edits invalidate it.
	ListCurriculum(ctx context.Context) ([]*dto.CatalogChapterResponse, error)

	CreateChapter(ctx context.Context, req *dto.CreateChapterRequest) (*dto.CreateChapterResponse, error)
	CreatePrompt(ctx context.Context, req *dto.CreatePromptRequest) (*dto.CreatePromptResponse, error)
	SetChapterActive(ctx context.Context, id uuid.UUID, active bool) error
	SetPromptActive(ctx context.Context, id uuid.UUID, active bool) error
}

type catalogService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *cache.Cache
}

func NewCatalogService(uowFactory unitofwork.RepositoryFactory, ttl time.Duration) ICatalogService {
	return &catalogService{
		uowFactory: uowFactory,
		cache:      cache.New(ttl, 2*ttl),
	}
}

func (c *catalogService) ListCurriculum(ctx context.Context) ([]*dto.CatalogChapterResponse, error) {
	if x, found := c.cache.Get(catalogCacheKey); found {
		return x.([]*dto.CatalogChapterResponse), nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	chapters, err := uow.ChapterRepository().FindAll(ctx,
		specification.ActiveOnly{},
		specification.CurriculumOrder{},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.CatalogChapterResponse, 0, len(chapters))
	for _, chapter := range chapters {
		prompts, err := uow.PromptRepository().FindAll(ctx,
			specification.ByChapterID{ChapterID: chapter.Id},
			specification.ActiveOnly{},
			specification.CurriculumOrder{},
		)
		if err != nil {
			return nil, err
		}

		item := &dto.CatalogChapterResponse{
			Id:          chapter.Id,
			Title:       chapter.Title,
			Description: chapter.Description,
			OrderIndex:  chapter.OrderIndex,
			Prompts:     make([]dto.CatalogPromptResponse, 0, len(prompts)),
		}
		for _, p := range prompts {
			item.Prompts = append(item.Prompts, dto.CatalogPromptResponse{
				Id:         p.Id,
				Text:       p.Text,
				OrderIndex: p.OrderIndex,
			})
		}
		result = append(result, item)
	}

	c.cache.Set(catalogCacheKey, result, cache.DefaultExpiration)
	return result, nil
}

func (c *catalogService) CreateChapter(ctx context.Context, req *dto.CreateChapterRequest) (*dto.CreateChapterResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	chapter := entity.Chapter{
		Id:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		OrderIndex:  req.OrderIndex,
		IsActive:    active,
		CreatedAt:   time.Now(),
	}
	if err := uow.ChapterRepository().Create(ctx, &chapter); err != nil {
		return nil, err
	}

	c.cache.Delete(catalogCacheKey)
	return &dto.CreateChapterResponse{Id: chapter.Id}, nil
}

func (c *catalogService) CreatePrompt(ctx context.Context, req *dto.CreatePromptRequest) (*dto.CreatePromptResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chapter, err := uow.ChapterRepository().FindOne(ctx, specification.ByID{ID: req.ChapterId})
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, serverutils.NewNotFound("chapter not found")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	prompt := entity.Prompt{
		Id:         uuid.New(),
		ChapterId:  req.ChapterId,
		Text:       req.Text,
		OrderIndex: req.OrderIndex,
		IsActive:   active,
		Metadata:   req.Metadata,
		CreatedAt:  time.Now(),
	}
	if err := uow.PromptRepository().Create(ctx, &prompt); err != nil {
		return nil, err
	}

	c.cache.Delete(catalogCacheKey)
	return &dto.CreatePromptResponse{Id: prompt.Id}, nil
}

func (c *catalogService) SetChapterActive(ctx context.Context, id uuid.UUID, active bool) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chapter, err := uow.ChapterRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if chapter == nil {
		return serverutils.NewNotFound("chapter not found")
	}

	chapter.IsActive = active
	now := time.Now()
	chapter.UpdatedAt = &now
	if err := uow.ChapterRepository().Update(ctx, chapter); err != nil {
		return err
	}

	c.cache.Delete(catalogCacheKey)
	return nil
}

func (c *catalogService) SetPromptActive(ctx context.Context, id uuid.UUID, active bool) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	prompt, err := uow.PromptRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if prompt == nil {
		return serverutils.NewNotFound("prompt not found")
	}

	prompt.IsActive = active
	now := time.Now()
	prompt.UpdatedAt = &now
	if err := uow.PromptRepository().Update(ctx, prompt); err != nil {
		return err
	}

	c.cache.Delete(catalogCacheKey)
	return nil
}
