package implementation

import (
	"context"
	"errors"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/mapper"
	"family-stories-be/internal/model"
	"family-stories-be/internal/repository/contract"
	"family-stories-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChapterRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CurriculumMapper
}

func NewChapterRepository(db *gorm.DB) contract.ChapterRepository {
	return &ChapterRepositoryImpl{
		db:     db,
		mapper: mapper.NewCurriculumMapper(),
	}
}

func (r *ChapterRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChapterRepositoryImpl) Create(ctx context.Context, chapter *entity.Chapter) error {
	m := r.mapper.ChapterToModel(chapter)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chapter = *r.mapper.ChapterToEntity(m)
	return nil
}

func (r *ChapterRepositoryImpl) Update(ctx context.Context, chapter *entity.Chapter) error {
	m := r.mapper.ChapterToModel(chapter)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*chapter = *r.mapper.ChapterToEntity(m)
	return nil
}

func (r *ChapterRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chapter, error) {
	var m model.Chapter
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChapterToEntity(&m), nil
}

func (r *ChapterRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chapter, error) {
	var models []*model.Chapter
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChaptersToEntities(models), nil
}

func (r *ChapterRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Chapter{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type PromptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CurriculumMapper
}

func NewPromptRepository(db *gorm.DB) contract.PromptRepository {
	return &PromptRepositoryImpl{
		db:     db,
		mapper: mapper.NewCurriculumMapper(),
	}
}

func (r *PromptRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PromptRepositoryImpl) Create(ctx context.Context, prompt *entity.Prompt) error {
	m := r.mapper.PromptToModel(prompt)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*prompt = *r.mapper.PromptToEntity(m)
	return nil
}

func (r *PromptRepositoryImpl) Update(ctx context.Context, prompt *entity.Prompt) error {
	m := r.mapper.PromptToModel(prompt)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*prompt = *r.mapper.PromptToEntity(m)
	return nil
}

func (r *PromptRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Prompt, error) {
	var m model.Prompt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PromptToEntity(&m), nil
}

func (r *PromptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Prompt, error) {
	var models []*model.Prompt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.PromptsToEntities(models), nil
}

func (r *PromptRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Prompt{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
