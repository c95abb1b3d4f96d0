package implementation

import (
	"context"
	"errors"
	"time"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/mapper"
	"family-stories-be/internal/model"
	"family-stories-be/internal/repository/contract"
	"family-stories-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserPromptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DeliveryMapper
}

func NewUserPromptRepository(db *gorm.DB) contract.UserPromptRepository {
	return &UserPromptRepositoryImpl{
		db:     db,
		mapper: mapper.NewDeliveryMapper(),
	}
}

func (r *UserPromptRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserPromptRepositoryImpl) Create(ctx context.Context, prompt *entity.UserPrompt) error {
	m := r.mapper.UserPromptToModel(prompt)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*prompt = *r.mapper.UserPromptToEntity(m)
	return nil
}

func (r *UserPromptRepositoryImpl) PeekHighestUndelivered(ctx context.Context, projectId uuid.UUID) (*entity.UserPrompt, error) {
	var m model.UserPrompt
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND is_delivered = ?", projectId, false).
		Order("priority DESC, created_at ASC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserPromptToEntity(&m), nil
}

func (r *UserPromptRepositoryImpl) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	// Conditional update keeps the transition monotonic: already-delivered
	// rows match zero rows and the call stays a no-op.
	return r.db.WithContext(ctx).
		Model(&model.UserPrompt{}).
		Where("id = ? AND is_delivered = ?", id, false).
		Updates(map[string]interface{}{
			"is_delivered": true,
			"delivered_at": time.Now(),
		}).Error
}

func (r *UserPromptRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserPrompt, error) {
	var m model.UserPrompt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UserPromptToEntity(&m), nil
}

func (r *UserPromptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserPrompt, error) {
	var models []*model.UserPrompt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.UserPromptsToEntities(models), nil
}

func (r *UserPromptRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.UserPrompt{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
