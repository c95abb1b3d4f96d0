package implementation

import (
	"context"
	"errors"
	"time"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/mapper"
	"family-stories-be/internal/model"
	"family-stories-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectPromptStateRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DeliveryMapper
}

func NewProjectPromptStateRepository(db *gorm.DB) contract.ProjectPromptStateRepository {
	return &ProjectPromptStateRepositoryImpl{
		db:     db,
		mapper: mapper.NewDeliveryMapper(),
	}
}

func (r *ProjectPromptStateRepositoryImpl) FindByProject(ctx context.Context, projectId uuid.UUID) (*entity.ProjectPromptState, error) {
	var m model.ProjectPromptState
	err := r.db.WithContext(ctx).Where("project_id = ?", projectId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.StateToEntity(&m), nil
}

func (r *ProjectPromptStateRepositoryImpl) Init(ctx context.Context, state *entity.ProjectPromptState) error {
	m := r.mapper.StateToModel(state)
	// DoNothing on the project_id unique constraint: if a concurrent caller
	// initialized first, their row stands and the caller re-reads.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}},
			DoNothing: true,
		}).
		Create(m).Error
}

func (r *ProjectPromptStateRepositoryImpl) IncrementIndex(ctx context.Context, projectId uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ProjectPromptState{}).
		Where("project_id = ?", projectId).
		Updates(map[string]interface{}{
			"current_prompt_index": gorm.Expr("current_prompt_index + 1"),
			"last_delivered_at":    time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ProjectPromptStateRepositoryImpl) AdvanceChapter(ctx context.Context, projectId, fromChapterId uuid.UUID, fromIndex int, toChapterId uuid.UUID) (bool, error) {
	// Compare-and-swap against the snapshot the resolver read. Zero rows
	// affected means another caller advanced (or acked) in between.
	res := r.db.WithContext(ctx).
		Model(&model.ProjectPromptState{}).
		Where("project_id = ? AND current_chapter_id = ? AND current_prompt_index = ?", projectId, fromChapterId, fromIndex).
		Updates(map[string]interface{}{
			"current_chapter_id":   toChapterId,
			"current_prompt_index": 0,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
