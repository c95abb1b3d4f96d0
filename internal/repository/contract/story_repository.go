package contract

import (
	"context"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/repository/specification"

	"github.com/google/uuid"
)

type StoryRepository interface {
	Create(ctx context.Context, story *entity.Story) error
	Update(ctx context.Context, story *entity.Story) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Story, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Story, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type InteractionRepository interface {
	Create(ctx context.Context, interaction *entity.Interaction) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Interaction, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Interaction, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
