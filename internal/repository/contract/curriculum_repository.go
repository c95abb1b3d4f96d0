package contract

import (
	"context"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/repository/specification"
)

// ChapterRepository reads the curated curriculum. Chapters are externally
// managed content; the delivery core never mutates them.
type ChapterRepository interface {
	Create(ctx context.Context, chapter *entity.Chapter) error
	Update(ctx context.Context, chapter *entity.Chapter) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chapter, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chapter, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type PromptRepository interface {
	Create(ctx context.Context, prompt *entity.Prompt) error
	Update(ctx context.Context, prompt *entity.Prompt) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Prompt, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Prompt, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
