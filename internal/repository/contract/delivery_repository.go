package contract

import (
	"context"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ProjectPromptStateRepository persists the single curriculum cursor per
// project. All mutations are single-row and conditional so that concurrent
// callers never lose an increment or create duplicate state.
type ProjectPromptStateRepository interface {
	FindByProject(ctx context.Context, projectId uuid.UUID) (*entity.ProjectPromptState, error)

	// Init lazily creates the state row. A concurrent duplicate attempt is
	// absorbed by the unique constraint on project_id; the caller re-reads
	// afterwards to pick up whichever row won.
	Init(ctx context.Context, state *entity.ProjectPromptState) error

	// IncrementIndex atomically advances current_prompt_index by exactly one
	// and stamps last_delivered_at. Returns false when no state row exists.
	IncrementIndex(ctx context.Context, projectId uuid.UUID) (bool, error)

	// AdvanceChapter moves the cursor to the start of another chapter, but
	// only if the row still matches the snapshot the caller read. Returns
	// false when a concurrent mutation won the race.
	AdvanceChapter(ctx context.Context, projectId, fromChapterId uuid.UUID, fromIndex int, toChapterId uuid.UUID) (bool, error)
}

type UserPromptRepository interface {
	Create(ctx context.Context, prompt *entity.UserPrompt) error

	// PeekHighestUndelivered returns the next queued user prompt for the
	// project: priority desc, then created_at asc. Nil when the queue is
	// empty.
	PeekHighestUndelivered(ctx context.Context, projectId uuid.UUID) (*entity.UserPrompt, error)

	// MarkDelivered flips is_delivered to true. Re-marking an already
	// delivered prompt is a no-op, never an error.
	MarkDelivered(ctx context.Context, id uuid.UUID) error

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserPrompt, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserPrompt, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
