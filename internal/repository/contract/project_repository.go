package contract

import (
	"context"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	Update(ctx context.Context, project *entity.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Project, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ProjectMemberRepository interface {
	Create(ctx context.Context, member *entity.ProjectMember) error
	Update(ctx context.Context, member *entity.ProjectMember) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProjectMember, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProjectMember, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// HasActiveMember reports whether the user holds an active role on the
	// project. This is the resolver's access check.
	HasActiveMember(ctx context.Context, projectId, userId uuid.UUID) (bool, error)
}
