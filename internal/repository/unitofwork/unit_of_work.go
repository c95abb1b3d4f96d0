package unitofwork

import (
	"context"

	"family-stories-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ProjectRepository() contract.ProjectRepository
	ProjectMemberRepository() contract.ProjectMemberRepository
	StoryRepository() contract.StoryRepository
	InteractionRepository() contract.InteractionRepository

	ChapterRepository() contract.ChapterRepository
	PromptRepository() contract.PromptRepository
	ProjectPromptStateRepository() contract.ProjectPromptStateRepository
	UserPromptRepository() contract.UserPromptRepository

	SubscriptionRepository() contract.SubscriptionRepository
}
