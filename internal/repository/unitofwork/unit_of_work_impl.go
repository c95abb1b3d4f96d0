package unitofwork

import (
	"context"
	"fmt"

	"family-stories-be/internal/repository/contract"
	"family-stories-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProjectRepository() contract.ProjectRepository {
	return implementation.NewProjectRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProjectMemberRepository() contract.ProjectMemberRepository {
	return implementation.NewProjectMemberRepository(u.getDB())
}

func (u *UnitOfWorkImpl) StoryRepository() contract.StoryRepository {
	return implementation.NewStoryRepository(u.getDB())
}

func (u *UnitOfWorkImpl) InteractionRepository() contract.InteractionRepository {
	return implementation.NewInteractionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ChapterRepository() contract.ChapterRepository {
	return implementation.NewChapterRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PromptRepository() contract.PromptRepository {
	return implementation.NewPromptRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProjectPromptStateRepository() contract.ProjectPromptStateRepository {
	return implementation.NewProjectPromptStateRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UserPromptRepository() contract.UserPromptRepository {
	return implementation.NewUserPromptRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SubscriptionRepository() contract.SubscriptionRepository {
	return implementation.NewSubscriptionRepository(u.getDB())
}
