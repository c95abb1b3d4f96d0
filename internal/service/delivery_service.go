package service

import (
	"context"
	"time"

	"family-stories-be/internal/constant"
	"family-stories-be/internal/dto"
	"family-stories-be/internal/entity"
	"family-stories-be/internal/pkg/logger"
	"family-stories-be/internal/pkg/serverutils"
	"family-stories-be/internal/repository/specification"
	"family-stories-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDeliveryService interface {
	// GetNextPrompt resolves the prompt a project should work on next:
	// queued user prompts first, then the curriculum cursor. A nil Prompt
	// in the response means nothing is available.
	GetNextPrompt(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) (*dto.NextPromptResponse, error)

	// AcknowledgeDelivery records that the client presented a prompt. A
	// system ack advances the curriculum cursor by one; a user ack marks
	// the identified queued prompt delivered.
	AcknowledgeDelivery(ctx context.Context, userId uuid.UUID, projectId uuid.UUID, ack entity.Acknowledgement) error

	CreateUserPrompt(ctx context.Context, userId uuid.UUID, req *dto.CreateUserPromptRequest) (*dto.CreateUserPromptResponse, error)
	ListUserPrompts(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.UserPromptResponse, error)
}

type deliveryService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewDeliveryService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IDeliveryService {
	return &deliveryService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (c *deliveryService) GetNextPrompt(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) (*dto.NextPromptResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if err := c.requireActiveMember(ctx, uow, projectId, userId); err != nil {
		return nil, err
	}

	// Queued user prompts always outrank the curriculum.
	queued, err := uow.UserPromptRepository().PeekHighestUndelivered(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if queued != nil {
		return &dto.NextPromptResponse{
			Prompt: &dto.DeliveredPromptResponse{
				Id:            queued.Id,
				Text:          queued.Text,
				Source:        string(entity.PromptSourceUser),
				ParentStoryId: queued.ParentStoryId,
			},
		}, nil
	}

	// A concurrent caller may move the cursor between our snapshot read
	// and the conditional advance. One retry with a fresh snapshot is
	// enough: the cursor only ever moves forward.
	for attempt := 0; attempt < 2; attempt++ {
		delivered, conflict, err := c.resolveCurriculumPrompt(ctx, uow, projectId)
		if err != nil {
			return nil, err
		}
		if conflict {
			continue
		}
		if delivered == nil {
			return &dto.NextPromptResponse{Prompt: nil}, nil
		}
		resp := &dto.DeliveredPromptResponse{
			Id:     delivered.Id,
			Text:   delivered.Text,
			Source: string(entity.PromptSourceSystem),
		}
		if delivered.Chapter != nil {
			resp.Chapter = &dto.ChapterRef{
				Id:         delivered.Chapter.Id,
				Title:      delivered.Chapter.Title,
				OrderIndex: delivered.Chapter.OrderIndex,
			}
		}
		return &dto.NextPromptResponse{Prompt: resp}, nil
	}

	return nil, serverutils.NewInternal("prompt state changed concurrently after retry", nil)
}

// resolveCurriculumPrompt walks the active curriculum from the project's
// cursor, skipping exhausted or deactivated chapters. The loop is bounded by
// the number of active chapters, so a fully exhausted curriculum terminates
// with a nil prompt instead of re-entering the resolver.
func (c *deliveryService) resolveCurriculumPrompt(ctx context.Context, uow unitofwork.UnitOfWork, projectId uuid.UUID) (*entity.DeliveredPrompt, bool, error) {
	chapters, err := uow.ChapterRepository().FindAll(ctx,
		specification.ActiveOnly{},
		specification.CurriculumOrder{},
	)
	if err != nil {
		return nil, false, err
	}
	if len(chapters) == 0 {
		return nil, false, nil
	}

	state, err := c.loadOrInitState(ctx, uow, projectId, chapters[0].Id)
	if err != nil {
		return nil, false, err
	}

	// Locate the cursor chapter in the active sequence. A chapter that was
	// deactivated since the cursor landed on it resolves to the next active
	// chapter at or after its old position.
	pos := 0
	found := false
	for i, ch := range chapters {
		if ch.Id == state.CurrentChapterId {
			pos = i
			found = true
			break
		}
	}

	cursorChapterId := state.CurrentChapterId
	cursorIndex := state.CurrentPromptIndex
	if !found {
		// Cursor chapter left the curriculum; rescan from the beginning
		// and advance to the first chapter with content.
		pos = 0
	}

	for i := pos; i < len(chapters); i++ {
		chapter := chapters[i]

		index := 0
		if chapter.Id == cursorChapterId {
			index = cursorIndex
		}

		prompts, err := uow.PromptRepository().FindAll(ctx,
			specification.ByChapterID{ChapterID: chapter.Id},
			specification.ActiveOnly{},
			specification.CurriculumOrder{},
		)
		if err != nil {
			return nil, false, err
		}

		if index < len(prompts) {
			if chapter.Id != cursorChapterId {
				// The cursor still points at an exhausted chapter; move it
				// before handing out content so a follow-up system ack
				// increments within the right chapter.
				ok, err := uow.ProjectPromptStateRepository().AdvanceChapter(ctx, projectId, cursorChapterId, cursorIndex, chapter.Id)
				if err != nil {
					return nil, false, err
				}
				if !ok {
					return nil, true, nil
				}
			}
			prompt := prompts[index]
			return &entity.DeliveredPrompt{
				Id:      prompt.Id,
				Text:    prompt.Text,
				Source:  entity.PromptSourceSystem,
				Chapter: chapter,
			}, false, nil
		}
	}

	// Every chapter from the cursor onwards is exhausted. The cursor is
	// left where it is; new chapters appended later pick up from here.
	return nil, false, nil
}

func (c *deliveryService) loadOrInitState(ctx context.Context, uow unitofwork.UnitOfWork, projectId, firstChapterId uuid.UUID) (*entity.ProjectPromptState, error) {
	stateRepo := uow.ProjectPromptStateRepository()

	state, err := stateRepo.FindByProject(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if state != nil {
		return state, nil
	}

	// First resolution for this project. The insert is a no-op if a
	// concurrent caller beat us to it; the re-read returns whichever row
	// won.
	err = stateRepo.Init(ctx, &entity.ProjectPromptState{
		Id:                 uuid.New(),
		ProjectId:          projectId,
		CurrentChapterId:   firstChapterId,
		CurrentPromptIndex: 0,
		CreatedAt:          time.Now(),
	})
	if err != nil {
		return nil, err
	}

	state, err = stateRepo.FindByProject(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, serverutils.NewInternal("prompt state missing after init", nil)
	}
	return state, nil
}

func (c *deliveryService) AcknowledgeDelivery(ctx context.Context, userId uuid.UUID, projectId uuid.UUID, ack entity.Acknowledgement) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if err := c.requireActiveMember(ctx, uow, projectId, userId); err != nil {
		return err
	}

	switch ack.Kind {
	case entity.AckKindUser:
		prompt, err := uow.UserPromptRepository().FindOne(ctx,
			specification.ByID{ID: ack.PromptId},
			specification.ByProjectID{ProjectID: projectId},
		)
		if err != nil {
			return err
		}
		if prompt == nil {
			return serverutils.NewNotFound("user prompt not found")
		}
		return uow.UserPromptRepository().MarkDelivered(ctx, prompt.Id)

	case entity.AckKindSystem:
		ok, err := uow.ProjectPromptStateRepository().IncrementIndex(ctx, projectId)
		if err != nil {
			return err
		}
		if !ok {
			return serverutils.NewNotFound("no prompt has been resolved for this project yet")
		}
		return nil

	default:
		return serverutils.NewBadRequest("unknown acknowledgement kind")
	}
}

func (c *deliveryService) CreateUserPrompt(ctx context.Context, userId uuid.UUID, req *dto.CreateUserPromptRequest) (*dto.CreateUserPromptResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	member, err := uow.ProjectMemberRepository().FindOne(ctx,
		specification.ByProjectID{ProjectID: req.ProjectId},
		specification.ByUserID{UserID: userId},
		specification.WithMemberStatus{Status: string(entity.MemberStatusActive)},
	)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, serverutils.NewNotFound("project not found")
	}
	if member.Role != entity.MemberRoleFacilitator {
		return nil, serverutils.NewUnauthorized("only facilitators can queue prompts")
	}

	priority := req.Priority
	if priority == 0 {
		priority = constant.DefaultUserPromptPriority
	}

	prompt := entity.UserPrompt{
		Id:            uuid.New(),
		ProjectId:     req.ProjectId,
		Text:          req.Text,
		Priority:      priority,
		CreatedBy:     userId,
		ParentStoryId: req.ParentStoryId,
		IsDelivered:   false,
		CreatedAt:     time.Now(),
	}
	if err := uow.UserPromptRepository().Create(ctx, &prompt); err != nil {
		return nil, err
	}

	return &dto.CreateUserPromptResponse{Id: prompt.Id}, nil
}

func (c *deliveryService) ListUserPrompts(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.UserPromptResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	if err := c.requireActiveMember(ctx, uow, projectId, userId); err != nil {
		return nil, err
	}

	prompts, err := uow.UserPromptRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.QueueOrder{},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.UserPromptResponse, 0, len(prompts))
	for _, p := range prompts {
		responses = append(responses, &dto.UserPromptResponse{
			Id:            p.Id,
			Text:          p.Text,
			Priority:      p.Priority,
			ParentStoryId: p.ParentStoryId,
			IsDelivered:   p.IsDelivered,
			CreatedAt:     p.CreatedAt,
		})
	}
	return responses, nil
}

func (c *deliveryService) requireActiveMember(ctx context.Context, uow unitofwork.UnitOfWork, projectId, userId uuid.UUID) error {
	ok, err := uow.ProjectMemberRepository().HasActiveMember(ctx, projectId, userId)
	if err != nil {
		return err
	}
	if !ok {
		// Non-members get the same answer as a missing project.
		return serverutils.NewNotFound("project not found")
	}
	return nil
}
