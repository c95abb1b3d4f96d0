package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"family-stories-be/internal/dto"
	"family-stories-be/internal/entity"
	"family-stories-be/internal/pkg/serverutils"
	"family-stories-be/internal/repository/contract"
	"family-stories-be/internal/repository/specification"
	"family-stories-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-memory fakes -------------------------------------------------------

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeMemberRepo struct {
	mu      sync.Mutex
	members []*entity.ProjectMember
}

func (r *fakeMemberRepo) matches(m *entity.ProjectMember, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByProjectID:
			if m.ProjectId != sp.ProjectID {
				return false
			}
		case specification.ByUserID:
			if m.UserId != sp.UserID {
				return false
			}
		case specification.WithMemberStatus:
			if string(m.Status) != sp.Status {
				return false
			}
		}
	}
	return true
}

func (r *fakeMemberRepo) Create(ctx context.Context, member *entity.ProjectMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *member
	r.members = append(r.members, &cp)
	return nil
}

func (r *fakeMemberRepo) Update(ctx context.Context, member *entity.ProjectMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.members {
		if m.Id == member.Id {
			cp := *member
			r.members[i] = &cp
		}
	}
	return nil
}

func (r *fakeMemberRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if r.matches(m, specs) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMemberRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ProjectMember
	for _, m := range r.members {
		if r.matches(m, specs) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeMemberRepo) HasActiveMember(ctx context.Context, projectId, userId uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ProjectId == projectId && m.UserId == userId && m.Status == entity.MemberStatusActive {
			return true, nil
		}
	}
	return false, nil
}

type fakeChapterRepo struct {
	mu       sync.Mutex
	chapters []*entity.Chapter
}

func (r *fakeChapterRepo) Create(ctx context.Context, chapter *entity.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *chapter
	r.chapters = append(r.chapters, &cp)
	return nil
}

func (r *fakeChapterRepo) Update(ctx context.Context, chapter *entity.Chapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.chapters {
		if c.Id == chapter.Id {
			cp := *chapter
			r.chapters[i] = &cp
		}
	}
	return nil
}

func (r *fakeChapterRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chapter, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakeChapterRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	activeOnly := false
	ordered := false
	var byID *uuid.UUID
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ActiveOnly:
			activeOnly = true
		case specification.CurriculumOrder:
			ordered = true
		case specification.ByID:
			id := sp.ID
			byID = &id
		}
	}
	var out []*entity.Chapter
	for _, c := range r.chapters {
		if activeOnly && !c.IsActive {
			continue
		}
		if byID != nil && c.Id != *byID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	if ordered {
		sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	}
	return out, nil
}

func (r *fakeChapterRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakePromptRepo struct {
	mu      sync.Mutex
	prompts []*entity.Prompt
}

func (r *fakePromptRepo) Create(ctx context.Context, prompt *entity.Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *prompt
	r.prompts = append(r.prompts, &cp)
	return nil
}

func (r *fakePromptRepo) Update(ctx context.Context, prompt *entity.Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.prompts {
		if p.Id == prompt.Id {
			cp := *prompt
			r.prompts[i] = &cp
		}
	}
	return nil
}

func (r *fakePromptRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Prompt, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *fakePromptRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Prompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	activeOnly := false
	ordered := false
	var byChapter *uuid.UUID
	var byID *uuid.UUID
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ActiveOnly:
			activeOnly = true
		case specification.CurriculumOrder:
			ordered = true
		case specification.ByChapterID:
			id := sp.ChapterID
			byChapter = &id
		case specification.ByID:
			id := sp.ID
			byID = &id
		}
	}
	var out []*entity.Prompt
	for _, p := range r.prompts {
		if activeOnly && !p.IsActive {
			continue
		}
		if byChapter != nil && p.ChapterId != *byChapter {
			continue
		}
		if byID != nil && p.Id != *byID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	if ordered {
		sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	}
	return out, nil
}

func (r *fakePromptRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeStateRepo struct {
	mu     sync.Mutex
	states map[uuid.UUID]*entity.ProjectPromptState

	// rejectAdvances makes the next N AdvanceChapter calls report a lost
	// race without touching the row.
	rejectAdvances int
	advanceCalls   int
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[uuid.UUID]*entity.ProjectPromptState)}
}

func (r *fakeStateRepo) FindByProject(ctx context.Context, projectId uuid.UUID) (*entity.ProjectPromptState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.states[projectId]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeStateRepo) Init(ctx context.Context, state *entity.ProjectPromptState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.states[state.ProjectId]; ok {
		return nil
	}
	cp := *state
	r.states[state.ProjectId] = &cp
	return nil
}

func (r *fakeStateRepo) IncrementIndex(ctx context.Context, projectId uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[projectId]
	if !ok {
		return false, nil
	}
	s.CurrentPromptIndex++
	now := time.Now()
	s.LastDeliveredAt = &now
	return true, nil
}

func (r *fakeStateRepo) AdvanceChapter(ctx context.Context, projectId, fromChapterId uuid.UUID, fromIndex int, toChapterId uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanceCalls++
	if r.rejectAdvances > 0 {
		r.rejectAdvances--
		return false, nil
	}
	s, ok := r.states[projectId]
	if !ok || s.CurrentChapterId != fromChapterId || s.CurrentPromptIndex != fromIndex {
		return false, nil
	}
	s.CurrentChapterId = toChapterId
	s.CurrentPromptIndex = 0
	return true, nil
}

type fakeUserPromptRepo struct {
	mu      sync.Mutex
	prompts []*entity.UserPrompt
}

func (r *fakeUserPromptRepo) Create(ctx context.Context, prompt *entity.UserPrompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *prompt
	r.prompts = append(r.prompts, &cp)
	return nil
}

func (r *fakeUserPromptRepo) PeekHighestUndelivered(ctx context.Context, projectId uuid.UUID) (*entity.UserPrompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []*entity.UserPrompt
	for _, p := range r.prompts {
		if p.ProjectId == projectId && !p.IsDelivered {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	cp := *candidates[0]
	return &cp, nil
}

func (r *fakeUserPromptRepo) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.prompts {
		if p.Id == id && !p.IsDelivered {
			p.IsDelivered = true
			now := time.Now()
			p.DeliveredAt = &now
		}
	}
	return nil
}

func (r *fakeUserPromptRepo) matches(p *entity.UserPrompt, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if p.Id != sp.ID {
				return false
			}
		case specification.ByProjectID:
			if p.ProjectId != sp.ProjectID {
				return false
			}
		case specification.UndeliveredOnly:
			if p.IsDelivered {
				return false
			}
		}
	}
	return true
}

func (r *fakeUserPromptRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserPrompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.prompts {
		if r.matches(p, specs) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserPromptRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UserPrompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	queueOrder := false
	for _, s := range specs {
		if _, ok := s.(specification.QueueOrder); ok {
			queueOrder = true
		}
	}
	var out []*entity.UserPrompt
	for _, p := range r.prompts {
		if r.matches(p, specs) {
			cp := *p
			out = append(out, &cp)
		}
	}
	if queueOrder {
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Priority != out[j].Priority {
				return out[i].Priority > out[j].Priority
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out, nil
}

func (r *fakeUserPromptRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeInteractionRepo struct {
	mu           sync.Mutex
	interactions []*entity.Interaction
}

func (r *fakeInteractionRepo) Create(ctx context.Context, interaction *entity.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *interaction
	r.interactions = append(r.interactions, &cp)
	return nil
}

func (r *fakeInteractionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, in := range r.interactions {
		match := true
		for _, s := range specs {
			if sp, ok := s.(specification.ByID); ok && in.Id != sp.ID {
				match = false
			}
		}
		if match {
			cp := *in
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInteractionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Interaction, 0, len(r.interactions))
	for _, in := range r.interactions {
		cp := *in
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInteractionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.interactions)), nil
}

type fakeUnitOfWork struct {
	members      *fakeMemberRepo
	chapters     *fakeChapterRepo
	prompts      *fakePromptRepo
	states       *fakeStateRepo
	userPrompts  *fakeUserPromptRepo
	interactions *fakeInteractionRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository                 { return nil }
func (u *fakeUnitOfWork) ProjectRepository() contract.ProjectRepository           { return nil }
func (u *fakeUnitOfWork) StoryRepository() contract.StoryRepository               { return nil }
func (u *fakeUnitOfWork) SubscriptionRepository() contract.SubscriptionRepository { return nil }

func (u *fakeUnitOfWork) ProjectMemberRepository() contract.ProjectMemberRepository {
	return u.members
}
func (u *fakeUnitOfWork) InteractionRepository() contract.InteractionRepository {
	return u.interactions
}
func (u *fakeUnitOfWork) ChapterRepository() contract.ChapterRepository { return u.chapters }
func (u *fakeUnitOfWork) PromptRepository() contract.PromptRepository   { return u.prompts }
func (u *fakeUnitOfWork) ProjectPromptStateRepository() contract.ProjectPromptStateRepository {
	return u.states
}
func (u *fakeUnitOfWork) UserPromptRepository() contract.UserPromptRepository { return u.userPrompts }

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

// --- fixture ---------------------------------------------------------------

type deliveryFixture struct {
	svc       IDeliveryService
	uow       *fakeUnitOfWork
	projectId uuid.UUID
	userId    uuid.UUID
}

func newDeliveryFixture(t *testing.T) *deliveryFixture {
	t.Helper()
	uow := &fakeUnitOfWork{
		members:      &fakeMemberRepo{},
		chapters:     &fakeChapterRepo{},
		prompts:      &fakePromptRepo{},
		states:       newFakeStateRepo(),
		userPrompts:  &fakeUserPromptRepo{},
		interactions: &fakeInteractionRepo{},
	}
	f := &deliveryFixture{
		svc:       NewDeliveryService(&fakeFactory{uow: uow}, nopLogger{}),
		uow:       uow,
		projectId: uuid.New(),
		userId:    uuid.New(),
	}
	f.addMember(f.userId, entity.MemberRoleFacilitator, entity.MemberStatusActive)
	return f
}

func (f *deliveryFixture) addMember(userId uuid.UUID, role entity.MemberRole, status entity.MemberStatus) {
	_ = f.uow.members.Create(context.Background(), &entity.ProjectMember{
		Id:        uuid.New(),
		ProjectId: f.projectId,
		UserId:    userId,
		Role:      role,
		Status:    status,
		CreatedAt: time.Now(),
	})
}

func (f *deliveryFixture) addChapter(orderIndex int, active bool) uuid.UUID {
	id := uuid.New()
	_ = f.uow.chapters.Create(context.Background(), &entity.Chapter{
		Id:         id,
		Title:      "Chapter",
		OrderIndex: orderIndex,
		IsActive:   active,
		CreatedAt:  time.Now(),
	})
	return id
}

func (f *deliveryFixture) addPrompt(chapterId uuid.UUID, orderIndex int, text string, active bool) uuid.UUID {
	id := uuid.New()
	_ = f.uow.prompts.Create(context.Background(), &entity.Prompt{
		Id:         id,
		ChapterId:  chapterId,
		Text:       text,
		OrderIndex: orderIndex,
		IsActive:   active,
		CreatedAt:  time.Now(),
	})
	return id
}

func (f *deliveryFixture) addUserPrompt(text string, priority int, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	_ = f.uow.userPrompts.Create(context.Background(), &entity.UserPrompt{
		Id:        id,
		ProjectId: f.projectId,
		Text:      text,
		Priority:  priority,
		CreatedBy: f.userId,
		CreatedAt: createdAt,
	})
	return id
}

func assertAppErrorCode(t *testing.T, err error, code serverutils.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*serverutils.AppError)
	require.True(t, ok, "expected *serverutils.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

// --- tests -----------------------------------------------------------------

func TestGetNextPromptPrefersQueuedUserPrompt(t *testing.T) {
	f := newDeliveryFixture(t)
	ch := f.addChapter(0, true)
	f.addPrompt(ch, 0, "curriculum question", true)

	base := time.Now()
	f.addUserPrompt("older low priority", 0, base)
	wantId := f.addUserPrompt("newer high priority", 100, base.Add(time.Minute))

	resp, err := f.svc.GetNextPrompt(context.Background(), f.userId, f.projectId)
	require.NoError(t, err)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, wantId, resp.Prompt.Id)
	assert.Equal(t, "user", resp.Prompt.Source)

	// Resolution is read only: the same prompt comes back until it is
	// acknowledged.
	again, err := f.svc.GetNextPrompt(context.Background(), f.userId, f.projectId)
	require.NoError(t, err)
	require.NotNil(t, again.Prompt)
	assert.Equal(t, wantId, again.Prompt.Id)
}

func TestUserPromptQueueTiesBreakByAge(t *testing.T) {
	f := newDeliveryFixture(t)
	base := time.Now()
	first := f.addUserPrompt("asked first", 50, base)
	f.addUserPrompt("asked second", 50, base.Add(time.Second))

	resp, err := f.svc.GetNextPrompt(context.Background(), f.userId, f.projectId)
	require.NoError(t, err)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, first, resp.Prompt.Id)
}

func TestGetNextPromptInitializesCursorLazily(t *testing.T) {
	f := newDeliveryFixture(t)
	ch1 := f.addChapter(0, true)
	ch2 := f.addChapter(1, true)
	p1 := f.addPrompt(ch1, 0, "first question", true)
	f.addPrompt(ch1, 1, "second question", true)
	f.addPrompt(ch2, 0, "third question", true)

	state, err := f.uow.states.FindByProject(context.Background(), f.projectId)
	require.NoError(t, err)
	require.Nil(t, state)

	resp, err := f.svc.GetNextPrompt(context.Background(), f.userId, f.projectId)
	require.NoError(t, err)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, p1, resp.Prompt.Id)
	assert.Equal(t, "system", resp.Prompt.Source)
	require.NotNil(t, resp.Prompt.Chapter)
	assert.Equal(t, ch1, resp.Prompt.Chapter.Id)

	state, err = f.uow.states.FindByProject(context.Background(), f.projectId)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, ch1, state.CurrentChapterId)
	assert.Equal(t, 0, state.CurrentPromptIndex)
}

func TestSystemAckWalksTheCurriculum(t *testing.T) {
	f := newDeliveryFixture(t)
	ch1 := f.addChapter(0, true)
	ch2 := f.addChapter(1, true)
	f.addPrompt(ch1, 0, "q1", true)
	p2 := f.addPrompt(ch1, 1, "q2", true)
	p3 := f.addPrompt(ch2, 0, "q3", true)

	ctx := context.Background()
	_, err := f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)

	require.NoError(t, f.svc.AcknowledgeDelivery(ctx, f.userId, f.projectId, entity.SystemAck()))
	resp, err := f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, p2, resp.Prompt.Id)

	// Acking the last prompt of a chapter runs the index past the end; the
	// next resolution crosses into the following chapter and rebases the
	// cursor there.
	require.NoError(t, f.svc.AcknowledgeDelivery(ctx, f.userId, f.projectId, entity.SystemAck()))
	resp, err = f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, p3, resp.Prompt.Id)

	state, err := f.uow.states.FindByProject(ctx, f.projectId)
	require.NoError(t, err)
	assert.Equal(t, ch2, state.CurrentChapterId)
	assert.Equal(t, 0, state.CurrentPromptIndex)
}

func TestGetNextPromptSkipsEmptyAndInactiveChapters(t *testing.T) {
	f := newDeliveryFixture(t)
	f.addChapter(0, true) // no prompts at all
	chInactive := f.addChapter(1, false)
	f.addPrompt(chInactive, 0, "hidden", true)
	ch3 := f.addChapter(2, true)
	f.addPrompt(ch3, 0, "inactive prompt", false)
	want := f.addPrompt(ch3, 1, "visible", true)

	resp, err := f.svc.GetNextPrompt(context.Background(), f.userId, f.projectId)
	require.NoError(t, err)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, want, resp.Prompt.Id)

	state, err := f.uow.states.FindByProject(context.Background(), f.projectId)
	require.NoError(t, err)
	assert.Equal(t, ch3, state.CurrentChapterId)
}

func TestGetNextPromptCursorOnDeactivatedChapter(t *testing.T) {
	f := newDeliveryFixture(t)
	ch1 := f.addChapter(0, true)
	f.addPrompt(ch1, 0, "q1", true)
	ch2 := f.addChapter(1, true)
	want := f.addPrompt(ch2, 0, "q2", true)

	ctx := context.Background()
	_, err := f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)

	// Deactivate the chapter the cursor sits on; resolution falls through
	// to the next active chapter.
	chs, _ := f.uow.chapters.FindAll(ctx, specification.ByID{ID: ch1})
	chs[0].IsActive = false
	require.NoError(t, f.uow.chapters.Update(ctx, chs[0]))

	resp, err := f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, want, resp.Prompt.Id)
}

func TestGetNextPromptExhaustedCurriculum(t *testing.T) {
	f := newDeliveryFixture(t)
	ch := f.addChapter(0, true)
	f.addPrompt(ch, 0, "only question", true)

	ctx := context.Background()
	_, err := f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)
	require.NoError(t, f.svc.AcknowledgeDelivery(ctx, f.userId, f.projectId, entity.SystemAck()))

	resp, err := f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)
	assert.Nil(t, resp.Prompt)

	// The cursor stays put so chapters appended later resume from here.
	state, err := f.uow.states.FindByProject(ctx, f.projectId)
	require.NoError(t, err)
	assert.Equal(t, ch, state.CurrentChapterId)
	assert.Equal(t, 1, state.CurrentPromptIndex)

	// Appending fresh content revives delivery without any cursor reset.
	ch2 := f.addChapter(1, true)
	revived := f.addPrompt(ch2, 0, "new question", true)
	resp, err = f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, revived, resp.Prompt.Id)
}

func TestGetNextPromptEmptyCurriculum(t *testing.T) {
	f := newDeliveryFixture(t)

	resp, err := f.svc.GetNextPrompt(context.Background(), f.userId, f.projectId)
	require.NoError(t, err)
	assert.Nil(t, resp.Prompt)

	// No chapters means no state row either.
	state, err := f.uow.states.FindByProject(context.Background(), f.projectId)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestGetNextPromptRetriesLostChapterAdvance(t *testing.T) {
	f := newDeliveryFixture(t)
	ch1 := f.addChapter(0, true)
	f.addPrompt(ch1, 0, "q1", true)
	ch2 := f.addChapter(1, true)
	want := f.addPrompt(ch2, 0, "q2", true)

	ctx := context.Background()
	_, err := f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)
	require.NoError(t, f.svc.AcknowledgeDelivery(ctx, f.userId, f.projectId, entity.SystemAck()))

	// First advance loses the race, the retry with a fresh snapshot wins.
	f.uow.states.rejectAdvances = 1
	resp, err := f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)
	require.NotNil(t, resp.Prompt)
	assert.Equal(t, want, resp.Prompt.Id)
	assert.Equal(t, 2, f.uow.states.advanceCalls)
}

func TestGetNextPromptFailsAfterRepeatedRaces(t *testing.T) {
	f := newDeliveryFixture(t)
	ch1 := f.addChapter(0, true)
	f.addPrompt(ch1, 0, "q1", true)
	ch2 := f.addChapter(1, true)
	f.addPrompt(ch2, 0, "q2", true)

	ctx := context.Background()
	_, err := f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)
	require.NoError(t, f.svc.AcknowledgeDelivery(ctx, f.userId, f.projectId, entity.SystemAck()))

	f.uow.states.rejectAdvances = 2
	_, err = f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	assertAppErrorCode(t, err, serverutils.ErrCodeInternal)
}

func TestSystemAckBeforeFirstResolution(t *testing.T) {
	f := newDeliveryFixture(t)
	f.addChapter(0, true)

	err := f.svc.AcknowledgeDelivery(context.Background(), f.userId, f.projectId, entity.SystemAck())
	assertAppErrorCode(t, err, serverutils.ErrCodeNotFound)
}

func TestSystemAckConcurrentIncrements(t *testing.T) {
	f := newDeliveryFixture(t)
	ch := f.addChapter(0, true)
	for i := 0; i < 50; i++ {
		f.addPrompt(ch, i, "question", true)
	}

	ctx := context.Background()
	_, err := f.svc.GetNextPrompt(ctx, f.userId, f.projectId)
	require.NoError(t, err)

	const workers = 32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, f.svc.AcknowledgeDelivery(ctx, f.userId, f.projectId, entity.SystemAck()))
		}()
	}
	wg.Wait()

	state, err := f.uow.states.FindByProject(ctx, f.projectId)
	require.NoError(t, err)
	assert.Equal(t, workers, state.CurrentPromptIndex)
}

func TestUserAckMarksPromptDelivered(t *testing.T) {
	f := newDeliveryFixture(t)
	id := f.addUserPrompt("follow up", 100, time.Now())

	ctx := context.Background()
	require.NoError(t, f.svc.AcknowledgeDelivery(ctx, f.userId, f.projectId, entity.UserAck(id)))

	got, err := f.uow.userPrompts.FindOne(ctx, specification.ByID{ID: id})
	require.NoError(t, err)
	assert.True(t, got.IsDelivered)
	require.NotNil(t, got.DeliveredAt)
	firstDeliveredAt := *got.DeliveredAt

	// Re-acking an already delivered prompt is a no-op, never an error.
	require.NoError(t, f.svc.AcknowledgeDelivery(ctx, f.userId, f.projectId, entity.UserAck(id)))
	got, err = f.uow.userPrompts.FindOne(ctx, specification.ByID{ID: id})
	require.NoError(t, err)
	assert.Equal(t, firstDeliveredAt, *got.DeliveredAt)
}

func TestUserAckRejectsForeignPrompt(t *testing.T) {
	f := newDeliveryFixture(t)

	// A prompt that belongs to some other project.
	foreign := uuid.New()
	_ = f.uow.userPrompts.Create(context.Background(), &entity.UserPrompt{
		Id:        foreign,
		ProjectId: uuid.New(),
		Text:      "not yours",
		CreatedBy: uuid.New(),
		CreatedAt: time.Now(),
	})

	err := f.svc.AcknowledgeDelivery(context.Background(), f.userId, f.projectId, entity.UserAck(foreign))
	assertAppErrorCode(t, err, serverutils.ErrCodeNotFound)

	err = f.svc.AcknowledgeDelivery(context.Background(), f.userId, f.projectId, entity.UserAck(uuid.New()))
	assertAppErrorCode(t, err, serverutils.ErrCodeNotFound)
}

func TestAcknowledgeUnknownKind(t *testing.T) {
	f := newDeliveryFixture(t)

	err := f.svc.AcknowledgeDelivery(context.Background(), f.userId, f.projectId, entity.Acknowledgement{Kind: "bogus"})
	assertAppErrorCode(t, err, serverutils.ErrCodeBadRequest)
}

func TestNonMembersSeeNoProject(t *testing.T) {
	f := newDeliveryFixture(t)
	f.addChapter(0, true)

	stranger := uuid.New()
	removed := uuid.New()
	f.addMember(removed, entity.MemberRoleStoryteller, entity.MemberStatusRemoved)

	for _, userId := range []uuid.UUID{stranger, removed} {
		_, err := f.svc.GetNextPrompt(context.Background(), userId, f.projectId)
		assertAppErrorCode(t, err, serverutils.ErrCodeNotFound)

		err = f.svc.AcknowledgeDelivery(context.Background(), userId, f.projectId, entity.SystemAck())
		assertAppErrorCode(t, err, serverutils.ErrCodeNotFound)

		_, err = f.svc.ListUserPrompts(context.Background(), userId, f.projectId)
		assertAppErrorCode(t, err, serverutils.ErrCodeNotFound)
	}
}

func TestCreateUserPromptRequiresFacilitator(t *testing.T) {
	f := newDeliveryFixture(t)
	storyteller := uuid.New()
	f.addMember(storyteller, entity.MemberRoleStoryteller, entity.MemberStatusActive)

	_, err := f.svc.CreateUserPrompt(context.Background(), storyteller, &dto.CreateUserPromptRequest{
		ProjectId: f.projectId,
		Text:      "tell me more",
	})
	assertAppErrorCode(t, err, serverutils.ErrCodeUnauthorized)

	resp, err := f.svc.CreateUserPrompt(context.Background(), f.userId, &dto.CreateUserPromptRequest{
		ProjectId: f.projectId,
		Text:      "tell me more",
		Priority:  25,
	})
	require.NoError(t, err)

	created, err := f.uow.userPrompts.FindOne(context.Background(), specification.ByID{ID: resp.Id})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, 25, created.Priority)
	assert.False(t, created.IsDelivered)
}

func TestListUserPromptsQueueOrder(t *testing.T) {
	f := newDeliveryFixture(t)
	base := time.Now()
	low := f.addUserPrompt("low", 0, base)
	high := f.addUserPrompt("high", 100, base.Add(time.Minute))

	prompts, err := f.svc.ListUserPrompts(context.Background(), f.userId, f.projectId)
	require.NoError(t, err)
	require.Len(t, prompts, 2)
	assert.Equal(t, high, prompts[0].Id)
	assert.Equal(t, low, prompts[1].Id)
}
