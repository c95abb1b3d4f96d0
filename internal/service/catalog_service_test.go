package service

import (
	"context"
	"testing"
	"time"

	"family-stories-be/internal/dto"
	"family-stories-be/internal/pkg/serverutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogFixture(t *testing.T) (ICatalogService, *fakeUnitOfWork) {
	t.Helper()
	uow := &fakeUnitOfWork{
		members:      &fakeMemberRepo{},
		chapters:     &fakeChapterRepo{},
		prompts:      &fakePromptRepo{},
		states:       newFakeStateRepo(),
		userPrompts:  &fakeUserPromptRepo{},
		interactions: &fakeInteractionRepo{},
	}
	return NewCatalogService(&fakeFactory{uow: uow}, time.Minute), uow
}

func TestListCurriculumShape(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	ch, err := svc.CreateChapter(ctx, &dto.CreateChapterRequest{Title: "Childhood", OrderIndex: 0})
	require.NoError(t, err)
	_, err = svc.CreatePrompt(ctx, &dto.CreatePromptRequest{ChapterId: ch.Id, Text: "Where did you grow up?", OrderIndex: 0})
	require.NoError(t, err)
	inactive := false
	_, err = svc.CreatePrompt(ctx, &dto.CreatePromptRequest{ChapterId: ch.Id, Text: "draft", OrderIndex: 1, IsActive: &inactive})
	require.NoError(t, err)

	curriculum, err := svc.ListCurriculum(ctx)
	require.NoError(t, err)
	require.Len(t, curriculum, 1)
	assert.Equal(t, "Childhood", curriculum[0].Title)
	require.Len(t, curriculum[0].Prompts, 1)
	assert.Equal(t, "Where did you grow up?", curriculum[0].Prompts[0].Text)
}

func TestListCurriculumCacheInvalidatedByEdits(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	ch, err := svc.CreateChapter(ctx, &dto.CreateChapterRequest{Title: "Childhood", OrderIndex: 0})
	require.NoError(t, err)

	curriculum, err := svc.ListCurriculum(ctx)
	require.NoError(t, err)
	require.Len(t, curriculum, 1)

	// The edit must punch through the cached listing.
	_, err = svc.CreateChapter(ctx, &dto.CreateChapterRequest{Title: "Career", OrderIndex: 1})
	require.NoError(t, err)
	curriculum, err = svc.ListCurriculum(ctx)
	require.NoError(t, err)
	require.Len(t, curriculum, 2)

	require.NoError(t, svc.SetChapterActive(ctx, ch.Id, false))
	curriculum, err = svc.ListCurriculum(ctx)
	require.NoError(t, err)
	require.Len(t, curriculum, 1)
	assert.Equal(t, "Career", curriculum[0].Title)
}

func TestCreatePromptRequiresExistingChapter(t *testing.T) {
	svc, _ := newCatalogFixture(t)

	_, err := svc.CreatePrompt(context.Background(), &dto.CreatePromptRequest{
		ChapterId: uuid.New(),
		Text:      "orphan",
	})
	assertAppErrorCode(t, err, serverutils.ErrCodeNotFound)
}
