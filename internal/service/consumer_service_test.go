package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"family-stories-be/internal/constant"
	"family-stories-be/internal/dto"
	"family-stories-be/internal/entity"
	"family-stories-be/internal/repository/specification"
	"family-stories-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFollowUpTopic = "CONVERT_FOLLOW_UP_TEST"

func newConsumerFixture(t *testing.T) (*gochannel.GoChannel, *fakeUnitOfWork, unitofwork.RepositoryFactory) {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	t.Cleanup(func() { _ = pubSub.Close() })
	uow := &fakeUnitOfWork{
		members:      &fakeMemberRepo{},
		chapters:     &fakeChapterRepo{},
		prompts:      &fakePromptRepo{},
		states:       newFakeStateRepo(),
		userPrompts:  &fakeUserPromptRepo{},
		interactions: &fakeInteractionRepo{},
	}
	return pubSub, uow, &fakeFactory{uow: uow}
}

func waitForUserPrompts(t *testing.T, repo *fakeUserPromptRepo, projectId uuid.UUID, want int) []*entity.UserPrompt {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		prompts, err := repo.FindAll(context.Background(), specification.ByProjectID{ProjectID: projectId})
		require.NoError(t, err)
		if len(prompts) >= want {
			return prompts
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d queued prompts", want)
	return nil
}

func TestConsumerConvertsFollowUpToQueuedPrompt(t *testing.T) {
	pubSub, uow, factory := newConsumerFixture(t)

	projectId := uuid.New()
	storyId := uuid.New()
	authorId := uuid.New()
	interaction := &entity.Interaction{
		Id:        uuid.New(),
		StoryId:   storyId,
		ProjectId: projectId,
		AuthorId:  authorId,
		Kind:      entity.InteractionKindFollowUp,
		Content:   "what happened after the move?",
		CreatedAt: time.Now(),
	}
	require.NoError(t, uow.interactions.Create(context.Background(), interaction))

	consumer := NewConsumerService(pubSub, testFollowUpTopic, factory, nil, nopLogger{})
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService(testFollowUpTopic, pubSub)
	payload, err := json.Marshal(dto.ConvertFollowUpMessage{
		InteractionId: interaction.Id,
		ProjectId:     projectId,
		StoryId:       storyId,
		AuthorId:      authorId,
		Content:       interaction.Content,
	})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(context.Background(), payload))

	prompts := waitForUserPrompts(t, uow.userPrompts, projectId, 1)
	prompt := prompts[0]
	assert.Equal(t, interaction.Content, prompt.Text)
	assert.Equal(t, constant.FollowUpPromptPriority, prompt.Priority)
	assert.Equal(t, authorId, prompt.CreatedBy)
	require.NotNil(t, prompt.ParentStoryId)
	assert.Equal(t, storyId, *prompt.ParentStoryId)
	assert.False(t, prompt.IsDelivered)
}

func TestConsumerDropsNonFollowUps(t *testing.T) {
	pubSub, uow, factory := newConsumerFixture(t)

	projectId := uuid.New()
	comment := &entity.Interaction{
		Id:        uuid.New(),
		StoryId:   uuid.New(),
		ProjectId: projectId,
		AuthorId:  uuid.New(),
		Kind:      entity.InteractionKindComment,
		Content:   "lovely story",
		CreatedAt: time.Now(),
	}
	require.NoError(t, uow.interactions.Create(context.Background(), comment))

	consumer := NewConsumerService(pubSub, testFollowUpTopic, factory, nil, nopLogger{})
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService(testFollowUpTopic, pubSub)

	// A message for a comment, one for an interaction that no longer
	// exists, and raw garbage: all are dropped without queueing anything.
	commentMsg, _ := json.Marshal(dto.ConvertFollowUpMessage{
		InteractionId: comment.Id,
		ProjectId:     projectId,
		StoryId:       comment.StoryId,
		AuthorId:      comment.AuthorId,
		Content:       comment.Content,
	})
	vanishedMsg, _ := json.Marshal(dto.ConvertFollowUpMessage{
		InteractionId: uuid.New(),
		ProjectId:     projectId,
	})
	require.NoError(t, publisher.Publish(context.Background(), commentMsg))
	require.NoError(t, publisher.Publish(context.Background(), vanishedMsg))
	require.NoError(t, publisher.Publish(context.Background(), []byte("not json")))

	// A real follow-up published afterwards still converts, proving the
	// earlier drops were acked rather than wedging the subscription.
	followUp := &entity.Interaction{
		Id:        uuid.New(),
		StoryId:   uuid.New(),
		ProjectId: projectId,
		AuthorId:  uuid.New(),
		Kind:      entity.InteractionKindFollowUp,
		Content:   "and then?",
		CreatedAt: time.Now(),
	}
	require.NoError(t, uow.interactions.Create(context.Background(), followUp))
	followUpMsg, _ := json.Marshal(dto.ConvertFollowUpMessage{
		InteractionId: followUp.Id,
		ProjectId:     projectId,
		StoryId:       followUp.StoryId,
		AuthorId:      followUp.AuthorId,
		Content:       followUp.Content,
	})
	require.NoError(t, publisher.Publish(context.Background(), followUpMsg))

	prompts := waitForUserPrompts(t, uow.userPrompts, projectId, 1)
	require.Len(t, prompts, 1)
	assert.Equal(t, followUp.Content, prompts[0].Text)
}
