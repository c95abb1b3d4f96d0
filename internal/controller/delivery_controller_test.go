package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"family-stories-be/internal/dto"
	"family-stories-be/internal/entity"
	"family-stories-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDeliveryService struct {
	lastAck       *entity.Acknowledgement
	lastProjectId uuid.UUID
	lastUserId    uuid.UUID
}

func (s *stubDeliveryService) GetNextPrompt(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) (*dto.NextPromptResponse, error) {
	s.lastUserId = userId
	s.lastProjectId = projectId
	return &dto.NextPromptResponse{Prompt: nil}, nil
}

func (s *stubDeliveryService) AcknowledgeDelivery(ctx context.Context, userId uuid.UUID, projectId uuid.UUID, ack entity.Acknowledgement) error {
	s.lastUserId = userId
	s.lastProjectId = projectId
	s.lastAck = &ack
	return nil
}

func (s *stubDeliveryService) CreateUserPrompt(ctx context.Context, userId uuid.UUID, req *dto.CreateUserPromptRequest) (*dto.CreateUserPromptResponse, error) {
	return &dto.CreateUserPromptResponse{Id: uuid.New()}, nil
}

func (s *stubDeliveryService) ListUserPrompts(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.UserPromptResponse, error) {
	return nil, nil
}

func newDeliveryTestApp(t *testing.T, stub *stubDeliveryService) (*fiber.App, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewDeliveryController(stub).RegisterRoutes(api)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.New().String(),
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return app, signed
}

func postAcknowledge(t *testing.T, app *fiber.App, token string, projectId uuid.UUID, body dto.AcknowledgeRequest) int {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/delivery/v1/projects/"+projectId.String()+"/acknowledge", strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAcknowledgeMapsWireShapeToAckKind(t *testing.T) {
	stub := &stubDeliveryService{}
	app, token := newDeliveryTestApp(t, stub)
	projectId := uuid.New()
	promptId := uuid.New()

	// System ack: no prompt id on the wire.
	status := postAcknowledge(t, app, token, projectId, dto.AcknowledgeRequest{})
	assert.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, stub.lastAck)
	assert.Equal(t, entity.AckKindSystem, stub.lastAck.Kind)
	assert.Equal(t, projectId, stub.lastProjectId)

	// System ack echoing the id of the prompt just shown: the id is
	// accepted and dropped, never verified.
	stub.lastAck = nil
	status = postAcknowledge(t, app, token, projectId, dto.AcknowledgeRequest{
		PromptId: promptId,
	})
	assert.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, stub.lastAck)
	assert.Equal(t, entity.AckKindSystem, stub.lastAck.Kind)
	assert.Equal(t, uuid.Nil, stub.lastAck.PromptId)

	// User ack: the prompt id travels into the variant.
	stub.lastAck = nil
	status = postAcknowledge(t, app, token, projectId, dto.AcknowledgeRequest{
		IsUserPrompt: true,
		PromptId:     promptId,
	})
	assert.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, stub.lastAck)
	assert.Equal(t, entity.AckKindUser, stub.lastAck.Kind)
	assert.Equal(t, promptId, stub.lastAck.PromptId)
}

func TestAcknowledgeRejectsUserAckWithoutPromptId(t *testing.T) {
	stub := &stubDeliveryService{}
	app, token := newDeliveryTestApp(t, stub)
	projectId := uuid.New()

	status := postAcknowledge(t, app, token, projectId, dto.AcknowledgeRequest{IsUserPrompt: true})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Nil(t, stub.lastAck)
}

func TestDeliveryRoutesRequireToken(t *testing.T) {
	stub := &stubDeliveryService{}
	app, _ := newDeliveryTestApp(t, stub)

	req := httptest.NewRequest("GET", "/api/delivery/v1/projects/"+uuid.New().String()+"/next-prompt", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
