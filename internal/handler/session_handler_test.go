package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/jcarlosmelian/promtscp/internal/catalog"
	"github.com/jcarlosmelian/promtscp/internal/dto"
	"github.com/jcarlosmelian/promtscp/internal/handler"
	"github.com/jcarlosmelian/promtscp/internal/models"
	"github.com/jcarlosmelian/promtscp/internal/repository"
	"github.com/jcarlosmelian/promtscp/internal/service"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
}

type sessionAPI struct {
	t   *testing.T
	app *fiber.App
	svc service.SessionService
}

func newSessionAPI(t *testing.T) *sessionAPI {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	logger := zerolog.Nop()
	svc := service.NewSessionService(
		repository.NewMemorySessionRepository(time.Hour),
		cat,
		service.NewChoicePublisher(nil, "", logger),
		nil,
		service.SessionServiceConfig{ScoringDelay: time.Millisecond},
		logger,
	)
	t.Cleanup(svc.Close)

	app := fiber.New()
	handler.NewSessionHandler(svc, logger).Register(app.Group("/api/v1/sessions"))
	return &sessionAPI{t: t, app: app, svc: svc}
}

func (a *sessionAPI) do(method, path string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)

	var out envelope
	decodeResponse(a.t, resp, &out)
	return resp.StatusCode, out
}

func (a *sessionAPI) intent(id, name string, body interface{}) (int, dto.SessionView, envelope) {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/sessions/"+id+"/intents/"+name, body)
	var view dto.SessionView
	if env.Success {
		require.NoError(a.t, json.Unmarshal(env.Data, &view))
	}
	return status, view, env
}

func (a *sessionAPI) advanceTo(id string, target models.Stage) dto.SessionView {
	a.t.Helper()
	for i := 0; i < 20; i++ {
		status, view, env := a.intent(id, "advance-stage", nil)
		require.Equal(a.t, fiber.StatusOK, status, env.Message)
		if view.Stage == target {
			return view
		}
	}
	a.t.Fatalf("stage %s not reached", target)
	return dto.SessionView{}
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestSessionHandlerWalkthroughOverHTTP(t *testing.T) {
	api := newSessionAPI(t)

	status, env := api.do(http.MethodPost, "/api/v1/sessions/", nil)
	require.Equal(t, fiber.StatusCreated, status)
	var view dto.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Equal(t, models.StageIntroduction, view.Stage)
	id := view.ID
	require.NotEmpty(t, id)

	view = api.advanceTo(id, models.StageBasicPromptSim)
	status, _, env = api.intent(id, "advance-stage", nil)
	require.Equal(t, fiber.StatusConflict, status)
	require.False(t, env.Success)

	status, view, _ = api.intent(id, "reveal-basic-prompt", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, view.BasicPrompt.Revealed)

	api.advanceTo(id, models.StageTaskMapping)
	for _, tid := range []string{"t1", "t2", "t3", "t4", "t5"} {
		status, _, env = api.intent(id, "select-task", dto.SelectTaskRequest{TaskID: tid})
		require.Equal(t, fiber.StatusOK, status, env.Message)
	}
	status, view, _ = api.intent(id, "check-sequence", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, view.TaskMapping.Verdict)
	require.True(t, *view.TaskMapping.Verdict)

	view = api.advanceTo(id, models.StageConstitutionalAI)
	for view.Stage == models.StageConstitutionalAI {
		status, _, env = api.intent(id, "answer-principle", dto.AnswerPrincipleRequest{Answer: "violation"})
		require.Equal(t, fiber.StatusOK, status, env.Message)
		status, view, _ = api.intent(id, "advance-principle", nil)
		require.Equal(t, fiber.StatusOK, status)
	}

	view = api.advanceTo(id, models.StagePromptChaining)
	require.NotNil(t, view.Chaining)
	require.Equal(t, 0, view.Chaining.StepIndex)

	status, _, env = api.intent(id, "advance-cursor", nil)
	require.Equal(t, fiber.StatusConflict, status, "cursor cannot move before a result is shown")

	status, view, _ = api.intent(id, "toggle-enhancement", dto.ToggleEnhancementRequest{ChoiceID: "e1"})
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, view.Chaining.Choices[0].Selected)
	status, _, _ = api.intent(id, "toggle-enhancement", dto.ToggleEnhancementRequest{ChoiceID: "e2"})
	require.Equal(t, fiber.StatusOK, status)

	status, view, _ = api.intent(id, "simulate-evaluation", nil)
	require.Equal(t, fiber.StatusAccepted, status)
	require.True(t, view.Chaining.Pending)

	require.NoError(t, api.svc.AwaitEvaluation(context.Background(), id))

	status, env = api.do(http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.True(t, view.Chaining.ResultShown)
	require.NotNil(t, view.Chaining.Outcome)
	require.Equal(t, "applied", view.Chaining.Outcome.Status)
	require.Equal(t, models.AdminApto, view.Chaining.Outcome.Result.AdministrativeCheck)

	status, view, _ = api.intent(id, "advance-cursor", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, 1, view.Chaining.OfferIndex)
}

func TestSessionHandlerErrorMapping(t *testing.T) {
	api := newSessionAPI(t)

	status, env := api.do(http.MethodGet, "/api/v1/sessions/missing", nil)
	require.Equal(t, fiber.StatusNotFound, status)
	require.False(t, env.Success)

	_, env = api.do(http.MethodPost, "/api/v1/sessions/", nil)
	var view dto.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	id := view.ID

	status, _, env = api.intent(id, "answer-principle", dto.AnswerPrincipleRequest{Answer: "violation"})
	require.Equal(t, fiber.StatusConflict, status)

	status, _, env = api.intent(id, "answer-principle", dto.AnswerPrincipleRequest{Answer: "maybe"})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "invalid payload", env.Message)
	require.NotEmpty(t, env.Details)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/intents/select-task", bytes.NewBufferString("{"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	api.advanceTo(id, models.StageBasicPromptSim)
	_, _, _ = api.intent(id, "reveal-basic-prompt", nil)
	api.advanceTo(id, models.StageTaskMapping)
	status, _, env = api.intent(id, "select-task", dto.SelectTaskRequest{TaskID: "t9"})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Contains(t, env.Message, "t9")

	status, _ = api.do(http.MethodDelete, "/api/v1/sessions/"+id, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = api.do(http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, fiber.StatusNotFound, status)
}

const sessionViewSchema = `{
  "type": "object",
  "required": ["id", "stage", "stage_index", "stage_count", "stage_kind", "title", "can_advance", "expert", "updated_at"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "stage": {"type": "string", "pattern": "^[A-Z_]+$"},
    "stage_index": {"type": "integer", "minimum": 0},
    "stage_count": {"type": "integer", "const": 12},
    "stage_kind": {"enum": ["intro", "interactive"]},
    "can_advance": {"type": "boolean"},
    "expert": {
      "type": "object",
      "required": ["enabled"],
      "properties": {"enabled": {"type": "boolean"}}
    },
    "task_mapping": {
      "type": "object",
      "required": ["available", "sequence"],
      "properties": {
        "available": {
          "type": "array",
          "items": {"type": "object", "required": ["id", "name"], "not": {"required": ["order"]}}
        }
      }
    }
  }
}`

func TestSessionViewMatchesContract(t *testing.T) {
	schema, err := jsonschema.CompileString("session_view.json", sessionViewSchema)
	require.NoError(t, err)

	api := newSessionAPI(t)
	_, env := api.do(http.MethodPost, "/api/v1/sessions/", nil)
	var view dto.SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))

	validate := func(raw json.RawMessage) {
		t.Helper()
		var doc interface{}
		require.NoError(t, json.Unmarshal(raw, &doc))
		require.NoError(t, schema.Validate(doc))
	}
	validate(env.Data)

	api.advanceTo(view.ID, models.StageBasicPromptSim)
	_, _, env = api.intent(view.ID, "reveal-basic-prompt", nil)
	validate(env.Data)

	api.advanceTo(view.ID, models.StageTaskMapping)
	_, _, env = api.intent(view.ID, "select-task", dto.SelectTaskRequest{TaskID: "t2"})
	validate(env.Data)
}
