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
	"github.com/stretchr/testify/require"

	"github.com/jcarlosmelian/promtscp/internal/dto"
	"github.com/jcarlosmelian/promtscp/internal/handler"
	"github.com/jcarlosmelian/promtscp/internal/middleware"
	"github.com/jcarlosmelian/promtscp/internal/service"
)

type expertServiceStub struct {
	answer dto.ExpertAnswer
	err    error
	asked  []string
}

func (s *expertServiceStub) Ask(_ context.Context, sessionID string, req dto.ExpertQueryRequest) (dto.ExpertAnswer, error) {
	s.asked = append(s.asked, sessionID+":"+req.Query)
	return s.answer, s.err
}

func (s *expertServiceStub) Enabled() bool { return true }

func newRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return req
}

func TestExpertHandlerAnswers(t *testing.T) {
	stub := &expertServiceStub{answer: dto.ExpertAnswer{Answer: "Usa pasos encadenados."}}
	app := fiber.New()
	handler.NewExpertHandler(stub, zerolog.Nop()).Register(app.Group("/sessions"))

	resp, err := app.Test(newRequest(t, http.MethodPost, "/sessions/s1/expert", dto.ExpertQueryRequest{Query: "¿Qué es LCSP?"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool             `json:"success"`
		Data    dto.ExpertAnswer `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, "Usa pasos encadenados.", payload.Data.Answer)
	require.Equal(t, []string{"s1:¿Qué es LCSP?"}, stub.asked)
}

func TestExpertHandlerMapsErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "unknown session", err: service.ErrSessionNotFound, status: fiber.StatusNotFound},
		{name: "question in flight", err: service.ErrExpertBusy, status: fiber.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			handler.NewExpertHandler(&expertServiceStub{err: tc.err}, zerolog.Nop()).Register(app.Group("/sessions"))

			resp, err := app.Test(newRequest(t, http.MethodPost, "/sessions/s1/expert", dto.ExpertQueryRequest{Query: "hola"}), -1)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestExpertHandlerRateLimited(t *testing.T) {
	stub := &expertServiceStub{answer: dto.ExpertAnswer{Answer: "ok"}}
	app := fiber.New()
	handler.NewExpertHandler(stub, zerolog.Nop()).Register(app.Group("/sessions"), middleware.RateLimit("expert", 1, time.Minute))

	first, err := app.Test(newRequest(t, http.MethodPost, "/sessions/s1/expert", dto.ExpertQueryRequest{Query: "uno"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, first.StatusCode)

	second, err := app.Test(newRequest(t, http.MethodPost, "/sessions/s1/expert", dto.ExpertQueryRequest{Query: "dos"}), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTooManyRequests, second.StatusCode)
	require.Len(t, stub.asked, 1)
}
