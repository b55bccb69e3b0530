package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voicebooking/internal/agent"
	"voicebooking/internal/bookings/repository"
	"voicebooking/internal/bookings/service"
	"voicebooking/internal/bookings/validator"
	"voicebooking/internal/tools"
	"voicebooking/pkg/config"
	"voicebooking/pkg/logger"
	"voicebooking/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRequester struct {
	requestSummaryFunc func(ctx context.Context, sessionID string) error
}

func (m *mockRequester) RequestSummary(ctx context.Context, sessionID string) error {
	if m.requestSummaryFunc != nil {
		return m.requestSummaryFunc(ctx, sessionID)
	}
	return nil
}

func newTestStore(t *testing.T) service.BookingStore {
	t.Helper()
	log := logger.Discard()
	return service.NewBookingStore(
		repository.NewMemoryCallerRepository(),
		repository.NewMemoryAppointmentRepository(),
		repository.NewMemoryConversationRepository(),
		validator.New(log),
		&config.Config{Log: log, RecentAppointmentScan: config.DefaultRecentAppointmentScan},
	)
}

func newRouter(store service.BookingStore, requester SummaryRequester) *httprouter.Router {
	router := httprouter.New()
	NewAgentHandler(store, requester, "Alex", logger.Discard()).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func saveSummary(t *testing.T, store service.BookingStore, callerID, sessionID, text string, at time.Time) {
	t.Helper()
	_, err := store.SaveConversationSummary(context.Background(), &model.ConversationSummary{
		CallerID:  callerID,
		SessionID: sessionID,
		Summary:   text,
		CreatedAt: at,
	})
	require.NoError(t, err)
}

func TestGetSummary(t *testing.T) {
	store := newTestStore(t)
	router := newRouter(store, &mockRequester{})
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	saveSummary(t, store, "", "room-1", "first", at)
	saveSummary(t, store, "", "room-1", "second", at.Add(time.Minute))

	rec := serve(router, http.MethodGet, "/api/v1/summaries/room-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data model.ConversationSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "second", body.Data.Summary)
	assert.Equal(t, []model.ActionRecord{}, body.Data.AppointmentsDiscussed)

	rec = serve(router, http.MethodGet, "/api/v1/summaries/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCallerSummaries(t *testing.T) {
	store := newTestStore(t)
	router := newRouter(store, &mockRequester{})
	caller, err := store.CreateCaller(context.Background(), "5551234567", "John Smith")
	require.NoError(t, err)

	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		saveSummary(t, store, caller.ID, fmt.Sprintf("room-%d", i), fmt.Sprintf("call %d", i), at.Add(time.Duration(i)*time.Hour))
	}

	tests := []struct {
		name         string
		target       string
		expectCode   int
		expectCount  int
		expectNewest string
	}{
		{name: "all", target: "/api/v1/callers/555-123-4567/summaries", expectCode: http.StatusOK, expectCount: 3, expectNewest: "call 2"},
		{name: "limited", target: "/api/v1/callers/5551234567/summaries?limit=1", expectCode: http.StatusOK, expectCount: 1, expectNewest: "call 2"},
		{name: "bad limit", target: "/api/v1/callers/5551234567/summaries?limit=abc", expectCode: http.StatusBadRequest},
		{name: "short phone", target: "/api/v1/callers/555/summaries", expectCode: http.StatusBadRequest},
		{name: "unknown caller", target: "/api/v1/callers/5550000000/summaries", expectCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, tt.target)
			require.Equal(t, tt.expectCode, rec.Code, rec.Body.String())
			if tt.expectCode != http.StatusOK {
				return
			}

			var body struct {
				Data  []model.ConversationSummary `json:"data"`
				Count int                         `json:"count"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectCount, body.Count)
			require.Len(t, body.Data, tt.expectCount)
			assert.Equal(t, tt.expectNewest, body.Data[0].Summary)
		})
	}
}

func TestRequestSummary(t *testing.T) {
	var requested []string
	requester := &mockRequester{
		requestSummaryFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "gone" {
				return fmt.Errorf("%w: %s", agent.ErrSessionNotFound, sessionID)
			}
			if sessionID == "broken" {
				return errors.New("unexpected")
			}
			requested = append(requested, sessionID)
			return nil
		},
	}
	router := newRouter(newTestStore(t), requester)

	rec := serve(router, http.MethodPost, "/api/v1/sessions/room-1/summary-request")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"data":{"session_id":"room-1","status":"summary_requested"}}`, rec.Body.String())
	assert.Equal(t, []string{"room-1"}, requested)

	rec = serve(router, http.MethodPost, "/api/v1/sessions/gone/summary-request")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, http.MethodPost, "/api/v1/sessions/broken/summary-request")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestInstructions(t *testing.T) {
	router := newRouter(newTestStore(t), &mockRequester{})

	rec := serve(router, http.MethodGet, "/api/v1/agent/instructions")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data InstructionsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Alex", body.Data.AgentName)
	assert.Contains(t, body.Data.SystemPrompt, "Your name is Alex.")
	assert.Len(t, body.Data.Tools, len(tools.Names()))
}

func TestHealth(t *testing.T) {
	router := httprouter.New()
	NewHealthHandler(nil, logger.Discard()).RegisterRoutes(router)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/ready").Code)

	down := httprouter.New()
	NewHealthHandler(func(ctx context.Context) error { return errors.New("no reachable servers") }, logger.Discard()).RegisterRoutes(down)
	assert.Equal(t, http.StatusServiceUnavailable, serve(down, http.MethodGet, "/ready").Code)
}
