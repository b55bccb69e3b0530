package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"voicebooking/internal/agent"
	"voicebooking/internal/bookings/service"
	"voicebooking/internal/lifecycle"
	"voicebooking/internal/tools"
	apperrors "voicebooking/pkg/errors"
	httputil "voicebooking/pkg/http"
	"voicebooking/pkg/logger"
	"voicebooking/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

// SummaryRequester starts the summary of a live session.
type SummaryRequester interface {
	RequestSummary(ctx context.Context, sessionID string) error
}

type InstructionsResponse struct {
	AgentName    string             `json:"agent_name"`
	SystemPrompt string             `json:"system_prompt"`
	Greeting     string             `json:"greeting"`
	Tools        []tools.Definition `json:"tools"`
}

type SummaryRequestResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type AgentHandler struct {
	store     service.BookingStore
	requester SummaryRequester
	agentName string
	log       *logger.Logger
	now       func() time.Time
}

func NewAgentHandler(store service.BookingStore, requester SummaryRequester, agentName string, log *logger.Logger) *AgentHandler {
	return &AgentHandler{
		store:     store,
		requester: requester,
		agentName: agentName,
		log:       log,
		now:       time.Now,
	}
}

func (h *AgentHandler) GetSummary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("session_id")

	summary, err := h.store.FindSummaryBySession(r.Context(), sessionID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSummary", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, summary); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSummary", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AgentHandler) ListCallerSummaries(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	phone := sanitizer.NormalizePhone(ps.ByName("phone"))
	if !sanitizer.IsValidPhone(phone) {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("phone must contain 10 to 15 digits")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListCallerSummaries", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	limit, err := httputil.ExtractLimit(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListCallerSummaries", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	summaries, err := h.store.ListCallerSummaries(r.Context(), phone, limit)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListCallerSummaries", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteList(w, summaries, len(summaries), limit); err != nil {
		h.log.Error("failed to write list response", "handler", "ListCallerSummaries", "operation", "WriteList", "error", err)
	}
}

func (h *AgentHandler) RequestSummary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("session_id")

	if err := h.requester.RequestSummary(r.Context(), sessionID); err != nil {
		if errors.Is(err, agent.ErrSessionNotFound) {
			err = apperrors.NotFoundWithID("Session", sessionID).WithCause(err)
		}
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "RequestSummary", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteAccepted(w, SummaryRequestResponse{SessionID: sessionID, Status: "summary_requested"}); err != nil {
		h.log.Error("failed to write accepted response", "handler", "RequestSummary", "operation", "WriteAccepted", "error", err)
	}
}

func (h *AgentHandler) Instructions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, InstructionsResponse{
		AgentName:    h.agentName,
		SystemPrompt: lifecycle.SystemPrompt(h.agentName, h.now()),
		Greeting:     lifecycle.Greeting(h.agentName),
		Tools:        tools.Catalog(),
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Instructions", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AgentHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/summaries/:session_id", h.GetSummary)
	router.GET("/api/v1/callers/:phone/summaries", h.ListCallerSummaries)
	router.POST("/api/v1/sessions/:session_id/summary-request", h.RequestSummary)
	router.GET("/api/v1/agent/instructions", h.Instructions)
}
