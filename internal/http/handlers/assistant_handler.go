// README: Assistant chat handlers (send, history, reset).
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripcraft/internal/modules/assistant"
)

// chatTimeout bounds one exchange, including the failover retry.
const chatTimeout = 45 * time.Second

type AssistantHandler struct {
	assistant *assistant.Service
}

func NewAssistantHandler(svc *assistant.Service) *AssistantHandler {
	return &AssistantHandler{assistant: svc}
}

type chatReq struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// Chat handles POST /api/assistant/chat. Model failures are reported in the
// reply text, never as an error status.
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SessionID != "" && !isValidID(req.SessionID) {
		writeError(c, http.StatusBadRequest, "invalid session_id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chatTimeout)
	defer cancel()

	reply, err := h.assistant.Send(ctx, req.SessionID, req.Message)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		writeError(c, http.StatusBadRequest, assistant.ClarificationReply)
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, reply)
}

// History handles GET /api/assistant/sessions/:id.
func (h *AssistantHandler) History(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}
	history, err := h.assistant.History(c.Request.Context(), id)
	if errors.Is(err, assistant.ErrSessionNotFound) {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"session_id": id, "history": history})
}

// Reset handles DELETE /api/assistant/sessions/:id.
func (h *AssistantHandler) Reset(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}
	if err := h.assistant.Reset(c.Request.Context(), id); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.Status(http.StatusNoContent)
}
