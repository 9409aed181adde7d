package handlers

import (
	"net/http"

	"github.com/Alltrendsfy/zenith-sub000/src/logger"
	"github.com/Alltrendsfy/zenith-sub000/src/services"
	"github.com/Alltrendsfy/zenith-sub000/src/utils"
)

type StatementHandler struct {
	statementService services.StatementService
}

func NewStatementHandler(statementService services.StatementService) *StatementHandler {
	return &StatementHandler{statementService: statementService}
}

// HandleGetStatement serves GET /api/accounts/{id}/statement?start=&end=.
// Statements are pure reads; an ETag lets clients skip unchanged bodies.
func (h *StatementHandler) HandleGetStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	accountID, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "invalid account id", http.StatusBadRequest)
		return
	}
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		utils.SendJSONError(w, "start and end query parameters are required (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	statement, err := h.statementService.BuildStatement(userID, accountID, start, end)
	if err != nil {
		sendServiceError(w, err)
		return
	}

	if etag, err := utils.GenerateETag(statement); err == nil {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	} else {
		logger.L.Warn("Failed to generate statement ETag", "error", err)
	}

	writeJSON(w, http.StatusOK, statement)
}
