package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Alltrendsfy/zenith-sub000/src/logger"
	"github.com/Alltrendsfy/zenith-sub000/src/models"
	"github.com/Alltrendsfy/zenith-sub000/src/services"
	"github.com/Alltrendsfy/zenith-sub000/src/utils"
)

// ObligationHandler serves one obligation type; main wires an instance per
// route family (/api/payables, /api/receivables).
type ObligationHandler struct {
	obligationType    string
	obligationService services.ObligationService
	recurrenceService services.RecurrenceService
	settlementService services.SettlementService
}

func NewObligationHandler(
	obligationType string,
	obligationService services.ObligationService,
	recurrenceService services.RecurrenceService,
	settlementService services.SettlementService,
) *ObligationHandler {
	return &ObligationHandler{
		obligationType:    obligationType,
		obligationService: obligationService,
		recurrenceService: recurrenceService,
		settlementService: settlementService,
	}
}

func (h *ObligationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var input services.ObligationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	input.Type = h.obligationType
	obligation, err := h.obligationService.Create(userID, input)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, obligation)
}

// HandleList sweeps due recurrences first, so recurring series materialise
// without any background scheduler, then returns the list.
func (h *ObligationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if _, err := h.recurrenceService.ProcessRecurrences(userID); err != nil {
		// The list itself is still servable; log and continue.
		logger.L.Error("Recurrence sweep failed", "userID", userID, "error", err)
	}
	obligations, err := h.obligationService.List(userID, h.obligationType, r.URL.Query().Get("status"))
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obligations)
}

func (h *ObligationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "invalid obligation id", http.StatusBadRequest)
		return
	}
	obligation, err := h.obligationService.Get(userID, id)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	if obligation.Type != h.obligationType {
		utils.SendJSONError(w, "obligation not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, obligation)
}

func (h *ObligationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "invalid obligation id", http.StatusBadRequest)
		return
	}
	var input services.ObligationUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	obligation, err := h.obligationService.Update(userID, id, input)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obligation)
}

func (h *ObligationHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "invalid obligation id", http.StatusBadRequest)
		return
	}
	obligation, err := h.obligationService.Cancel(userID, id)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obligation)
}

func (h *ObligationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "invalid obligation id", http.StatusBadRequest)
		return
	}
	if err := h.obligationService.Delete(userID, id); err != nil {
		sendServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSettle applies a baixa against the obligation.
func (h *ObligationHandler) HandleSettle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "invalid obligation id", http.StatusBadRequest)
		return
	}
	var input services.SettlementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var result *services.SettlementResult
	if h.obligationType == models.TypePayable {
		result, err = h.settlementService.SettlePayable(userID, id, input)
	} else {
		result, err = h.settlementService.SettleReceivable(userID, id, input)
	}
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// HandleListPayments returns the settlement history of one obligation.
func (h *ObligationHandler) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "invalid obligation id", http.StatusBadRequest)
		return
	}
	payments, err := h.settlementService.ListPayments(userID, id)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}
