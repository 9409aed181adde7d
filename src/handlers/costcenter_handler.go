package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Alltrendsfy/zenith-sub000/src/services"
	"github.com/Alltrendsfy/zenith-sub000/src/utils"
)

type CostCenterHandler struct {
	costCenterService services.CostCenterService
}

func NewCostCenterHandler(costCenterService services.CostCenterService) *CostCenterHandler {
	return &CostCenterHandler{costCenterService: costCenterService}
}

func (h *CostCenterHandler) HandleCreateCostCenter(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var input services.CostCenterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	center, err := h.costCenterService.Create(userID, input)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, center)
}

func (h *CostCenterHandler) HandleListCostCenters(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	centers, err := h.costCenterService.List(userID)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, centers)
}

func (h *CostCenterHandler) HandleUpdateCostCenter(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "invalid cost center id", http.StatusBadRequest)
		return
	}
	var input services.CostCenterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	center, err := h.costCenterService.Update(userID, id, input)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, center)
}

func (h *CostCenterHandler) HandleDeleteCostCenter(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "invalid cost center id", http.StatusBadRequest)
		return
	}
	if err := h.costCenterService.Delete(userID, id); err != nil {
		sendServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
