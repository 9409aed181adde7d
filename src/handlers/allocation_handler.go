package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Alltrendsfy/zenith-sub000/src/services"
	"github.com/Alltrendsfy/zenith-sub000/src/utils"
)

// AllocationHandler serves the cost-center split of one obligation. Like the
// obligation handler, main binds one instance per obligation type.
type AllocationHandler struct {
	transactionType   string
	allocationService services.AllocationService
}

func NewAllocationHandler(transactionType string, allocationService services.AllocationService) *AllocationHandler {
	return &AllocationHandler{transactionType: transactionType, allocationService: allocationService}
}

func (h *AllocationHandler) HandleGetAllocations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "invalid obligation id", http.StatusBadRequest)
		return
	}
	allocations, err := h.allocationService.List(userID, h.transactionType, id)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allocations)
}

// HandleReplaceAllocations swaps the whole allocation set. There is no
// partial update: the body is the complete new split (or empty to clear it).
func (h *AllocationHandler) HandleReplaceAllocations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		utils.SendJSONError(w, "invalid obligation id", http.StatusBadRequest)
		return
	}
	var inputs []services.AllocationInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	allocations, err := h.allocationService.Replace(userID, h.transactionType, id, inputs)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allocations)
}
