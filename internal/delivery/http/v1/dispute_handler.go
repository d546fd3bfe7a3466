package v1

import (
	"net/http"

	"daliah-backend/internal/usecase"
	"daliah-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type DisputeHandler struct {
	disputeUC *usecase.DisputeUsecase
}

func NewDisputeHandler(uc *usecase.DisputeUsecase) *DisputeHandler {
	return &DisputeHandler{disputeUC: uc}
}

type damageReq struct {
	Description string `json:"description"`
	ProofHash   string `json:"proofHash"`
}

func (h *DisputeHandler) ReportDamage(w http.ResponseWriter, r *http.Request) {
	caller, ok := principalFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := orderIDFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	var req damageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	report, err := h.disputeUC.ReportDamage(r.Context(), caller, id, req.Description, req.ProofHash)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, report)
}

func (h *DisputeHandler) GetDamages(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	reports, err := h.disputeUC.GetDamages(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, reports)
}
