package v1

import (
	"context"
	"net/http"

	"daliah-backend/internal/domain"
	"daliah-backend/internal/usecase"
	"daliah-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type CarrierHandler struct {
	carrierUC *usecase.CarrierUsecase
}

func NewCarrierHandler(uc *usecase.CarrierUsecase) *CarrierHandler {
	return &CarrierHandler{carrierUC: uc}
}

type inviteReq struct {
	CarrierAddress string `json:"carrierAddress"`
}

func (h *CarrierHandler) Invite(w http.ResponseWriter, r *http.Request) {
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

	var req inviteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := h.carrierUC.InviteCarrier(r.Context(), caller, id, req.CarrierAddress); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type acceptInviteReq struct {
	Name        string `json:"name"`
	PlateNumber string `json:"plateNumber"`
}

func (h *CarrierHandler) Accept(w http.ResponseWriter, r *http.Request) {
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

	var req acceptInviteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := h.carrierUC.AcceptInvitation(r.Context(), caller, id, req.Name, req.PlateNumber); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type temperatureReq struct {
	Temperature float64 `json:"temperature"`
	ProofHash   string  `json:"proofHash"`
}

func (h *CarrierHandler) LogTemperature(w http.ResponseWriter, r *http.Request) {
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

	var req temperatureReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := h.carrierUC.LogVehicleTemperature(r.Context(), caller, id, req.Temperature, req.ProofHash); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type proofReq struct {
	ProofHash string `json:"proofHash"`
}

func (h *CarrierHandler) RecordPickup(w http.ResponseWriter, r *http.Request) {
	h.recordLeg(w, r, h.carrierUC.RecordPickup)
}

func (h *CarrierHandler) RecordDelivery(w http.ResponseWriter, r *http.Request) {
	h.recordLeg(w, r, h.carrierUC.RecordDelivery)
}

func (h *CarrierHandler) recordLeg(w http.ResponseWriter, r *http.Request, record func(ctx context.Context, caller domain.Principal, orderID int64, proofHash string) error) {
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

	var req proofReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := record(r.Context(), caller, id, req.ProofHash); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
