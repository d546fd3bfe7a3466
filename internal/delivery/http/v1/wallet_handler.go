package v1

import (
	"net/http"

	"daliah-backend/internal/usecase"
	"daliah-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type WalletHandler struct {
	walletUC *usecase.WalletUsecase
}

func NewWalletHandler(uc *usecase.WalletUsecase) *WalletHandler {
	return &WalletHandler{walletUC: uc}
}

func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	caller, ok := principalFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	view, err := h.walletUC.GetWallet(r.Context(), caller)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

type approveReq struct {
	Amount int64 `json:"amount"`
}

func (h *WalletHandler) Approve(w http.ResponseWriter, r *http.Request) {
	caller, ok := principalFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req approveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	view, err := h.walletUC.Approve(r.Context(), caller, req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}
