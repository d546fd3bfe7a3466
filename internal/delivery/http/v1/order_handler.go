package v1

import (
	"net/http"

	"daliah-backend/internal/domain"
	"daliah-backend/internal/usecase"
	"daliah-backend/pkg/logger"
	"daliah-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type OrderHandler struct {
	orderUC *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{orderUC: uc}
}

type placeOrderReq struct {
	ProductID     int64  `json:"productId"`
	Quantity      int64  `json:"quantity"`
	FarmerAddress string `json:"farmerAddress"`
}

func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := principalFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	order, err := h.orderUC.PlaceOrder(r.Context(), caller, req.ProductID, req.Quantity, req.FarmerAddress)
	if err != nil {
		log := logger.WithContext(r.Context())
		log.Warn().Err(err).Str("distributor", caller.Address).Int64("product_id", req.ProductID).Msg("place order rejected")
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order)
}

// Quote is the pre-flight price check for a harvest purchase.
func (h *OrderHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid harvest ID")
		return
	}
	quantity := utils.ParseInt64(r.URL.Query().Get("quantity"), 0)

	quote, err := h.orderUC.TotalPrice(r.Context(), id, quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, quote)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	order, err := h.orderUC.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := principalFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	filter := domain.OrderFilter{
		PaymentStatus: q.Get("status"),
		Page:          int(utils.ParseInt64(q.Get("page"), 1)),
		Limit:         int(utils.ParseInt64(q.Get("limit"), 20)),
	}

	orders, err := h.orderUC.ListOrders(r.Context(), caller, filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrderEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	events, err := h.orderUC.GetOrderEvents(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, events)
}

func (h *OrderHandler) GetPaymentDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	details, err := h.orderUC.GetPaymentDetails(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, details)
}

type acceptanceReq struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

func (h *OrderHandler) ChangeAcceptance(w http.ResponseWriter, r *http.Request) {
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

	var req acceptanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := h.orderUC.ChangeAcceptance(r.Context(), caller, id, req.Decision, req.Reason); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// transition wraps the buyer/farmer lifecycle actions that take no body.
func (h *OrderHandler) transition(action func(r *http.Request, caller domain.Principal, id int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		if err := action(r, caller, id); err != nil {
			writeDomainError(w, r, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (h *OrderHandler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	h.transition(func(r *http.Request, caller domain.Principal, id int64) error {
		return h.orderUC.MarkCompleted(r.Context(), caller, id)
	})(w, r)
}

func (h *OrderHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.transition(func(r *http.Request, caller domain.Principal, id int64) error {
		return h.orderUC.Withdraw(r.Context(), caller, id)
	})(w, r)
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(func(r *http.Request, caller domain.Principal, id int64) error {
		return h.orderUC.CancelOrder(r.Context(), caller, id)
	})(w, r)
}

func (h *OrderHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	h.transition(func(r *http.Request, caller domain.Principal, id int64) error {
		return h.orderUC.RequestRefund(r.Context(), caller, id)
	})(w, r)
}

func (h *OrderHandler) ApproveRefund(w http.ResponseWriter, r *http.Request) {
	h.transition(func(r *http.Request, caller domain.Principal, id int64) error {
		return h.orderUC.ApproveRefund(r.Context(), caller, id)
	})(w, r)
}

func (h *OrderHandler) WithdrawRefund(w http.ResponseWriter, r *http.Request) {
	h.transition(func(r *http.Request, caller domain.Principal, id int64) error {
		return h.orderUC.WithdrawRefund(r.Context(), caller, id)
	})(w, r)
}
