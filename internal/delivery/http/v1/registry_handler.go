package v1

import (
	"net/http"

	"daliah-backend/internal/usecase"
	"daliah-backend/pkg/utils"

	"github.com/goccy/go-json"
)

type RegistryHandler struct {
	registryUC *usecase.RegistryUsecase
}

func NewRegistryHandler(uc *usecase.RegistryUsecase) *RegistryHandler {
	return &RegistryHandler{registryUC: uc}
}

type registerReq struct {
	Address         string `json:"address"`
	Name            string `json:"name"`
	PhysicalAddress string `json:"physicalAddress"`
}

// Register creates a profile for the role in the path and returns the
// bearer token for that address.
func (h *RegistryHandler) Register(w http.ResponseWriter, r *http.Request) {
	role := r.PathValue("role")

	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	result, err := h.registryUC.Register(r.Context(), role, req.Address, req.Name, req.PhysicalAddress)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, result)
}

type catalogueReq struct {
	Name          string `json:"name"`
	MonthlyVolume int64  `json:"monthlyVolume"`
	PhotoHash     string `json:"photoHash"`
}

func (h *RegistryHandler) RegisterCatalogueProduct(w http.ResponseWriter, r *http.Request) {
	caller, ok := principalFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req catalogueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	product, err := h.registryUC.RegisterCatalogueProduct(r.Context(), caller, req.Name, req.MonthlyVolume, req.PhotoHash)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, product)
}

func (h *RegistryHandler) ListCatalogue(w http.ResponseWriter, r *http.Request) {
	farmer := r.URL.Query().Get("farmer")
	products, err := h.registryUC.ListCatalogue(r.Context(), farmer)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *RegistryHandler) RegisterHarvest(w http.ResponseWriter, r *http.Request) {
	caller, ok := principalFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var in usecase.HarvestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	batch, err := h.registryUC.RegisterHarvest(r.Context(), caller, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, batch)
}

func (h *RegistryHandler) ListHarvests(w http.ResponseWriter, r *http.Request) {
	batches, err := h.registryUC.ListHarvests(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, batches)
}

func (h *RegistryHandler) GetHarvest(w http.ResponseWriter, r *http.Request) {
	id, ok := orderIDFrom(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid harvest ID")
		return
	}

	batch, err := h.registryUC.GetHarvest(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, batch)
}
