package v1

import (
	"net/http"

	"daliah-backend/internal/domain"
	"daliah-backend/pkg/logger"
	"daliah-backend/pkg/utils"
)

// writeDomainError maps the error taxonomy onto HTTP status codes.
// Unrecognized errors are logged and masked as 500s.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case domain.IsValidation(err):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case domain.IsAuthorization(err):
		utils.WriteError(w, http.StatusForbidden, err.Error())
	case domain.IsNotFound(err):
		utils.WriteError(w, http.StatusNotFound, err.Error())
	case domain.IsState(err):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case domain.IsInsufficientFunds(err):
		utils.WriteError(w, http.StatusPaymentRequired, err.Error())
	default:
		log := logger.WithContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// principalFrom pulls the authenticated principal set by AuthMiddleware.
func principalFrom(r *http.Request) (domain.Principal, bool) {
	p, ok := r.Context().Value(domain.PrincipalContextKey).(*domain.Principal)
	if !ok || p == nil {
		return domain.Principal{}, false
	}
	return *p, true
}

// orderIDFrom parses the {id} path segment.
func orderIDFrom(r *http.Request) (int64, bool) {
	id := utils.ParseInt64(r.PathValue("id"), 0)
	return id, id > 0
}
