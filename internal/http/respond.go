package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KoBrAIbrahim/originalBrand/internal/catalog"
	"github.com/KoBrAIbrahim/originalBrand/internal/ledger"
	"github.com/KoBrAIbrahim/originalBrand/internal/logger"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details *StockDetail `json:"details,omitempty"`
}

// StockDetail tells the client which size ran short.
type StockDetail struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Size        string `json:"size"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps catalog, ledger and store errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var stockErr *ledger.StockUnavailableError

	switch {
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Code:  "stock_unavailable",
			Details: &StockDetail{
				ProductID:   stockErr.ProductID,
				ProductName: stockErr.ProductName,
				Size:        stockErr.Size,
				Requested:   stockErr.Requested,
				Available:   stockErr.Available,
			},
		})
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, catalog.ErrInvalidProduct):
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledger.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, store.ErrStorageUnavailable):
		logger.FromContext(r.Context(), log).Error("storage unavailable", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "storage is unavailable, try again later")
	default:
		logger.FromContext(r.Context(), log).Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// maxBodyBytes bounds request bodies; orders are capped well below it.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func respondDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, "request_too_large", "Request body is too large")
		return
	}
	respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
}
