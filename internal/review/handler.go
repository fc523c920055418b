package review

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/review-collector/pkg/logging"
)

// Handler serves stored reviews over HTTP.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a new review handler.
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if store == nil {
		panic("review: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// ListReviews handles GET /api/reviews requests.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.store.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list reviews", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if reviews == nil {
		reviews = []Review{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(reviews); err != nil {
		h.logger.Error("failed to encode reviews", "error", err)
	}
}
