package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
)

type updateStatusBody struct {
	signedBody
	Status domain.Status `json:"status"`
}

// handleUpdateStatus applies an organizer-signed status change and
// responds 204.
func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body updateStatusBody
	if err = decode(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	err = h.svc.UpdateCampaignStatus(r.Context(), port.UpdateStatusRequest{
		Signed:   body.signed(),
		Campaign: addr,
		Status:   body.Status,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
