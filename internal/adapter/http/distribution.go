package httpadapter

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
)

type distributeBody struct {
	signedBody
	RequestID string          `json:"request_id"`
	Recipient domain.Identity `json:"recipient"`
	Amount    uint64          `json:"amount,string"`
}

type distributionResponse struct {
	ID          string          `json:"id"`
	Campaign    domain.Address  `json:"campaign"`
	Caller      domain.Identity `json:"caller"`
	Recipient   domain.Identity `json:"recipient"`
	Mint        domain.Identity `json:"mint"`
	Amount      uint64          `json:"amount,string"`
	TransferRef string          `json:"transfer_ref"`
	CreatedAt   time.Time       `json:"created_at"`
}

type rewardResponse struct {
	distributionResponse
	CampaignTitle string `json:"campaign_title"`
	TokenSymbol   string `json:"token_symbol"`
	Decimals      uint8  `json:"decimals"`
}

func toDistributionResponse(d domain.Distribution) distributionResponse {
	return distributionResponse{
		ID:          d.ID,
		Campaign:    d.Campaign,
		Caller:      d.Caller,
		Recipient:   d.Recipient,
		Mint:        d.Mint,
		Amount:      d.Amount,
		TransferRef: d.TransferRef,
		CreatedAt:   d.CreatedAt,
	}
}

// handleDistribute moves tokens from the campaign in the path to the
// recipient and responds 201 with the committed distribution.
func (h *Handler) handleDistribute(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var body distributeBody
	if err = decode(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := h.svc.DistributeTokens(r.Context(), port.DistributeRequest{
		Signed:    body.signed(),
		RequestID: body.RequestID,
		Campaign:  addr,
		Recipient: body.Recipient,
		Amount:    body.Amount,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toDistributionResponse(*d))
}

// handleListRewards lists the distributions a wallet has received,
// newest first.
func (h *Handler) handleListRewards(w http.ResponseWriter, r *http.Request) {
	wallet, err := domain.ParseIdentity(chi.URLParam(r, "wallet"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rewards, err := h.svc.ListRewards(r.Context(), wallet)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]rewardResponse, 0, len(rewards))
	for _, rw := range rewards {
		out = append(out, rewardResponse{
			distributionResponse: toDistributionResponse(rw.Distribution),
			CampaignTitle:        rw.CampaignTitle,
			TokenSymbol:          rw.TokenSymbol,
			Decimals:             rw.Decimals,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}
