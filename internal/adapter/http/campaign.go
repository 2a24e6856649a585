package httpadapter

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
)

type createCampaignBody struct {
	signedBody
	Seed        string          `json:"seed"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	TokenSymbol string          `json:"token_symbol"`
	Mint        domain.Identity `json:"mint"`
	Decimals    *uint8          `json:"decimals,omitempty"`
	TotalTokens uint64          `json:"total_tokens,string"`
	EndDate     time.Time       `json:"end_date"`
	Status      domain.Status   `json:"status,omitempty"`
	Benefits    []string        `json:"benefits"`
}

type createCampaignResponse struct {
	Address domain.Address `json:"address"`
	Bump    uint8          `json:"bump"`
	Seed    string         `json:"seed"`
}

type campaignResponse struct {
	Address           domain.Address  `json:"address"`
	Bump              uint8           `json:"bump"`
	Organizer         domain.Identity `json:"organizer"`
	Seed              string          `json:"seed"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	ImageURL          string          `json:"image_url"`
	TokenSymbol       string          `json:"token_symbol"`
	Mint              domain.Identity `json:"mint"`
	Decimals          uint8           `json:"decimals"`
	TotalTokens       uint64          `json:"total_tokens,string"`
	DistributedTokens uint64          `json:"distributed_tokens,string"`
	CreatedAt         time.Time       `json:"created_at"`
	EndDate           time.Time       `json:"end_date"`
	Status            string          `json:"status"`
	Benefits          []string        `json:"benefits"`
	Version           uint64          `json:"version"`
}

func toCampaignResponse(c domain.Campaign) campaignResponse {
	benefits := c.Benefits
	if benefits == nil {
		benefits = []string{}
	}
	return campaignResponse{
		Address:           c.Address,
		Bump:              c.Bump,
		Organizer:         c.Organizer,
		Seed:              c.Seed,
		Title:             c.Title,
		Description:       c.Description,
		ImageURL:          c.ImageURL,
		TokenSymbol:       c.TokenSymbol,
		Mint:              c.Mint,
		Decimals:          c.Decimals,
		TotalTokens:       c.TotalTokens,
		DistributedTokens: c.DistributedTokens,
		CreatedAt:         c.CreatedAt,
		EndDate:           c.EndDate,
		Status:            c.Status.String(),
		Benefits:          benefits,
		Version:           c.Version,
	}
}

// handleCreateCampaign creates a campaign owned by the body's signer. It
// responds 201 with the derived address and bump.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body createCampaignBody
	if err := decode(w, r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	resp, err := h.svc.CreateCampaign(r.Context(), port.CreateCampaignRequest{
		Signed:      body.signed(),
		Seed:        body.Seed,
		Title:       body.Title,
		Description: body.Description,
		ImageURL:    body.ImageURL,
		TokenSymbol: body.TokenSymbol,
		Mint:        body.Mint,
		Decimals:    body.Decimals,
		TotalTokens: body.TotalTokens,
		EndDate:     body.EndDate,
		Status:      body.Status,
		Benefits:    body.Benefits,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/campaigns/"+resp.Address.String())
	h.writeJSON(w, http.StatusCreated, createCampaignResponse{
		Address: resp.Address,
		Bump:    resp.Bump,
		Seed:    resp.Seed,
	})
}

// handleGetCampaign returns a single campaign or 404.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.GetCampaign(r.Context(), addr)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(*c))
}

// handleListCampaigns accepts optional `organizer`, `status` and `limit`
// query parameters.
func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	var (
		q      = r.URL.Query()
		filter port.CampaignFilter
		err    error
	)

	if v := q.Get("organizer"); v != "" {
		org, err := domain.ParseIdentity(v)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		filter.Organizer = &org
	}
	if v := q.Get("status"); v != "" {
		if filter.Status, err = domain.ParseStatus(v); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil || filter.Limit < 0 {
			h.writeError(w, r, fmt.Errorf("%w: invalid limit %q", domain.ErrInvalidParameters, v))
			return
		}
	}

	campaigns, err := h.svc.ListCampaigns(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]campaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, toCampaignResponse(c))
	}
	h.writeJSON(w, http.StatusOK, out)
}
