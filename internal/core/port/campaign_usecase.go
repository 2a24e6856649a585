package port

import (
	"context"
	"encoding/json"
	"time"

	"cpop-ledger/internal/core/domain"
)

// CampaignUseCase defines the operations of the campaign ledger. It is the
// primary port into the application domain. Every mutating request must be
// signed by its Signer over the bytes returned by SigningPayload.
type CampaignUseCase interface {
	// CreateCampaign derives the campaign address from the signer and seed,
	// validates the input and stores the record. The signer becomes the
	// organizer.
	CreateCampaign(ctx context.Context, req CreateCampaignRequest) (*CreateCampaignResponse, error)

	// DistributeTokens moves Amount tokens from the campaign pool to the
	// recipient and increments the distributed counter. Either both happen
	// or neither does.
	DistributeTokens(ctx context.Context, req DistributeRequest) (*domain.Distribution, error)

	// UpdateCampaignStatus moves the campaign along the status graph. Only
	// the organizer may call it.
	UpdateCampaignStatus(ctx context.Context, req UpdateStatusRequest) error

	// GetCampaign returns domain.ErrCampaignNotFound for unknown addresses.
	GetCampaign(ctx context.Context, addr domain.Address) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]domain.Campaign, error)
	// ListRewards returns the distributions a wallet has received.
	ListRewards(ctx context.Context, recipient domain.Identity) ([]domain.Reward, error)
}

// Signed carries the caller identity and its signature over the request
// payload.
type Signed struct {
	Signer    domain.Identity
	Signature []byte
}

// CreateCampaignRequest is the input of CreateCampaign. Seed is required and
// covered by the signature, so a signed request can create at most one
// campaign.
type CreateCampaignRequest struct {
	Signed
	Seed        string
	Title       string
	Description string
	ImageURL    string
	TokenSymbol string
	Mint        domain.Identity
	Decimals    *uint8
	TotalTokens uint64
	EndDate     time.Time
	Status      domain.Status
	Benefits    []string
}

type CreateCampaignResponse struct {
	Address domain.Address
	Bump    uint8
	Seed    string
}

// DistributeRequest is the input of DistributeTokens. RequestID is chosen
// by the client, becomes the distribution id and can only be used once.
type DistributeRequest struct {
	Signed
	RequestID string
	Campaign  domain.Address
	Recipient domain.Identity
	Amount    uint64
}

type UpdateStatusRequest struct {
	Signed
	Campaign domain.Address
	Status   domain.Status
}

type createPayload struct {
	Op          string   `json:"op"`
	Seed        string   `json:"seed"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	TokenSymbol string   `json:"token_symbol"`
	Mint        string   `json:"mint"`
	Decimals    *uint8   `json:"decimals,omitempty"`
	TotalTokens uint64   `json:"total_tokens"`
	EndDate     int64    `json:"end_date"`
	Status      string   `json:"status,omitempty"`
	Benefits    []string `json:"benefits"`
}

// SigningPayload returns the canonical bytes the signer signs.
func (r CreateCampaignRequest) SigningPayload() ([]byte, error) {
	p := createPayload{
		Op:          "create_campaign",
		Seed:        r.Seed,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		TokenSymbol: r.TokenSymbol,
		Mint:        r.Mint.String(),
		Decimals:    r.Decimals,
		TotalTokens: r.TotalTokens,
		EndDate:     r.EndDate.Unix(),
		Benefits:    r.Benefits,
	}
	if r.Status != domain.StatusUnspecified {
		p.Status = r.Status.String()
	}
	if p.Benefits == nil {
		p.Benefits = []string{}
	}
	return json.Marshal(p)
}

// SigningPayload returns the canonical bytes the signer signs.
func (r DistributeRequest) SigningPayload() ([]byte, error) {
	return json.Marshal(struct {
		Op        string `json:"op"`
		RequestID string `json:"request_id"`
		Campaign  string `json:"campaign"`
		Recipient string `json:"recipient"`
		Amount    uint64 `json:"amount"`
	}{"distribute_tokens", r.RequestID, r.Campaign.String(), r.Recipient.String(), r.Amount})
}

// SigningPayload returns the canonical bytes the signer signs.
func (r UpdateStatusRequest) SigningPayload() ([]byte, error) {
	return json.Marshal(struct {
		Op       string `json:"op"`
		Campaign string `json:"campaign"`
		Status   string `json:"status"`
	}{"update_campaign_status", r.Campaign.String(), r.Status.String()})
}
