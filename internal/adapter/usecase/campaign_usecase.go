package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
	"cpop-ledger/internal/metrics"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Config carries the optional collaborators of CampaignUseCase.
type Config struct {
	// Program is the identity campaign addresses are derived under.
	Program   domain.Identity
	Policy    DistributionPolicy
	Allowlist []domain.Identity
	Logger    *slog.Logger
	Metrics   *metrics.Ledger
	// Now defaults to time.Now.
	Now func() time.Time
}

// CampaignUseCase is the campaign state-transition engine. Each operation
// verifies the caller, reads a snapshot, computes the next record with the
// domain rules and commits it through the repository in a single step.
// It never retries a failed commit itself.
type CampaignUseCase struct {
	repo      port.CampaignRepository
	transfer  port.TokenTransfer
	verifier  port.SignatureVerifier
	program   domain.Identity
	policy    DistributionPolicy
	allowlist []domain.Identity
	logger    *slog.Logger
	metrics   *metrics.Ledger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewCampaignUseCase wires the engine to its ports.
func NewCampaignUseCase(repo port.CampaignRepository, transfer port.TokenTransfer, verifier port.SignatureVerifier, cfg Config) *CampaignUseCase {
	u := &CampaignUseCase{
		repo:      repo,
		transfer:  transfer,
		verifier:  verifier,
		program:   cfg.Program,
		policy:    cfg.Policy,
		allowlist: cfg.Allowlist,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		tracer:    otel.Tracer("cpop-ledger/usecase"),
		now:       cfg.Now,
	}
	if u.logger == nil {
		u.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if u.metrics == nil {
		u.metrics = metrics.NewLedger(nil)
	}
	if u.now == nil {
		u.now = time.Now
	}
	return u
}

// CreateCampaign stores a new campaign owned by the request signer.
func (u *CampaignUseCase) CreateCampaign(ctx context.Context, req port.CreateCampaignRequest) (_ *port.CreateCampaignResponse, err error) {
	ctx, span := u.tracer.Start(ctx, "CreateCampaign")
	defer func() { u.finish(span, "create", err) }()

	if err = u.verify(req.Signed, req); err != nil {
		return nil, err
	}
	// The seed is part of the signed payload, so one signature authorizes
	// exactly one address.
	if req.Seed == "" {
		return nil, fmt.Errorf("%w: seed is required", domain.ErrInvalidParameters)
	}
	now := u.now()

	c, err := domain.NewCampaign(domain.NewCampaignInput{
		Program:     u.program,
		Organizer:   req.Signer,
		Seed:        req.Seed,
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		TokenSymbol: req.TokenSymbol,
		Mint:        req.Mint,
		Decimals:    req.Decimals,
		TotalTokens: req.TotalTokens,
		EndDate:     req.EndDate,
		Status:      req.Status,
		Benefits:    req.Benefits,
	}, now)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("campaign", c.Address.String()))

	if err = u.repo.CreateCampaign(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign %s: %w", c.Address, err)
	}

	u.metrics.CampaignsCreated.Inc()
	u.logger.Info("campaign created",
		slog.String("campaign", c.Address.String()),
		slog.String("organizer", c.Organizer.String()),
		slog.Uint64("total_tokens", c.TotalTokens),
		slog.String("status", c.Status.String()),
	)
	return &port.CreateCampaignResponse{Address: c.Address, Bump: c.Bump, Seed: c.Seed}, nil
}

// DistributeTokens commits a distribution and the matching transfer.
func (u *CampaignUseCase) DistributeTokens(ctx context.Context, req port.DistributeRequest) (_ *domain.Distribution, err error) {
	ctx, span := u.tracer.Start(ctx, "DistributeTokens", trace.WithAttributes(
		attribute.String("campaign", req.Campaign.String()),
		attribute.Int64("amount", int64(req.Amount)),
	))
	defer func() { u.finish(span, "distribute", err) }()

	if err = u.verify(req.Signed, req); err != nil {
		return nil, err
	}
	if _, perr := uuid.Parse(req.RequestID); perr != nil {
		return nil, fmt.Errorf("%w: request id must be a uuid", domain.ErrInvalidParameters)
	}
	if req.Recipient.IsZero() {
		return nil, fmt.Errorf("%w: recipient is required", domain.ErrInvalidParameters)
	}

	snapshot, err := u.load(port.WithFreshRead(ctx), req.Campaign)
	if err != nil {
		return nil, err
	}
	if !u.canDistribute(req.Signer, snapshot) {
		return nil, fmt.Errorf("%w: %s may not distribute from %s under %s policy",
			domain.ErrUnauthorized, req.Signer, snapshot.Address, u.policy)
	}

	now := u.now()
	updated, err := snapshot.Distribute(req.Amount, now)
	if err != nil {
		return nil, err
	}

	d := &domain.Distribution{
		ID:        req.RequestID,
		Campaign:  snapshot.Address,
		Caller:    req.Signer,
		Recipient: req.Recipient,
		Mint:      snapshot.Mint,
		Amount:    req.Amount,
		CreatedAt: now.UTC(),
	}
	transfer := func(ctx context.Context) (string, error) {
		receipt, terr := u.transfer.Transfer(ctx, port.TransferRequest{
			IdempotencyKey: d.ID,
			Mint:           snapshot.Mint,
			Pool:           snapshot.Address,
			Recipient:      req.Recipient,
			Amount:         req.Amount,
		})
		if terr != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrTransferFailed, terr)
		}
		return receipt.Reference, nil
	}
	if err = u.repo.ApplyDistribution(ctx, updated, d, transfer); err != nil {
		return nil, fmt.Errorf("distribute from %s: %w", snapshot.Address, err)
	}

	u.metrics.Distributions.Inc()
	u.metrics.TokensDistributed.Add(float64(req.Amount))
	u.logger.Info("tokens distributed",
		slog.String("campaign", snapshot.Address.String()),
		slog.String("recipient", req.Recipient.String()),
		slog.Uint64("amount", req.Amount),
		slog.Uint64("distributed", updated.DistributedTokens),
		slog.String("transfer", d.TransferRef),
	)
	return d, nil
}

// UpdateCampaignStatus applies an organizer-requested status change.
func (u *CampaignUseCase) UpdateCampaignStatus(ctx context.Context, req port.UpdateStatusRequest) (err error) {
	ctx, span := u.tracer.Start(ctx, "UpdateCampaignStatus", trace.WithAttributes(
		attribute.String("campaign", req.Campaign.String()),
		attribute.String("status", req.Status.String()),
	))
	defer func() { u.finish(span, "update_status", err) }()

	if err = u.verify(req.Signed, req); err != nil {
		return err
	}
	snapshot, err := u.load(port.WithFreshRead(ctx), req.Campaign)
	if err != nil {
		return err
	}
	if req.Signer != snapshot.Organizer {
		return fmt.Errorf("%w: only the organizer may change status", domain.ErrUnauthorized)
	}
	updated, err := snapshot.TransitionStatus(req.Status, u.now())
	if err != nil {
		return err
	}
	if err = u.repo.UpdateStatus(ctx, updated); err != nil {
		return fmt.Errorf("update status of %s: %w", snapshot.Address, err)
	}

	u.metrics.StatusChanges.WithLabelValues(updated.Status.String()).Inc()
	u.logger.Info("campaign status updated",
		slog.String("campaign", snapshot.Address.String()),
		slog.String("from", snapshot.Status.String()),
		slog.String("to", updated.Status.String()),
	)
	return nil
}

// GetCampaign returns a campaign by address.
func (u *CampaignUseCase) GetCampaign(ctx context.Context, addr domain.Address) (*domain.Campaign, error) {
	return u.load(ctx, addr)
}

// ListCampaigns returns campaigns matching filter. The limit is clamped to
// [1, 1000] and defaults to 100.
func (u *CampaignUseCase) ListCampaigns(ctx context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultListLimit
	case filter.Limit > maxListLimit:
		filter.Limit = maxListLimit
	}
	return u.repo.ListCampaigns(ctx, filter)
}

// ListRewards returns the distributions received by recipient.
func (u *CampaignUseCase) ListRewards(ctx context.Context, recipient domain.Identity) ([]domain.Reward, error) {
	if recipient.IsZero() {
		return nil, fmt.Errorf("%w: wallet is required", domain.ErrInvalidParameters)
	}
	return u.repo.ListRewards(ctx, recipient)
}

type signable interface {
	SigningPayload() ([]byte, error)
}

func (u *CampaignUseCase) verify(s port.Signed, req signable) error {
	payload, err := req.SigningPayload()
	if err != nil {
		return fmt.Errorf("%w: encode payload: %v", domain.ErrInvalidParameters, err)
	}
	return u.verifier.Verify(s.Signer, payload, s.Signature)
}

func (u *CampaignUseCase) load(ctx context.Context, addr domain.Address) (*domain.Campaign, error) {
	c, err := u.repo.GetCampaign(ctx, addr)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCampaignNotFound, addr)
	}
	return c, nil
}

func (u *CampaignUseCase) finish(span trace.Span, op string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domain.CodeOf(err)))
		u.metrics.Reject(op, err)
		level := slog.LevelWarn
		if domain.CodeOf(err) == domain.CodeUnknown && !errors.Is(err, context.Canceled) {
			level = slog.LevelError
		}
		u.logger.Log(context.Background(), level, "campaign operation failed",
			slog.String("op", op),
			slog.String("code", string(domain.CodeOf(err))),
			slog.Any("error", err),
		)
	}
	span.End()
}
