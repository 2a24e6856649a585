package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	campaignColumns         = `address, bump, organizer, seed, title, description, image_url, token_symbol, mint, decimals, total_tokens::text, distributed_tokens::text, created_at, end_date, status, benefits, version, updated_at`
	distributionColumnsJoin = `d.id::text, d.campaign_address, d.caller, d.recipient, d.mint, d.amount::text, d.transfer_ref, d.created_at, c.title, c.token_symbol, c.decimals`
)

// CampaignRepository implements port.CampaignRepository using pgxpool for
// PostgreSQL. Token amounts are NUMERIC(20,0) so the full uint64 range fits.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository returns a new repository instance.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// CreateCampaign inserts a campaign. An existing address yields
// domain.ErrDuplicateCampaign.
func (r *CampaignRepository) CreateCampaign(ctx context.Context, c domain.Campaign) error {
	tag, err := r.pool.Exec(ctx, `INSERT INTO campaigns
    (address, bump, organizer, seed, title, description, image_url, token_symbol, mint, decimals,
     total_tokens, distributed_tokens, created_at, end_date, status, benefits, version, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11::numeric,$12::numeric,$13,$14,$15,$16,$17,$18)
ON CONFLICT DO NOTHING`,
		c.Address.String(), int16(c.Bump), c.Organizer.String(), c.Seed, c.Title, c.Description, c.ImageURL,
		c.TokenSymbol, c.Mint.String(), int16(c.Decimals),
		strconv.FormatUint(c.TotalTokens, 10), strconv.FormatUint(c.DistributedTokens, 10),
		c.CreatedAt, c.EndDate, c.Status.String(), benefitsOrEmpty(c.Benefits), int64(c.Version), c.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateCampaign
	}
	return nil
}

// GetCampaign returns a campaign by address, or nil when it does not exist.
func (r *CampaignRepository) GetCampaign(ctx context.Context, addr domain.Address) (*domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE address = $1`, addr.String())
	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCampaigns returns campaigns matching filter, newest first.
func (r *CampaignRepository) ListCampaigns(ctx context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Organizer != nil {
		args = append(args, filter.Organizer.String())
		where = append(where, fmt.Sprintf("organizer = $%d", len(args)))
	}
	if filter.Status != domain.StatusUnspecified {
		args = append(args, filter.Status.String())
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, address`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		return scanCampaign(row)
	})
}

// UpdateStatus writes the new status if the stored version is still the
// one updated was computed from.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, updated domain.Campaign) error {
	tag, err := r.pool.Exec(ctx, `UPDATE campaigns SET status = $1, version = $2, updated_at = $3
WHERE address = $4 AND version = $5`,
		updated.Status.String(), int64(updated.Version), updated.UpdatedAt, updated.Address.String(), int64(updated.Version-1))
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return r.missOrStale(ctx, updated.Address)
	}
	return nil
}

// ApplyDistribution records the distribution and the new counter in one
// serializable transaction. The transfer runs while the campaign row is
// locked; if it fails the transaction is rolled back.
func (r *CampaignRepository) ApplyDistribution(ctx context.Context, updated domain.Campaign, d *domain.Distribution, transfer port.TransferFunc) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// lock the campaign row and check the snapshot
	var version int64
	err = tx.QueryRow(ctx, `SELECT version FROM campaigns WHERE address = $1 FOR UPDATE`, updated.Address.String()).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrCampaignNotFound
	}
	if err != nil {
		return mapError(err)
	}
	if uint64(version)+1 != updated.Version {
		return fmt.Errorf("%w: stored version %d, update built on %d", domain.ErrStaleSnapshot, version, updated.Version-1)
	}

	_, err = tx.Exec(ctx, `UPDATE campaigns SET distributed_tokens = $1::numeric, version = $2, updated_at = $3 WHERE address = $4`,
		strconv.FormatUint(updated.DistributedTokens, 10), int64(updated.Version), updated.UpdatedAt, updated.Address.String())
	if err != nil {
		return mapError(err)
	}
	_, err = tx.Exec(ctx, `INSERT INTO distributions (id, campaign_address, caller, recipient, mint, amount, created_at)
VALUES ($1,$2,$3,$4,$5,$6::numeric,$7)`,
		d.ID, d.Campaign.String(), d.Caller.String(), d.Recipient.String(), d.Mint.String(),
		strconv.FormatUint(d.Amount, 10), d.CreatedAt)
	if err != nil {
		if isCode(err, pgUniqueViolation) {
			return fmt.Errorf("%w: request %s already processed", domain.ErrInvalidParameters, d.ID)
		}
		return mapError(err)
	}

	ref, err := transfer(ctx)
	if err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE distributions SET transfer_ref = $1 WHERE id = $2`, ref, d.ID); err != nil {
		return mapError(err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit distribution %s after transfer %s: %w", d.ID, ref, mapError(err))
	}
	d.TransferRef = ref
	return nil
}

// ListRewards returns distributions received by recipient, newest first.
func (r *CampaignRepository) ListRewards(ctx context.Context, recipient domain.Identity) ([]domain.Reward, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+distributionColumnsJoin+`
FROM distributions d
JOIN campaigns c ON c.address = d.campaign_address
WHERE d.recipient = $1
ORDER BY d.created_at DESC, d.id`, recipient.String())
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanReward)
}

func (r *CampaignRepository) missOrStale(ctx context.Context, addr domain.Address) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM campaigns WHERE address = $1)`, addr.String()).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrCampaignNotFound
	}
	return domain.ErrStaleSnapshot
}

func scanCampaign(row pgx.Row) (domain.Campaign, error) {
	var (
		c                                domain.Campaign
		address, organizer, mint, status string
		total, distributed               string
		bump, decimals                   int16
		version                          int64
		createdAt, endDate, updatedAt    time.Time
	)
	err := row.Scan(&address, &bump, &organizer, &c.Seed, &c.Title, &c.Description, &c.ImageURL, &c.TokenSymbol,
		&mint, &decimals, &total, &distributed, &createdAt, &endDate, &status, &c.Benefits, &version, &updatedAt)
	if err != nil {
		return c, err
	}
	if c.Address, err = domain.ParseAddress(address); err != nil {
		return c, err
	}
	if c.Organizer, err = domain.ParseIdentity(organizer); err != nil {
		return c, err
	}
	if c.Mint, err = domain.ParseIdentity(mint); err != nil {
		return c, err
	}
	if c.Status, err = domain.ParseStatus(status); err != nil {
		return c, err
	}
	if c.TotalTokens, err = strconv.ParseUint(total, 10, 64); err != nil {
		return c, err
	}
	if c.DistributedTokens, err = strconv.ParseUint(distributed, 10, 64); err != nil {
		return c, err
	}
	c.Bump = uint8(bump)
	c.Decimals = uint8(decimals)
	c.Version = uint64(version)
	c.CreatedAt = createdAt.UTC()
	c.EndDate = endDate.UTC()
	c.UpdatedAt = updatedAt.UTC()
	return c, nil
}

func scanReward(row pgx.CollectableRow) (domain.Reward, error) {
	var (
		rw                                domain.Reward
		campaign, caller, recipient, mint string
		amount                            string
		decimals                          int16
	)
	err := row.Scan(&rw.ID, &campaign, &caller, &recipient, &mint, &amount, &rw.TransferRef, &rw.CreatedAt,
		&rw.CampaignTitle, &rw.TokenSymbol, &decimals)
	if err != nil {
		return rw, err
	}
	if rw.Campaign, err = domain.ParseAddress(campaign); err != nil {
		return rw, err
	}
	if rw.Caller, err = domain.ParseIdentity(caller); err != nil {
		return rw, err
	}
	if rw.Recipient, err = domain.ParseIdentity(recipient); err != nil {
		return rw, err
	}
	if rw.Mint, err = domain.ParseIdentity(mint); err != nil {
		return rw, err
	}
	if rw.Amount, err = strconv.ParseUint(amount, 10, 64); err != nil {
		return rw, err
	}
	rw.Decimals = uint8(decimals)
	rw.CreatedAt = rw.CreatedAt.UTC()
	return rw, nil
}

// mapError turns concurrency aborts into domain.ErrStaleSnapshot.
func mapError(err error) error {
	if isCode(err, pgSerializationFailure) || isCode(err, pgDeadlockDetected) {
		return fmt.Errorf("%w: %v", domain.ErrStaleSnapshot, err)
	}
	if isCode(err, pgUniqueViolation) {
		return fmt.Errorf("%w: %v", domain.ErrDuplicateCampaign, err)
	}
	return err
}

func isCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func benefitsOrEmpty(b []string) []string {
	if b == nil {
		return []string{}
	}
	return b
}
