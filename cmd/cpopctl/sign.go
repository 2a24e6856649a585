package main

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cpop-ledger/internal/adapter/auth"
	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
)

// signed returns the signer and base58 signature over req's payload.
func signed(k auth.Keypair, req interface{ SigningPayload() ([]byte, error) }) (map[string]any, error) {
	payload, err := req.SigningPayload()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"signer":    k.Identity().String(),
		"signature": base58.Encode(k.Sign(payload)),
	}, nil
}

func signCommand() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print signed request bodies for the HTTP API",
	}
	cmd.PersistentFlags().StringVar(&key, "key", "", "base58 ed25519 seed (default $"+keyEnv+")")
	cmd.AddCommand(signCreateCommand(&key))
	cmd.AddCommand(signDistributeCommand(&key))
	cmd.AddCommand(signStatusCommand(&key))
	return cmd
}

func signCreateCommand(key *string) *cobra.Command {
	var (
		req      port.CreateCampaignRequest
		mint     string
		duration time.Duration
		decimals uint8
		status   string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Sign a create campaign request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadKey(*key)
			if err != nil {
				return err
			}
			if req.Mint, err = domain.ParseIdentity(mint); err != nil {
				return err
			}
			if cmd.Flags().Changed("decimals") {
				req.Decimals = &decimals
			}
			if status != "" {
				if req.Status, err = domain.ParseStatus(status); err != nil {
					return err
				}
			}
			now := time.Now()
			if req.Seed == "" {
				req.Seed = fmt.Sprintf("campaign-%d", now.UnixMilli())
			}
			req.EndDate = now.Add(duration).UTC().Truncate(time.Second)

			body, err := signed(k, req)
			if err != nil {
				return err
			}
			body["seed"] = req.Seed
			body["title"] = req.Title
			body["description"] = req.Description
			body["image_url"] = req.ImageURL
			body["token_symbol"] = req.TokenSymbol
			body["mint"] = req.Mint.String()
			body["total_tokens"] = uintString(req.TotalTokens)
			body["end_date"] = req.EndDate.Format(time.RFC3339)
			body["benefits"] = nonNil(req.Benefits)
			if req.Decimals != nil {
				body["decimals"] = *req.Decimals
			}
			if req.Status != domain.StatusUnspecified {
				body["status"] = req.Status.String()
			}
			return writeJSON(cmd.OutOrStdout(), body)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Seed, "seed", "", "campaign seed (default campaign-<unix millis>)")
	f.StringVar(&req.Title, "title", "", "campaign title")
	f.StringVar(&req.Description, "description", "", "campaign description")
	f.StringVar(&req.ImageURL, "image-url", "", "campaign image url")
	f.StringVar(&req.TokenSymbol, "symbol", "", "token symbol")
	f.StringVar(&mint, "mint", "", "token mint (base58)")
	f.Uint64Var(&req.TotalTokens, "total", 0, "total supply in base units")
	f.Uint8Var(&decimals, "decimals", domain.DefaultDecimals, "token decimals")
	f.DurationVar(&duration, "duration", 30*24*time.Hour, "time until the campaign ends")
	f.StringVar(&status, "status", "", "initial status: upcoming or active")
	f.StringSliceVar(&req.Benefits, "benefit", nil, "participant benefit, repeatable")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("mint")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

func signDistributeCommand(key *string) *cobra.Command {
	var campaign, recipient, requestID string
	var amount uint64
	cmd := &cobra.Command{
		Use:   "distribute",
		Short: "Sign a distribution request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadKey(*key)
			if err != nil {
				return err
			}
			req := port.DistributeRequest{RequestID: requestID, Amount: amount}
			if req.RequestID == "" {
				req.RequestID = uuid.NewString()
			}
			if req.Campaign, err = domain.ParseAddress(campaign); err != nil {
				return err
			}
			if req.Recipient, err = domain.ParseIdentity(recipient); err != nil {
				return err
			}
			body, err := signed(k, req)
			if err != nil {
				return err
			}
			body["request_id"] = req.RequestID
			body["recipient"] = req.Recipient.String()
			body["amount"] = uintString(req.Amount)
			return writeJSON(cmd.OutOrStdout(), body)
		},
	}
	f := cmd.Flags()
	f.StringVar(&campaign, "campaign", "", "campaign address (base58)")
	f.StringVar(&recipient, "recipient", "", "recipient identity (base58)")
	f.Uint64Var(&amount, "amount", 0, "amount in base units")
	f.StringVar(&requestID, "request-id", "", "request uuid (generated when empty)")
	_ = cmd.MarkFlagRequired("campaign")
	_ = cmd.MarkFlagRequired("recipient")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func signStatusCommand(key *string) *cobra.Command {
	var campaign, status string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Sign a status update request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := loadKey(*key)
			if err != nil {
				return err
			}
			var req port.UpdateStatusRequest
			if req.Campaign, err = domain.ParseAddress(campaign); err != nil {
				return err
			}
			if req.Status, err = domain.ParseStatus(status); err != nil {
				return err
			}
			body, err := signed(k, req)
			if err != nil {
				return err
			}
			body["status"] = req.Status.String()
			return writeJSON(cmd.OutOrStdout(), body)
		},
	}
	cmd.Flags().StringVar(&campaign, "campaign", "", "campaign address (base58)")
	cmd.Flags().StringVar(&status, "to", "", "target status: active or completed")
	_ = cmd.MarkFlagRequired("campaign")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
