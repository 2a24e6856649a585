package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/spf13/cobra"

	"cpop-ledger/internal/adapter/auth"
	"cpop-ledger/internal/core/domain"
)

// keyEnv holds the signing key when --key is not given.
const keyEnv = "CPOP_KEY"

func loadKey(flag string) (auth.Keypair, error) {
	seed := flag
	if seed == "" {
		seed = os.Getenv(keyEnv)
	}
	if seed == "" {
		return auth.Keypair{}, fmt.Errorf("no signing key: pass --key or set %s", keyEnv)
	}
	return auth.KeypairFromSeed(base58.Decode(seed))
}

func keygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ed25519 keypair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := auth.NewKeypair()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]string{
				"identity": k.Identity().String(),
				"seed":     base58.Encode(k.Seed()),
			})
		},
	}
}

func deriveCommand() *cobra.Command {
	var organizer, seed string
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive a campaign address from organizer and seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := domain.ParseIdentity(globalFlags.program)
			if err != nil {
				return err
			}
			org, err := domain.ParseIdentity(organizer)
			if err != nil {
				return err
			}
			addr, bump, err := domain.DeriveAddress(program, org, seed)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"address": addr.String(),
				"bump":    bump,
			})
		},
	}
	cmd.Flags().StringVar(&organizer, "organizer", "", "organizer identity (base58)")
	cmd.Flags().StringVar(&seed, "seed", "", "campaign seed")
	_ = cmd.MarkFlagRequired("organizer")
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}
