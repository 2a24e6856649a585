package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

const programName = "cpopctl"

var globalFlags = struct {
	program string
}{}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Key, address and request signing tool for the campaign ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().
		StringVar(&globalFlags.program, "program", "J1LhfXskL8XwGUpa5jpenWg7mXEKE9TdYJLxYTbu8LAz", "program id campaign addresses are derived under")

	rootCmd.AddCommand(keygenCommand())
	rootCmd.AddCommand(deriveCommand())
	rootCmd.AddCommand(signCommand())
	return rootCmd
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}

func uintString(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
