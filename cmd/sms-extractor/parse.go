package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/sms-extractor/internal/logger"
)

var sender string

var parseCmd = &cobra.Command{
	Use:   "parse MESSAGE...",
	Short: "Parse a single SMS message and print the transaction as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&sender, "sender", "s", "", "Sender name or number shown on the phone")
}

func runParse(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Sync(a.log)

	tx, ok := a.parser.Parse(strings.Join(args, " "), sender)
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "no transaction found")
		return nil
	}

	out, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode transaction: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
