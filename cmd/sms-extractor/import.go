package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/sms-extractor/internal/logger"
	"github.com/example/sms-extractor/internal/smsbackup"
	"github.com/example/sms-extractor/pkg/smsparser"
	"github.com/example/sms-extractor/pkg/transaction"
)

var (
	outputPath string
	strict     bool
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Parse every message in an SMS backup (.xml or .json)",
	Long: `Import reads an SMS Backup & Restore XML file or a JSON array of
{"sender", "message", "date"} objects, parses each message and writes the
resulting transactions as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write transactions to this file instead of stdout")
	importCmd.Flags().BoolVar(&strict, "strict", false, "Skip messages that fail the financial-message filter")
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer logger.Sync(a.log)

	msgs, err := smsbackup.Read(args[0])
	if err != nil {
		return fmt.Errorf("failed to read SMS backup: %w", err)
	}

	list := &transaction.TransactionList{
		Source:      filepath.Base(args[0]),
		ProcessedAt: time.Now(),
	}
	skipped := 0
	for _, m := range msgs {
		if strict && !smsparser.IsFinancialMessage(m.Body, a.cfg.Filter.Keywords) {
			skipped++
			continue
		}
		received := m.Date
		if received.IsZero() {
			received = time.Now()
		}
		parsed, ok := a.parser.ParseAt(m.Body, m.Sender, received)
		if !ok {
			skipped++
			continue
		}
		list.AddTransaction(transaction.FromParsed(parsed))
	}
	a.log.Info("import finished",
		zap.String("source", list.Source),
		zap.Int("messages", len(msgs)),
		zap.Int("transactions", list.Total),
		zap.Int("skipped", skipped),
	)

	if err := writeList(cmd.OutOrStdout(), list); err != nil {
		return err
	}
	printSummary(cmd.ErrOrStderr(), list)
	return nil
}

func writeList(stdout io.Writer, list *transaction.TransactionList) error {
	out, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}
	if outputPath == "" {
		_, err = fmt.Fprintln(stdout, string(out))
		return err
	}
	if err := os.WriteFile(outputPath, append(out, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, list *transaction.TransactionList) {
	totals := list.Totals()
	currencies := make([]string, 0, len(totals))
	for c := range totals {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	fmt.Fprintf(w, "%d transactions\n", list.Total)
	for _, c := range currencies {
		fmt.Fprintf(w, "  %s %s\n", c, totals[c].StringFixed(2))
	}
}
