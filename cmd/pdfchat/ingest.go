package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pdfchat/internal/extractor"
	"pdfchat/internal/session"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest files...",
	Short: "Extract, chunk and index PDFs without opening the UI",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	a, err := assemble(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	return process(ctx, cmd, a, args)
}

// process stages files, runs one processing cycle and prints what happened.
func process(ctx context.Context, cmd *cobra.Command, a *app, patterns []string) error {
	uploads, skipped, err := extractor.ReadFiles(patterns...)
	if err != nil {
		return err
	}
	for _, s := range skipped {
		cmd.PrintErrf("Skipped %s: not a .pdf file.\n", s)
	}
	notices := a.session.Process(ctx, uploads, func(e extractor.Event) {
		cmd.PrintErrln(e.String())
	})
	printNotices(cmd, notices)
	if !a.session.Ready() {
		return errors.New("processing failed")
	}
	return nil
}

func printNotices(cmd *cobra.Command, notices []session.Notice) {
	for _, n := range notices {
		line := fmt.Sprintf("[%s] %s", n.Level, n.Text)
		if n.Level == session.Error || n.Level == session.Warning {
			cmd.PrintErrln(line)
		} else {
			cmd.Println(line)
		}
	}
}
