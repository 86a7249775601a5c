package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"pdfchat/internal/domain"
)

var askQuestion string

var askCmd = &cobra.Command{
	Use:   "ask --question \"...\" files...",
	Short: "Index PDFs and answer a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask about the documents")
	_ = askCmd.MarkFlagRequired("question")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(askQuestion) == "" {
		return errors.New("question must not be empty")
	}
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

	if err := process(ctx, cmd, a, args); err != nil {
		return err
	}
	notices := a.session.Ask(ctx, askQuestion)
	if len(notices) > 0 {
		printNotices(cmd, notices)
		return errors.New("no answer")
	}
	turns := a.session.Transcript()
	for _, t := range turns {
		if t.Role == domain.RoleAssistant {
			cmd.Println(t.Content)
		}
	}
	return nil
}
