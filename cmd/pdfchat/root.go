package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pdfchat/internal/config"
	"pdfchat/internal/extractor"
	"pdfchat/internal/tui"
)

var (
	cfgPath string
	logDir  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pdfchat [files...]",
	Short: "Chat with your PDF documents",
	Long: `pdfchat extracts text from up to five PDF files, indexes it in a vector
collection and answers questions about it with a language model.

Files given on the command line are staged; type /process in the UI to
index them and /help for the other commands.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (default ./config.yaml or ~/.config/pdfchat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "directory for daily log files")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging, mirrored to stderr in headless commands")
}

func loadConfig() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyEnv(cfg)
	if logDir != "" {
		cfg.Log.Dir = logDir
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var staged []extractor.Upload
	if len(args) > 0 {
		staged, _, err = extractor.ReadFiles(args...)
		if err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	a, err := assemble(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := tea.NewProgram(tui.New(ctx, a.session, staged), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
