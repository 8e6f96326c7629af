package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/app"
	"github.com/chemassist/assistant/backend/internal/config"
	"github.com/chemassist/assistant/backend/internal/console"
	"github.com/chemassist/assistant/backend/internal/logging"
)

var (
	noSidebar bool
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "chem-console",
	Short: "Look up PubChem compound attributes by CID from the terminal",
	Long: `chem-console runs the chemistry assistant chat in the terminal.

Pick a service from the menu, then enter CIDs to look up the molecular
formula, molecular weight, SMILES or compound name. Type "quit" or
"exit" to leave.`,
	SilenceUsage: true,
	RunE:         runConsole,
}

func init() {
	rootCmd.Flags().BoolVar(&noSidebar, "no-sidebar", false, "Do not print the sidebar block on start")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to the log file")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	// stdout belongs to the chat, so logs only go to the file.
	logger, err := logging.NewFileOnly(cfg.Log)
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer logger.Sync()

	services := app.New(cfg, logger)
	c := console.New(services.Chat, services.Assets, console.Options{
		In:          cmd.InOrStdin(),
		Out:         cmd.OutOrStdout(),
		ShowSidebar: !noSidebar,
		Logger:      logger.Named("console"),
	})

	if err := c.Run(ctx); err != nil {
		logger.Error("console stopped", zap.Error(err))
		return err
	}
	return nil
}
