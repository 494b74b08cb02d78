package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zeedivx/web-starter/internal/config"
	"github.com/zeedivx/web-starter/internal/logging"
	"github.com/zeedivx/web-starter/internal/migration"
)

type contextKey string

const (
	ctxToolKey   contextKey = "tool"
	ctxConfigKey contextKey = "config"

	annotationOffline = "offline"
)

var (
	configFile string
	debugMode  bool
	logFile    string
	showConfig bool

	appVersion, commit, date = "dev", "none", "unknown"
)

var ErrShowConfigDisplayed = errors.New("configuration displayed")

func newRootCmd(run migration.Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migration dispatcher",
		Long: `Thin dispatcher around the external schema-migration engine.

Each command assembles exactly one engine invocation, runs it, and
surfaces the engine's exit code unchanged. Migration state and database
connectivity stay with the engine; this tool adds argument defaulting,
help text, and an MCP surface.`,
		Version:           fmt.Sprintf("%s (commit: %s, build date: %s)", appVersion, commit, date),
		PersistentPreRunE: setupDependencies(run),
		PersistentPostRun: teardown,
		SilenceUsage:      true, // Prevents printing help on execution errors
	}

	pFlags := cmd.PersistentFlags()
	pFlags.StringVarP(&configFile, "config", "c", "", "Path to env file")
	pFlags.BoolVar(&debugMode, "debug", false, "Enable debug logging")
	pFlags.StringVar(&logFile, "log-file", "", "Path to write logs to a file")
	pFlags.BoolVar(&showConfig, "show-config", false, "Print the effective configuration (with secrets masked) and exit")

	cmd.AddCommand(
		newCreateCmd(), newUpgradeCmd(), newDowngradeCmd(),
		newHistoryCmd(), newCurrentCmd(), newResetCmd(),
		NewMCPCmd(), versionCmd,
	)

	return cmd
}

// setupDependencies wires the logger, configuration, and engine tool into
// the command context. Offline commands (help, version, mcp) skip the
// config load so they work without any environment at all.
func setupDependencies(run migration.Runner) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if _, err := logging.New(debugMode, logFile); err != nil {
			return fmt.Errorf("logger init: %w", err)
		}

		if isOffline(cmd) {
			return nil
		}

		cfg, err := loadConfigFromFlags(configFile)
		if err != nil {
			return err
		}
		if showConfig {
			if err := renderConfig(cmd.OutOrStdout(), cfg); err != nil {
				return err
			}
			return ErrShowConfigDisplayed
		}

		if run == nil {
			run = migration.ExecRunner{}
		}
		tool := migration.NewTool(migration.ToolOptions{
			Bin:         cfg.Migrator.Bin,
			ConfigFile:  cfg.Migrator.ConfigFile,
			WorkDir:     cfg.Migrator.WorkDir,
			DatabaseURL: cfg.Database.DSN(),
			Runner:      run,
		})

		ctx := context.WithValue(cmd.Context(), ctxConfigKey, cfg)
		ctx = context.WithValue(ctx, ctxToolKey, tool)
		cmd.SetContext(ctx)
		return nil
	}
}

func isOffline(cmd *cobra.Command) bool {
	if cmd.Annotations[annotationOffline] == "true" {
		return true
	}
	offlineNames := map[string]bool{"help": true, "version": true, "completion": true}
	return offlineNames[cmd.Name()]
}

func teardown(_ *cobra.Command, _ []string) {
	_ = zap.L().Sync()
}

// Execute runs the dispatcher against the real engine. The exit code for
// the returned error is decided by migration.ExitCode in main.
func Execute() error {
	err := newRootCmd(nil).Execute()
	if errors.Is(err, ErrShowConfigDisplayed) {
		return nil
	}
	return err
}

func loadConfigFromFlags(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("config load failed: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	return cfg, nil
}

func renderConfig(w io.Writer, cfg *config.Config) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"app_name", cfg.AppName},
		{"environment", cfg.Environment},
		{"debug", fmt.Sprintf("%t", cfg.Debug)},
		{"db_host", cfg.Database.Host},
		{"db_port", fmt.Sprintf("%d", cfg.Database.Port)},
		{"db_user", cfg.Database.User},
		{"db_password", maskSecret(cfg.Database.Password)},
		{"db_name", cfg.Database.Name},
		{"db_ssl_mode", cfg.Database.SSLMode},
		{"migrator_bin", cfg.Migrator.Bin},
		{"migrator_config", cfg.Migrator.ConfigFile},
		{"migrator_workdir", cfg.Migrator.WorkDir},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
