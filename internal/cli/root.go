package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bucketops/bucketctl/internal/config"
	"github.com/bucketops/bucketctl/internal/logging"
	"github.com/bucketops/bucketctl/internal/version"
)

var (
	// Global flags
	cfgFile     string
	apiKey      string
	apiBaseURL  string
	project     string
	integration string
	verbose     bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bucketctl",
		Short: "bucketctl - manage artifact buckets and files",
		Long: `bucketctl ` + version.Version + ` - Built: ` + version.BuildTime + `
Tool for managing artifact buckets and their files on an artifact-storage
platform, or directly against S3-compatible storage.

Buckets hold build artifacts, reports, and other files. Each bucket can
carry a retention policy (days, weeks, months, years) after which its
files expire.

Storage selection:
  By default commands go through the platform API using the project's
  storage. Pass --integration to target a named storage integration; when
  the config file carries local credentials for it, bucketctl talks to
  the S3 endpoint directly.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultLogger()
			if verbose {
				logging.SetGlobalLevel(-1) // zerolog.DebugLevel
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Platform API key (overrides config)")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-url", "", "Platform API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&project, "project", "p", "", "Project ID (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&integration, "integration", "i", "", "Storage integration title (empty = project-local storage)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	// Customize completion command description
	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Enable tab-completion for bucketctl commands",
		Long: `Generate shell completion scripts to enable tab-completion.

QUICK START:

  bash:
    bucketctl completion bash | sudo tee /etc/bash_completion.d/bucketctl

  zsh:
    mkdir -p ~/.zsh/completions
    bucketctl completion zsh > ~/.zsh/completions/_bucketctl
    # Then add to ~/.zshrc: fpath=(~/.zsh/completions $fpath)

  fish:
    bucketctl completion fish > ~/.config/fish/completions/bucketctl.fish

Restart your terminal afterwards.`,
	}
	rootCmd.AddCommand(completionCmd)

	completionCmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate bash completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenBashCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate zsh completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate fish completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "powershell",
		Short: "Generate PowerShell completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.Root().GenPowerShellCompletion(cmd.OutOrStdout())
		},
	})

	// Disable default completion command (we're adding our own above)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	// Create a context that can be cancelled by signals
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling operations...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newBucketsCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// loadConfig loads the configuration and applies environment and global
// flag overrides. Priority: flags > environment > config file > defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("BUCKETCTL_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("BUCKETCTL_API_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("BUCKETCTL_PROJECT"); v != "" {
		cfg.Project = v
	}

	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	if apiBaseURL != "" {
		cfg.ServerURL = apiBaseURL
	}
	if project != "" {
		cfg.Project = project
	}
	if integration != "" {
		cfg.Integration = integration
	}

	return cfg, nil
}

// selectedIntegration resolves the integration title for the current
// invocation: the --integration flag when set, otherwise the config default.
func selectedIntegration(cfg *config.Config) string {
	if integration != "" {
		return integration
	}
	return cfg.Integration
}

// getStore loads configuration and builds the store for the selected
// integration. This is the standard way commands obtain their backend.
func getStore() (bucketStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newStore(cfg, selectedIntegration(cfg))
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		// Fallback to background context if called before Execute()
		return context.Background()
	}
	return rootContext
}
