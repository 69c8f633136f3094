// Package cli provides configuration management commands.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bucketops/bucketctl/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bucketctl configuration",
		Long: `Configuration management commands.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  set   - Set a single configuration value
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup.

The configuration is saved to ~/.config/bucketctl/config with 0600
permissions; it holds the API key.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			configPath := cfgFile
			if configPath == "" {
				var err error
				configPath, err = config.DefaultPath()
				if err != nil {
					return err
				}
			}

			if !force {
				if _, err := os.Stat(configPath); err == nil {
					fmt.Printf("Configuration already exists at: %s\n", configPath)
					fmt.Println("Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Println("bucketctl Configuration Setup")
			fmt.Println("=============================")
			fmt.Println()

			cfg := config.New()

			serverURL, err := promptLine("Server URL (required)", "")
			if err != nil {
				return err
			}
			for serverURL == "" {
				fmt.Println("  Error: server URL is required")
				serverURL, err = promptLine("Server URL (required)", "")
				if err != nil {
					return err
				}
			}
			cfg.ServerURL = serverURL

			// API key does not echo
			cfg.APIKey, err = promptSecret("API key (required)")
			if err != nil {
				return err
			}
			for cfg.APIKey == "" {
				fmt.Println("  Error: API key is required")
				cfg.APIKey, err = promptSecret("API key (required)")
				if err != nil {
					return err
				}
			}

			cfg.Project, err = promptLine("Project ID (required)", "")
			if err != nil {
				return err
			}
			for cfg.Project == "" {
				fmt.Println("  Error: project is required")
				cfg.Project, err = promptLine("Project ID (required)", "")
				if err != nil {
					return err
				}
			}

			cfg.Integration, err = promptLine("Default storage integration (empty = project-local)", "")
			if err != nil {
				return err
			}

			notifyInput, err := promptLine("Desktop notifications? (y/n)", "y")
			if err != nil {
				return err
			}
			enabled := strings.ToLower(notifyInput) == "y" || strings.ToLower(notifyInput) == "yes"
			cfg.Notifications.Enabled = enabled
			cfg.Notifications.ShowTransferComplete = enabled
			cfg.Notifications.ShowTransferFailed = enabled

			if err := config.Save(cfg, configPath); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			logger.Info().Str("path", configPath).Msg("Configuration saved")

			fmt.Println()
			fmt.Printf("Configuration saved to: %s\n", configPath)
			fmt.Println()
			fmt.Println("Verify it with: bucketctl buckets list")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

Shows the merged configuration from the config file and command-line
flags (--api-key, --api-url, --project, --integration).

Priority: flags > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			configPath := cfgFile
			if configPath == "" {
				configPath, _ = config.DefaultPath()
			}

			fmt.Println("Current Configuration")
			fmt.Println("=====================")
			fmt.Println()

			fmt.Println("Server:")
			fmt.Printf("  URL:     %s\n", orUnset(cfg.ServerURL))
			if cfg.APIKey != "" {
				// Never display any portion of the API key
				fmt.Printf("  API Key: <set (%d chars)>\n", len(cfg.APIKey))
			} else {
				fmt.Println("  API Key: <not set>")
			}
			fmt.Printf("  Project: %s\n", orUnset(cfg.Project))
			fmt.Println()

			fmt.Println("Storage:")
			if cfg.Integration != "" {
				fmt.Printf("  Default integration: %s\n", cfg.Integration)
			} else {
				fmt.Println("  Default integration: <project-local>")
			}
			if len(cfg.Integrations) > 0 {
				titles := make([]string, 0, len(cfg.Integrations))
				for title := range cfg.Integrations {
					titles = append(titles, title)
				}
				sort.Strings(titles)
				fmt.Println("  Direct-access integrations:")
				for _, title := range titles {
					integ := cfg.Integrations[title]
					fmt.Printf("    %s (endpoint: %s, path_style: %t)\n", title, orUnset(integ.Endpoint), integ.PathStyle)
				}
			}
			fmt.Println()

			fmt.Println("Notifications:")
			fmt.Printf("  Enabled:           %t\n", cfg.Notifications.Enabled)
			fmt.Printf("  Transfer complete: %t\n", cfg.Notifications.ShowTransferComplete)
			fmt.Printf("  Transfer failed:   %t\n", cfg.Notifications.ShowTransferFailed)
			fmt.Println()

			fmt.Printf("Configuration file: %s\n", configPath)
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				fmt.Println("  (file does not exist - using defaults)")
			}

			return nil
		},
	}

	return cmd
}

// newConfigSetCmd creates the 'config set' command.
func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a single configuration value",
		Long: `Set one configuration value and save the file.

Keys:
  url                    Server URL
  api_key                Platform API key
  project                Project ID
  integration            Default storage integration title
  notifications          Desktop notifications on/off (true/false)

Examples:
  bucketctl config set url https://platform.example.com
  bucketctl config set project 42
  bucketctl config set notifications false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			configPath := cfgFile
			if configPath == "" {
				var err error
				configPath, err = config.DefaultPath()
				if err != nil {
					return err
				}
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			switch key {
			case "url":
				cfg.ServerURL = value
			case "api_key":
				cfg.APIKey = value
			case "project":
				cfg.Project = value
			case "integration":
				cfg.Integration = value
			case "notifications":
				enabled, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("notifications takes true or false, got %q", value)
				}
				cfg.Notifications.Enabled = enabled
			default:
				return fmt.Errorf("unknown configuration key %q", key)
			}

			if err := config.Save(cfg, configPath); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Printf("Set %s\n", key)
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := cfgFile
			if configPath == "" {
				var err error
				configPath, err = config.DefaultPath()
				if err != nil {
					return err
				}
				fmt.Println("Default configuration path:")
			} else {
				fmt.Println("Configuration path (from --config flag):")
			}

			fmt.Printf("  %s\n", configPath)
			fmt.Println()

			if info, err := os.Stat(configPath); err == nil {
				fmt.Println("Status: file exists")
				fmt.Printf("Size:     %d bytes\n", info.Size())
				fmt.Printf("Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Println("Status: file does not exist")
				fmt.Println()
				fmt.Println("Create a configuration file with: bucketctl config init")
			}

			return nil
		},
	}

	return cmd
}

func orUnset(s string) string {
	if s == "" {
		return "<not set>"
	}
	return s
}
