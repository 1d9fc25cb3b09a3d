package cmd

import (
	"context"
	"fmt"
	"os"

	"photo-gallery/internal/config"
	"photo-gallery/internal/logger"
	"photo-gallery/internal/services"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yaml"

var (
	configPath string
	portFlag   int
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:          "photo-gallery",
	Short:        "Single-user photo gallery server",
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the credential file and photo store if absent",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		a.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Credentials: %s\n", cfg.CredentialsPath())
		if cfg.Storage.Backend == "local" {
			fmt.Fprintf(cmd.OutOrStdout(), "Photos: %s\n", cfg.PhotosDir())
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Photos: s3://%s/%s\n", cfg.AWS.S3Bucket, cfg.AWS.S3Prefix)
		}
		return nil
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash <password>",
	Short: "Print the digest stored in the credential file for a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), services.HashPassword(args[0]))
		return nil
	},
}

func init() {
	defaultPath := os.Getenv("GALLERY_CONFIG")
	if defaultPath == "" {
		defaultPath = defaultConfigPath
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultPath, "path to a YAML or TOML config file")
	rootCmd.PersistentFlags().IntVarP(&portFlag, "port", "p", 0, "listening port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "base data directory (overrides config)")

	rootCmd.AddCommand(serveCmd, initCmd, hashCmd)
}

// Execute runs the command line
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return Run(cfg)
}

// loadConfig reads the config file and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if portFlag != 0 {
		cfg.Server.Port = portFlag
	}
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
