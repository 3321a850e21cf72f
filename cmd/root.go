package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rangeid/bbctl/internal/bitbucket"
	"github.com/rangeid/bbctl/internal/config"
	"github.com/rangeid/bbctl/internal/credential"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "n/a"

var rootCmd = &cobra.Command{
	Use:   "bbctl",
	Short: "Bitbucket Server branch and pull request automation",
	Long: `bbctl drives branch and pull request lifecycle operations on a
Bitbucket Server (Data Center) instance from a declarative description
of the desired outcome.`,
}

var (
	serverFlag     string
	projectFlag    string
	repositoryFlag string
	timeoutFlag    time.Duration
)

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Bitbucket base URL (https://<server>)")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", "", "Project key")
	rootCmd.PersistentFlags().StringVar(&repositoryFlag, "repository", "", "Repository slug")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "Per-request timeout (overrides config)")
}

// Execute runs the root command.
func Execute() error {
	config.LoadEnv()
	return rootCmd.Execute()
}

// loadConfig merges config files with any command-line overrides.
func loadConfig() (config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get current directory: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get user home directory: %w", err)
	}

	loader := config.NewDefaultLoader()
	loadResult, err := loader.Load(config.ConfigPaths(cwd, homeDir))
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := loadResult.Config
	if serverFlag != "" {
		cfg.Server.URL = serverFlag
	}
	if projectFlag != "" {
		cfg.Server.Project = projectFlag
	}
	if repositoryFlag != "" {
		cfg.Server.Repository = repositoryFlag
	}
	if timeoutFlag > 0 {
		cfg.HTTP.Timeout = timeoutFlag
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// cmdDeps holds injectable dependencies for testing.
type cmdDeps struct {
	bb bitbucket.Bitbucket
}

// resolveBitbucket returns the injected client when testing, or builds
// one from config and credentials.
func resolveBitbucket(deps *cmdDeps) (bitbucket.Bitbucket, error) {
	if deps != nil {
		return deps.bb, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	username, password, err := credential.Lookup()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials: %w", err)
	}

	target := bitbucket.Target{
		ServerURL:      cfg.Server.URL,
		ProjectKey:     cfg.Server.Project,
		RepositorySlug: cfg.Server.Repository,
	}
	cred := bitbucket.Credential{Username: username, Password: password}

	return bitbucket.New(target, cred, cfg.HTTP.Timeout)
}

// printChanged reports the declarative outcome of a mutating command.
func printChanged(cmd *cobra.Command, changed bool) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "changed: %t\n", changed)
	return err
}
