// Package cli holds the investerra command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/config"
)

// Set with -ldflags at build time.
var Version = "dev"

type rootOptions struct {
	policyFile string
	logLevel   string
}

// app is filled by the root pre-run and shared by every subcommand.
type app struct {
	cfg    *config.Config
	policy *config.Policy
	logger *zap.Logger
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	cmd := &cobra.Command{
		Use:           "investerra",
		Short:         "Land investment analysis: market prices, scoring and recommendations",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.policyFile, "policy", "", "valuation policy YAML (overrides POLICY_FILE)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	cmd.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newEstimateCmd(a),
		newAnalyzeCmd(a),
		newUserCmd(a),
	)

	return cmd
}

func (a *app) init(opts *rootOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.policyFile != "" {
		cfg.PolicyFile = opts.policyFile
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	a.cfg = cfg
	a.policy = policy
	a.logger = logger
	return nil
}
