// Command node runs one pass of a DAHAO governance node: it reads the fork
// and main value files, asks an LLM for a governance decision over the
// current discussions, and posts at most one proposal, comment or vote.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dahaonode/internal/config"
	"dahaonode/internal/github"
	"dahaonode/internal/logging"
	"dahaonode/internal/node"
	"dahaonode/internal/perception"
	"dahaonode/internal/types"
)

type options struct {
	configPath  string
	verbose     bool
	timeout     time.Duration
	voteOnly    bool
	respondOnly bool
	propose     bool
}

// mode returns the mode selected by flags, or "" when none is set.
func (o options) mode() types.Mode {
	switch {
	case o.voteOnly:
		return types.ModeVoteOnly
	case o.respondOnly:
		return types.ModeRespond
	case o.propose:
		return types.ModePropose
	}
	return ""
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "node",
		Short: "DAHAO governance node",
		Long: `Runs one governance pass for this fork.

The node compares the fork's value files with the main repository's shared law,
reads the most recent governance discussions, asks an LLM for a decision and
carries out at most one action: a new proposal, a reply or a vote.

Configuration comes from the YAML file given by --config, a .env file and the
environment (GITHUB_TOKEN, GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, ...).`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "node.yaml", "config file path (missing file uses defaults)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall run timeout (0 disables)")
	flags.BoolVar(&opts.voteOnly, "vote-only", false, "only cast votes")
	flags.BoolVar(&opts.respondOnly, "respond-only", false, "only respond to discussions")
	flags.BoolVar(&opts.propose, "propose", false, "create a new proposal")
	cmd.MarkFlagsMutuallyExclusive("vote-only", "respond-only", "propose")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if m := opts.mode(); m != "" {
		cfg.Node.ActionMode = string(m)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	mode, _ := cfg.Mode()
	owner, name, _ := cfg.RepoOwnerName()

	runID := uuid.NewString()
	runLog, err := logging.Open(logging.Options{
		Dir:     cfg.Paths.LogDir,
		Verbose: opts.verbose,
		Console: cmd.ErrOrStderr(),
		RunID:   runID,
	})
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer runLog.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	lg := runLog.Get(logging.CategoryNode)
	if cfg.GitHub.Token == "" {
		lg.Warn("No GitHub token configured (GITHUB_TOKEN or GH_PAT)")
	}

	storeCfg := github.DefaultConfig(owner, name, cfg.GitHub.Token)
	storeCfg.Endpoint = cfg.GitHub.Endpoint
	storeCfg.Timeout = cfg.GetStoreTimeout()
	store := github.NewClient(storeCfg, runLog.Get(logging.CategoryStore))

	oracle := perception.NewClientFromConfig(ctx, cfg, runLog.Get(logging.CategoryOracle))

	n := node.New(node.Config{
		Name:     cfg.Node.Name,
		ForkPath: cfg.Paths.Fork,
		MainPath: cfg.Paths.Main,
		Mode:     mode,
		Category: cfg.GitHub.Category,
	}, store, oracle, runLog)

	report := n.Run(ctx)
	fields := []zap.Field{
		zap.String("stage", string(report.Stage)),
		zap.Int("discussions", report.Discussions),
	}
	if report.Err != nil {
		fields = append(fields, zap.Error(report.Err))
	}
	lg.Info("Run finished", fields...)

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %s (log: %s)\n", runID, report.Stage, runLog.Path())
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
