// Package node runs one decision-and-dispatch pass of a governance node.
package node

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"dahaonode/internal/decision"
	"dahaonode/internal/deliberation"
	"dahaonode/internal/dispatch"
	"dahaonode/internal/logging"
	"dahaonode/internal/prompt"
	"dahaonode/internal/types"
	"dahaonode/internal/values"
)

// ListLimit is how many discussions a run reads.
const ListLimit = 20

const (
	bannerRule       = "══════════════════════════════════════════════════"
	bannerValueLimit = 100
)

// ErrModeRejected means the chosen action is outside the run's mode.
var ErrModeRejected = errors.New("action not permitted in mode")

// Stage names where a run stopped.
type Stage string

const (
	StageListFailed     Stage = "list_failed"
	StageNoDiscussions  Stage = "no_discussions"
	StageOracleFailed   Stage = "oracle_failed"
	StageParseFailed    Stage = "parse_failed"
	StageModeRejected   Stage = "mode_rejected"
	StageDispatchFailed Stage = "dispatch_failed"
	StageComplete       Stage = "complete"
)

// Config is the per-run node configuration.
type Config struct {
	Name     string
	ForkPath string
	MainPath string
	Mode     types.Mode
	// Category is the discussion category proposals are filed under.
	Category string
}

// Report summarizes one run. Err is set for every stage but StageComplete
// and StageNoDiscussions.
type Report struct {
	Stage       Stage
	Mode        types.Mode
	Delta       values.Delta
	Discussions int
	PromptSize  int
	Decision    *types.Decision
	Outcome     *dispatch.Outcome
	Err         error
}

// Node wires the value files, the discussion store and the oracle together.
type Node struct {
	cfg       Config
	store     types.DiscussionStore
	oracle    types.LLMClient
	log       *logging.RunLog
	assembler *prompt.Assembler
}

// New creates a node. A nil log discards output.
func New(cfg Config, store types.DiscussionStore, oracle types.LLMClient, log *logging.RunLog) *Node {
	if log == nil {
		log = logging.Nop()
	}
	if cfg.Mode == "" {
		cfg.Mode = types.ModeAuto
	}
	return &Node{
		cfg:       cfg,
		store:     store,
		oracle:    oracle,
		log:       log,
		assembler: prompt.NewAssembler(),
	}
}

// Run performs one pass: load values, read discussions, consult the oracle,
// and dispatch at most one action. Failures are logged and reported, never returned.
func (n *Node) Run(ctx context.Context) Report {
	lg := n.log.Get(logging.CategoryNode)
	report := Report{Mode: n.cfg.Mode}

	valuesLog := n.log.Get(logging.CategoryValues)
	fork := values.LoadFork(n.cfg.ForkPath, valuesLog)
	main := values.LoadMain(n.cfg.MainPath, valuesLog)
	report.Delta = values.Reconcile(fork, main)
	catalog := values.BuildCatalog(main)

	lg.Info(bannerRule)
	lg.Info("DAHAO GOVERNANCE NODE")
	lg.Info(bannerRule)
	lg.Info("Mode: "+string(n.cfg.Mode), zap.String("node", n.cfg.Name))
	lg.Info("Fork values: " + firstRunes(report.Delta.String(), bannerValueLimit) + values.Ellipsis)
	valuesLog.Debug("Values reconciled",
		zap.Int("private_values", len(report.Delta.Values)),
		zap.Int("citable_tokens", catalog.Len()))

	storeLog := n.log.Get(logging.CategoryStore)
	discussions, err := n.store.ListRecent(ctx, ListLimit)
	if err != nil {
		storeLog.Error("Failed to fetch discussions", zap.Error(err))
		return n.stop(report, StageListFailed, err)
	}
	report.Discussions = len(discussions)
	lg.Info(fmt.Sprintf("Found %d active discussions", len(discussions)))
	for _, d := range discussions {
		tally := deliberation.Tally(d)
		storeLog.Debug("Discussion",
			zap.Int("number", d.Number),
			zap.Stringer("phase", deliberation.Classify(d)),
			zap.Int("approve", tally.Approve),
			zap.Int("reject", tally.Reject),
			zap.Int("abstain", tally.Abstain))
	}

	if len(discussions) == 0 && n.cfg.Mode != types.ModePropose {
		lg.Warn("No discussions to act on")
		return n.stop(report, StageNoDiscussions, nil)
	}

	text := n.assembler.Assemble(prompt.Input{
		Delta:       report.Delta,
		Catalog:     catalog,
		Discussions: discussions,
		Mode:        n.cfg.Mode,
	})
	report.PromptSize = utf8.RuneCountInString(text)
	lg.Info(fmt.Sprintf("Prompt size: %d chars", report.PromptSize))

	oracleLog := n.log.Get(logging.CategoryOracle)
	response, err := n.oracle.Complete(ctx, text)
	if err != nil {
		oracleLog.Error("Failed to get LLM response", zap.Error(err))
		return n.stop(report, StageOracleFailed, err)
	}

	dec, err := decision.Parse(response)
	if err != nil {
		oracleLog.Error("Failed to parse decision", zap.Error(err))
		return n.stop(report, StageParseFailed, err)
	}
	report.Decision = &dec
	lg.Info("Decision: "+string(dec.Action), zap.String("reasoning", dec.Reasoning))

	if !n.cfg.Mode.Allows(dec.Action) {
		lg.Warn("Action not permitted in mode, skipping",
			zap.String("action", string(dec.Action)),
			zap.String("mode", string(n.cfg.Mode)))
		return n.stop(report, StageModeRejected, fmt.Errorf("%w: %s in %s", ErrModeRejected, dec.Action, n.cfg.Mode))
	}

	d := dispatch.New(n.store, report.Delta, n.cfg.Category, n.log.Get(logging.CategoryDispatch))
	outcome, err := d.Dispatch(ctx, dec)
	report.Outcome = &outcome
	if err != nil {
		return n.stop(report, StageDispatchFailed, err)
	}

	return n.stop(report, StageComplete, nil)
}

func (n *Node) stop(report Report, stage Stage, err error) Report {
	report.Stage = stage
	report.Err = err
	if stage == StageComplete {
		lg := n.log.Get(logging.CategoryNode)
		lg.Info(bannerRule)
		lg.Info("NODE COMPLETE")
		lg.Info(bannerRule)
	}
	return report
}

// firstRunes returns at most n leading characters of s.
func firstRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
