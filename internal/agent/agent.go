// Package agent runs the bounded reasoning loop: the model picks tool calls,
// the registry executes them and the observations go back into the conversation
// until the model answers without a tool call or the turn budget runs out.
package agent

import (
	"context"
	"fmt"
	"strings"

	"go-careers-agent/internal/ai"
	"go-careers-agent/internal/models"
	"go-careers-agent/internal/sanitizer"
	"go-careers-agent/internal/tools"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const DefaultMaxTurns = 50

type Config struct {
	MaxTurns      int
	MaxUnlogged   int
	SearchEngines []string
}

// Result of one run. Exhausted runs are not errors, FinalText holds the last text the model produced.
type Result struct {
	RunID     string
	FinalText string
	Turns     int
	Exhausted bool
	Searches  int
}

type Agent struct {
	reasoner ai.Reasoner
	registry *tools.Registry
	cfg      Config
	logger   *log.Logger
}

func New(reasoner ai.Reasoner, registry *tools.Registry, cfg Config, logger *log.Logger) *Agent {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Agent{
		reasoner: reasoner,
		registry: registry,
		cfg:      cfg,
		logger:   logger.With("component", "agent"),
	}
}

// Run executes one scrape attempt. Reasoner errors end the run as is, the retry
// policy decides what to do with them.
func (a *Agent) Run(ctx context.Context, req models.SearchRequest) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	logger := a.logger.With("run", res.RunID)
	guard := tools.NewGuard(req.HasDomain(), a.cfg.MaxUnlogged, a.cfg.SearchEngines)
	specs := a.registry.Specs()

	history := []ai.Message{
		ai.SystemMessage(Instructions),
		ai.UserMessage(InitialMessage(req)),
	}
	logger.Info("🤖 Agent started", "query", req.Query(), "max_turns", a.cfg.MaxTurns)

	var last string
	for turn := 1; turn <= a.cfg.MaxTurns; turn++ {
		res.Turns = turn
		if err := ctx.Err(); err != nil {
			return res, err
		}

		msg, err := a.reasoner.Next(ctx, history, specs)
		if err != nil {
			return res, fmt.Errorf("reasoning turn %d: %w", turn, err)
		}
		history = append(history, msg)
		if strings.TrimSpace(msg.Content) != "" {
			last = msg.Content
		}

		if len(msg.ToolCalls) == 0 {
			res.FinalText = last
			res.Searches = guard.Searches()
			logger.Info("✅ Agent finished", "turns", turn)
			return res, nil
		}

		for _, call := range msg.ToolCalls {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			logger.Debug("🔧 Tool call", "turn", turn, "tool", call.Name, "args", sanitizer.Truncate(call.Arguments, 200))
			obs := a.registry.Invoke(ctx, guard, call)
			if obs.Failed {
				logger.Warn("⚠️ Tool failed", "turn", turn, "tool", call.Name, "result", sanitizer.Truncate(obs.Text, 200))
			}
			history = append(history, ai.ToolResultMessage(call, obs.Text))
		}
	}

	logger.Warn("⏱️ Turn budget exhausted, returning partial output", "turns", a.cfg.MaxTurns)
	res.FinalText = last
	res.Exhausted = true
	res.Searches = guard.Searches()
	return res, nil
}
