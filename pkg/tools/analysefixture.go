package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/richard-senior/betscout/internal/logger"
	"github.com/richard-senior/betscout/pkg/protocol"
)

// AnalyseFixtureTool runs the game analysis for one fixture
func AnalyseFixtureTool() protocol.Tool {
	minID := 1.0
	return protocol.Tool{
		Name: "analyse_fixture",
		Description: "Analyses a football fixture: form, head to head, goals, discipline, league structure and risk. " +
			"Returns the analysis and a session_id to pass to suggest_bets",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"fixture_id": {
					Type:        "integer",
					Description: "API-Football fixture id",
					Minimum:     &minID,
				},
			},
			Required: []string{"fixture_id"},
		},
	}
}

// HandleAnalyseFixture always answers with an analysis; when the fixture cannot be fetched
// it is the low confidence fallback.
func (tb *Toolbox) HandleAnalyseFixture(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := decodeArgs(params)
	if err != nil {
		return nil, err
	}
	id, ok, err := intArg(args, "fixture_id")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, protocol.NewInvalidParamsError("fixture_id is required")
	}
	if id <= 0 {
		return nil, protocol.NewInvalidParamsError("fixture_id must be positive")
	}
	if tb.Engine == nil {
		return nil, fmt.Errorf("analysis engine is not configured")
	}

	logger.Info("Analysing fixture:", id)
	res := tb.Engine.Analyze(ctx, id)
	sess := tb.Sessions.Create(res)
	logger.Debug("Created session", sess.ID, "for fixture", id)

	return map[string]any{
		"session_id": sess.ID,
		"analysis":   sess.Snapshot(),
	}, nil
}
