package tools

import (
	"context"
	"encoding/json"

	"github.com/richard-senior/betscout/internal/logger"
	"github.com/richard-senior/betscout/pkg/protocol"
)

// SuggestBetsTool returns the next batch of suggestions for an analysed fixture
func SuggestBetsTool() protocol.Tool {
	minLimit, maxLimit := 1.0, float64(maxSuggestionLimit)
	return protocol.Tool{
		Name: "suggest_bets",
		Description: "Suggests bets for a fixture analysed with analyse_fixture. Each call returns suggestions " +
			"not shown before in the session; once all have been shown the list starts again",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"session_id": {
					Type:        "string",
					Description: "session_id returned by analyse_fixture",
				},
				"limit": {
					Type:        "integer",
					Description: "Maximum number of suggestions to return",
					Minimum:     &minLimit,
					Maximum:     &maxLimit,
				},
			},
			Required: []string{"session_id"},
		},
	}
}

// HandleSuggestBets hands out the next unseen suggestions and records them on the session
func (tb *Toolbox) HandleSuggestBets(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := decodeArgs(params)
	if err != nil {
		return nil, err
	}
	id, err := stringArg(args, "session_id")
	if err != nil {
		return nil, err
	}
	limit, ok, err := intArg(args, "limit")
	if err != nil {
		return nil, err
	}
	if !ok {
		limit = tb.limit()
	}
	if limit < 1 || limit > maxSuggestionLimit {
		return nil, protocol.NewInvalidParamsError("limit must be between 1 and %d", maxSuggestionLimit)
	}

	sess, found := tb.Sessions.Get(id)
	if !found {
		return protocol.NewToolErrorResult("unknown or expired session " + id + ", run analyse_fixture again"), nil
	}

	batch := sess.NextBatch(tb.Generator, limit)
	logger.Info("Suggested", len(batch.Suggestions), "bets, remaining", batch.Remaining)
	if batch.Cycled {
		logger.Debug("Session", id, "cycled through all suggestions")
	}

	return map[string]any{
		"session_id":  id,
		"fixture_id":  sess.dedup.FixtureID,
		"suggestions": batch.Suggestions,
		"total":       batch.Total,
		"remaining":   batch.Remaining,
		"cycled":      batch.Cycled,
	}, nil
}
