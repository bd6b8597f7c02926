package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/richard-senior/betscout/internal/logger"
	"github.com/richard-senior/betscout/pkg/datasource"
	"github.com/richard-senior/betscout/pkg/protocol"
	"github.com/richard-senior/betscout/pkg/util"
)

const maxTeamMatches = 10

// SearchTeamTool finds a team id by name
func SearchTeamTool() protocol.Tool {
	return protocol.Tool{
		Name:        "search_team",
		Description: "Searches the statistics provider for football teams by name and returns the closest matches with their ids",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"name": {
					Type:        "string",
					Description: "Team name or part of it, at least 3 characters e.g. Arsenal",
				},
			},
			Required: []string{"name"},
		},
	}
}

// TeamMatch is one search result
type TeamMatch struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Country    string  `json:"country,omitempty"`
	Founded    *int    `json:"founded,omitempty"`
	National   bool    `json:"national"`
	Distance   int     `json:"distance"`
	Similarity float64 `json:"similarity"`
}

// HandleSearchTeam ranks provider results by fuzzy distance to the query
func (tb *Toolbox) HandleSearchTeam(ctx context.Context, params json.RawMessage) (any, error) {
	args, err := decodeArgs(params)
	if err != nil {
		return nil, err
	}
	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(name) < 3 {
		return nil, protocol.NewInvalidParamsError("name must be at least 3 characters")
	}
	if tb.Teams == nil {
		return nil, fmt.Errorf("team search is not configured")
	}

	logger.Info("Searching for team:", name)
	teams, err := tb.Teams.SearchTeams(ctx, name)
	switch {
	case errors.Is(err, datasource.ErrNotFound):
		teams = nil
	case err != nil:
		logger.Warn("Team search failed:", err)
		return protocol.NewToolErrorResult(fmt.Sprintf("team search failed: %v", err)), nil
	}

	matches := make([]TeamMatch, 0, len(teams))
	for _, t := range teams {
		matches = append(matches, TeamMatch{
			ID:         t.ID,
			Name:       t.Name,
			Country:    t.Country,
			Founded:    t.Founded,
			National:   t.National,
			Distance:   util.FuzzyMatch(name, t.Name),
			Similarity: util.SimilarityScore(name, t.Name),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		return a.Name < b.Name
	})
	if len(matches) > maxTeamMatches {
		matches = matches[:maxTeamMatches]
	}

	return map[string]any{
		"query":   name,
		"count":   len(matches),
		"matches": matches,
	}, nil
}
