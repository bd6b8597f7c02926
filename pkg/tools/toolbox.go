// Package tools holds the MCP tools betscout exposes: team search, fixture analysis and
// bet suggestions over an in-memory session.
package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/football/analysis"
	"github.com/richard-senior/betscout/pkg/football/suggest"
	"github.com/richard-senior/betscout/pkg/protocol"
	"github.com/richard-senior/betscout/pkg/server"
	"github.com/richard-senior/betscout/pkg/util"
)

const (
	defaultSuggestionLimit = 8
	maxSuggestionLimit     = 50
)

// TeamSearcher finds teams by name at the statistics provider
type TeamSearcher interface {
	SearchTeams(ctx context.Context, query string) ([]football.Team, error)
}

// Toolbox is the state shared by the tool handlers
type Toolbox struct {
	Teams        TeamSearcher
	Engine       *analysis.Engine
	Generator    suggest.Generator
	Sessions     *SessionStore
	DefaultLimit int
}

// Register adds every tool to the server
func (tb *Toolbox) Register(s *server.Server) {
	if tb.Sessions == nil {
		tb.Sessions = NewSessionStore(DefaultSessionTTL)
	}
	s.RegisterTool(SearchTeamTool(), tb.HandleSearchTeam)
	s.RegisterTool(AnalyseFixtureTool(), tb.HandleAnalyseFixture)
	s.RegisterTool(SuggestBetsTool(), tb.HandleSuggestBets)
}

func (tb *Toolbox) limit() int {
	if tb.DefaultLimit > 0 {
		return tb.DefaultLimit
	}
	return defaultSuggestionLimit
}

// decodeArgs unmarshals tool arguments into a generic map
func decodeArgs(params json.RawMessage) (map[string]any, error) {
	args := map[string]any{}
	if len(params) == 0 {
		return args, nil
	}
	if err := json.Unmarshal(params, &args); err != nil {
		return nil, protocol.NewInvalidParamsError("arguments must be an object: %v", err)
	}
	return args, nil
}

func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", protocol.NewInvalidParamsError("%s is required", name)
	}
	s, err := util.GetAsString(v)
	if err != nil {
		return "", protocol.NewInvalidParamsError("%s: %v", name, err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", protocol.NewInvalidParamsError("%s is required", name)
	}
	return s, nil
}

func intArg(args map[string]any, name string) (int, bool, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return 0, false, nil
	}
	n, err := util.GetAsInteger(v)
	if err != nil {
		return 0, true, protocol.NewInvalidParamsError("%s: %v", name, err)
	}
	return n, true, nil
}
