package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/statline-ff/statline/internal/engine"
	"github.com/statline-ff/statline/internal/model"
)

type PlayerArgs struct {
	PlayerID string `json:"player_id" jsonschema:"Player id (required)"`
	Season   int    `json:"season" jsonschema:"Season year (0 = latest)"`
	Format   string `json:"format" jsonschema:"Scoring format: standard|half|ppr (default from config)"`
}

type PlayerLookupArgs struct {
	PlayerID string `json:"player_id" jsonschema:"Player id (required)"`
}

type WeeklyRanksArgs struct {
	Season   int    `json:"season" jsonschema:"Season year (0 = latest)"`
	Week     int    `json:"week" jsonschema:"Week 1-18 (required)"`
	Position string `json:"position" jsonschema:"QB|RB|WR|TE|K (required)"`
	Format   string `json:"format" jsonschema:"Scoring format: standard|half|ppr (default from config)"`
}

type DefenseRanksArgs struct {
	Season   int    `json:"season" jsonschema:"Season year (0 = latest)"`
	Position string `json:"position" jsonschema:"Offensive position the defenses faced (required)"`
	Format   string `json:"format" jsonschema:"Scoring format: standard|half|ppr (default from config)"`
}

type SeasonsArgs struct{}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *server) registerTools() {
	addTool(s.mcp, &s.registry, &mcp.Tool{
		Name:        "player_profile",
		Description: "Season header, 18-week game log, multi-season tiers and career profile for a player",
	}, s.toolPlayerProfile)

	addTool(s.mcp, &s.registry, &mcp.Tool{
		Name:        "player_game_log",
		Description: "18-week game log with weekly positional rank and opponent defense rank",
	}, s.toolPlayerGameLog)

	addTool(s.mcp, &s.registry, &mcp.Tool{
		Name:        "weekly_ranks",
		Description: "Positional leaderboard for one week",
	}, s.toolWeeklyRanks)

	addTool(s.mcp, &s.registry, &mcp.Tool{
		Name:        "defense_ranks",
		Description: "Defenses ranked by average fantasy points allowed to a position (1 = stingiest)",
	}, s.toolDefenseRanks)

	addTool(s.mcp, &s.registry, &mcp.Tool{
		Name:        "seasons",
		Description: "Seasons with weekly data, newest first",
	}, s.toolSeasons)

	addTool(s.mcp, &s.registry, &mcp.Tool{
		Name:        "player_lookup",
		Description: "Lookup a player by id",
	}, s.toolPlayerLookup)
}

func (s *server) toolPlayerProfile(ctx context.Context, _ *mcp.CallToolRequest, args PlayerArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.PlayerID) == "" {
		return toolError(fmt.Errorf("player_id is required")), nil, nil
	}
	return toolValue(s.eng.Profile(ctx, engine.ProfileRequest{
		PlayerID: args.PlayerID,
		Season:   args.Season,
		Format:   s.format(args.Format),
	}))
}

func (s *server) toolPlayerGameLog(ctx context.Context, _ *mcp.CallToolRequest, args PlayerArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.PlayerID) == "" {
		return toolError(fmt.Errorf("player_id is required")), nil, nil
	}
	return toolValue(s.eng.GameLog(ctx, engine.GameLogRequest{
		PlayerID: args.PlayerID,
		Season:   args.Season,
		Format:   s.format(args.Format),
	}))
}

func (s *server) toolWeeklyRanks(ctx context.Context, _ *mcp.CallToolRequest, args WeeklyRanksArgs) (*mcp.CallToolResult, any, error) {
	pos, err := requirePosition(args.Position)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolValue(s.eng.WeeklyRanks(args.Season, s.format(args.Format), args.Week, pos))
}

func (s *server) toolDefenseRanks(ctx context.Context, _ *mcp.CallToolRequest, args DefenseRanksArgs) (*mcp.CallToolResult, any, error) {
	pos, err := requirePosition(args.Position)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolValue(s.eng.DefenseRanks(args.Season, s.format(args.Format), pos))
}

func (s *server) toolSeasons(ctx context.Context, _ *mcp.CallToolRequest, _ SeasonsArgs) (*mcp.CallToolResult, any, error) {
	seasons, err := s.eng.Seasons()
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolValue(map[string]any{"seasons": seasons}, nil)
}

func (s *server) toolPlayerLookup(ctx context.Context, _ *mcp.CallToolRequest, args PlayerLookupArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.PlayerID) == "" {
		return toolError(fmt.Errorf("player_id is required")), nil, nil
	}
	return toolValue(s.eng.Player(args.PlayerID))
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
}

func requirePosition(raw string) (model.Position, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("position is required")
	}
	pos, ok := model.ParsePosition(raw)
	if !ok {
		return "", fmt.Errorf("unknown position: %q", raw)
	}
	return pos, nil
}

func toolValue[T any](v T, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(json.MarshalIndent(v, "", "  "))
}

func toolJSON(res []byte, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSONBytes(res), nil, nil
}

func toolJSONBytes(res []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
