package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/tracespace/internal/domain/refresh"
	"github.com/rpggio/tracespace/internal/infopanel"
	"github.com/rpggio/tracespace/internal/organism"
	"github.com/rpggio/tracespace/internal/viewer"
)

// ErrJournalDisabled is returned by journal tools when no journal is wired.
var ErrJournalDisabled = errors.New("refresh journal disabled")

// StatusResult is the get_status payload.
type StatusResult struct {
	Endpoint       string           `json:"endpoint,omitempty"`
	Status         infopanel.Status `json:"status"`
	Label          string           `json:"label"`
	Organisms      string           `json:"organisms"`
	Engagement     string           `json:"engagement"`
	Updated        string           `json:"updated"`
	LastAppliedSeq uint64           `json:"last_applied_seq"`
	SceneObjects   int              `json:"scene_objects"`
	CameraDistance float64          `json:"camera_distance"`
	Dragging       bool             `json:"dragging"`
}

// HoverResult is the get_hover payload.
type HoverResult struct {
	Hovering bool                 `json:"hovering"`
	Organism *viewer.OrganismInfo `json:"organism,omitempty"`
}

type listOrganismsParams struct {
	Level string `json:"level,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type recentRefreshesParams struct {
	Outcome string `json:"outcome,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

func inputSchema(properties map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}

func registerTools(server *sdkmcp.Server, cfg Config) {
	addTool(server, &sdkmcp.Tool{
		Name:        "get_status",
		Description: "Report refresh health, info panel figures and camera state of the running viewer",
		InputSchema: inputSchema(map[string]any{}),
	}, func(context.Context, json.RawMessage) (any, error) {
		st := cfg.State.Load()
		return StatusResult{
			Endpoint:       cfg.Endpoint,
			Status:         st.Status,
			Label:          st.Status.Label(),
			Organisms:      st.Panel.OrganismsText(),
			Engagement:     st.Panel.EngagementText(),
			Updated:        st.Panel.UpdatedText(),
			LastAppliedSeq: st.LastApplied,
			SceneObjects:   len(st.Organisms),
			CameraDistance: st.CameraDistance,
			Dragging:       st.Dragging,
		}, nil
	})

	addTool(server, &sdkmcp.Tool{
		Name:        "list_organisms",
		Description: "List the organisms of the applied snapshot in creation order",
		InputSchema: inputSchema(map[string]any{
			"level": map[string]any{
				"type":        "string",
				"enum":        []string{"subcomponent", "component", "entity"},
				"description": "Only organisms at this level",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of organisms to return",
			},
		}),
	}, func(_ context.Context, args json.RawMessage) (any, error) {
		var params listOrganismsParams
		if err := decodeParams(args, &params); err != nil {
			return nil, err
		}
		var (
			level    organism.Level
			filtered = params.Level != ""
		)
		if filtered {
			l, err := organism.ParseLevel(params.Level)
			if err != nil {
				return nil, err
			}
			level = l
		}

		out := []viewer.OrganismInfo{}
		for _, o := range cfg.State.Load().Organisms {
			if filtered && o.Level != level {
				continue
			}
			out = append(out, o)
			if params.Limit > 0 && len(out) == params.Limit {
				break
			}
		}
		return out, nil
	})

	addTool(server, &sdkmcp.Tool{
		Name:        "get_hover",
		Description: "Return the subcomponent currently under the pointer",
		InputSchema: inputSchema(map[string]any{}),
	}, func(context.Context, json.RawMessage) (any, error) {
		st := cfg.State.Load()
		return HoverResult{Hovering: st.Hover != nil, Organism: st.Hover}, nil
	})

	addTool(server, &sdkmcp.Tool{
		Name:        "recent_refreshes",
		Description: "List refresh attempts newest first, optionally filtered by outcome",
		InputSchema: inputSchema(map[string]any{
			"outcome": map[string]any{
				"type":        "string",
				"enum":        []string{"applied", "fetch_error", "malformed", "stale"},
				"description": "Only attempts with this outcome",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of entries (default 50)",
			},
		}),
	}, func(ctx context.Context, args json.RawMessage) (any, error) {
		if cfg.Journal == nil {
			return nil, ErrJournalDisabled
		}
		var params recentRefreshesParams
		if err := decodeParams(args, &params); err != nil {
			return nil, err
		}
		opts := refresh.ListOptions{Limit: params.Limit}
		if params.Outcome != "" {
			outcome := refresh.Outcome(params.Outcome)
			opts.Outcome = &outcome
		}
		entries, err := cfg.Journal.Recent(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("listing refreshes: %w", err)
		}
		if entries == nil {
			entries = []refresh.Entry{}
		}
		return entries, nil
	})
}

func addTool(server *sdkmcp.Server, tool *sdkmcp.Tool, fn func(context.Context, json.RawMessage) (any, error)) {
	server.AddTool(tool, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var args json.RawMessage
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		out, err := fn(ctx, args)
		if err != nil {
			var res sdkmcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}
		data, err := json.Marshal(out)
		if err != nil {
			var res sdkmcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func decodeParams(args json.RawMessage, out any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, out); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
