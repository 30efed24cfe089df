package mcp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// trafficLoggingMiddleware logs every inspection call at debug level, naming
// the tool or resource it touched.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			start := time.Now()
			result, err := next(ctx, method, req)

			attrs := []any{"direction", direction, "method", method, "session_id", sessionID(req)}
			attrs = append(attrs, target(requestParams(req))...)
			attrs = append(attrs, "duration", time.Since(start))
			switch {
			case err != nil:
				attrs = append(attrs, "error", err)
			case toolFailed(result):
				attrs = append(attrs, "tool_error", true)
			}
			logger.Debug("inspect call", attrs...)

			return result, err
		}
	}
}

// target names what a request addresses: the tool for tools/call, the URI
// for resources/read.
func target(params any) []any {
	switch p := params.(type) {
	case *sdkmcp.CallToolParamsRaw:
		return []any{"tool", p.Name}
	case *sdkmcp.CallToolParams:
		return []any{"tool", p.Name}
	case *sdkmcp.ReadResourceParams:
		return []any{"resource", p.URI}
	default:
		return nil
	}
}

func toolFailed(result sdkmcp.Result) bool {
	res, ok := result.(*sdkmcp.CallToolResult)
	return ok && res != nil && res.IsError
}

func sessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	if session := req.GetSession(); session != nil {
		return session.ID()
	}
	return ""
}

func requestParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}
