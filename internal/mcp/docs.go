package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `tracespace renders a social-activity snapshot as a field of 3D "organisms".
This server is read-only: it reports what the running viewer shows.

- get_status: refresh health, info panel figures, camera distance.
- list_organisms: every organism of the applied snapshot, optionally by level.
- get_hover: the subcomponent under the pointer, if any.
- recent_refreshes: the refresh journal, newest first.

Levels are subcomponent (single posts), component (aggregates) and entity (the whole).
Only subcomponents respond to hover.`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "tracespace://docs/snapshot-format",
		Name:        "snapshot-format",
		Title:       "Snapshot document format",
		Description: "Shape and constraints of the JSON document the viewer consumes.",
		Content: `# Snapshot document

Top level keys:

- ` + "`subcomponents`" + ` (required array) and ` + "`components`" + ` (required array) of organism records.
- ` + "`entity`" + ` (optional record or null).
- ` + "`stats`" + ` (optional): ` + "`total_organisms`, `total_engagement`, `component_count`" + `.
- ` + "`timestamp`" + ` (required): ISO-8601, zone optional.

Organism record:

- ` + "`size`" + ` > 0, sphere radius.
- ` + "`color`" + ` {r,g,b} each in [0,1].
- ` + "`position`" + ` {x,y,z} finite.
- ` + "`velocity`" + ` >= 0, pulse rate.
- ` + "`text`" + ` optional post text.
- ` + "`metadata`" + `: source, author, engagement, likes, reposts, replies.

A document that violates any of these is rejected and the previous scene stays on screen.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
