package interact

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rpggio/tracespace/internal/organism"
)

// ExcerptLength is the maximum number of runes of post text in a tooltip.
const ExcerptLength = 100

// Tooltip renders the hover card of an organism, one line per entry.
func Tooltip(o *organism.Organism) []string {
	meta := o.Record.Metadata
	lines := []string{meta.Source}
	if meta.Author != "" {
		lines = append(lines, "@"+meta.Author)
	}
	if o.Record.Text != "" {
		lines = append(lines, Excerpt(o.Record.Text, ExcerptLength))
	}
	if meta.Engagement != nil {
		lines = append(lines, humanize.Comma(*meta.Engagement)+" engagement", strings.Join([]string{
			"♥ " + humanize.Comma(meta.Likes),
			"⟲ " + humanize.Comma(meta.Reposts),
			"✉ " + humanize.Comma(meta.Replies),
		}, "  "))
	}
	return lines
}

// Excerpt truncates text to n runes, marking the cut with an ellipsis.
func Excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return strings.TrimRight(string(r[:n]), " ") + "..."
}

// Tooltip returns the hover card of the current target.
func (c *Controller) Tooltip() ([]string, bool) {
	o, ok := c.Hovered()
	if !ok {
		return nil, false
	}
	return Tooltip(o), true
}
