// Package richtext normalizes message bodies for previews and rendering.
// Bodies arrive either as editor delta JSON ({"ops":[{"insert":...}]}) or
// as plain markdown; consumers get plain text or sanitized HTML, never raw
// user input.
package richtext

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/chatter-dev/chatter/internal/logger"
)

var (
	policy = bluemonday.UGCPolicy()

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
)

type delta struct {
	Ops []deltaOp `json:"ops"`
}

type deltaOp struct {
	Insert json.RawMessage `json:"insert"`
}

// parseDelta returns the op inserts when body is delta JSON, nil otherwise.
func parseDelta(body string) []deltaOp {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "{") {
		return nil
	}
	var d delta
	if err := json.Unmarshal([]byte(trimmed), &d); err != nil || d.Ops == nil {
		return nil
	}
	return d.Ops
}

// PlainText extracts the readable text of a body: delta string inserts
// concatenated, or the body itself for markdown. Embedded objects (image
// inserts and the like) are skipped.
func PlainText(body string) string {
	ops := parseDelta(body)
	if ops == nil {
		return strings.TrimSpace(body)
	}

	var b strings.Builder
	for _, op := range ops {
		var text string
		if err := json.Unmarshal(op.Insert, &text); err == nil {
			b.WriteString(text)
		}
	}
	return strings.TrimSpace(b.String())
}

// PreviewHTML renders a body to sanitized HTML for previews (thread
// summaries, notifications). Delta bodies render their plain text;
// markdown bodies go through goldmark. Everything passes the UGC policy.
func PreviewHTML(body string) string {
	text := body
	if ops := parseDelta(body); ops != nil {
		text = PlainText(body)
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		logger.Log.Warn("markdown render failed, escaping as text", "error", err)
		return policy.Sanitize(text)
	}
	return policy.Sanitize(buf.String())
}
