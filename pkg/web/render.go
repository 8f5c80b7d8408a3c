package web

import (
	"bytes"

	"github.com/yuin/goldmark"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// md renders the coach suggestion. Hard wraps keep the "Next three days"
// lines on separate lines, since the model emits plain text with single
// newlines.
var md = goldmark.New(
	goldmark.WithRendererOptions(ghtml.WithHardWraps()),
)

// RenderMarkdown converts markdown (or plain text) to HTML.
func RenderMarkdown(text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
