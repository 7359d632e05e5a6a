// Package render turns tokenized source text into HTML markup.
package render

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// EngineErrorPrefix starts every reply payload produced from an engine
// failure. Clients tell errors apart from markup by content only; the
// framing is identical.
const EngineErrorPrefix = "Chroma Error: "

// Renderer formats token streams as HTML fragments. One Renderer is
// built per worker and reused for every request it serves; it holds no
// per-request state and is never shared across workers.
type Renderer struct {
	formatter *html.Formatter
	style     *chroma.Style
}

// New creates a Renderer emitting class-annotated spans without a
// surrounding <pre> block, so callers can embed the fragment in their
// own markup.
func New() *Renderer {
	return &Renderer{
		formatter: html.New(
			html.WithClasses(true),
			html.PreventSurroundingPre(true),
		),
		style: styles.Fallback,
	}
}

// Render tokenizes source with lexer and formats the result. Any error
// comes from the highlighting engine; callers are expected to encode it
// into the reply payload rather than escalate it.
func (r *Renderer) Render(lexer chroma.Lexer, source string) (string, error) {
	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", fmt.Errorf("tokenise: %w", err)
	}
	var buf strings.Builder
	if err := r.formatter.Format(&buf, r.style, it); err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	return buf.String(), nil
}

// ErrorPayload converts an engine failure into reply text.
func ErrorPayload(err error) string {
	return EngineErrorPrefix + err.Error()
}
