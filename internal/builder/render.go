// internal/builder/render.go
package builder

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"

	"nibl/internal/metadata"
)

var (
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newMDLinkTransformer(), 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	htmlSanitizer = bluemonday.UGCPolicy()

	// Front matter is YAML between "---" lines, decoded with yaml.v3 so key
	// order is kept.
	yamlFrontMatter = frontmatter.NewFormat("---", "---", yaml.Unmarshal)
)

// renderedContent is a content file after front matter extraction and
// Markdown rendering.
type renderedContent struct {
	Front PageMeta
	// Meta holds every front matter key in declaration order.
	Meta *metadata.Meta
	// Heading is the text of the first level-1 heading, if any.
	Heading string
	HTML    string
}

// processContent splits front matter from the body and renders the body.
// isIndex tells the link transformer whether the page is a directory index.
func processContent(rawContent []byte, isIndex bool, opts BuildOptions) (renderedContent, error) {
	out := renderedContent{Meta: metadata.NewMeta()}

	var front yaml.Node
	body, err := frontmatter.Parse(bytes.NewReader(rawContent), &front, yamlFrontMatter)
	if err != nil {
		return out, fmt.Errorf("failed to parse front matter: %w", err)
	}
	if front.Kind != 0 {
		if err := front.Decode(&out.Front); err != nil {
			return out, fmt.Errorf("failed to parse front matter: %w", err)
		}
		if err := front.Decode(out.Meta); err != nil {
			return out, fmt.Errorf("failed to parse front matter: %w", err)
		}
	}

	pc := parser.NewContext()
	pc.Set(pageIsIndexKey, isIndex)
	doc := markdownRenderer.Parser().Parse(text.NewReader(body), parser.WithContext(pc))
	out.Heading = firstHeading(doc, body)

	var htmlBuffer bytes.Buffer
	if err := markdownRenderer.Renderer().Render(&htmlBuffer, body, doc); err != nil {
		return out, fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}

	if !opts.Unsafe {
		out.HTML = string(htmlSanitizer.SanitizeBytes(htmlBuffer.Bytes()))
		return out, nil
	}
	out.HTML = htmlBuffer.String()
	return out, nil
}

// firstHeading returns the plain text of the first level-1 heading.
func firstHeading(doc ast.Node, source []byte) string {
	var title bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level != 1 {
			return ast.WalkContinue, nil
		}
		_ = ast.Walk(heading, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
			if t, ok := c.(*ast.Text); ok && entering {
				title.Write(t.Segment.Value(source))
			}
			return ast.WalkContinue, nil
		})
		return ast.WalkStop, nil
	})
	return title.String()
}
