// internal/builder/goldmark_extensions.go
package builder

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// pageIsIndexKey carries whether the page being parsed is a directory index.
// Non-index pages are written one directory deeper than their source, so
// relative links from them need an extra "../".
var pageIsIndexKey = parser.NewContextKey()

// mdLinkTransformer rewrites links to Markdown sources into the directory
// URLs the builder writes pages to.
type mdLinkTransformer struct {
}

func newMDLinkTransformer() parser.ASTTransformer {
	return &mdLinkTransformer{}
}

func (t *mdLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	fromIndex, _ := pc.Get(pageIsIndexKey).(bool)
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		link.Destination = []byte(rewriteMarkdownLink(string(link.Destination), fromIndex))
		return ast.WalkContinue, nil
	})
}

// rewriteMarkdownLink maps "guide.md#setup" to "guide/#setup" and
// "sub/index.md" to "sub/", relative to where the linking page is written.
// Anything that is not a local .md link is returned unchanged.
func rewriteMarkdownLink(dest string, fromIndex bool) string {
	if strings.Contains(dest, "://") {
		return dest
	}
	path, fragment, hasFragment := strings.Cut(dest, "#")
	if !strings.HasSuffix(path, ".md") {
		return dest
	}

	stem := strings.TrimSuffix(path, ".md")
	var url string
	switch {
	case stem == "index":
		url = "./"
	case strings.HasSuffix(stem, "/index"):
		url = strings.TrimSuffix(stem, "index")
	default:
		url = stem + "/"
	}

	if !fromIndex && !strings.HasPrefix(url, "/") {
		if url == "./" {
			url = "../"
		} else {
			url = "../" + url
		}
	}
	if hasFragment {
		url += "#" + fragment
	}
	return url
}
