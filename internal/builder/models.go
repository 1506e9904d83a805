// internal/builder/models.go
package builder

import (
	"html/template"

	"nibl/internal/config"
	"nibl/internal/metadata"
)

// PageMeta holds the front matter fields the builder itself acts on. Every
// front matter key, these included, also flows into the page metadata.
type PageMeta struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	Draft       bool   `yaml:"draft"`
	Description string `yaml:"description"`
}

// PageData is the struct passed to templates. Params holds the page front
// matter merged with inherited directory metadata, and Parents the
// breadcrumb from the content root down.
type PageData struct {
	Content     template.HTML
	Title       string
	URL         string
	BaseHref    string
	Author      string
	Description string
	Site        config.SiteConfig
	Params      map[string]interface{}
	Parents     []metadata.Parent
}
