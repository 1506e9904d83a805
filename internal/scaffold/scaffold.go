// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"nibl/internal/config"
	"nibl/internal/output"
)

// CreateNewSite writes a starter site: config, theme, archetype and a
// content root with directory metadata and navigation declarations.
func CreateNewSite(name string) error {
	output.Info("Scaffolding new site", "dir", name)
	mkdir := func(path string) error { return os.MkdirAll(filepath.Join(name, path), 0755) }
	writeFile := func(path, content string) error {
		return os.WriteFile(filepath.Join(name, path), []byte(content), 0644)
	}
	dirs := []string{"content/guides", "static/css", "static/js", "static/images", "templates/simple", "archetypes"}
	for _, dir := range dirs {
		if err := mkdir(dir); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		"site.yaml":                     siteYamlContent,
		"content/index.md":              contentIndexContent,
		"content/.meta.yml":             contentMetaContent,
		"content/.pages":                contentPagesContent,
		"content/guides/.pages":         guidesPagesContent,
		"content/guides/.meta.yml":      guidesMetaContent,
		"content/guides/first-steps.md": guidesFirstStepsContent,
		"static/css/style.css":          staticCssContent,
		"templates/simple/layout.html":  templateLayoutHtmlContent,
		"templates/simple/header.html":  templateHeaderHtmlContent,
		"templates/simple/footer.html":  templateFooterHtmlContent,
		"archetypes/default.md":         archetypeDefaultMdContent,
	}
	for path, content := range files {
		if err := writeFile(path, content); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}
	output.Hint("Site scaffolded. You can now:", "  cd "+name, "  nibl serve")
	return nil
}

// CreateNewContent renders the default archetype of the site in siteDir
// into content/<type>/<slug>.md.
func CreateNewContent(siteDir, contentType, title, configFile string) error {
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	site, err := config.LoadSiteConfig(filepath.Join(siteDir, configFile))
	if err != nil {
		return err
	}

	path := filepath.Join(siteDir, "content", contentType, slug+".md")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	archetypePath := filepath.Join(siteDir, "archetypes", "default.md")
	tmplBytes, err := os.ReadFile(archetypePath)
	if err != nil {
		return fmt.Errorf("could not read archetype file %s: %w", archetypePath, err)
	}

	tmpl, err := template.New("archetype").Parse(string(tmplBytes))
	if err != nil {
		return fmt.Errorf("failed to parse archetype file %s: %w", archetypePath, err)
	}

	data := struct {
		Title  string
		Author string
	}{
		Title:  title,
		Author: site.Author,
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return fmt.Errorf("failed to execute archetype template: %w", err)
	}

	if err := os.WriteFile(path, rendered.Bytes(), 0644); err != nil {
		return err
	}

	output.Info("Created", "path", path)
	return nil
}

// Constants for default file contents
const siteYamlContent = `title: My Documentation
author: Your Name
baseurl: /
description: Documentation powered by nibl.
template: simple
metadata:
  enabled: true
  meta_file: .meta.yml
  nav_file: .pages
  index_file: techdocs_metadata.json
`

const contentIndexContent = `---
title: Home
---

# Home

Start with the [first steps](guides/first-steps.md).
`

const contentMetaContent = `owner: docs-team
tags:
  - docs
`

const contentPagesContent = `title: Home
`

const guidesPagesContent = `title: Guides
`

const guidesMetaContent = `tags:
  - guide
`

const guidesFirstStepsContent = `---
title: First Steps
tags:
  - getting-started
---

Every page inherits the ` + "`.meta.yml`" + ` files of its directories.
`

const archetypeDefaultMdContent = `---
title: {{.Title}}
author: {{.Author}}
---

Write something meaningful here.
`

const staticCssContent = `body {
  font-family: sans-serif;
  max-width: 760px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.6;
  color: #222;
  background: #fdfdfd;
}
.header-line {
  display: flex;
  justify-content: space-between;
  align-items: baseline;
  gap: 1em;
  margin-bottom: 1em;
  flex-wrap: wrap;
}
.site-name { font-size: 0.9em; color: #777; font-style: italic; }
.page-author { font-size: 0.9em; color: #777; font-style: italic; }
.breadcrumbs { font-size: 0.9em; margin-bottom: 2em; }
.breadcrumbs a { color: #444; text-decoration: none; }
.breadcrumbs a:hover { text-decoration: underline; }
.breadcrumbs .sep { color: #aaa; margin: 0 0.4em; }
.tags { font-size: 0.85em; color: #555; }
main { margin-bottom: 3em; }
footer { text-align: center; font-size: 0.9em; color: #555; }
footer nav a { color: #444; text-decoration: none; margin: 0 0.5em; }
`
const templateLayoutHtmlContent = `{{ define "main" }}
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }} | {{ .Site.Title }}</title>
  <link rel="stylesheet" href="{{ .BaseHref }}css/style.css">
  <meta name="description" content="{{ .Description }}">
</head>
<body>
  {{ template "header" . }}
  <main>
    {{ .Content }}
  </main>
  {{ template "footer" . }}
</body>
</html>
{{ end }}`

const templateHeaderHtmlContent = `{{ define "header" }}
<header>
  <div class="header-line">
    <div class="site-name">{{ .Site.Title }}</div>
    {{ if .Author }}<div class="page-author">{{ .Author }}</div>{{ end }}
  </div>
  {{ if .Parents }}
  <nav class="breadcrumbs">
    {{ range $i, $p := .Parents }}{{ if $i }}<span class="sep">/</span>{{ end }}<a href="{{ $.BaseHref }}{{ $p.URL }}">{{ if $p.Title }}{{ $p.Title }}{{ else }}{{ $.Site.Title }}{{ end }}</a>{{ end }}
  </nav>
  {{ end }}
  {{ with .Params.tags }}<div class="tags">{{ range . }}#{{ . }} {{ end }}</div>{{ end }}
</header>
{{ end }}`

const templateFooterHtmlContent = `{{ define "footer" }}
<footer>
  <nav>
    <a href="{{ .BaseHref }}index.html">home</a>
  </nav>
  <div class="copyright">
    &copy; {{ .Site.Title }}
  </div>
</footer>
{{ end }}`
