// internal/builder/builder.go
package builder

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"

	"nibl/internal/config"
	"nibl/internal/metadata"
	"nibl/internal/output"
	"nibl/internal/util"
)

type BuildOptions struct {
	CleanDestination bool
	// ResetIndex removes a previous metadata index before building, so a
	// rebuild without cleaning does not append the same pages again.
	ResetIndex bool
	Unsafe     bool
	Debug      bool
}

// BuildSite processes content files, renders them into HTML pages, copies
// static assets and, when enabled, appends the page metadata index.
func BuildSite(outputDir, contentDir, staticDir string, site config.SiteConfig, tmpl *template.Template, opts BuildOptions) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, err
	}

	if opts.CleanDestination {
		output.Info("Cleaning destination directory...")
		entries, err := os.ReadDir(outputDir)
		if err != nil {
			return 0, err
		}
		for _, entry := range entries {
			if err := os.RemoveAll(filepath.Join(outputDir, entry.Name())); err != nil {
				return 0, err
			}
		}
	}

	contentRoot, err := filepath.Abs(contentDir)
	if err != nil {
		return 0, err
	}
	indexPath := filepath.Join(outputDir, site.Metadata.IndexFile)

	var collector *metadata.Collector
	if site.Metadata.Enabled {
		collector = newCollector(contentRoot, site.Metadata)
		if opts.ResetIndex {
			if err := os.Remove(indexPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return 0, fmt.Errorf("failed to reset metadata index: %w", err)
			}
		}
	}

	pagesGenerated := 0
	if err := filepath.Walk(contentDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(info.Name())
		if ext != ".html" && ext != ".md" {
			return nil
		}

		contentBytes, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		if !utf8.Valid(contentBytes) {
			return fmt.Errorf("content file is not valid UTF-8: %s", path)
		}

		relPath, err := filepath.Rel(contentDir, path)
		if err != nil {
			return err
		}
		slug := strings.TrimSuffix(relPath, ext)

		content, parseErr := processContent(contentBytes, isIndexSlug(slug), opts)
		if parseErr != nil {
			return fmt.Errorf("failed to process content for %s: %w", path, parseErr)
		}

		if content.Front.Draft && !isExceptionPage(slug) {
			output.Debug("skipping draft", "path", path)
			return nil
		}

		page := metadata.Page{
			SourcePath: filepath.Join(contentRoot, relPath),
			URL:        PageURL(relPath),
			Title:      pageTitle(content, slug),
			Meta:       content.Meta,
		}
		record := metadata.PageRecord{Title: page.Title, URL: page.URL, Meta: page.Meta}
		if collector != nil {
			record = collector.ProcessPage(page)
		}

		outputPath := filepath.Join(outputDir, outputRelPath(relPath))
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return err
		}

		pageData := PageData{
			Content:     template.HTML(content.HTML),
			Title:       record.Title,
			URL:         record.URL,
			BaseHref:    util.ComputeBaseHref(record.URL),
			Author:      record.Meta.String("author"),
			Description: record.Meta.String("description"),
			Site:        site,
			Params:      record.Meta.Map(),
			Parents:     record.Parents,
		}
		if pageData.Author == "" {
			pageData.Author = site.Author
		}
		if pageData.Description == "" {
			pageData.Description = site.Description
		}

		if err := renderPage(tmpl, outputPath, pageData); err != nil {
			return fmt.Errorf("failed to render page %s: %w", path, err)
		}
		pagesGenerated++
		return nil
	}); err != nil {
		return 0, err
	}

	if err := copyStaticAssets(staticDir, outputDir); err != nil {
		return 0, err
	}

	if collector != nil {
		if err := collector.Finalize(indexPath); err != nil {
			output.Warn("Failed to write page metadata index", "path", indexPath, "err", err)
		} else if len(collector.Records()) > 0 {
			output.Debug("wrote page metadata index", "path", indexPath, "pages", len(collector.Records()))
		}
	}
	return pagesGenerated, nil
}

func newCollector(contentRoot string, cfg config.MetadataConfig) *metadata.Collector {
	return metadata.NewCollector(metadata.NewResolver(metadata.Options{
		Fs:          afero.NewOsFs(),
		ContentRoot: contentRoot,
		MetaFile:    cfg.MetaFile,
		NavFile:     cfg.NavFile,
	}))
}

// ResolvePage computes the metadata record for a single content file
// without building the site.
func ResolvePage(contentDir, path string, site config.SiteConfig) (metadata.PageRecord, error) {
	contentRoot, err := filepath.Abs(contentDir)
	if err != nil {
		return metadata.PageRecord{}, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return metadata.PageRecord{}, err
	}
	relPath, err := filepath.Rel(contentRoot, absPath)
	if err != nil {
		return metadata.PageRecord{}, err
	}

	contentBytes, err := os.ReadFile(absPath)
	if err != nil {
		return metadata.PageRecord{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	slug := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	content, err := processContent(contentBytes, isIndexSlug(slug), BuildOptions{})
	if err != nil {
		return metadata.PageRecord{}, fmt.Errorf("failed to process content for %s: %w", path, err)
	}

	collector := newCollector(contentRoot, site.Metadata)
	return collector.Resolve(metadata.Page{
		SourcePath: absPath,
		URL:        PageURL(relPath),
		Title:      pageTitle(content, slug),
		Meta:       content.Meta,
	}), nil
}

// pageTitle prefers the front matter title, then the first level-1
// heading, then the file name.
func pageTitle(content renderedContent, slug string) string {
	if content.Front.Title != "" {
		return content.Front.Title
	}
	if content.Heading != "" {
		return content.Heading
	}
	return filepath.Base(slug)
}

// isIndexSlug reports whether slug (a content path without extension) is a
// directory index page.
func isIndexSlug(slug string) bool {
	return filepath.Base(slug) == "index"
}

// PageURL returns the site-relative directory URL of the content file at
// relPath: "guide.md" is "guide/", "index.md" is "./" and "a/index.md" is
// "a/".
func PageURL(relPath string) string {
	slug := filepath.ToSlash(strings.TrimSuffix(relPath, filepath.Ext(relPath)))
	if isIndexSlug(slug) {
		dir := filepath.ToSlash(filepath.Dir(filepath.FromSlash(slug)))
		if dir == "." {
			return "./"
		}
		return dir + "/"
	}
	return slug + "/"
}

// outputRelPath returns where the page for relPath is written, relative to
// the output directory. Pages other than indexes get their own directory.
func outputRelPath(relPath string) string {
	slug := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	if isIndexSlug(slug) {
		return slug + ".html"
	}
	return filepath.Join(slug, "index.html")
}

// copyStaticAssets copies files from the static directory to the output directory.
func copyStaticAssets(staticDir, outputDir string) error {
	allowedExts := map[string]bool{
		".css": true, ".js": true, ".txt": true, ".svg": true,
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	}
	if _, err := os.Stat(staticDir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.Walk(staticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !allowedExts[filepath.Ext(info.Name())] {
			return nil
		}

		rel, err := filepath.Rel(staticDir, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		dst, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer dst.Close()
		_, err = io.Copy(dst, src)
		return err
	})
}

// isExceptionPage checks for pages that should not be considered drafts.
func isExceptionPage(slug string) bool {
	return slug == "index" || slug == "about" || slug == "menu"
}

// renderPage executes the Go template and writes the output to a file.
func renderPage(tmpl *template.Template, outPath string, data PageData) error {
	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	// "main" is the name of the template defined within our layout file.
	return tmpl.ExecuteTemplate(outFile, "main", data)
}

// LoadTemplates parses the layout and partials of a theme directory.
func LoadTemplates(templateDir, templateName string) (*template.Template, error) {
	path := filepath.Join(templateDir, templateName)
	tmpl, err := template.ParseFiles(
		filepath.Join(path, "layout.html"),
		filepath.Join(path, "header.html"),
		filepath.Join(path, "footer.html"),
	)
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}
