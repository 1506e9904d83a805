package metadata

import (
	"path/filepath"
)

// Page is what the collector needs to know about a page being built.
type Page struct {
	// SourcePath is the absolute path of the page source.
	SourcePath string
	// URL is the site-relative output URL in trailing-slash form.
	URL   string
	Title string
	// Meta is the page's own front matter. It is never modified.
	Meta *Meta
}

// PageRecord is one entry of the metadata index.
type PageRecord struct {
	Title   string   `json:"title" yaml:"title"`
	URL     string   `json:"url" yaml:"url"`
	Meta    *Meta    `json:"meta" yaml:"meta"`
	Parents []Parent `json:"parents" yaml:"parents"`
}

// Collector accumulates one PageRecord per processed page, in processing
// order. It is not safe for concurrent use.
type Collector struct {
	resolver *Resolver
	records  []PageRecord
}

// NewCollector creates an empty collector backed by r.
func NewCollector(r *Resolver) *Collector {
	return &Collector{resolver: r}
}

// Resolve computes the record for page without recording it. The record's
// Meta is the page front matter merged over the inherited metadata.
func (c *Collector) Resolve(page Page) PageRecord {
	dir := filepath.Dir(page.SourcePath)
	meta := Merge(page.Meta, c.resolver.InheritedMeta(dir))
	return PageRecord{
		Title:   page.Title,
		URL:     page.URL,
		Meta:    meta,
		Parents: c.resolver.Parents(dir),
	}
}

// ProcessPage resolves page, appends its record and returns it.
func (c *Collector) ProcessPage(page Page) PageRecord {
	rec := c.Resolve(page)
	c.records = append(c.records, rec)
	return rec
}

// Records returns the accumulated records in processing order.
func (c *Collector) Records() []PageRecord {
	return c.records
}

// Finalize appends the accumulated records to the index at path.
func (c *Collector) Finalize(path string) error {
	return WriteIndex(c.resolver.fs, path, c.records)
}
