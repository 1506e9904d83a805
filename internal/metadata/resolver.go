package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"nibl/internal/output"
)

// Default declaration file names.
const (
	DefaultMetaFile = ".meta.yml"
	DefaultNavFile  = ".pages"
)

// Parent is one breadcrumb level: a titled ancestor directory of a page.
type Parent struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// navDeclaration is the subset of a navigation file the resolver reads.
type navDeclaration struct {
	Title    string `yaml:"title"`
	Collapse bool   `yaml:"collapse"`
}

// Options configures a Resolver. Empty file names fall back to the defaults.
type Options struct {
	Fs          afero.Fs
	ContentRoot string
	MetaFile    string
	NavFile     string
}

// Resolver reads directory declarations for pages under a content root.
type Resolver struct {
	fs          afero.Fs
	contentRoot string
	metaFile    string
	navFile     string
}

// NewResolver creates a Resolver. A nil Fs means the OS filesystem.
func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		fs:          opts.Fs,
		contentRoot: filepath.Clean(opts.ContentRoot),
		metaFile:    opts.MetaFile,
		navFile:     opts.NavFile,
	}
	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}
	if r.metaFile == "" {
		r.metaFile = DefaultMetaFile
	}
	if r.navFile == "" {
		r.navFile = DefaultNavFile
	}
	return r
}

// ContentRoot returns the cleaned content root.
func (r *Resolver) ContentRoot() string {
	return r.contentRoot
}

// InheritedMeta merges every metadata declaration from dir up to the
// filesystem root. Declarations closer to dir take precedence.
func (r *Resolver) InheritedMeta(dir string) *Meta {
	merged := NewMeta()
	for current := range Ancestors(dir) {
		decl, ok := r.readMeta(filepath.Join(current, r.metaFile))
		if !ok {
			continue
		}
		merged = Merge(merged, decl)
	}
	return merged
}

// Parents returns the breadcrumb for a page whose source lives in dir,
// ordered from the content root down to the nearest ancestor. Only
// directories with a navigation declaration contribute an entry. A
// collapse flag is honored on dir itself and ignored further up.
func (r *Resolver) Parents(dir string) []Parent {
	start := filepath.Clean(dir)
	parents := []Parent{}

	for current := range Ancestors(start) {
		r.appendParent(&parents, current, current == start)
		if current == r.contentRoot {
			break
		}
	}

	slices.Reverse(parents)
	return parents
}

func (r *Resolver) appendParent(parents *[]Parent, dir string, own bool) {
	decl, ok := r.readNav(filepath.Join(dir, r.navFile))
	if !ok {
		return
	}
	if own && decl.Collapse {
		return
	}

	rel, err := filepath.Rel(r.contentRoot, dir)
	if err != nil {
		output.Warn("cannot place directory under content root", "dir", dir, "err", err)
		return
	}

	title := decl.Title
	if title == "" && rel != "." {
		title = filepath.Base(dir)
	}
	url := "./"
	if rel != "." {
		url = filepath.ToSlash(rel) + "/"
	}
	*parents = append(*parents, Parent{Title: title, URL: url})
}

// readMeta loads a metadata declaration. It reports false when the file is
// absent, empty or malformed.
func (r *Resolver) readMeta(path string) (*Meta, bool) {
	node, ok := r.readDeclaration(path)
	if !ok {
		return nil, false
	}
	meta := NewMeta()
	if err := node.Decode(meta); err != nil {
		output.Warn("ignoring malformed metadata declaration", "path", path, "err", err)
		return nil, false
	}
	if meta.Len() == 0 {
		return nil, false
	}
	return meta, true
}

// readNav loads a navigation declaration. It reports false when the file is
// absent, empty or malformed.
func (r *Resolver) readNav(path string) (navDeclaration, bool) {
	node, ok := r.readDeclaration(path)
	if !ok {
		return navDeclaration{}, false
	}
	var keys Meta
	if err := node.Decode(&keys); err != nil {
		output.Warn("ignoring malformed navigation declaration", "path", path, "err", err)
		return navDeclaration{}, false
	}
	if keys.Len() == 0 {
		return navDeclaration{}, false
	}
	var decl navDeclaration
	if err := node.Decode(&decl); err != nil {
		output.Warn("ignoring malformed navigation declaration", "path", path, "err", err)
		return navDeclaration{}, false
	}
	return decl, true
}

func (r *Resolver) readDeclaration(path string) (*yaml.Node, bool) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			output.Debug("skipping unreadable declaration", "path", path, "err", err)
		}
		return nil, false
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		output.Warn("ignoring malformed declaration", "path", path, "err", fmt.Errorf("parse yaml: %w", err))
		return nil, false
	}
	if node.Kind == 0 || (node.Kind == yaml.DocumentNode && len(node.Content) == 0) {
		return nil, false
	}
	return &node, true
}
