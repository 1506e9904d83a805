package metadata

import (
	"encoding/json"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docsDir = "/site/docs"

// newTestResolver returns a resolver over an in-memory filesystem seeded
// with files, keyed by path relative to docsDir.
func newTestResolver(t *testing.T, files map[string]string) (*Resolver, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(docsDir, 0755))
	for name, content := range files {
		path := filepath.Join(docsDir, name)
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0644))
	}
	return NewResolver(Options{Fs: fsys, ContentRoot: docsDir}), fsys
}

func metaJSON(t *testing.T, m *Meta) string {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return string(data)
}

func TestAncestors(t *testing.T) {
	got := slices.Collect(Ancestors("/site/docs/a/"))
	assert.Equal(t, []string{"/site/docs/a", "/site/docs", "/site", "/"}, got)

	got = slices.Collect(Ancestors("a/b"))
	assert.Equal(t, []string{"a/b", "a", "."}, got)

	got = slices.Collect(Ancestors("/"))
	assert.Equal(t, []string{"/"}, got)
}

func TestAncestors_StopsEarly(t *testing.T) {
	var seen []string
	for dir := range Ancestors("/a/b/c") {
		seen = append(seen, dir)
		if dir == "/a/b" {
			break
		}
	}
	assert.Equal(t, []string{"/a/b/c", "/a/b"}, seen)
}

func TestInheritedMeta_CloserWins(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{
		".meta.yml":         "owner: root\ntags: [root]\nlevel: 0\n",
		"a/.meta.yml":       "owner: a\ntags: [a1, a2]\n",
		"a/b/.meta.yml":     "tags: [b]\nlevel: 2\n",
		"a/b/c/placeholder": "",
	})

	got := r.InheritedMeta(filepath.Join(docsDir, "a/b/c"))

	assert.JSONEq(t, `{"tags":["b","a1","a2","root"],"level":2,"owner":"a"}`, metaJSON(t, got))
}

func TestInheritedMeta_WalksPastContentRoot(t *testing.T) {
	r, fsys := newTestResolver(t, map[string]string{
		"guide/.meta.yml": "tags: [guide]\n",
	})
	require.NoError(t, afero.WriteFile(fsys, "/site/.meta.yml", []byte("site: outer\ntags: [outer]\n"), 0644))

	got := r.InheritedMeta(filepath.Join(docsDir, "guide"))

	assert.JSONEq(t, `{"tags":["guide","outer"],"site":"outer"}`, metaJSON(t, got))
}

func TestInheritedMeta_SkipsEmptyAndMalformed(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{
		".meta.yml":       "kept: yes-root\n",
		"a/.meta.yml":     "",
		"a/b/.meta.yml":   "- not\n- a mapping\n",
		"a/b/c/.meta.yml": "key: [unclosed\n",
	})

	got := r.InheritedMeta(filepath.Join(docsDir, "a/b/c"))

	assert.JSONEq(t, `{"kept":"yes-root"}`, metaJSON(t, got))
}

func TestInheritedMeta_NoDeclarations(t *testing.T) {
	r, _ := newTestResolver(t, nil)
	assert.Equal(t, 0, r.InheritedMeta(docsDir).Len())
}

func TestInheritedMeta_CustomFileName(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, docsDir+"/_dir.yaml", []byte("k: v\n"), 0644))
	require.NoError(t, afero.WriteFile(fsys, docsDir+"/.meta.yml", []byte("ignored: true\n"), 0644))
	r := NewResolver(Options{Fs: fsys, ContentRoot: docsDir, MetaFile: "_dir.yaml"})

	assert.JSONEq(t, `{"k":"v"}`, metaJSON(t, r.InheritedMeta(docsDir)))
}

func TestParents_RootFirst(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{
		".pages":           "title: Home\n",
		"xyzzy/.pages":     "title: Xyzzy\n",
		"xyzzy/fox/.pages": "title: Fox\n",
	})

	got := r.Parents(filepath.Join(docsDir, "xyzzy/fox"))

	assert.Equal(t, []Parent{
		{Title: "Home", URL: "./"},
		{Title: "Xyzzy", URL: "xyzzy/"},
		{Title: "Fox", URL: "xyzzy/fox/"},
	}, got)
}

func TestParents_DerivesTitles(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{
		".pages":              "nav:\n  - index.md\n",
		"guides/.pages":       "collapse: false\n",
		"guides/setup/.pages": "title: Setting Up\n",
	})

	got := r.Parents(filepath.Join(docsDir, "guides/setup"))

	assert.Equal(t, []Parent{
		{Title: "", URL: "./"},
		{Title: "guides", URL: "guides/"},
		{Title: "Setting Up", URL: "guides/setup/"},
	}, got)
}

func TestParents_GapsDoNotStopWalk(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{
		".pages":       "title: Home\n",
		"a/b/c/.pages": "title: C\n",
	})

	got := r.Parents(filepath.Join(docsDir, "a/b/c"))

	assert.Equal(t, []Parent{
		{Title: "Home", URL: "./"},
		{Title: "C", URL: "a/b/c/"},
	}, got)
}

func TestParents_CollapseOnOwnDirectory(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{
		".pages":     "title: Home\n",
		"a/.pages":   "title: A\n",
		"a/b/.pages": "title: B\ncollapse: true\n",
	})

	got := r.Parents(filepath.Join(docsDir, "a/b"))

	assert.Equal(t, []Parent{
		{Title: "Home", URL: "./"},
		{Title: "A", URL: "a/"},
	}, got)
}

func TestParents_CollapseIgnoredOnAncestor(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{
		"a/.pages":   "title: A\ncollapse: true\n",
		"a/b/.pages": "title: B\n",
	})

	got := r.Parents(filepath.Join(docsDir, "a/b"))

	assert.Equal(t, []Parent{
		{Title: "A", URL: "a/"},
		{Title: "B", URL: "a/b/"},
	}, got)
}

func TestParents_CollapsedContentRootStopsWalk(t *testing.T) {
	r, fsys := newTestResolver(t, map[string]string{
		".pages": "collapse: true\n",
	})
	require.NoError(t, afero.WriteFile(fsys, "/site/.pages", []byte("title: Outside\n"), 0644))

	assert.Empty(t, r.Parents(docsDir))
}

func TestParents_StopsAtContentRoot(t *testing.T) {
	r, fsys := newTestResolver(t, map[string]string{
		".pages": "title: Home\n",
	})
	require.NoError(t, afero.WriteFile(fsys, "/site/.pages", []byte("title: Outside\n"), 0644))

	got := r.Parents(docsDir)

	assert.Equal(t, []Parent{{Title: "Home", URL: "./"}}, got)
}

func TestParents_OutsideContentRootReachesFilesystemRoot(t *testing.T) {
	r, fsys := newTestResolver(t, nil)
	require.NoError(t, afero.WriteFile(fsys, "/other/.pages", []byte("title: Other\n"), 0644))

	got := r.Parents("/other/dir")

	assert.Equal(t, []Parent{{Title: "Other", URL: "../../other/"}}, got)
}

func TestParents_SkipsEmptyAndMalformed(t *testing.T) {
	r, _ := newTestResolver(t, map[string]string{
		".pages":     "",
		"a/.pages":   "collapse: maybe\n",
		"a/b/.pages": "title: B\n",
	})

	got := r.Parents(filepath.Join(docsDir, "a/b"))

	assert.Equal(t, []Parent{{Title: "B", URL: "a/b/"}}, got)
}

func TestParents_NoDeclarations(t *testing.T) {
	r, _ := newTestResolver(t, nil)

	got := r.Parents(filepath.Join(docsDir, "a"))

	require.NotNil(t, got)
	assert.Empty(t, got)
}
