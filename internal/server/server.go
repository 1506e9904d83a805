// internal/server/server.go
package server

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"nibl/internal/builder"
	"nibl/internal/output"
)

// BuildFunc rebuilds the site.
type BuildFunc func(builder.BuildOptions) error

// Options configures the dev server.
type Options struct {
	Port int
	// OutputDir is the directory served over HTTP.
	OutputDir string
	// WatchPaths are files and directories whose changes trigger a rebuild.
	// Directories are watched recursively, so new .meta.yml and .pages
	// files are picked up as well as content.
	WatchPaths []string
}

const debounceDuration = 500 * time.Millisecond

// Run does a clean build, then serves the output directory with live reload
// and rebuilds whenever a watched path changes.
func Run(opts Options, buildFunc BuildFunc, buildOpts builder.BuildOptions) error {
	buildOpts.CleanDestination = true
	if err := buildFunc(buildOpts); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	hub := newHub()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchPaths(watcher, opts.WatchPaths); err != nil {
		return err
	}

	// Rebuilds keep the output directory but start a fresh metadata index,
	// otherwise every rebuild would append the same pages again.
	buildOpts.CleanDestination = false
	buildOpts.ResetIndex = true
	go watchForChanges(watcher, hub, buildFunc, buildOpts)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})
	mux.Handle("/", liveReloadWrapper(http.FileServer(http.Dir(opts.OutputDir))))

	addr := fmt.Sprintf(":%d", opts.Port)
	output.Info("Serving site", "url", "http://localhost"+addr)
	output.Info("Press Ctrl+C to stop")
	return http.ListenAndServe(addr, mux)
}

// watchPaths adds every directory under the given paths to the watcher.
// Files are watched through their parent directory, which survives editors
// that save by swapping files. Missing paths are skipped.
func watchPaths(watcher *fsnotify.Watcher, paths []string) error {
	watched := make(map[string]bool)
	addWatch := func(dir string) {
		dir = filepath.Clean(dir)
		if watched[dir] {
			return
		}
		if err := watcher.Add(dir); err != nil {
			output.Warn("could not watch directory", "dir", dir, "err", err)
			return
		}
		output.Debug("watching directory", "dir", dir)
		watched[dir] = true
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("could not stat path %s: %w", path, err)
		}
		if !info.IsDir() {
			addWatch(filepath.Dir(path))
			continue
		}
		if err := filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				addWatch(walkPath)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
	}
	return nil
}

// isRebuildEvent reports whether ev should trigger a rebuild.
func isRebuildEvent(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

func watchForChanges(watcher *fsnotify.Watcher, hub *Hub, buildFunc BuildFunc, opts builder.BuildOptions) {
	var lastBuildTime time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isRebuildEvent(event) || time.Since(lastBuildTime) <= debounceDuration {
				continue
			}
			time.Sleep(100 * time.Millisecond)

			output.Info("Change detected, rebuilding", "path", event.Name)
			if err := buildFunc(opts); err != nil {
				output.Error("Error rebuilding site", "err", err)
			} else {
				output.Info("Site rebuilt, reloading clients", "clients", hub.clientCount())
				hub.broadcast(reloadMessage)
			}
			lastBuildTime = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			output.Warn("watcher error", "err", err)
		}
	}
}

// liveReloadWrapper injects the live-reload script before </body> in HTML
// responses and disables caching.
func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		isHTML := strings.HasSuffix(r.URL.Path, ".html") || strings.HasSuffix(r.URL.Path, "/")
		if !isHTML {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter(w)
		next.ServeHTTP(iw, r)

		for key, values := range iw.Header() {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		body := iw.body.Bytes()
		if iw.statusCode != http.StatusOK {
			w.WriteHeader(iw.statusCode)
			w.Write(body)
			return
		}

		injected := bytes.Replace(body, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		w.Header().Set("Content-Length", fmt.Sprint(len(injected)))
		w.WriteHeader(iw.statusCode)
		w.Write(injected)
	})
}

// interceptingWriter buffers a response so it can be rewritten.
type interceptingWriter struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter(w http.ResponseWriter) *interceptingWriter {
	return &interceptingWriter{
		ResponseWriter: w,
		body:           new(bytes.Buffer),
		header:         make(http.Header),
		statusCode:     http.StatusOK,
	}
}

func (iw *interceptingWriter) Header() http.Header {
	return iw.header
}

func (iw *interceptingWriter) Write(b []byte) (int, error) {
	return iw.body.Write(b)
}

func (iw *interceptingWriter) WriteHeader(statusCode int) {
	iw.statusCode = statusCode
}

const liveReloadScript = `
<script>
  (function() {
    let socket = new WebSocket("ws://" + window.location.host + "/ws");
    socket.onmessage = function(event) {
      if (event.data === "reload") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection error. Please restart 'nibl serve'.");
    };
  })();
</script>
`
