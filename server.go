package roomcraft

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/roomcraft/roomcraft/core"
)

type RuntimeConfig struct {
	Env        string
	Host       string
	Port       int
	ConfigPath string
}

var (
	ListenAndServe = core.Serve
	Exit           = os.Exit

	LogOutput io.Writer = os.Stderr
)

type app struct {
	addr     string
	handler  http.Handler
	config   *core.Config
	renderer *core.Renderer
	reloader core.LiveReloaderInterface
}

// Start serves until SIGINT or SIGTERM. Startup failures exit with code 1.
var Start = func(cfg RuntimeConfig) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "❌ Server failed:", err)
		Exit(1)
	}
}

func run(ctx context.Context, cfg RuntimeConfig) error {
	a := buildApp(cfg)

	mode := "prod"
	if a.config.Debug {
		mode = "dev"
	}
	fmt.Println("Starting roomcraft in", mode, "mode...")

	if a.reloader != nil {
		reloader := a.reloader
		renderer := a.renderer
		go func() {
			<-ctx.Done()
			reloader.Close()
		}()

		watcher, err := core.NewWatcher(func(path string) {
			fmt.Println("🔄 Changed:", path)
			renderer.Invalidate()
			reloader.BroadcastReload()
		}, a.config.TemplatesDir, a.config.StaticDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "⚠️  Live reload disabled:", err)
		} else {
			go watcher.Run(ctx)
		}
	}

	fmt.Printf("✅ roomcraft running at http://%s\n", a.addr)
	return ListenAndServe(ctx, a.addr, a.handler)
}

// BuildServer assembles the handler tree for cfg and returns it together
// with the listen address.
func BuildServer(cfg RuntimeConfig) (string, http.Handler) {
	a := buildApp(cfg)
	return a.addr, a.handler
}

func buildApp(cfg RuntimeConfig) *app {
	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = core.DefaultConfigPath
	}
	config := core.LoadConfig(configPath)

	switch cfg.Env {
	case "dev":
		config.Debug = true
	case "prod":
		config.Debug = false
	}
	if cfg.Host != "" {
		config.Host = cfg.Host
	}
	if cfg.Port != 0 {
		config.Port = cfg.Port
	}

	a := &app{
		addr:     net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		config:   config,
		renderer: core.NewRenderer(config),
	}

	mux := http.NewServeMux()

	if config.Debug {
		setupDevStaticRoutes(mux, config.StaticDir)

		a.reloader = core.NewLiveReloader()
		mux.HandleFunc(core.ReloadPath, a.reloader.Handler)
	} else {
		mux.Handle("/static/", readOnly(makeStaticHandler(config.StaticDir, filepath.Join(config.OutputDir, "static"))))
	}

	mux.Handle("/", core.NewRouter(config, core.RuntimeContext{
		Env:      cfg.Env,
		Renderer: a.renderer,
	}))

	a.handler = mux
	if config.Debug || config.DebugLogs {
		a.handler = core.RequestLogger(LogOutput, mux)
	}

	return a
}

// setupDevStaticRoutes serves staticDir uncached. Only regular files are
// served; directories 404 instead of listing their contents.
func setupDevStaticRoutes(mux *http.ServeMux, staticDir string) {
	fileServer := http.FileServer(http.Dir(staticDir))
	mux.Handle("/static/", readOnly(http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if name == "" || strings.HasSuffix(name, "/") {
			http.NotFound(w, r)
			return
		}
		if info, err := os.Stat(filepath.Join(staticDir, filepath.FromSlash(path.Clean("/"+name)))); err == nil && info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		fileServer.ServeHTTP(w, r)
	}))))
}

// readOnly answers anything but GET and HEAD with 405.
func readOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const immutableCache = "public, max-age=31536000, immutable"

// makeStaticHandler serves /static/ in prod: a precompressed build output
// when the client takes gzip, then the plain build output, then the source
// static directory.
func makeStaticHandler(staticDir, buildDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.TrimPrefix(r.URL.Path, "/static/")
		if strings.Contains(trimmed, "..") {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		rel := filepath.FromSlash(trimmed)

		builtFile := filepath.Join(buildDir, rel)
		gzipFile := builtFile + ".gz"

		if acceptsGzip(r) {
			if _, err := os.Stat(gzipFile); err == nil {
				w.Header().Set("Content-Encoding", "gzip")
				w.Header().Set("Vary", "Accept-Encoding")
				serveFileWithHeaders(w, r, gzipFile, immutableCache, detectMimeType(builtFile))
				return
			}
		}

		if info, err := os.Stat(builtFile); err == nil && !info.IsDir() {
			serveFileWithHeaders(w, r, builtFile, immutableCache, "")
			return
		}

		sourceFile := filepath.Join(staticDir, rel)
		if info, err := os.Stat(sourceFile); err == nil && !info.IsDir() {
			serveFileWithHeaders(w, r, sourceFile, immutableCache, "")
			return
		}

		http.NotFound(w, r)
	})
}

func serveFileWithHeaders(w http.ResponseWriter, r *http.Request, path, cacheControl, contentType string) {
	if contentType == "" {
		contentType = detectMimeType(path)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", cacheControl)
	http.ServeFile(w, r, path)
}

func detectMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".html":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}
