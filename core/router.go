package core

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

const (
	IndexTemplate = "index.html"
	ReloadPath    = "/__roomcraft_reload"
)

// HandlerFunc produces the body of a matched request.
type HandlerFunc func(req *http.Request) ([]byte, error)

type Route struct {
	Method  string
	Path    string
	Handler HandlerFunc
}

type RuntimeContext struct {
	Env      string
	Renderer *Renderer
}

type Router struct {
	config   *Config
	renderer *Renderer
	routes   []Route
}

// NewRouter builds the route table: a single GET / entry rendering
// index.html. The table is not modified after construction.
var NewRouter = func(config *Config, ctx RuntimeContext) http.Handler {
	renderer := ctx.Renderer
	if renderer == nil {
		renderer = NewRenderer(config)
	}

	r := &Router{config: config, renderer: renderer}
	r.routes = []Route{
		{Method: http.MethodGet, Path: "/", Handler: r.home},
	}
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	route, err := r.match(req.Method, req.URL.Path)
	if err != nil {
		switch {
		case errors.Is(err, ErrMethodNotAllowed):
			w.Header().Set("Allow", route.Method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		case IsNotFoundError(err):
			http.NotFound(w, req)
		default:
			r.serveError(w, err)
		}
		return
	}

	body, err := route.Handler(req)
	if err != nil {
		r.serveError(w, err)
		return
	}

	if r.config.Debug {
		body = injectReloadScript(body)
	}

	etag := generateETag(body)
	w.Header().Set("ETag", etag)
	if r.config.DebugHeaders {
		w.Header().Set("X-Roomcraft-Template", IndexTemplate)
	}

	if etagMatches(req.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// match looks up the route for path. A known path with the wrong method
// returns that route together with ErrMethodNotAllowed.
func (r *Router) match(method, path string) (Route, error) {
	var found *Route
	for i := range r.routes {
		route := &r.routes[i]
		if route.Path != path {
			continue
		}
		if route.Method == method {
			return *route, nil
		}
		found = route
	}

	if found != nil {
		return *found, ErrMethodNotAllowed
	}
	return Route{}, ErrNotFound
}

func (r *Router) home(req *http.Request) ([]byte, error) {
	return r.renderer.Render(IndexTemplate, Page{
		Debug:   r.config.Debug,
		Path:    req.URL.Path,
		Version: Version,
	})
}

func (r *Router) serveError(w http.ResponseWriter, err error) {
	fmt.Fprintln(os.Stderr, "❌", err)

	msg := http.StatusText(http.StatusInternalServerError)
	if r.config.Debug {
		msg = msg + ": " + err.Error()
	}
	http.Error(w, msg, http.StatusInternalServerError)
}

func generateETag(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// etagMatches reports whether an If-None-Match header selects etag, using
// the weak comparison that applies to GET: W/ prefixes are ignored.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	if strings.TrimSpace(header) == "*" {
		return true
	}

	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == want {
			return true
		}
	}
	return false
}

const reloadScript = `<script>(function(){var s=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+"` + ReloadPath + `");s.onmessage=function(e){if(e.data==="` + reloadMessage + `"){location.reload()}}})();</script>`

func injectReloadScript(body []byte) []byte {
	idx := bytes.LastIndex(body, []byte("</body>"))
	if idx == -1 {
		return append(body, reloadScript...)
	}

	out := make([]byte, 0, len(body)+len(reloadScript))
	out = append(out, body[:idx]...)
	out = append(out, reloadScript...)
	out = append(out, body[idx:]...)
	return out
}
