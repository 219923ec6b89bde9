package core

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sync"

	"github.com/tdewolff/minify/v2"
)

// Page is the data every template is executed with.
type Page struct {
	Debug   bool
	Path    string
	Version string
}

// Version is reported to templates as .Version and by the info command.
const Version = "0.1.0"

type Renderer struct {
	config   *Config
	reload   bool
	minifier *minify.M

	mu     sync.RWMutex
	cached *template.Template
}

// NewRenderer builds a renderer over cfg.TemplatesDir. In debug mode
// templates are re-parsed on every render.
func NewRenderer(cfg *Config) *Renderer {
	return &Renderer{
		config:   cfg,
		reload:   cfg.Debug,
		minifier: newMinifier(),
	}
}

// Render executes the named template with data and returns the HTML.
// Nothing is returned on failure, so callers never see a partial page.
func (r *Renderer) Render(name string, data interface{}) ([]byte, error) {
	tmpl, err := r.templates()
	if err != nil {
		return nil, &RenderingError{Template: name, Err: err}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, &RenderingError{Template: name, Err: err}
	}

	if r.reload {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	if err := r.minifier.Minify("text/html", &out, &buf); err != nil {
		return nil, &RenderingError{Template: name, Err: err}
	}
	return out.Bytes(), nil
}

// Invalidate drops the cached template set; the next render re-parses.
func (r *Renderer) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

func (r *Renderer) templates() (*template.Template, error) {
	if r.reload {
		return r.parse()
	}

	r.mu.RLock()
	tmpl := r.cached
	r.mu.RUnlock()
	if tmpl != nil {
		return tmpl, nil
	}

	tmpl, err := r.parse()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cached = tmpl
	r.mu.Unlock()
	return tmpl, nil
}

func (r *Renderer) parse() (*template.Template, error) {
	files, err := TemplateFiles(r.config.TemplatesDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates in %s", r.config.TemplatesDir)
	}

	return template.New(filepath.Base(files[0])).
		Funcs(TemplateFuncs(r.config)).
		ParseFiles(files...)
}

// TemplateFiles lists the .html files directly inside dir.
func TemplateFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	return filepath.Glob(filepath.Join(dir, "*.html"))
}
