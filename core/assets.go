package core

import (
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minhtml "github.com/tdewolff/minify/v2/html"
	minjs "github.com/tdewolff/minify/v2/js"
)

const staticPrefix = "/static/"

var assetMediaTypes = map[string]string{
	".css": "text/css",
	".js":  "application/javascript",
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	m.AddFunc("application/javascript", minjs.Minify)
	m.AddFunc("text/html", minhtml.Minify)
	return m
}

func contentHash(data []byte) string {
	h := md5.New()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))[:6]
}

// compileAsset minifies src into dst and writes a gzipped copy to dst+".gz".
func compileAsset(m *minify.M, src, dst string) ([]byte, error) {
	mediaType, ok := assetMediaTypes[filepath.Ext(src)]
	if !ok {
		return nil, fmt.Errorf("unsupported asset type: %s", src)
	}

	original, err := os.ReadFile(src)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := m.Minify(mediaType, &buf, bytes.NewReader(original)); err != nil {
		return nil, fmt.Errorf("minify %s: %w", src, err)
	}
	minified := buf.Bytes()

	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return nil, err
	}
	if err := os.WriteFile(dst, minified, 0644); err != nil {
		return nil, err
	}

	f, err := os.Create(dst + ".gz")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if _, err := gz.Write(minified); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}

	return minified, nil
}

// CompileStaticAssets minifies every css and js file under cfg.StaticDir into
// cfg.OutputDir/static, keeping relative paths, and returns how many it wrote.
func CompileStaticAssets(cfg *Config) (int, error) {
	m := newMinifier()
	outDir := filepath.Join(cfg.OutputDir, "static")
	count := 0

	err := filepath.WalkDir(cfg.StaticDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := assetMediaTypes[filepath.Ext(p)]; !ok {
			return nil
		}
		if strings.Contains(filepath.Base(p), ".min.") {
			return nil
		}

		rel, err := filepath.Rel(cfg.StaticDir, p)
		if err != nil {
			return err
		}
		if _, err := compileAsset(m, p, filepath.Join(outDir, rel)); err != nil {
			return err
		}
		count++
		return nil
	})

	return count, err
}

func isBuiltAsset(name string) bool {
	_, ok := assetMediaTypes[filepath.Ext(strings.TrimSuffix(name, ".gz"))]
	return ok
}

// CleanStaticAssets deletes the css, js and .gz files that CompileStaticAssets
// and MinifyAsset write under dir, then removes directories left empty.
// Anything else in dir is kept. It returns how many files were removed.
func CleanStaticAssets(dir string) (int, error) {
	var dirs []string
	removed := 0

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, p)
			return nil
		}
		if !isBuiltAsset(d.Name()) {
			return nil
		}
		if err := os.Remove(p); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, err
	}

	// WalkDir visits parents first, so walking back prunes leaves first.
	for i := len(dirs) - 1; i >= 0; i-- {
		if entries, err := os.ReadDir(dirs[i]); err == nil && len(entries) == 0 {
			_ = os.Remove(dirs[i])
		}
	}

	return removed, nil
}

// minifiedAsset records the source a minified copy was built from.
type minifiedAsset struct {
	modTime time.Time
	size    int64
	url     string
}

// minifiedAssets holds one entry per output file. The lock is held while an
// asset compiles so a file is never rewritten by two requests at once.
var minifiedAssets = struct {
	sync.Mutex
	byDst map[string]minifiedAsset
}{byDst: make(map[string]minifiedAsset)}

// MinifyAsset returns the URL of a minified copy of a /static/ css or js
// asset, writing it to the output directory the first time the source is
// seen. Outside prod the path is returned untouched.
func MinifyAsset(cfg *Config, p string) string {
	if cfg.Debug || !strings.HasPrefix(p, staticPrefix) {
		return p
	}

	ext := filepath.Ext(p)
	name := strings.TrimSuffix(path.Base(p), ext)
	if _, ok := assetMediaTypes[ext]; !ok || strings.Contains(name, ".min") {
		return p
	}

	rel := strings.TrimPrefix(p, staticPrefix)
	src := filepath.Join(cfg.StaticDir, filepath.FromSlash(rel))
	minRel := path.Join(path.Dir(rel), name+".min"+ext)
	dst := filepath.Join(cfg.OutputDir, "static", filepath.FromSlash(minRel))

	info, err := os.Stat(src)
	if err != nil {
		return p
	}

	minifiedAssets.Lock()
	defer minifiedAssets.Unlock()

	if cached, ok := minifiedAssets.byDst[dst]; ok && cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
		if _, err := os.Stat(dst); err == nil {
			return cached.url
		}
	}

	minified, err := compileAsset(newMinifier(), src, dst)
	if err != nil {
		delete(minifiedAssets.byDst, dst)
		return p
	}

	url := fmt.Sprintf("%s%s?v=%s", staticPrefix, minRel, contentHash(minified))
	minifiedAssets.byDst[dst] = minifiedAsset{modTime: info.ModTime(), size: info.Size(), url: url}
	return url
}

// VersionedURL appends a content hash query to a /static/ URL so browsers
// refetch it after a change. Unknown files are returned untouched.
func VersionedURL(cfg *Config, p string) string {
	if !strings.HasPrefix(p, staticPrefix) {
		return p
	}

	rel := filepath.FromSlash(strings.TrimPrefix(p, staticPrefix))
	locations := []string{
		filepath.Join(cfg.StaticDir, rel),
		filepath.Join(cfg.OutputDir, "static", rel),
	}

	for _, file := range locations {
		if content, err := os.ReadFile(file); err == nil {
			return fmt.Sprintf("%s?v=%s", p, contentHash(content))
		}
	}

	return p
}

// StaticURL builds the public URL of a file in the static directory.
// Debug mode skips versioning so the live reloader always fetches fresh files.
func StaticURL(cfg *Config, filename string) string {
	u := staticPrefix + strings.TrimPrefix(filename, "/")
	if cfg.Debug {
		return u
	}
	return VersionedURL(cfg, u)
}

// TemplateFuncs is the function map available to every page template: the
// sprig HTML set plus the asset helpers.
func TemplateFuncs(cfg *Config) template.FuncMap {
	funcs := sprig.HtmlFuncMap()

	ours := template.FuncMap{
		"static": func(filename string) string {
			return StaticURL(cfg, filename)
		},
		"minify": func(p string) string {
			return MinifyAsset(cfg, p)
		},
		"versioned": func(p string) string {
			return VersionedURL(cfg, p)
		},
		"props": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				panic("props must be called with even number of arguments")
			}
			m := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					panic("props keys must be strings")
				}
				m[key] = values[i+1]
			}
			return m
		},
		"safeHTML": func(s interface{}) template.HTML {
			switch val := s.(type) {
			case template.HTML:
				return val
			case string:
				return template.HTML(val)
			default:
				return ""
			}
		},
	}

	for name, fn := range ours {
		funcs[name] = fn
	}
	return funcs
}
