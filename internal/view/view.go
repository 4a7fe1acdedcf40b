package view

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diewo77/techfix-admin/internal/i18n"
	"github.com/diewo77/techfix-admin/internal/middleware"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
	"github.com/diewo77/techfix-admin/internal/validation"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

func detectBase() {
	candidates := []string{"templates", "../templates", "../../templates", "../../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the shared template func map. Only request-independent
// helpers belong here: parsed templates are cached across requests, so
// anything per-request (user, language, theme) must travel in the data map
// instead.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"year":  func() int { return time.Now().Year() },
		"asset": func(path string) string { return versionedAsset(path) },
		"money": func(v float64) string {
			return "$" + decimal.NewFromFloat(v).StringFixed(2)
		},
		"lineTotal": func(price float64, qty int) string {
			total := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty)))
			return "$" + total.StringFixed(2)
		},
		"status": func(s techfix.RFQStatus) string { return s.String() },
		"qtype":  func(t techfix.QuotationType) string { return t.String() },
		"reason": func(c techfix.ChangeReason) string { return c.String() },
	}
}

// versionedAsset returns /static/<name>?v=<hash> for cache busting.
func versionedAsset(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	p := filepath.Join("static", rel)
	b, err := os.ReadFile(p)
	if err != nil {
		return "/static/" + rel
	}
	h := sha1.Sum(b)
	return "/static/" + rel + "?v=" + fmt.Sprintf("%x", h[:8])
}

// Render parses and executes a single template file with shared funcs.
// name should be the filename (e.g., "products.html"). Pages are wrapped in
// layout.html unless they carry a full document themselves. Per-request
// state is injected into the data map: User, Lang, Theme, Year, and
// pre-translated Error/Errors messages.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	once.Do(detectBase)
	if data == nil {
		data = map[string]any{}
	}
	lang := middleware.LangFrom(r)
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["User"]; !exists {
		data["User"] = session.UserFrom(r.Context())
	}
	data["Lang"] = lang
	data["Theme"] = middleware.ThemeFrom(r)
	translateErrors(data, lang)

	t, err := load(name)
	if err != nil {
		return err
	}
	return t.Execute(w, data)
}

// translateErrors resolves message codes in Error/Errors to the request
// language so cached templates never need a language-bound func.
func translateErrors(data map[string]any, lang string) {
	if code, ok := data["Error"].(string); ok && code != "" {
		data["Error"] = i18n.T(lang, code)
	}
	switch v := data["Errors"].(type) {
	case validation.Violations:
		out := map[string]string{}
		for field, code := range v {
			out[field] = i18n.T(lang, code)
		}
		data["Errors"] = out
	case map[string]string:
		out := map[string]string{}
		for field, code := range v {
			out[field] = i18n.T(lang, code)
		}
		data["Errors"] = out
	}
}

// load returns the parsed template for name, from cache when possible.
// Cached templates carry only the request-independent func map, so one
// parse is safe to execute for every visitor.
func load(name string) (*template.Template, error) {
	devMode := os.Getenv("DEV") == "1"
	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok && t != nil {
			return t, nil
		}
	}

	// Resolve paths locally; baseDir itself is only written once in
	// detectBase so concurrent first renders stay race-free.
	dir := baseDir
	mainPath := filepath.Join(dir, name)
	if _, err := os.Stat(mainPath); err != nil {
		found := false
		for _, c := range []string{"templates", "../templates", "../../templates", "../../../templates"} {
			candidate := filepath.Join(c, name)
			if fi, e2 := os.Stat(candidate); e2 == nil && !fi.IsDir() {
				dir = filepath.Clean(c)
				mainPath = candidate
				found = true
				break
			}
		}
		if !found {
			return nil, err
		}
	}

	var t *template.Template
	layoutPath := filepath.Join(dir, "layout.html")
	partials := []string{filepath.Join(dir, "partials", "header.html")}
	funcMap := Funcs()
	contentBytes, _ := os.ReadFile(mainPath)
	useLayout := !bytes.Contains(bytes.ToLower(contentBytes), []byte("<!doctype"))
	if useLayout {
		if fi, err := os.Stat(layoutPath); err == nil && !fi.IsDir() {
			files := []string{layoutPath, mainPath}
			for _, p := range partials {
				if pf, err2 := os.Stat(p); err2 == nil && !pf.IsDir() {
					files = append(files, p)
				}
			}
			parsed, err := template.New("layout.html").Funcs(funcMap).ParseFiles(files...)
			if err != nil {
				return nil, err
			}
			t = parsed
		} else {
			useLayout = false
		}
	}
	if !useLayout {
		parsed, err := template.New(name).Funcs(funcMap).ParseFiles(mainPath)
		if err != nil {
			return nil, err
		}
		t = parsed
	}
	if t == nil {
		return nil, errors.New("template not parsed")
	}
	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return t, nil
}
