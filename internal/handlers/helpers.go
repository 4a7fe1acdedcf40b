package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/techfix-admin/internal/middleware"
	"github.com/diewo77/techfix-admin/internal/view"
)

// renderTemplate uses the shared view.Render to ensure layout, partials,
// funcs, and caching.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Flash"]; !exists {
		if msg := middleware.PopFlash(w, r); msg != "" {
			data["Flash"] = msg
		}
	}
	if err := view.Render(w, r, name+".html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte("template error")); werr != nil {
			_ = werr
		}
	}
}

// wantsHTML mirrors the dual-path convention: browsers (and anything not
// explicitly asking for JSON) get HTML.
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || accept == ""
}

// idParam reads a numeric id from query string or form value.
func idParam(r *http.Request, name string) int64 {
	v := r.URL.Query().Get(name)
	if v == "" {
		v = r.FormValue(name)
	}
	id, _ := strconv.ParseInt(v, 10, 64)
	return id
}
