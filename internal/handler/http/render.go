package http

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// flashCookieName carries one-shot notices between redirects.
const flashCookieName = "mt-flash"

var pageNames = []string{
	"index", "track_list", "tracking_data", "login",
	"401", "404", "503",
}

// Renderer renders the embedded HTML pages. Every page defines a
// "content" block plugged into the shared layout.
type Renderer struct {
	pages map[string]*template.Template
	log   *zap.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(log *zap.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %q: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{
		pages: pages,
		log:   log,
	}, nil
}

// Render writes a page with the given status. Flash messages set on a
// previous response are consumed into the template data.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]interface{}) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.log.Error("unknown template requested", zap.String("page", page))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	if _, ok := data["Flashes"]; !ok {
		data["Flashes"] = rd.popFlashes(w, r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		rd.log.Error("failed to render template", zap.String("page", page), zap.Error(err))
	}
}

// flashSeparator joins multiple messages inside one cookie value.
const flashSeparator = "\n"

// Flash queues a one-shot notice for the next rendered page. Repeated
// calls on the same response accumulate; all messages are rendered
// together.
func (rd *Renderer) Flash(w http.ResponseWriter, message string) {
	messages := append(rd.pendingFlashes(w), message)
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(strings.Join(messages, flashSeparator)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// pendingFlashes reads messages already queued on this response and
// drops their Set-Cookie header so Flash can write the combined value.
func (rd *Renderer) pendingFlashes(w http.ResponseWriter) []string {
	headers := w.Header().Values("Set-Cookie")

	var messages []string
	kept := headers[:0:0]
	for _, header := range headers {
		cookie, err := http.ParseSetCookie(header)
		if err != nil || cookie.Name != flashCookieName {
			kept = append(kept, header)
			continue
		}
		if decoded, err := url.QueryUnescape(cookie.Value); err == nil && decoded != "" {
			messages = strings.Split(decoded, flashSeparator)
		}
	}

	if len(messages) > 0 {
		w.Header().Del("Set-Cookie")
		for _, header := range kept {
			w.Header().Add("Set-Cookie", header)
		}
	}
	return messages
}

// popFlashes reads and clears the flash cookie.
func (rd *Renderer) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	joined, err := url.QueryUnescape(cookie.Value)
	if err != nil || joined == "" {
		return nil
	}
	return strings.Split(joined, flashSeparator)
}
