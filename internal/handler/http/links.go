package http

import (
	"MailTrack-Backend/internal/auth"
	"MailTrack-Backend/internal/forms"
	"MailTrack-Backend/internal/repository"
	"MailTrack-Backend/internal/service"
	"MailTrack-Backend/internal/tracking"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// LinksHandler обработчик страниц со ссылками: форма генерации,
// сгруппированный список, детали ссылки
type LinksHandler struct {
	storage repository.Storage
	tracker *service.TrackerService
	render  *Renderer
	log     *zap.Logger
	baseURL string
}

// NewLinksHandler создает новый обработчик ссылок
func NewLinksHandler(storage repository.Storage, tracker *service.TrackerService, render *Renderer, log *zap.Logger, baseURL string) *LinksHandler {
	return &LinksHandler{
		storage: storage,
		tracker: tracker,
		render:  render,
		log:     log,
		baseURL: baseURL,
	}
}

// HitView строка таблицы хитов для шаблона
type HitView struct {
	AccessedOn string
	IPAddress  string
	UserAgent  string
	DeviceType string
}

// Index обрабатывает форму генерации ссылки (GET и POST)
func (h *LinksHandler) Index(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodPost {
		h.render.Render(w, r, http.StatusOK, "index", map[string]interface{}{
			"Errors": map[string]string{},
		})
		return
	}

	form := forms.ParseGenerateTrackingLink(r)
	if fieldErrs := form.Validate(); len(fieldErrs) > 0 {
		h.render.Render(w, r, http.StatusOK, "index", map[string]interface{}{
			"Form":   form,
			"Errors": fieldErrs,
		})
		return
	}

	link, err := h.tracker.GenerateLink(r.Context(), userID, form.EmailTitle, form.EmailAddress)
	if err != nil {
		h.log.Error("failed to generate tracking link", zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.render.Flash(w, "Tracking link successfully generated!")
	http.Redirect(w, r, "/tracking-data/"+link.UTMID, http.StatusSeeOther)
}

// TrackList показывает все ссылки пользователя, сгруппированные по
// году и месяцу; без ссылок - редирект на форму генерации
func (h *LinksHandler) TrackList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	links, err := h.storage.ListUserLinks(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to list user links", zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if len(links) == 0 {
		h.log.Warn("/tracklist - no tracking records found", zap.Int64("user_id", userID))
		h.render.Flash(w, "Sorry, no tracking records found! - Let's generate one!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	utmIDs := make([]string, 0, len(links))
	for utmID := range links {
		utmIDs = append(utmIDs, utmID)
	}

	hitsByLink, err := h.storage.MapHitsByLink(r.Context(), utmIDs)
	if err != nil {
		h.log.Error("failed to load hits", zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	overview, err := tracking.BuildTrackingOverview(links, hitsByLink)
	if err != nil {
		h.log.Error("failed to build tracking overview", zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.render.Render(w, r, http.StatusOK, "track_list", map[string]interface{}{
		"Overview": overview,
	})
}

// TrackingData показывает детали одной ссылки и ее хиты
func (h *LinksHandler) TrackingData(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	utmID := strings.TrimPrefix(r.URL.Path, "/tracking-data/")
	if utmID == "" || strings.Contains(utmID, "/") {
		h.redirectInvalidUTM(w, r, utmID)
		return
	}

	link, err := h.storage.GetUserLink(r.Context(), userID, utmID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			h.redirectInvalidUTM(w, r, utmID)
			return
		}
		h.log.Error("failed to get link", zap.String("utm_id", utmID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	hits, err := h.storage.ListHits(r.Context(), utmID)
	if err != nil {
		h.log.Error("failed to list hits", zap.String("utm_id", utmID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	hitViews := make([]HitView, len(hits))
	for i, hit := range hits {
		view := HitView{
			AccessedOn: hit.AccessedOn,
			IPAddress:  hit.IPAddress,
			UserAgent:  hit.UserAgent,
		}
		if hit.DeviceType != nil {
			view.DeviceType = *hit.DeviceType
		}
		hitViews[i] = view
	}

	h.render.Render(w, r, http.StatusOK, "tracking_data", map[string]interface{}{
		"Link":     link,
		"Hits":     hitViews,
		"PixelURL": h.baseURL + "/track?utm_id=" + utmID,
	})
}

func (h *LinksHandler) redirectInvalidUTM(w http.ResponseWriter, r *http.Request, utmID string) {
	h.log.Warn("/tracking-data - user provided an invalid utm id", zap.String("utm_id", utmID))
	h.render.Flash(w, "Sorry, not a valid UTM id!")
	http.Redirect(w, r, "/tracklist", http.StatusSeeOther)
}
