package http

import (
	"MailTrack-Backend/internal/auth"
	"MailTrack-Backend/internal/repository"
	"MailTrack-Backend/internal/service"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// pixelGIF - константный 1x1 прозрачный GIF, отдаваемый на каждый
// запрос пикселя
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x21,
	0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00,
	0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44,
	0x01, 0x00, 0x3b,
}

// PixelHandler обработчик трекинг-пикселя
type PixelHandler struct {
	storage repository.Storage
	tracker *service.TrackerService
	log     *zap.Logger
}

// NewPixelHandler создает новый обработчик пикселя
func NewPixelHandler(storage repository.Storage, tracker *service.TrackerService, log *zap.Logger) *PixelHandler {
	return &PixelHandler{
		storage: storage,
		tracker: tracker,
		log:     log,
	}
}

// Track отдает пиксель по utm_id:
//   - невалидный utm_id (пустой или вне глобального hit index) - 400
//   - аутентифицированный владелец ссылки - пиксель без записи хита
//   - все остальные - запись хита, затем пиксель
func (h *PixelHandler) Track(w http.ResponseWriter, r *http.Request) {
	utmID := r.URL.Query().Get("utm_id")
	if utmID == "" {
		h.log.Warn("/track - utm id argument is missing")
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	indexed, err := h.storage.HitIndexHas(r.Context(), utmID)
	if err != nil {
		h.log.Error("/track - failed to check hit index", zap.String("utm_id", utmID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !indexed {
		h.log.Warn("/track - user provided an invalid utm id", zap.String("utm_id", utmID))
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	// Владелец, просматривающий собственный пиксель, не считается хитом
	if userID, ok := auth.GetUserIDFromContext(r.Context()); ok {
		_, err := h.storage.GetUserLink(r.Context(), userID, utmID)
		if err == nil {
			h.servePixel(w)
			return
		}
		if !errors.Is(err, repository.ErrLinkNotFound) {
			h.log.Error("/track - failed to check link ownership", zap.String("utm_id", utmID), zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	userAgent := r.Header.Get("User-Agent")
	if userAgent == "" {
		// Запрос без User-Agent отклоняется до любой записи
		h.log.Warn("/track - request without user agent", zap.String("utm_id", utmID))
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	ipAddress := extractIPAddress(r)
	if err := h.tracker.RecordHit(r.Context(), utmID, ipAddress, userAgent); err != nil {
		h.log.Error("/track - failed to record hit", zap.String("utm_id", utmID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.servePixel(w)
}

// servePixel отдает GIF с запретом кеширования, чтобы каждое открытие
// письма доходило до сервера
func (h *PixelHandler) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, max-age=0")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pixelGIF); err != nil {
		h.log.Error("failed to write pixel response", zap.Error(err))
	}
}

// extractIPAddress извлекает IP адрес из запроса с учетом прокси
func extractIPAddress(r *http.Request) string {
	// X-Forwarded-For может содержать список IP через запятую
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	// Fallback к RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
