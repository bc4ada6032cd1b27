package http

import (
	"MailTrack-Backend/internal/domain"
	"MailTrack-Backend/internal/repository"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testUTMID = "123e4567-e89b-12d3-a456-426614174000"

func pixelRequest(utmID string) *http.Request {
	target := "/track"
	if utmID != "" {
		target += "?utm_id=" + utmID
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	req.RemoteAddr = "198.51.100.20:44123"
	return req
}

func TestPixel_MissingUTMID(t *testing.T) {
	routes, mockStorage, _, _ := setupTestServer(t)

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, pixelRequest(""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockStorage.AssertNotCalled(t, "AppendHit", mock.Anything, mock.Anything, mock.Anything)
}

func TestPixel_UnknownUTMID(t *testing.T) {
	routes, mockStorage, _, _ := setupTestServer(t)

	mockStorage.On("HitIndexHas", mock.Anything, "unknown-id").Return(false, nil)

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, pixelRequest("unknown-id"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockStorage.AssertNotCalled(t, "AppendHit", mock.Anything, mock.Anything, mock.Anything)
}

func TestPixel_AnonymousHitIsRecorded(t *testing.T) {
	routes, mockStorage, _, _ := setupTestServer(t)

	mockStorage.On("HitIndexHas", mock.Anything, testUTMID).Return(true, nil)
	mockStorage.On("AppendHit", mock.Anything, testUTMID, mock.MatchedBy(func(hit *domain.HitEvent) bool {
		return hit.IPAddress == "198.51.100.20" &&
			hit.UserAgent != "" &&
			hit.AccessedOn != ""
	})).Return(nil)

	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, pixelRequest(testUTMID))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, pixelGIF, rec.Body.Bytes())
	mockStorage.AssertExpectations(t)
}

func TestPixel_ForwardedForTakesPrecedence(t *testing.T) {
	routes, mockStorage, _, _ := setupTestServer(t)

	mockStorage.On("HitIndexHas", mock.Anything, testUTMID).Return(true, nil)
	mockStorage.On("AppendHit", mock.Anything, testUTMID, mock.MatchedBy(func(hit *domain.HitEvent) bool {
		return hit.IPAddress == "203.0.113.9"
	})).Return(nil)

	req := pixelRequest(testUTMID)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockStorage.AssertExpectations(t)
}

func TestPixel_MissingUserAgentRejectedBeforeWrite(t *testing.T) {
	routes, mockStorage, _, _ := setupTestServer(t)

	mockStorage.On("HitIndexHas", mock.Anything, testUTMID).Return(true, nil)

	req := pixelRequest(testUTMID)
	req.Header.Del("User-Agent")
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockStorage.AssertNotCalled(t, "AppendHit", mock.Anything, mock.Anything, mock.Anything)
}

func TestPixel_OwnerSelfViewNotRecorded(t *testing.T) {
	routes, mockStorage, _, sessions := setupTestServer(t)

	mockStorage.On("GetUserByID", mock.Anything, int64(1)).Return(testUser(), nil)
	mockStorage.On("HitIndexHas", mock.Anything, testUTMID).Return(true, nil)
	mockStorage.On("GetUserLink", mock.Anything, int64(1), testUTMID).
		Return(&domain.TrackingLink{UTMID: testUTMID, UserID: 1}, nil)

	req := pixelRequest(testUTMID)
	req.AddCookie(sessionCookie(t, sessions, 1, "owner@example.com"))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pixelGIF, rec.Body.Bytes())
	mockStorage.AssertNotCalled(t, "AppendHit", mock.Anything, mock.Anything, mock.Anything)
}

func TestPixel_AuthenticatedNonOwnerIsRecorded(t *testing.T) {
	routes, mockStorage, _, sessions := setupTestServer(t)

	otherUser := &domain.User{ID: 2, Email: "other@example.com", IsActive: true}
	mockStorage.On("GetUserByID", mock.Anything, int64(2)).Return(otherUser, nil)
	mockStorage.On("HitIndexHas", mock.Anything, testUTMID).Return(true, nil)
	mockStorage.On("GetUserLink", mock.Anything, int64(2), testUTMID).
		Return(nil, repository.ErrLinkNotFound)
	mockStorage.On("AppendHit", mock.Anything, testUTMID, mock.AnythingOfType("*domain.HitEvent")).Return(nil)

	req := pixelRequest(testUTMID)
	req.AddCookie(sessionCookie(t, sessions, 2, "other@example.com"))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockStorage.AssertExpectations(t)
}

func TestPixel_OwnerAfterLogoutIsRecorded(t *testing.T) {
	routes, mockStorage, _, sessions := setupTestServer(t)

	// Cookie issued before the revocation watermark no longer counts as
	// the owner, so the open is recorded like any recipient's.
	revokedOwner := testUser()
	revokedOwner.TokensValidAfter = time.Now().Add(time.Minute)
	mockStorage.On("GetUserByID", mock.Anything, int64(1)).Return(revokedOwner, nil)
	mockStorage.On("HitIndexHas", mock.Anything, testUTMID).Return(true, nil)
	mockStorage.On("AppendHit", mock.Anything, testUTMID, mock.AnythingOfType("*domain.HitEvent")).Return(nil)

	req := pixelRequest(testUTMID)
	req.AddCookie(sessionCookie(t, sessions, 1, "owner@example.com"))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockStorage.AssertNotCalled(t, "GetUserLink", mock.Anything, mock.Anything, mock.Anything)
	mockStorage.AssertExpectations(t)
}
