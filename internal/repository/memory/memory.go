package memory

import (
	"MailTrack-Backend/internal/domain"
	"MailTrack-Backend/internal/repository"
	"context"
	"sync"
	"time"
)

// MemStorage - in-memory реализация Storage для тестов и разработки
type MemStorage struct {
	mu           sync.RWMutex
	usersByEmail map[string]*domain.User
	usersByID    map[int64]*domain.User
	linksByUTM   map[string]*domain.TrackingLink
	hitIndex     map[string]struct{}
	hitsByUTM    map[string][]*domain.HitEvent
	userCounter  int64
	hitCounter   int64
}

func New() *MemStorage {
	return &MemStorage{
		usersByEmail: make(map[string]*domain.User),
		usersByID:    make(map[int64]*domain.User),
		linksByUTM:   make(map[string]*domain.TrackingLink),
		hitIndex:     make(map[string]struct{}),
		hitsByUTM:    make(map[string][]*domain.HitEvent),
	}
}

// --- User Methods ---

func (s *MemStorage) FindOrCreateUser(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, exists := s.usersByEmail[email]; exists {
		return user, nil
	}

	s.userCounter++
	newUser := &domain.User{
		ID:        s.userCounter,
		Email:     email,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	s.usersByEmail[email] = newUser
	s.usersByID[newUser.ID] = newUser

	return newUser, nil
}

func (s *MemStorage) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *MemStorage) GetUserByID(_ context.Context, userID int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersByID[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *MemStorage) CreateUser(_ context.Context, email string, passwordHash string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, exists := s.usersByEmail[email]; exists {
		return user, nil
	}

	s.userCounter++
	newUser := &domain.User{
		ID:           s.userCounter,
		Email:        email,
		PasswordHash: &passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	s.usersByEmail[email] = newUser
	s.usersByID[newUser.ID] = newUser

	return newUser, nil
}

func (s *MemStorage) UpdateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByID[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	s.usersByID[user.ID] = user
	s.usersByEmail[user.Email] = user
	return nil
}

func (s *MemStorage) RevokeUserSessions(_ context.Context, userID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.usersByID[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.TokensValidAfter = at
	return nil
}

// --- Link Methods ---

func (s *MemStorage) RegisterLink(_ context.Context, link *domain.TrackingLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.linksByUTM[link.UTMID]; exists {
		return repository.ErrUTMIDExists
	}
	// Обе записи под одним мьютексом - атомарность register-операции
	s.linksByUTM[link.UTMID] = link
	s.hitIndex[link.UTMID] = struct{}{}
	return nil
}

func (s *MemStorage) GetUserLink(_ context.Context, userID int64, utmID string) (*domain.TrackingLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.linksByUTM[utmID]
	if !ok || link.UserID != userID {
		return nil, repository.ErrLinkNotFound
	}
	return link, nil
}

func (s *MemStorage) ListUserLinks(_ context.Context, userID int64) (map[string]*domain.TrackingLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userLinks := make(map[string]*domain.TrackingLink)
	for utmID, link := range s.linksByUTM {
		if link.UserID == userID {
			userLinks[utmID] = link
		}
	}
	return userLinks, nil
}

// --- Hit Methods ---

func (s *MemStorage) HitIndexHas(_ context.Context, utmID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hitIndex[utmID]
	return ok, nil
}

func (s *MemStorage) AppendHit(_ context.Context, utmID string, hit *domain.HitEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hitIndex[utmID]; !ok {
		return repository.ErrNotIndexed
	}
	s.hitCounter++
	hit.ID = s.hitCounter
	hit.UTMID = utmID
	s.hitsByUTM[utmID] = append(s.hitsByUTM[utmID], hit)
	return nil
}

func (s *MemStorage) ListHits(_ context.Context, utmID string) ([]*domain.HitEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hits := make([]*domain.HitEvent, len(s.hitsByUTM[utmID]))
	copy(hits, s.hitsByUTM[utmID])
	return hits, nil
}

func (s *MemStorage) MapHitsByLink(_ context.Context, utmIDs []string) (map[string][]*domain.HitEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string][]*domain.HitEvent)
	for _, utmID := range utmIDs {
		if hits, ok := s.hitsByUTM[utmID]; ok && len(hits) > 0 {
			copied := make([]*domain.HitEvent, len(hits))
			copy(copied, hits)
			result[utmID] = copied
		}
	}
	return result, nil
}
