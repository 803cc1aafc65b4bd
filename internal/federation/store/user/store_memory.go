package user

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"dingauth/internal/federation/models"
	"dingauth/internal/federation/service"
)

// InMemoryStore keeps linked accounts in process, indexed by DingTalk user
// id and union id.
type InMemoryStore struct {
	mu        sync.RWMutex
	byUserID  map[string]*models.LocalUser
	byUnionID map[string]*models.LocalUser
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byUserID:  make(map[string]*models.LocalUser),
		byUnionID: make(map[string]*models.LocalUser),
	}
}

// Save inserts or replaces user. At least one DingTalk identifier is required.
func (s *InMemoryStore) Save(_ context.Context, user *models.LocalUser) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	if user.DingTalkUserID == "" && user.UnionID == "" {
		return fmt.Errorf("user %q has no dingtalk identifier", user.Name)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if user.DingTalkUserID != "" {
		s.byUserID[user.DingTalkUserID] = user
	}
	if user.UnionID != "" {
		s.byUnionID[user.UnionID] = user
	}
	return nil
}

func (s *InMemoryStore) FindByUserID(_ context.Context, userID string) (*models.LocalUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byUserID[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found: %w", service.ErrUserNotFound)
}

func (s *InMemoryStore) FindByUnionID(_ context.Context, unionID string) (*models.LocalUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.byUnionID[unionID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found: %w", service.ErrUserNotFound)
}

func (s *InMemoryStore) LoadUser(ctx context.Context, identity *models.ResolvedIdentity) (models.UserDetails, error) {
	return loadUser(ctx, s, identity)
}

var _ service.UserDetailsService = (*InMemoryStore)(nil)
