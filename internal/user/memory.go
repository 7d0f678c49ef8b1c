package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemStore is an in-memory Store for tests and single-node development.
// Its mutex makes RotateRefreshToken a true compare-and-set, matching
// the row-level UPDATE of the Postgres store.
type MemStore struct {
	mu      sync.Mutex
	seq     int
	users   map[string]*User
	failErr error
}

func NewMemStore() *MemStore {
	return &MemStore{users: make(map[string]*User)}
}

// Fail makes every subsequent call return err; nil restores normal
// operation. Used to exercise fail-closed paths.
func (m *MemStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

// Remove drops an account. Test helper; the service itself never deletes.
func (m *MemStore) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// Mutate applies fn to the stored record under the lock. Test helper.
func (m *MemStore) Mutate(id string, fn func(*User)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		fn(u)
	}
}

func (m *MemStore) ByID(ctx context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MemStore) ByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
		if u.Email != nil && email != "" && strings.EqualFold(*u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemStore) ByGithubID(ctx context.Context, githubID string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, u := range m.users {
		if u.GithubID != nil && *u.GithubID == githubID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemStore) Create(ctx context.Context, fields NewUserFields) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Username, fields.Username) {
			return nil, ErrDuplicate
		}
		if u.Email != nil && fields.Email != nil && strings.EqualFold(*u.Email, *fields.Email) {
			return nil, ErrDuplicate
		}
		if u.GithubID != nil && fields.GithubID != nil && *u.GithubID == *fields.GithubID {
			return nil, ErrDuplicate
		}
	}
	m.seq++
	now := time.Now()
	u := &User{
		ID:           fmt.Sprintf("user-%d", m.seq),
		Username:     fields.Username,
		Email:        fields.Email,
		FullName:     fields.FullName,
		AvatarURL:    fields.AvatarURL,
		PasswordHash: fields.PasswordHash,
		GithubID:     fields.GithubID,
		IsPublic:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *MemStore) UpdateProfile(ctx context.Context, id string, fields UpdateFields) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	if fields.Email != nil {
		for otherID, other := range m.users {
			if otherID != id && other.Email != nil && strings.EqualFold(*other.Email, *fields.Email) {
				return nil, ErrDuplicate
			}
		}
		u.Email = fields.Email
	}
	if fields.FullName != nil {
		u.FullName = *fields.FullName
	}
	if fields.Phone != nil {
		u.Phone = *fields.Phone
	}
	if fields.Bio != nil {
		u.Bio = *fields.Bio
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (m *MemStore) SetAvatarURL(ctx context.Context, id string, url *string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.AvatarURL = url
	cp := *u
	return &cp, nil
}

func (m *MemStore) SetPasswordHash(ctx context.Context, id string, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	if u, ok := m.users[id]; ok {
		u.PasswordHash = &hash
	}
	return nil
}

func (m *MemStore) SetVisibility(ctx context.Context, id string, isPublic bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	u.IsPublic = isPublic
	cp := *u
	return &cp, nil
}

func (m *MemStore) SetRefreshToken(ctx context.Context, id string, token *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	if u, ok := m.users[id]; ok {
		u.RefreshToken = token
	}
	return nil
}

func (m *MemStore) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return false, m.failErr
	}
	u, ok := m.users[id]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != oldToken {
		return false, nil
	}
	u.RefreshToken = &newToken
	return true, nil
}

func (m *MemStore) List(ctx context.Context, includePrivate bool) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	var out []*User
	for _, u := range m.users {
		if u.IsPublic || includePrivate {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}
