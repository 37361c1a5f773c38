package usecase

import (
	"context"
	"fmt"
	"sync"

	"auth-service/internal/data/entity"

	"github.com/google/uuid"
)

// In-memory repository substitutes. They copy on read and write so tests
// observe persisted state, not shared pointers.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]entity.User

	failFind bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]entity.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("duplicate email %s", user.Email)
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind {
		return nil, fmt.Errorf("storage down")
	}
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind {
		return nil, fmt.Errorf("storage down")
	}
	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []*entity.User
	for _, u := range r.users {
		user := u
		users = append(users, &user)
	}
	if offset > len(users) {
		offset = len(users)
	}
	users = users[offset:]
	if limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

func (r *fakeUserRepo) CountAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user %s not found", user.ID.String())
	}
	r.users[user.ID] = *user
	return nil
}

type fakeTokenRepo struct {
	mu    sync.Mutex
	pairs map[uuid.UUID]entity.TokenPair
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{pairs: map[uuid.UUID]entity.TokenPair{}}
}

func (r *fakeTokenRepo) Create(ctx context.Context, pair *entity.TokenPair) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs[pair.ID] = *pair
	return nil
}

func (r *fakeTokenRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.TokenPair, error) {
	return r.findOne(func(p entity.TokenPair) bool { return p.UserID == userID })
}

func (r *fakeTokenRepo) FindByAccessToken(ctx context.Context, accessToken string) (*entity.TokenPair, error) {
	return r.findOne(func(p entity.TokenPair) bool { return p.AccessToken == accessToken })
}

func (r *fakeTokenRepo) FindByRefreshToken(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	return r.findOne(func(p entity.TokenPair) bool { return p.RefreshToken == refreshToken })
}

func (r *fakeTokenRepo) findOne(match func(entity.TokenPair) bool) (*entity.TokenPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pairs {
		if match(p) {
			pair := p
			return &pair, nil
		}
	}
	return nil, nil
}

func (r *fakeTokenRepo) UpdateAccessToken(ctx context.Context, id uuid.UUID, accessToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pair, ok := r.pairs[id]
	if !ok {
		return fmt.Errorf("token pair %s not found", id.String())
	}
	pair.AccessToken = accessToken
	r.pairs[id] = pair
	return nil
}

func (r *fakeTokenRepo) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.pairs {
		if p.UserID == userID {
			delete(r.pairs, id)
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.pairs {
		if p.RefreshToken == refreshToken {
			delete(r.pairs, id)
			return nil
		}
	}
	return fmt.Errorf("token pair not found")
}

func (r *fakeTokenRepo) countForUser(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.pairs {
		if p.UserID == userID {
			n++
		}
	}
	return n
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", fmt.Errorf("smtp unreachable")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return "Password reset OTP sent to your email", nil
}
