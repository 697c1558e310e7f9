package domain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vovarama1992/dreamcatcher/internal/ports"
)

type memAuthRepo struct {
	mu       sync.Mutex
	users    map[string]*ports.User
	verifies map[string]string
	sessions map[string]ports.Session
}

func newMemAuthRepo() *memAuthRepo {
	return &memAuthRepo{
		users:    map[string]*ports.User{},
		verifies: map[string]string{},
		sessions: map[string]ports.Session{},
	}
}

func (r *memAuthRepo) CreateUser(_ context.Context, email, hash string) (*ports.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return nil, ports.ErrEmailTaken
		}
	}
	u := &ports.User{ID: uuid.NewString(), Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	r.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *memAuthRepo) GetUserByEmail(_ context.Context, email string) (*ports.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ports.ErrUserNotFound
}

func (r *memAuthRepo) GetUserByID(_ context.Context, id string) (*ports.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ports.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memAuthRepo) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	for token, uid := range r.verifies {
		if uid == id {
			delete(r.verifies, token)
		}
	}
	return nil
}

func (r *memAuthRepo) CreateVerification(_ context.Context, token, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifies[token] = userID
	return nil
}

func (r *memAuthRepo) ConsumeVerification(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.verifies[token]
	if !ok {
		return "", ports.ErrTokenNotFound
	}
	delete(r.verifies, token)
	return id, nil
}

func (r *memAuthRepo) MarkVerified(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok && u.VerifiedAt == nil {
		u.VerifiedAt = &at
	}
	return nil
}

func (r *memAuthRepo) CreateSession(_ context.Context, s ports.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.Token] = s
	return nil
}

func (r *memAuthRepo) GetSession(_ context.Context, token string) (*ports.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return &s, nil
}

func (r *memAuthRepo) DeleteSession(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return ports.ErrSessionNotFound
	}
	delete(r.sessions, token)
	return nil
}

type captureMailer struct {
	links map[string]string
	fails int
}

func (m *captureMailer) SendVerification(_ context.Context, email, link string) error {
	if m.fails > 0 {
		m.fails--
		return errors.New("smtp down")
	}
	m.links[email] = link
	return nil
}

type memDreamRepo struct {
	records []ports.DreamRecord
	err     error
}

func (r *memDreamRepo) Create(_ context.Context, d ports.NewDream) (*ports.DreamRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	rec := ports.DreamRecord{
		ID:             int64(len(r.records) + 1),
		CreatedAt:      time.Now(),
		OwnerID:        d.OwnerID,
		AudioURL:       d.AudioURL,
		Transcription:  d.Transcription,
		Interpretation: d.Interpretation,
	}
	r.records = append(r.records, rec)
	return &rec, nil
}

func (r *memDreamRepo) ListByOwner(_ context.Context, ownerID string) ([]ports.DreamRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []ports.DreamRecord
	for _, rec := range r.records {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeS3Client struct {
	objects map[string][]byte
	sizes   map[string]int64
}

func (c *fakeS3Client) PutObject(_ context.Context, key string, r io.Reader, size int64, _ string) (string, error) {
	if c.sizes != nil {
		c.sizes[key] = size
	}
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return "", err
	}
	c.objects[key] = buf.Bytes()
	return c.PublicURL(key), nil
}

func (c *fakeS3Client) PublicURL(key string) string {
	return "https://s3.test/dreams/" + key
}
