// Package testutil provides in-memory collaborators for tests.
package testutil

import (
	"context"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"natours/internal/mail"
	"natours/internal/model"
	"natours/internal/repository"
)

// UserStore is an in-memory repository.UserRepository that mirrors the
// gorm-backed one: validating writes run model validation, relaxed writes do not.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

var _ repository.UserRepository = (*UserStore)(nil)

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*model.User)}
}

func cloneUser(u *model.User) *model.User {
	c := *u
	if u.PasswordChangedAt != nil {
		t := *u.PasswordChangedAt
		c.PasswordChangedAt = &t
	}
	if u.PasswordResetToken != nil {
		s := *u.PasswordResetToken
		c.PasswordResetToken = &s
	}
	if u.PasswordResetExpires != nil {
		t := *u.PasswordResetExpires
		c.PasswordResetExpires = &t
	}
	return &c
}

// Put stores a copy of user without validation.
func (s *UserStore) Put(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = cloneUser(user)
}

// Get returns a copy of the stored user, or nil.
func (s *UserStore) Get(id uuid.UUID) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return cloneUser(u)
}

func (s *UserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if err := user.Validate(); err != nil {
		return err
	}
	for _, u := range s.users {
		if u.Email == user.Email || u.ID == user.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *UserStore) Save(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := user.Validate(); err != nil {
		return err
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneUser(u), nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *UserStore) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.HasPendingReset() && *u.PasswordResetToken == tokenHash && u.PasswordResetExpires.After(now) {
			return cloneUser(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *UserStore) SetPasswordReset(_ context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.SetPasswordReset(tokenHash, expires)
	}
	return nil
}

func (s *UserStore) ClearPasswordReset(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.ClearPasswordReset()
	}
	return nil
}

func (s *UserStore) ConsumeResetToken(_ context.Context, id uuid.UUID, tokenHash string, now time.Time, passwordHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || !u.HasPendingReset() || *u.PasswordResetToken != tokenHash || !u.PasswordResetExpires.After(now) {
		return false, nil
	}
	u.SetPassword(passwordHash, now)
	return true, nil
}

func (s *UserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *cloneUser(u))
	}
	slices.SortFunc(users, func(a, b model.User) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return users, nil
}

func (s *UserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.users, id)
	return nil
}

// TourStore is an in-memory repository.TourRepository.
type TourStore struct {
	mu    sync.Mutex
	tours map[uuid.UUID]model.Tour
}

var _ repository.TourRepository = (*TourStore)(nil)

// NewTourStore returns an empty store.
func NewTourStore() *TourStore {
	return &TourStore{tours: make(map[uuid.UUID]model.Tour)}
}

func (s *TourStore) insert(tour *model.Tour) error {
	if tour.ID == uuid.Nil {
		tour.ID = uuid.New()
	}
	for _, t := range s.tours {
		if t.Name == tour.Name || t.ID == tour.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	now := time.Now()
	tour.CreatedAt, tour.UpdatedAt = now, now
	s.tours[tour.ID] = *tour
	return nil
}

func (s *TourStore) Create(_ context.Context, tour *model.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(tour)
}

func (s *TourStore) CreateBatch(_ context.Context, tours []model.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range tours {
		if err := s.insert(&tours[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *TourStore) Update(_ context.Context, tour *model.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tours[tour.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	tour.UpdatedAt = time.Now()
	s.tours[tour.ID] = *tour
	return nil
}

func (s *TourStore) FindByID(_ context.Context, id uuid.UUID) (*model.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tours[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (s *TourStore) List(_ context.Context, limit, offset int) ([]model.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tours := make([]model.Tour, 0, len(s.tours))
	for _, t := range s.tours {
		tours = append(tours, t)
	}
	slices.SortFunc(tours, func(a, b model.Tour) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if offset >= len(tours) {
		return []model.Tour{}, nil
	}
	end := min(offset+limit, len(tours))
	return tours[offset:end], nil
}

func (s *TourStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tours[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.tours, id)
	return nil
}

func (s *TourStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.tours))
	s.tours = make(map[uuid.UUID]model.Tour)
	return n, nil
}

// Outbox is a mail.Sender that records messages. When Err is set every send
// fails with it; the attempt is still recorded.
type Outbox struct {
	mu       sync.Mutex
	Err      error
	attempts []mail.Message
	messages []mail.Message
}

var _ mail.Sender = (*Outbox)(nil)

func (o *Outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts = append(o.attempts, msg)
	if o.Err != nil {
		return o.Err
	}
	o.messages = append(o.messages, msg)
	return nil
}

// Messages returns the delivered messages.
func (o *Outbox) Messages() []mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.messages)
}

// Attempts returns every message passed to Send, delivered or not.
func (o *Outbox) Attempts() []mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.attempts)
}

// Last returns the most recent delivered message.
func (o *Outbox) Last() (mail.Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.messages) == 0 {
		return mail.Message{}, false
	}
	return o.messages[len(o.messages)-1], true
}

var resetLink = regexp.MustCompile(`resetPassword/([0-9a-f]+)`)

// ResetTokenFrom extracts the raw reset token from a reset email body.
func ResetTokenFrom(msg mail.Message) string {
	m := resetLink.FindStringSubmatch(msg.Body)
	if m == nil {
		return ""
	}
	return m[1]
}
