package services

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeUserStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*models.User
	staff      []*models.Staff
	lastLogins int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) add(u *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

func (f *fakeUserStore) GetByUsername(username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("User not found.")
}

func (f *fakeUserStore) GetByID(id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("User not found.")
}

func (f *fakeUserStore) ExistsByUsername(username string) (bool, error) {
	_, err := f.GetByUsername(username)
	return err == nil, nil
}

func (f *fakeUserStore) ExistsByEmail(email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) UpdateLastLogin(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.users[id].LastLoginAt = &now
	f.lastLogins++
	return nil
}

func (f *fakeUserStore) CreateWithStaff(username, email, passwordHash, staffName string) (*models.User, *models.Staff, error) {
	if taken, _ := f.ExistsByUsername(username); taken {
		return nil, nil, apperrors.Constraint("username", "A user with that username already exists.", nil)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	staff := &models.Staff{
		ID:     uuid.New(),
		Name:   staffName,
		UserID: uuid.NullUUID{UUID: user.ID, Valid: true},
	}
	f.add(user)

	f.mu.Lock()
	f.staff = append(f.staff, staff)
	f.mu.Unlock()
	return user, staff, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.Session
	cutoff   time.Time
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*models.Session)}
}

func (f *fakeSessionStore) Create(session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session.CreatedAt = time.Now()
	session.LastSeenAt = session.CreatedAt
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) GetActiveByID(id uuid.UUID) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok && s.IsActive(time.Now()) {
		return s, nil
	}
	return nil, apperrors.NotFound("Session not found.")
}

func (f *fakeSessionStore) Touch(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		s.LastSeenAt = time.Now()
	}
	return nil
}

func (f *fakeSessionStore) Revoke(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok && s.RevokedAt == nil {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (f *fakeSessionStore) DeleteExpired(cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoff = cutoff
	var deleted int64
	for id, s := range f.sessions {
		if s.ExpiresAt.Before(cutoff) || (s.RevokedAt != nil && s.RevokedAt.Before(cutoff)) {
			delete(f.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeStaffStore mimics the unique user_id constraint
type fakeStaffStore struct {
	mu     sync.Mutex
	byUser map[uuid.UUID]*models.Staff
}

func newFakeStaffStore() *fakeStaffStore {
	return &fakeStaffStore{byUser: make(map[uuid.UUID]*models.Staff)}
}

func (f *fakeStaffStore) GetOrCreateForUser(userID uuid.UUID, name string) (*models.Staff, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byUser[userID]; ok {
		return s, false, nil
	}
	s := &models.Staff{ID: uuid.New(), Name: name, UserID: uuid.NullUUID{UUID: userID, Valid: true}}
	f.byUser[userID] = s
	return s, true, nil
}

type fakePerfumeStore struct {
	mu       sync.Mutex
	perfumes map[uuid.UUID]*models.Perfume
	deleted  []uuid.UUID

	// logs, when set, loses every row of a deleted perfume
	logs *fakeUsageLogStore
}

func newFakePerfumeStore(perfumes ...*models.Perfume) *fakePerfumeStore {
	f := &fakePerfumeStore{perfumes: make(map[uuid.UUID]*models.Perfume)}
	for _, p := range perfumes {
		f.perfumes[p.ID] = p
	}
	return f
}

func (f *fakePerfumeStore) List(order models.PerfumeOrder) ([]models.Perfume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Perfume, 0, len(f.perfumes))
	for _, p := range f.perfumes {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePerfumeStore) GetByID(id uuid.UUID) (*models.Perfume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.perfumes[id]; ok {
		return p, nil
	}
	return nil, apperrors.NotFound("Perfume not found.")
}

func (f *fakePerfumeStore) Create(input models.PerfumeInput) (*models.Perfume, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	p := &models.Perfume{
		ID:         uuid.New(),
		Brand:      input.Brand,
		Name:       input.Name,
		CapacityML: input.CapacityML,
		CreatedAt:  time.Now(),
	}
	f.mu.Lock()
	f.perfumes[p.ID] = p
	f.mu.Unlock()
	return p, nil
}

func (f *fakePerfumeStore) Update(id uuid.UUID, input models.PerfumeInput) (*models.Perfume, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.perfumes[id]
	if !ok {
		return nil, apperrors.NotFound("Perfume not found.")
	}
	p.Brand, p.Name, p.CapacityML = input.Brand, input.Name, input.CapacityML
	return p, nil
}

func (f *fakePerfumeStore) Delete(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.perfumes[id]; !ok {
		return apperrors.NotFound("Perfume not found.")
	}
	delete(f.perfumes, id)
	f.deleted = append(f.deleted, id)
	if f.logs != nil {
		f.logs.dropPerfume(id)
	}
	return nil
}

type fakeUsageLogStore struct {
	mu      sync.Mutex
	logs    []models.UsageLog
	filters []models.UsageLogFilter
}

func (f *fakeUsageLogStore) Create(gender models.Gender, perfumeID, staffID uuid.UUID) (*models.UsageLog, error) {
	if !gender.Valid() {
		return nil, apperrors.Validation("gender", "Please select a valid gender.")
	}
	log := models.UsageLog{ID: uuid.New(), Gender: gender, PerfumeID: perfumeID, StaffID: staffID, UsedAt: time.Now()}
	f.mu.Lock()
	f.logs = append(f.logs, log)
	f.mu.Unlock()
	return &log, nil
}

func (f *fakeUsageLogStore) Query(filter models.UsageLogFilter) ([]models.UsageLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	out := make([]models.UsageLog, 0, len(f.logs))
	for _, log := range f.logs {
		if filter.PerfumeID != nil && log.PerfumeID != *filter.PerfumeID {
			continue
		}
		if filter.Gender != nil && log.Gender != *filter.Gender {
			continue
		}
		out = append(out, log)
	}
	return out, nil
}

func (f *fakeUsageLogStore) dropPerfume(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.logs[:0]
	for _, log := range f.logs {
		if log.PerfumeID != id {
			kept = append(kept, log)
		}
	}
	f.logs = kept
}

type countingObserver struct {
	counts map[models.Gender]int
}

func (o *countingObserver) ObserveUsage(gender models.Gender) {
	if o.counts == nil {
		o.counts = make(map[models.Gender]int)
	}
	o.counts[gender]++
}
