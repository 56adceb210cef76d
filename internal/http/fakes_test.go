package http

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mahmoudBH/gestion-etudiant/internal/model"
)

var errStoreDown = errors.New("store down")

// memStore keeps rows in maps and mirrors the pgx error contract of
// repository.Store.
type memStore struct {
	mu           sync.Mutex
	nextID       int64
	users        map[int64]model.User
	notes        []model.Note
	courses      []model.Course
	contacts     []model.Contact
	contactCalls int
	failContacts bool
	failUpdates  bool
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]model.User{}}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateUser(_ context.Context, user model.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return 0, errors.New("duplicate key value violates unique constraint \"users_email_key\"")
		}
	}
	user.ID = m.id()
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return user.ID, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, pgx.ErrNoRows
}

func (m *memStore) GetUserByID(_ context.Context, userID int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return model.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memStore) GetUserClass(ctx context.Context, userID int64) (string, error) {
	u, err := m.GetUserByID(ctx, userID)
	return u.Class, err
}

func (m *memStore) UpdateProfile(_ context.Context, userID int64, update model.ProfileUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	u.FirstName = update.FirstName
	u.LastName = update.LastName
	u.Email = update.Email
	u.PasswordHash = update.PasswordHash
	m.users[userID] = u
	return true, nil
}

func (m *memStore) ChangePassword(_ context.Context, userID int64, verify func(string) error, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	if err := verify(u.PasswordHash); err != nil {
		return err
	}
	u.PasswordHash = newHash
	m.users[userID] = u
	return nil
}

func (m *memStore) UpdateProfilePhoto(_ context.Context, userID int64, photoPath string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdates {
		return false, errStoreDown
	}
	u, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	u.ProfilePhoto = &photoPath
	m.users[userID] = u
	return true, nil
}

func (m *memStore) ListNotesByUser(_ context.Context, userID int64) ([]model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Note{}
	for _, n := range m.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) addNote(userID int64, matiere string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, model.Note{ID: m.id(), UserID: userID, Matiere: matiere, Note: value, Coefficient: 1})
}

func (m *memStore) CreateCourse(_ context.Context, course model.Course) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdates {
		return 0, errStoreDown
	}
	course.ID = m.id()
	course.CreatedAt = time.Now()
	m.courses = append(m.courses, course)
	return course.ID, nil
}

func (m *memStore) ListCoursesByClass(_ context.Context, class string) ([]model.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Course{}
	for _, c := range m.courses {
		if c.Classe == class {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) ListContacts(context.Context) ([]model.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contactCalls++
	if m.failContacts {
		return nil, errStoreDown
	}
	return append([]model.Contact(nil), m.contacts...), nil
}

func (m *memStore) courseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.courses)
}

func (m *memStore) passwordHash(userID int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID].PasswordHash
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemDenylist() *memDenylist {
	return &memDenylist{revoked: map[string]time.Time{}}
}

func (d *memDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = until
	return nil
}

func (d *memDenylist) Revoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[tokenID]
	return ok, nil
}
