package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"careerhub/internal/domain/user"
	"careerhub/internal/infrastructure/llm"
	"careerhub/internal/repository"
	"careerhub/internal/worker"
)

// The mocks embed the repository interface so tests only spell out the
// methods they exercise; anything else panics.

type mockUsers struct {
	repository.UserRepository

	users     map[uuid.UUID]user.User
	employers map[uuid.UUID]user.EmployerProfile
	staff     map[uuid.UUID]user.StaffProfile
	students  map[uuid.UUID]user.StudentProfile
	skills    map[uuid.UUID][]repository.SkillRef

	// savedSkillIDs records the skill ids of each SaveStudentProfile call.
	savedSkillIDs [][]uuid.UUID
}

func newMockUsers() *mockUsers {
	return &mockUsers{
		users:     map[uuid.UUID]user.User{},
		employers: map[uuid.UUID]user.EmployerProfile{},
		staff:     map[uuid.UUID]user.StaffProfile{},
		students:  map[uuid.UUID]user.StudentProfile{},
		skills:    map[uuid.UUID][]repository.SkillRef{},
	}
}

func (m *mockUsers) addUser(role user.Role) uuid.UUID {
	id := uuid.New()
	m.users[id] = user.User{ID: id, Email: id.String() + "@example.com", Role: role}
	return id
}

// addEmployer creates an employer linked to companyID.
func (m *mockUsers) addEmployer(companyID uuid.UUID, admin bool) uuid.UUID {
	id := m.addUser(user.RoleEmployer)
	m.employers[id] = user.EmployerProfile{UserID: id, CompanyID: &companyID, IsCompanyAdmin: admin}
	return id
}

func (m *mockUsers) addStaff(universityID uuid.UUID, admin bool) uuid.UUID {
	id := m.addUser(user.RoleUniversity)
	m.staff[id] = user.StaffProfile{UserID: id, UniversityID: &universityID, IsUniversityAdmin: admin}
	return id
}

// addStudent creates a student holding the named skills.
func (m *mockUsers) addStudent(skills ...string) uuid.UUID {
	id := m.addUser(user.RoleStudent)
	m.students[id] = user.StudentProfile{UserID: id}
	for _, s := range skills {
		m.skills[id] = append(m.skills[id], repository.SkillRef{ID: uuid.New(), Name: s})
	}
	return id
}

func (m *mockUsers) GetStudentProfile(_ context.Context, id uuid.UUID) (user.StudentProfile, error) {
	p, ok := m.students[id]
	if !ok {
		return user.StudentProfile{}, user.ErrNotFound
	}
	return p, nil
}

func (m *mockUsers) ListStudentSkills(_ context.Context, id uuid.UUID) ([]repository.SkillRef, error) {
	return m.skills[id], nil
}

func (m *mockUsers) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUsers) GetEmployerProfile(_ context.Context, id uuid.UUID) (user.EmployerProfile, error) {
	p, ok := m.employers[id]
	if !ok {
		return user.EmployerProfile{}, user.ErrNotFound
	}
	return p, nil
}

func (m *mockUsers) GetStaffProfile(_ context.Context, id uuid.UUID) (user.StaffProfile, error) {
	p, ok := m.staff[id]
	if !ok {
		return user.StaffProfile{}, user.ErrNotFound
	}
	return p, nil
}

type sentEvent struct {
	UserIDs []uuid.UUID
	Type    string
	Data    any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (r *recordingNotifier) notify(ids []uuid.UUID, typ string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{UserIDs: ids, Type: typ, Data: data})
}

func (r *recordingNotifier) Notifier() Notifier { return r.notify }

func (r *recordingNotifier) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// memCache is an in-memory Cache. Values round-trip through JSON like the
// Redis implementation.
type memCache struct {
	mu        sync.Mutex
	available bool
	data      map[string][]byte
	sets      int
	gets      int
}

func newMemCache() *memCache {
	return &memCache{available: true, data: map[string][]byte{}}
}

func (c *memCache) Available() bool { return c.available }

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if matchPattern(pattern, k) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memCache) Keys(_ context.Context, pattern string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for k := range c.data {
		if matchPattern(pattern, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (c *memCache) SetIfNotExists(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = []byte(value)
	return true, nil
}

func (c *memCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if b, ok := c.data[key]; ok {
		if err := json.Unmarshal(b, &n); err != nil {
			return 0, err
		}
	}
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (c *memCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// inlineTasks runs submitted tasks immediately and records their names.
type inlineTasks struct {
	mu    sync.Mutex
	names []string
	errs  []error
}

func (q *inlineTasks) Submit(ctx context.Context, t worker.Task) error {
	err := t.Run(ctx)
	q.mu.Lock()
	q.names = append(q.names, t.Name)
	q.errs = append(q.errs, err)
	q.mu.Unlock()
	return nil
}

// matchPattern supports the trailing-star patterns the usecases use.
func matchPattern(pattern, key string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(key, prefix)
	}
	return pattern == key
}

// fakeLLM answers GenerateJSON from a per-schema table.
type fakeLLM struct {
	mu      sync.Mutex
	replies map[llm.Schema]string
	err     error
	prompts map[llm.Schema][]string
	vector  []float32
}

func (f *fakeLLM) GenerateJSON(_ context.Context, schema llm.Schema, prompt string, _ ...llm.Attachment) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prompts == nil {
		f.prompts = map[llm.Schema][]string{}
	}
	f.prompts[schema] = append(f.prompts[schema], prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.replies[schema], nil
}

func (f *fakeLLM) ExtractText(context.Context, llm.Attachment) (string, error) {
	return "", llm.ErrDisabled
}

func (f *fakeLLM) Embed(context.Context, string) ([]float32, error) {
	if f.vector == nil {
		return nil, llm.ErrDisabled
	}
	return f.vector, nil
}

func (f *fakeLLM) Model() string { return "fake-model" }
func (f *fakeLLM) Close() error  { return nil }

func (f *fakeLLM) calls(schema llm.Schema) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts[schema])
}
