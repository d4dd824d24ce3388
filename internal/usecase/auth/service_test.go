package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"careerhub/internal/domain/org"
	"careerhub/internal/domain/user"
	"careerhub/internal/repository"
)

type memAccounts struct {
	byEmail      map[string]user.User
	created      []repository.NewAccount
	takenCompany string
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byEmail: map[string]user.User{}}
}

func (m *memAccounts) CreateAccount(_ context.Context, a repository.NewAccount) (user.User, error) {
	if _, ok := m.byEmail[a.User.Email]; ok {
		return user.User{}, repository.ErrDuplicate
	}
	if a.NewCompany != nil && strings.EqualFold(a.NewCompany.Name, m.takenCompany) {
		return user.User{}, repository.ErrCompanyNameTaken
	}
	u := a.User
	u.ID = uuid.New()
	m.byEmail[u.Email] = u
	m.created = append(m.created, a)
	return u, nil
}

func (m *memAccounts) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (user.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memAccounts) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	for k, u := range m.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			m.byEmail[k] = u
			return nil
		}
	}
	return user.ErrNotFound
}

type memOrgs struct {
	companies    map[uuid.UUID]org.Company
	universities map[uuid.UUID]int
}

func (m memOrgs) GetCompany(_ context.Context, id uuid.UUID) (org.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return org.Company{}, org.ErrCompanyNotFound
	}
	return c, nil
}

func (m memOrgs) FindCompanyByName(_ context.Context, name string) (org.Company, error) {
	for _, c := range m.companies {
		if c.Name == name {
			return c, nil
		}
	}
	return org.Company{}, org.ErrCompanyNotFound
}

func (m memOrgs) GetUniversity(_ context.Context, id uuid.UUID) (org.University, error) {
	if _, ok := m.universities[id]; !ok {
		return org.University{}, org.ErrUniversityNotFound
	}
	return org.University{ID: id}, nil
}

func (m memOrgs) CountUniversityStaff(_ context.Context, id uuid.UUID) (int, error) {
	return m.universities[id], nil
}

func TestRegister_Validation(t *testing.T) {
	svc := NewService(newMemAccounts(), memOrgs{})
	ctx := context.Background()

	cases := []RegisterInput{
		{Email: "no-at-sign", Password: "password1", FullName: "A", Role: "student"},
		{Email: "a@b.com", Password: "short", FullName: "A", Role: "student"},
		{Email: "a@b.com", Password: "password1", FullName: "  ", Role: "student"},
		{Email: "a@b.com", Password: "password1", FullName: "A", Role: "admin"},
		{Email: "a@b.com", Password: "password1", FullName: "A", Role: "university"},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", in)
	}
}

func TestRegister_StudentAndLogin(t *testing.T) {
	accts := newMemAccounts()
	svc := NewService(accts, memOrgs{})
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: "  Ana@Example.com ", Password: "password1", FullName: "Ana", Role: "Student"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, user.RoleStudent, u.Role)
	assert.Empty(t, u.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "password1", FullName: "Ana", Role: "student"})
	assert.ErrorIs(t, err, ErrEmailAlreadyRegistered)

	got, err := svc.Login(ctx, LoginInput{Email: "ANA@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_EmployerCompanyResolution(t *testing.T) {
	existing := org.Company{ID: uuid.New(), Name: "Nimbus Cloud"}
	accts := newMemAccounts()
	svc := NewService(accts, memOrgs{companies: map[uuid.UUID]org.Company{existing.ID: existing}})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "password1", FullName: "A", Role: "employer", CompanyName: "Nimbus Cloud"})
	require.NoError(t, err)
	require.NotNil(t, accts.created[0].JoinOrg)
	assert.Equal(t, existing.ID, accts.created[0].JoinOrg.OrgID)
	assert.False(t, accts.created[0].OrgAdmin)

	_, err = svc.Register(ctx, RegisterInput{Email: "b@x.com", Password: "password1", FullName: "B", Role: "employer", CompanyName: "Fresh Co"})
	require.NoError(t, err)
	require.NotNil(t, accts.created[1].NewCompany)
	assert.Equal(t, "Fresh Co", accts.created[1].NewCompany.Name)
	assert.True(t, accts.created[1].OrgAdmin)

	missing := uuid.New()
	_, err = svc.Register(ctx, RegisterInput{Email: "c@x.com", Password: "password1", FullName: "C", Role: "employer", CompanyID: &missing})
	assert.ErrorIs(t, err, ErrOrgNotFound)
}

func TestRegister_FirstUniversityStaffIsAdmin(t *testing.T) {
	empty, staffed := uuid.New(), uuid.New()
	accts := newMemAccounts()
	svc := NewService(accts, memOrgs{universities: map[uuid.UUID]int{empty: 0, staffed: 3}})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@u.edu", Password: "password1", FullName: "A", Role: "university", UniversityID: &empty})
	require.NoError(t, err)
	assert.True(t, accts.created[0].OrgAdmin)
	assert.Equal(t, &empty, accts.created[0].UniversityID)

	_, err = svc.Register(ctx, RegisterInput{Email: "b@u.edu", Password: "password1", FullName: "B", Role: "university", UniversityID: &staffed})
	require.NoError(t, err)
	assert.Nil(t, accts.created[1].UniversityID)
	require.NotNil(t, accts.created[1].JoinOrg)
	assert.Equal(t, org.KindUniversity, accts.created[1].JoinOrg.Kind)
}

func TestChangePassword(t *testing.T) {
	accts := newMemAccounts()
	hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)
	id := uuid.New()
	accts.byEmail["a@b.com"] = user.User{ID: id, Email: "a@b.com", PasswordHash: string(hash)}
	svc := NewService(accts, memOrgs{})
	ctx := context.Background()

	err = svc.ChangePassword(ctx, ChangePasswordInput{UserID: id, CurrentPassword: "nope", NewPassword: "new-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	err = svc.ChangePassword(ctx, ChangePasswordInput{UserID: id, CurrentPassword: "old-password", NewPassword: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.ChangePassword(ctx, ChangePasswordInput{UserID: id, CurrentPassword: "old-password", NewPassword: "new-password"}))
	_, err = svc.Login(ctx, LoginInput{Email: "a@b.com", Password: "new-password"})
	assert.NoError(t, err)
}

func TestRegister_CompanyCreatedConcurrently(t *testing.T) {
	accts := newMemAccounts()
	accts.takenCompany = "fresh co"
	svc := NewService(accts, memOrgs{})

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@x.com", Password: "password1", FullName: "A", Role: "employer", CompanyName: "Fresh Co"})
	assert.ErrorIs(t, err, ErrCompanyNameTaken)
	assert.NotErrorIs(t, err, ErrEmailAlreadyRegistered)
}
