package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"careerhub/internal/database"
	"careerhub/internal/domain/org"
	"careerhub/internal/domain/user"
)

// NewAccount is everything written at sign-up, in one transaction.
type NewAccount struct {
	User user.User

	UniversityID *uuid.UUID // student or staff university link
	CompanyID    *uuid.UUID // employer company link
	OrgAdmin     bool

	NewCompany *org.Company
	JoinOrg    *JoinTarget
}

type JoinTarget struct {
	Kind  org.Kind
	OrgID uuid.UUID
}

type UserRepository interface {
	CreateAccount(ctx context.Context, a NewAccount) (user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdateBasic(ctx context.Context, id uuid.UUID, fullName, pictureURL *string) (user.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	Delete(ctx context.Context, id uuid.UUID) error

	GetStudentProfile(ctx context.Context, id uuid.UUID) (user.StudentProfile, error)
	SaveStudentProfile(ctx context.Context, p user.StudentProfile, skillIDs []uuid.UUID) error
	ListStudentSkills(ctx context.Context, id uuid.UUID) ([]SkillRef, error)
	GetEmployerProfile(ctx context.Context, id uuid.UUID) (user.EmployerProfile, error)
	GetStaffProfile(ctx context.Context, id uuid.UUID) (user.StaffProfile, error)
}

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, email, password_hash, full_name, user_type, profile_picture_url, is_verified, created_at, updated_at`

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &role, &u.ProfilePictureURL, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	u.Role = user.Role(role)
	return u, nil
}

func (r *PostgresUserRepository) CreateAccount(ctx context.Context, a NewAccount) (user.User, error) {
	var created user.User
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, full_name, user_type)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+userColumns,
			a.User.Email, a.User.PasswordHash, a.User.FullName, string(a.User.Role),
		))
		if err != nil {
			return mapWriteErr(err)
		}
		created = u

		switch u.Role {
		case user.RoleStudent:
			_, err = tx.Exec(ctx, `INSERT INTO student_profiles (user_id, university_id) VALUES ($1, $2)`, u.ID, a.UniversityID)
		case user.RoleEmployer:
			companyID := a.CompanyID
			if a.NewCompany != nil {
				var id uuid.UUID
				err = tx.QueryRow(ctx,
					`INSERT INTO companies (name, industry, website, location) VALUES ($1, $2, $3, $4) RETURNING id`,
					a.NewCompany.Name, nullableText(a.NewCompany.Industry), nullableText(a.NewCompany.Website), nullableText(a.NewCompany.Location),
				).Scan(&id)
				if err != nil {
					if database.IsUniqueViolation(err) {
						return ErrCompanyNameTaken
					}
					return err
				}
				companyID = &id
			}
			_, err = tx.Exec(ctx,
				`INSERT INTO employer_profiles (user_id, company_id, is_company_admin) VALUES ($1, $2, $3)`,
				u.ID, companyID, a.OrgAdmin,
			)
		case user.RoleUniversity:
			_, err = tx.Exec(ctx,
				`INSERT INTO university_staff_profiles (user_id, university_id, is_university_admin) VALUES ($1, $2, $3)`,
				u.ID, a.UniversityID, a.OrgAdmin,
			)
		}
		if err != nil {
			return err
		}

		if a.JoinOrg != nil {
			_, err = tx.Exec(ctx,
				`INSERT INTO join_requests (user_id, org_kind, org_id) VALUES ($1, $2, $3)`,
				u.ID, string(a.JoinOrg.Kind), a.JoinOrg.OrgID,
			)
			if err != nil {
				return mapWriteErr(err)
			}
		}
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return created, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email))))
}

func (r *PostgresUserRepository) UpdateBasic(ctx context.Context, id uuid.UUID, fullName, pictureURL *string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`UPDATE users SET
			full_name = COALESCE($2, full_name),
			profile_picture_url = COALESCE($3, profile_picture_url),
			updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, fullName, pictureURL,
	))
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	n, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) GetStudentProfile(ctx context.Context, id uuid.UUID) (user.StudentProfile, error) {
	p := user.StudentProfile{UserID: id}
	var gpa *float64
	err := r.db.QueryRow(ctx,
		`SELECT sp.university_id, COALESCE(u.name, ''), COALESCE(sp.major, ''), sp.graduation_year,
			sp.gpa::float8, COALESCE(sp.bio, ''), sp.interests, sp.career_preferences, sp.updated_at
		 FROM student_profiles sp
		 LEFT JOIN universities u ON u.id = sp.university_id
		 WHERE sp.user_id = $1`,
		id,
	).Scan(&p.UniversityID, &p.UniversityName, &p.Major, &p.GraduationYear, &gpa, &p.Bio, &p.Interests, &p.CareerPreferences, &p.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return user.StudentProfile{}, user.ErrNotFound
		}
		return user.StudentProfile{}, err
	}
	p.GPA = gpa

	skills, err := r.ListStudentSkills(ctx, id)
	if err != nil {
		return user.StudentProfile{}, err
	}
	p.Skills = make([]string, 0, len(skills))
	for _, s := range skills {
		p.Skills = append(p.Skills, s.Name)
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	return p, nil
}

// SaveStudentProfile upserts the profile and, when skillIDs is non-nil,
// replaces the student's skills.
func (r *PostgresUserRepository) SaveStudentProfile(ctx context.Context, p user.StudentProfile, skillIDs []uuid.UUID) error {
	if p.Interests == nil {
		p.Interests = []string{}
	}
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO student_profiles (user_id, university_id, major, graduation_year, gpa, bio, interests, career_preferences)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (user_id) DO UPDATE SET
				university_id = EXCLUDED.university_id,
				major = EXCLUDED.major,
				graduation_year = EXCLUDED.graduation_year,
				gpa = EXCLUDED.gpa,
				bio = EXCLUDED.bio,
				interests = EXCLUDED.interests,
				career_preferences = EXCLUDED.career_preferences,
				updated_at = now()`,
			p.UserID, p.UniversityID, nullableText(p.Major), p.GraduationYear, p.GPA, nullableText(p.Bio), p.Interests, p.CareerPreferences,
		)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: university", org.ErrUniversityNotFound)
			}
			return err
		}
		if skillIDs == nil {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM student_skills WHERE user_id = $1`, p.UserID); err != nil {
			return err
		}
		if len(skillIDs) == 0 {
			return nil
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO student_skills (user_id, skill_id)
			 SELECT $1, unnest($2::uuid[])
			 ON CONFLICT DO NOTHING`,
			p.UserID, skillIDs,
		)
		return err
	})
}

func (r *PostgresUserRepository) ListStudentSkills(ctx context.Context, id uuid.UUID) ([]SkillRef, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.name, COALESCE(s.category, '')
		 FROM student_skills ss
		 JOIN skills s ON s.id = ss.skill_id
		 WHERE ss.user_id = $1
		 ORDER BY s.name ASC`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SkillRef, 0)
	for rows.Next() {
		var s SkillRef
		if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresUserRepository) GetEmployerProfile(ctx context.Context, id uuid.UUID) (user.EmployerProfile, error) {
	p := user.EmployerProfile{UserID: id}
	err := r.db.QueryRow(ctx,
		`SELECT company_id, COALESCE(role_title, ''), is_company_admin FROM employer_profiles WHERE user_id = $1`,
		id,
	).Scan(&p.CompanyID, &p.RoleTitle, &p.IsCompanyAdmin)
	if err != nil {
		if database.IsNoRows(err) {
			return user.EmployerProfile{}, user.ErrNotFound
		}
		return user.EmployerProfile{}, err
	}
	return p, nil
}

func (r *PostgresUserRepository) GetStaffProfile(ctx context.Context, id uuid.UUID) (user.StaffProfile, error) {
	p := user.StaffProfile{UserID: id}
	err := r.db.QueryRow(ctx,
		`SELECT university_id, COALESCE(role_title, ''), is_university_admin FROM university_staff_profiles WHERE user_id = $1`,
		id,
	).Scan(&p.UniversityID, &p.RoleTitle, &p.IsUniversityAdmin)
	if err != nil {
		if database.IsNoRows(err) {
			return user.StaffProfile{}, user.ErrNotFound
		}
		return user.StaffProfile{}, err
	}
	return p, nil
}
