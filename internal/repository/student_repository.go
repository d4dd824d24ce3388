package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"careerhub/internal/database"
)

// StudentSummary is a student row in university listings and the resume bank.
type StudentSummary struct {
	UserID          uuid.UUID  `json:"user_id"`
	FullName        string     `json:"full_name"`
	Email           string     `json:"email"`
	UniversityID    *uuid.UUID `json:"university_id"`
	UniversityName  string     `json:"university_name"`
	Major           string     `json:"major"`
	GraduationYear  *int       `json:"graduation_year"`
	Skills          []string   `json:"skills"`
	PrimaryResumeID *uuid.UUID `json:"primary_resume_id"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type StudentFilter struct {
	Search       string
	UniversityID *uuid.UUID
	Major        string
	Skill        string
	// WithParsedResume limits results to students whose primary resume parsed.
	WithParsedResume bool
	Page
}

type StudentRepository interface {
	List(ctx context.Context, f StudentFilter) ([]StudentSummary, int, error)
}

type PostgresStudentRepository struct {
	db database.DB
}

func NewPostgresStudentRepository(db database.DB) *PostgresStudentRepository {
	return &PostgresStudentRepository{db: db}
}

const studentFrom = ` FROM student_profiles sp
	JOIN users u ON u.id = sp.user_id
	LEFT JOIN universities un ON un.id = sp.university_id
	LEFT JOIN resumes r ON r.student_id = sp.user_id AND r.is_primary`

func (s *PostgresStudentRepository) List(ctx context.Context, f StudentFilter) ([]StudentSummary, int, error) {
	p := f.Page.normalized(100)

	var w where
	if q := strings.TrimSpace(f.Search); q != "" {
		ph := w.arg(likePattern(q))
		w.clauses = append(w.clauses, `(u.full_name ILIKE `+ph+` OR u.email ILIKE `+ph+` OR sp.major ILIKE `+ph+`)`)
	}
	if f.UniversityID != nil {
		w.add(`sp.university_id = ?`, *f.UniversityID)
	}
	if m := strings.TrimSpace(f.Major); m != "" {
		w.add(`sp.major ILIKE ?`, likePattern(m))
	}
	if sk := strings.TrimSpace(f.Skill); sk != "" {
		w.add(`EXISTS (SELECT 1 FROM student_skills ss JOIN skills k ON k.id = ss.skill_id WHERE ss.user_id = sp.user_id AND k.name ILIKE ?)`, sk)
	}
	if f.WithParsedResume {
		w.add(`r.parse_status = 'parsed'`)
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*)`+studentFrom+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	lim, off := w.arg(p.Limit), w.arg(p.Offset)
	rows, err := s.db.Query(ctx,
		`SELECT sp.user_id, u.full_name, u.email, sp.university_id, COALESCE(un.name, ''), COALESCE(sp.major, ''),
			sp.graduation_year,
			COALESCE((SELECT array_agg(k.name ORDER BY k.name) FROM student_skills ss JOIN skills k ON k.id = ss.skill_id WHERE ss.user_id = sp.user_id), '{}'::text[]),
			r.id, sp.updated_at`+studentFrom+w.sql()+`
		 ORDER BY u.full_name ASC, sp.user_id
		 LIMIT `+lim+` OFFSET `+off,
		w.args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]StudentSummary, 0)
	for rows.Next() {
		var st StudentSummary
		if err := rows.Scan(&st.UserID, &st.FullName, &st.Email, &st.UniversityID, &st.UniversityName, &st.Major,
			&st.GraduationYear, &st.Skills, &st.PrimaryResumeID, &st.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, st)
	}
	return out, total, rows.Err()
}
