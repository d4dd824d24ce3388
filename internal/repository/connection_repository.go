package repository

import (
	"context"

	"github.com/google/uuid"

	"careerhub/internal/database"
	"careerhub/internal/domain/network"
)

type ConnectionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (network.Connection, error)
	GetByPair(ctx context.Context, employerID, studentID uuid.UUID) (network.Connection, error)
	Create(ctx context.Context, c network.Connection) (network.Connection, error)
	// Reopen resets a WITHDRAWN or REJECTED connection to PENDING.
	Reopen(ctx context.Context, id uuid.UUID, message string) (network.Connection, error)
	ListForUser(ctx context.Context, userID uuid.UUID, status *network.Status) ([]network.Connection, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to network.Status) (network.Connection, error)
}

type PostgresConnectionRepository struct {
	db database.DB
}

func NewPostgresConnectionRepository(db database.DB) *PostgresConnectionRepository {
	return &PostgresConnectionRepository{db: db}
}

const connectionSelect = `SELECT cn.id, cn.employer_id, eu.full_name, COALESCE(c.name, ''), cn.student_id, su.full_name,
	cn.message, cn.status, cn.created_at, cn.updated_at
	FROM connections cn
	JOIN users eu ON eu.id = cn.employer_id
	JOIN users su ON su.id = cn.student_id
	LEFT JOIN employer_profiles ep ON ep.user_id = cn.employer_id
	LEFT JOIN companies c ON c.id = ep.company_id`

func scanConnection(row database.Row) (network.Connection, error) {
	var c network.Connection
	var status string
	if err := row.Scan(&c.ID, &c.EmployerID, &c.EmployerName, &c.CompanyName, &c.StudentID, &c.StudentName,
		&c.Message, &status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return network.Connection{}, network.ErrNotFound
		}
		return network.Connection{}, err
	}
	c.Status = network.Status(status)
	return c, nil
}

func (r *PostgresConnectionRepository) Get(ctx context.Context, id uuid.UUID) (network.Connection, error) {
	return scanConnection(r.db.QueryRow(ctx, connectionSelect+` WHERE cn.id = $1`, id))
}

func (r *PostgresConnectionRepository) GetByPair(ctx context.Context, employerID, studentID uuid.UUID) (network.Connection, error) {
	return scanConnection(r.db.QueryRow(ctx, connectionSelect+` WHERE cn.employer_id = $1 AND cn.student_id = $2`, employerID, studentID))
}

func (r *PostgresConnectionRepository) Create(ctx context.Context, c network.Connection) (network.Connection, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO connections (id, employer_id, student_id, message, status) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.EmployerID, c.StudentID, c.Message, string(network.Pending),
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return network.Connection{}, ErrNotFound
		}
		return network.Connection{}, mapWriteErr(err)
	}
	return r.Get(ctx, c.ID)
}

func (r *PostgresConnectionRepository) Reopen(ctx context.Context, id uuid.UUID, message string) (network.Connection, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE connections SET status = $2, message = $3, updated_at = now()
		 WHERE id = $1 AND status IN ('WITHDRAWN', 'REJECTED')`,
		id, string(network.Pending), message,
	)
	if err != nil {
		return network.Connection{}, err
	}
	if n == 0 {
		return network.Connection{}, ErrStale
	}
	return r.Get(ctx, id)
}

func (r *PostgresConnectionRepository) ListForUser(ctx context.Context, userID uuid.UUID, status *network.Status) ([]network.Connection, error) {
	var w where
	w.add(`(cn.employer_id = ? OR cn.student_id = ?)`, userID, userID)
	if status != nil {
		w.add(`cn.status = ?`, string(*status))
	}
	rows, err := r.db.Query(ctx, connectionSelect+w.sql()+` ORDER BY cn.updated_at DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]network.Connection, 0)
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresConnectionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to network.Status) (network.Connection, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE connections SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return network.Connection{}, err
	}
	if n == 0 {
		return network.Connection{}, ErrStale
	}
	return r.Get(ctx, id)
}
