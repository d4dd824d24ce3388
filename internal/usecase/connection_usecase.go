package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"careerhub/internal/domain/network"
	"careerhub/internal/domain/user"
	"careerhub/internal/repository"
	"careerhub/internal/ws"
)

type ConnectionUsecase interface {
	Request(ctx context.Context, actor Actor, studentID uuid.UUID, message string) (network.Connection, error)
	List(ctx context.Context, actor Actor, status string) ([]network.Connection, error)
	Decide(ctx context.Context, actor Actor, id uuid.UUID, to network.Status) (network.Connection, error)
}

type Connections struct {
	conns  repository.ConnectionRepository
	users  repository.UserRepository
	notify Notifier
	logger *logrus.Logger
}

func NewConnectionUsecase(conns repository.ConnectionRepository, users repository.UserRepository, notify Notifier, logger *logrus.Logger) *Connections {
	return &Connections{conns: conns, users: users, notify: notify, logger: orLogger(logger)}
}

// Request opens a connection to a student, reopening a closed one.
func (u *Connections) Request(ctx context.Context, actor Actor, studentID uuid.UUID, message string) (network.Connection, error) {
	if _, _, err := employerCompany(ctx, u.users, actor); err != nil {
		return network.Connection{}, err
	}
	student, err := u.users.GetByID(ctx, studentID)
	if err != nil {
		return network.Connection{}, notFound(err, "student", user.ErrNotFound)
	}
	if student.Role != user.RoleStudent {
		return network.Connection{}, fmt.Errorf("%w: student", ErrNotFound)
	}
	message = strings.TrimSpace(message)

	var c network.Connection
	existing, err := u.conns.GetByPair(ctx, actor.UserID, studentID)
	switch {
	case err == nil && existing.CanRequestAgain():
		c, err = u.conns.Reopen(ctx, existing.ID, message)
	case err == nil:
		return network.Connection{}, fmt.Errorf("%w: %v", ErrConflict, network.ErrAlreadyConnected)
	case errors.Is(err, network.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		c, err = u.conns.Create(ctx, network.Connection{
			EmployerID: actor.UserID,
			StudentID:  studentID,
			Message:    message,
			Status:     network.Pending,
		})
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) || errors.Is(err, repository.ErrStale) {
			return network.Connection{}, fmt.Errorf("%w: %v", ErrConflict, network.ErrAlreadyConnected)
		}
		return network.Connection{}, internal(err)
	}

	u.notify.send([]uuid.UUID{studentID}, ws.EventConnectionRequested, c)
	return c, nil
}

func (u *Connections) List(ctx context.Context, actor Actor, status string) ([]network.Connection, error) {
	if !actor.Is(user.RoleStudent) && !actor.Is(user.RoleEmployer) {
		return nil, ErrForbidden
	}
	var st *network.Status
	if s := strings.ToUpper(strings.TrimSpace(status)); s != "" {
		v, ok := network.ParseStatus(s)
		if !ok {
			return nil, invalid("status", "must be PENDING, ACCEPTED, REJECTED or WITHDRAWN")
		}
		st = &v
	}
	out, err := u.conns.ListForUser(ctx, actor.UserID, st)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

// Decide applies accept or reject for the student and withdraw for the
// employer, then tells the other party.
func (u *Connections) Decide(ctx context.Context, actor Actor, id uuid.UUID, to network.Status) (network.Connection, error) {
	c, err := u.conns.Get(ctx, id)
	if err != nil {
		return network.Connection{}, notFound(err, "connection", network.ErrNotFound)
	}

	var (
		party network.Party
		other uuid.UUID
	)
	switch {
	case actor.Is(user.RoleStudent) && c.StudentID == actor.UserID:
		party, other = network.PartyStudent, c.EmployerID
	case actor.Is(user.RoleEmployer) && c.EmployerID == actor.UserID:
		party, other = network.PartyEmployer, c.StudentID
	default:
		return network.Connection{}, fmt.Errorf("%w: connection", ErrNotFound)
	}

	if err := c.Transition(party, to); err != nil {
		if c.Status != network.Pending {
			return network.Connection{}, fmt.Errorf("%w: connection is %s", ErrConflict, c.Status)
		}
		return network.Connection{}, ErrForbidden
	}
	updated, err := u.conns.UpdateStatus(ctx, id, c.Status, to)
	if err != nil {
		if errors.Is(err, repository.ErrStale) {
			return network.Connection{}, fmt.Errorf("%w: connection changed concurrently", ErrConflict)
		}
		return network.Connection{}, notFound(err, "connection", network.ErrNotFound)
	}

	u.notify.send([]uuid.UUID{other}, ws.EventConnectionUpdated, updated)
	u.logger.WithFields(logrus.Fields{"component": "connections", "connection_id": id, "status": to}).Debug("connection updated")
	return updated, nil
}
