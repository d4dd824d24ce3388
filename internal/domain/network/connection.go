package network

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("connection not found")
	ErrAlreadyConnected  = errors.New("connection already pending or accepted")
	ErrInvalidTransition = errors.New("connection cannot change to that status")
)

type Status string

const (
	Pending   Status = "PENDING"
	Accepted  Status = "ACCEPTED"
	Rejected  Status = "REJECTED"
	Withdrawn Status = "WITHDRAWN"
)

func ParseStatus(s string) (Status, bool) {
	switch v := Status(s); v {
	case Pending, Accepted, Rejected, Withdrawn:
		return v, true
	}
	return "", false
}

// Connection is an employer's request to connect with a student.
type Connection struct {
	ID           uuid.UUID `json:"id"`
	EmployerID   uuid.UUID `json:"employer_id"`
	EmployerName string    `json:"employer_name"`
	CompanyName  string    `json:"company_name"`
	StudentID    uuid.UUID `json:"student_id"`
	StudentName  string    `json:"student_name"`
	Message      string    `json:"message"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanRequestAgain is true when a closed request may be reopened.
func (c Connection) CanRequestAgain() bool {
	return c.Status == Withdrawn || c.Status == Rejected
}

// Party decides who is acting on a connection.
type Party int

const (
	PartyEmployer Party = iota
	PartyStudent
)

// Transition validates a status change made by party. Only pending
// connections move: students accept or reject, employers withdraw.
func (c Connection) Transition(by Party, to Status) error {
	if c.Status != Pending {
		return ErrInvalidTransition
	}
	switch by {
	case PartyStudent:
		if to == Accepted || to == Rejected {
			return nil
		}
	case PartyEmployer:
		if to == Withdrawn {
			return nil
		}
	}
	return ErrInvalidTransition
}
