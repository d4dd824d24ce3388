package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"careerhub/internal/domain/org"
	"careerhub/internal/repository"
)

func parseRequestStatus(s string) (org.RequestStatus, error) {
	switch org.RequestStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case "", org.RequestPending:
		return org.RequestPending, nil
	case org.RequestApproved:
		return org.RequestApproved, nil
	case org.RequestRejected:
		return org.RequestRejected, nil
	}
	return "", invalid("status", "must be PENDING, APPROVED or REJECTED")
}

// decideJoinRequest closes a pending request addressed to the given
// organisation.
func decideJoinRequest(ctx context.Context, orgs repository.OrgRepository, kind org.Kind, orgID, requestID, decidedBy uuid.UUID, approve bool) (org.JoinRequest, error) {
	jr, err := orgs.GetJoinRequest(ctx, requestID)
	if err != nil {
		return org.JoinRequest{}, notFound(err, "join request", org.ErrJoinRequestNotFound)
	}
	if jr.Kind != kind || jr.OrgID != orgID {
		return org.JoinRequest{}, fmt.Errorf("%w: join request", ErrNotFound)
	}
	status := org.RequestRejected
	if approve {
		status = org.RequestApproved
	}
	out, err := orgs.DecideJoinRequest(ctx, requestID, status, decidedBy)
	if err != nil {
		if errors.Is(err, repository.ErrStale) {
			return org.JoinRequest{}, fmt.Errorf("%w: join request already decided", ErrConflict)
		}
		return org.JoinRequest{}, notFound(err, "join request", org.ErrJoinRequestNotFound)
	}
	return out, nil
}
