package activity

import (
	"context"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/google/uuid"
)

// AccessReason records why a viewer was allowed or denied.
type AccessReason string

const (
	AccessPublic   AccessReason = "public"
	AccessCreator  AccessReason = "creator"
	AccessAudience AccessReason = "audience"
	AccessDenied   AccessReason = "denied"
)

// Allowed reports whether the decision grants read access.
func (r AccessReason) Allowed() bool {
	return r == AccessPublic || r == AccessCreator || r == AccessAudience
}

// AudienceChecker answers audience membership for access decisions.
type AudienceChecker interface {
	IsAudienceMember(ctx context.Context, activityID uuid.UUID, ref types.SubjectRef) (bool, error)
}

// Decide evaluates the read rule for an activity:
//
//	PUBLIC                      -> allow
//	PRIVATE, viewer is creator  -> allow
//	PRIVATE, viewer in audience -> allow
//	PRIVATE, otherwise          -> deny
//
// Membership is only looked up when the cheaper rules do not match. The
// decision is evaluated on every call.
func Decide(ctx context.Context, checker AudienceChecker, activity types.Activity, viewer types.ActorRef) (AccessReason, error) {
	if activity.IsPublic() {
		return AccessPublic, nil
	}
	if viewer.IsAnonymous() {
		return AccessDenied, nil
	}
	if activity.CreatedBy == viewer.ID {
		return AccessCreator, nil
	}
	if len(activity.Audience) > 0 {
		ref := viewer.Subject()
		for _, member := range activity.Audience {
			if member == ref {
				return AccessAudience, nil
			}
		}
		return AccessDenied, nil
	}
	if checker == nil {
		return AccessDenied, nil
	}
	member, err := checker.IsAudienceMember(ctx, activity.ID, viewer.Subject())
	if err != nil {
		return AccessDenied, err
	}
	if member {
		return AccessAudience, nil
	}
	return AccessDenied, nil
}

// CanModify reports whether the viewer created the activity.
func CanModify(activity types.Activity, viewer types.ActorRef) bool {
	return !viewer.IsAnonymous() && activity.CreatedBy == viewer.ID
}

// CanDeleteReply reports whether the viewer authored the reply or created the
// parent activity.
func CanDeleteReply(activity types.Activity, reply types.Reply, viewer types.ActorRef) bool {
	if viewer.IsAnonymous() {
		return false
	}
	return reply.CreatedBy == viewer.ID || activity.CreatedBy == viewer.ID
}
