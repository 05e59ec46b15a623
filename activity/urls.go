package activity

import (
	"strings"

	"github.com/goliatone/go-activities/pkg/types"
)

// AbsoluteURL returns the activity URL, nested under the about subject's
// activity feed when it exposes one.
func AbsoluteURL(activity types.Activity, about types.Subject) string {
	if root := activitiesURL(about); root != "" {
		return root + "/" + activity.ID.String()
	}
	return "/activities/" + activity.ID.String()
}

// EditURL returns the edit URL of the activity.
func EditURL(activity types.Activity, about types.Subject) string {
	return AbsoluteURL(activity, about) + "/edit"
}

// DeleteURL returns the delete URL of the activity.
func DeleteURL(activity types.Activity, about types.Subject) string {
	return AbsoluteURL(activity, about) + "/delete"
}

// ReplyURL returns the URL of a reply under its activity.
func ReplyURL(activity types.Activity, about types.Subject, reply types.Reply) string {
	return AbsoluteURL(activity, about) + "/replies/" + reply.ID.String()
}

// ReplyEditURL returns the edit URL of a reply.
func ReplyEditURL(activity types.Activity, about types.Subject, reply types.Reply) string {
	return ReplyURL(activity, about, reply) + "/edit"
}

// ReplyDeleteURL returns the delete URL of a reply.
func ReplyDeleteURL(activity types.Activity, about types.Subject, reply types.Reply) string {
	return ReplyURL(activity, about, reply) + "/delete"
}

// FeedURL returns the root of the activity feed of a subject: its own
// activities URL, else "{url}/activities", else "/activities".
func FeedURL(about types.Subject) string {
	if root := activitiesURL(about); root != "" {
		return root
	}
	prefix, _ := types.SubjectURL(about)
	return strings.TrimRight(prefix, "/") + "/activities"
}

func activitiesURL(about types.Subject) string {
	if about == nil {
		return ""
	}
	if provider, ok := about.(types.ActivitiesURLProvider); ok {
		return strings.TrimRight(strings.TrimSpace(provider.ActivitiesURL()), "/")
	}
	return ""
}
