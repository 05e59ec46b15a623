package activity

import (
	"time"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Activity models the persisted row in activities.
type Activity struct {
	bun.BaseModel `bun:"table:activities,alias:a"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	CreatedBy  uuid.UUID  `bun:"created_by,type:uuid,notnull" json:"created_by"`
	AboutType  string     `bun:"about_type,nullzero" json:"about_type,omitempty"`
	AboutID    string     `bun:"about_id,nullzero" json:"about_id,omitempty"`
	Text       string     `bun:"text,nullzero" json:"text,omitempty"`
	Source     string     `bun:"source,notnull" json:"source"`
	Action     string     `bun:"action,notnull" json:"action"`
	Privacy    string     `bun:"privacy,notnull,default:'PRIVATE'" json:"privacy"`
	GroupID    *uuid.UUID `bun:"group_id,type:uuid" json:"group_id,omitempty"`
	ReplyCount int        `bun:"reply_count,notnull,default:0" json:"reply_count"`
	CreatedAt  time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,notnull" json:"updated_at"`

	Replies  []*Reply           `bun:"rel:has-many,join:id=activity_id" json:"replies,omitempty"`
	Audience []types.SubjectRef `bun:"-" json:"audience,omitempty"`
}

// Reply models the persisted row in activity_replies.
type Reply struct {
	bun.BaseModel `bun:"table:activity_replies,alias:ar"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	ActivityID uuid.UUID  `bun:"activity_id,type:uuid,notnull" json:"activity_id"`
	CreatedBy  uuid.UUID  `bun:"created_by,type:uuid,notnull" json:"created_by"`
	Text       string     `bun:"text,notnull" json:"text"`
	ReplyToID  *uuid.UUID `bun:"reply_to_id,type:uuid" json:"reply_to_id,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

// AudienceEntry is one addressable audience subject. Entries are shared by
// every activity that targets the same subject.
type AudienceEntry struct {
	bun.BaseModel `bun:"table:activity_audience_entries,alias:ae"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	SubjectType string    `bun:"subject_type,notnull"`
	SubjectID   string    `bun:"subject_id,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

// AudienceLink joins activities to audience entries.
type AudienceLink struct {
	bun.BaseModel `bun:"table:activity_audience,alias:aa"`

	ActivityID uuid.UUID `bun:"activity_id,pk,type:uuid"`
	EntryID    uuid.UUID `bun:"entry_id,pk,type:uuid"`
}

func toActivityModel(record types.Activity) *Activity {
	model := &Activity{
		ID:         record.ID,
		CreatedBy:  record.CreatedBy,
		AboutType:  record.About.Type,
		AboutID:    record.About.ID,
		Text:       record.Text,
		Source:     string(record.Source),
		Action:     string(record.Action),
		Privacy:    string(record.Privacy),
		ReplyCount: record.ReplyCount,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
		Audience:   cloneRefs(record.Audience),
	}
	if record.GroupID != uuid.Nil {
		group := record.GroupID
		model.GroupID = &group
	}
	if len(record.Replies) > 0 {
		model.Replies = make([]*Reply, 0, len(record.Replies))
		for _, reply := range record.Replies {
			model.Replies = append(model.Replies, toReplyModel(reply))
		}
	}
	return model
}

func toActivityRecord(model *Activity) types.Activity {
	if model == nil {
		return types.Activity{}
	}
	record := types.Activity{
		ID:         model.ID,
		CreatedBy:  model.CreatedBy,
		About:      types.SubjectRef{Type: model.AboutType, ID: model.AboutID},
		Text:       model.Text,
		Source:     types.Source(model.Source),
		Action:     types.Action(model.Action),
		Privacy:    types.Privacy(model.Privacy),
		ReplyCount: model.ReplyCount,
		Audience:   cloneRefs(model.Audience),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
	if model.GroupID != nil {
		record.GroupID = *model.GroupID
	}
	if len(model.Replies) > 0 {
		record.Replies = make([]types.Reply, 0, len(model.Replies))
		for _, reply := range model.Replies {
			record.Replies = append(record.Replies, toReplyRecord(reply))
		}
	}
	return record
}

func toReplyModel(record types.Reply) *Reply {
	model := &Reply{
		ID:         record.ID,
		ActivityID: record.ActivityID,
		CreatedBy:  record.CreatedBy,
		Text:       record.Text,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
	if record.ReplyToID != uuid.Nil {
		target := record.ReplyToID
		model.ReplyToID = &target
	}
	return model
}

func toReplyRecord(model *Reply) types.Reply {
	if model == nil {
		return types.Reply{}
	}
	record := types.Reply{
		ID:         model.ID,
		ActivityID: model.ActivityID,
		CreatedBy:  model.CreatedBy,
		Text:       model.Text,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
	if model.ReplyToID != nil {
		record.ReplyToID = *model.ReplyToID
	}
	return record
}

// FromActivityRecord converts a domain activity into the Bun model so
// transports can reuse the conversion.
func FromActivityRecord(record types.Activity) *Activity {
	return toActivityModel(record)
}

// ToActivityRecord converts the Bun model into the domain activity.
func ToActivityRecord(model *Activity) types.Activity {
	return toActivityRecord(model)
}

// FromReplyRecord converts a domain reply into the Bun model.
func FromReplyRecord(record types.Reply) *Reply {
	return toReplyModel(record)
}

// ToReplyRecord converts the Bun model into the domain reply.
func ToReplyRecord(model *Reply) types.Reply {
	return toReplyRecord(model)
}

func cloneRefs(refs []types.SubjectRef) []types.SubjectRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]types.SubjectRef, len(refs))
	copy(out, refs)
	return out
}
