package types

import (
	"sort"
	"strings"
	"sync"
)

// Source describes who generated an activity.
type Source string

const (
	SourceUser   Source = "USER"
	SourceSystem Source = "SYSTEM"
)

// Privacy controls activity visibility.
type Privacy string

const (
	PrivacyPublic  Privacy = "PUBLIC"
	PrivacyPrivate Privacy = "PRIVATE"
)

// Action is the verb recorded by an activity. The vocabulary is open: hosts
// can add verbs with RegisterAction.
type Action string

const (
	ActionAdded     Action = "ADDED"
	ActionCommented Action = "COMMENTED"
	ActionCreated   Action = "CREATED"
	ActionDeleted   Action = "DELETED"
	ActionShared    Action = "SHARED"
	ActionUpdated   Action = "UPDATED"
	ActionUploaded  Action = "UPLOADED"
)

var (
	actionsMu sync.RWMutex
	actions   = map[Action]string{
		ActionAdded:     "Added",
		ActionCommented: "Commented",
		ActionCreated:   "Created",
		ActionDeleted:   "Deleted",
		ActionShared:    "Shared",
		ActionUpdated:   "Updated",
		ActionUploaded:  "Uploaded",
	}
)

// RegisterAction adds a verb to the recognized vocabulary. An empty label
// defaults to the title-cased verb.
func RegisterAction(action Action, label string) {
	action = Action(strings.ToUpper(strings.TrimSpace(string(action))))
	if action == "" {
		return
	}
	label = strings.TrimSpace(label)
	if label == "" {
		lower := strings.ToLower(string(action))
		label = strings.ToUpper(lower[:1]) + lower[1:]
	}
	actionsMu.Lock()
	actions[action] = label
	actionsMu.Unlock()
}

// Actions returns the recognized verbs in lexical order.
func Actions() []Action {
	actionsMu.RLock()
	out := make([]Action, 0, len(actions))
	for action := range actions {
		out = append(out, action)
	}
	actionsMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Valid reports whether the verb is part of the vocabulary.
func (a Action) Valid() bool {
	actionsMu.RLock()
	_, ok := actions[a]
	actionsMu.RUnlock()
	return ok
}

// Label returns the display label, falling back to the raw verb.
func (a Action) Label() string {
	actionsMu.RLock()
	label, ok := actions[a]
	actionsMu.RUnlock()
	if !ok || label == "" {
		return string(a)
	}
	return label
}

// Valid reports whether the source is recognized.
func (s Source) Valid() bool {
	return s == SourceUser || s == SourceSystem
}

// Valid reports whether the privacy value is recognized.
func (p Privacy) Valid() bool {
	return p == PrivacyPublic || p == PrivacyPrivate
}

// CheckAction normalizes a raw filter value. Unknown values return the empty
// action so callers treat them as "no filter".
func CheckAction(raw string) Action {
	action := Action(strings.ToUpper(strings.TrimSpace(raw)))
	if !action.Valid() {
		return ""
	}
	return action
}

// CheckSource normalizes a raw filter value, returning "" when unknown.
func CheckSource(raw string) Source {
	source := Source(strings.ToUpper(strings.TrimSpace(raw)))
	if !source.Valid() {
		return ""
	}
	return source
}

// ParseAction validates a verb for a mutation.
func ParseAction(raw string) (Action, error) {
	if action := CheckAction(raw); action != "" {
		return action, nil
	}
	return "", ErrInvalidAction
}

// ParseSource validates a source for a mutation.
func ParseSource(raw string) (Source, error) {
	if source := CheckSource(raw); source != "" {
		return source, nil
	}
	return "", ErrInvalidSource
}

// ParsePrivacy validates a privacy value. Empty input yields the PRIVATE
// default.
func ParsePrivacy(raw string) (Privacy, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return PrivacyPrivate, nil
	}
	privacy := Privacy(raw)
	if !privacy.Valid() {
		return "", ErrInvalidPrivacy
	}
	return privacy, nil
}
