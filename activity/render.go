package activity

import (
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-activities/pkg/types"
	"github.com/goliatone/go-activities/subject"
	"github.com/microcosm-cc/bluemonday"
)

// LabelSource provides the display noun of a subject kind ("photo").
type LabelSource interface {
	Label(ref types.SubjectRef) string
}

// Renderer produces the text and HTML forms of activities. Subjects are
// passed in already resolved so a page renders without further loads.
type Renderer struct {
	labels LabelSource
	policy *bluemonday.Policy
}

// RendererOption customizes a Renderer.
type RendererOption func(*Renderer)

// WithPolicy sanitizes explicit activity text with policy before HTML returns
// it. Without a policy explicit text is trusted host markup.
func WithPolicy(policy *bluemonday.Policy) RendererOption {
	return func(r *Renderer) {
		if policy != nil {
			r.policy = policy
		}
	}
}

// NewRenderer builds a renderer.
func NewRenderer(labels LabelSource, opts ...RendererOption) *Renderer {
	r := &Renderer{labels: labels}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// articleAn lists the nouns that take "an" in action headers.
var articleAn = map[string]struct{}{
	"album": {},
	"audio": {},
	"image": {},
}

var headerActions = map[types.Action]struct{}{
	types.ActionAdded:    {},
	types.ActionCreated:  {},
	types.ActionShared:   {},
	types.ActionUploaded: {},
}

// Text renders the plain text form: the explicit text when present, otherwise
// "{creator} {action} the {label} {about}" ("on the" for comments).
func (r *Renderer) Text(activity types.Activity, subjects subject.Resolved) string {
	if activity.Text != "" {
		return activity.Text
	}
	creator := types.DisplayName(subjects.Get(activity.Creator()))
	action := strings.ToLower(activity.Action.Label())
	if !activity.HasAbout() {
		return creator + " " + action
	}
	about := types.DisplayName(subjects.Get(activity.About))
	return fmt.Sprintf(textTemplate(activity), creator, action, r.label(activity.About), about)
}

// HTML renders the body HTML. Explicit text is returned as stored, run through
// the WithPolicy sanitizer when one is configured. Otherwise the about
// subject may take over through types.ActivityHTMLFormatter, and the generic
// template links the creator and the subject when they expose a link or URL.
func (r *Renderer) HTML(activity types.Activity, viewer types.ActorRef, subjects subject.Resolved) string {
	if activity.Text != "" {
		if r.policy != nil {
			return r.policy.Sanitize(activity.Text)
		}
		return activity.Text
	}
	about := subjects.Get(activity.About)
	if formatter, ok := about.(types.ActivityHTMLFormatter); ok {
		if out, ok := formatter.ActivityHTML(activity, viewer); ok {
			return out
		}
	}
	creator := linkHTML(subjects.Get(activity.Creator()))
	action := html.EscapeString(strings.ToLower(activity.Action.Label()))
	if !activity.HasAbout() {
		return creator + " " + action + "."
	}
	label := html.EscapeString(r.label(activity.About))
	return fmt.Sprintf(textTemplate(activity), creator, action, label, linkHTML(about)) + "."
}

// ActionHTML renders the short header ("shared a photo"). Only ADDED, CREATED,
// SHARED and UPLOADED have a header. The about subject may override it
// through types.ActionHTMLFormatter unless force is set.
func (r *Renderer) ActionHTML(activity types.Activity, subjects subject.Resolved, force bool) string {
	if _, ok := headerActions[activity.Action]; !ok || !activity.HasAbout() {
		return ""
	}
	about := subjects.Get(activity.About)
	if !force {
		if formatter, ok := about.(types.ActionHTMLFormatter); ok {
			return formatter.ActivityActionHTML(activity)
		}
	}
	name := r.label(activity.About)
	article := "a"
	if _, ok := articleAn[strings.ToLower(name)]; ok {
		article = "an"
	}
	ref := html.EscapeString(name)
	if url, ok := types.SubjectURL(about); ok {
		ref = fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(url), ref)
	}
	action := strings.ToLower(string(activity.Action))
	if activity.Action == types.ActionShared {
		action = `<i class="fa fa-retweet"></i> ` + html.EscapeString(SharedActionText(about))
	}
	return fmt.Sprintf("%s %s %s", action, article, ref)
}

// SharedActionText returns the wording of the shared action for the subject,
// "shared" unless the subject provides its own term.
func SharedActionText(about types.Subject) string {
	if provider, ok := about.(types.ShareTermProvider); ok {
		if term := strings.TrimSpace(provider.SharedActionText()); term != "" {
			return term
		}
	}
	return strings.ToLower(string(types.ActionShared))
}

func (r *Renderer) label(ref types.SubjectRef) string {
	if r == nil || r.labels == nil {
		return ref.Type
	}
	return r.labels.Label(ref)
}

func textTemplate(activity types.Activity) string {
	if activity.IsComment() {
		return "%s %s on the %s %s"
	}
	return "%s %s the %s %s"
}

func linkHTML(s types.Subject) string {
	if s == nil {
		return ""
	}
	if provider, ok := s.(types.LinkProvider); ok {
		if link := strings.TrimSpace(provider.LinkHTML()); link != "" {
			return link
		}
	}
	name := html.EscapeString(types.DisplayName(s))
	if url, ok := types.SubjectURL(s); ok {
		return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(url), name)
	}
	return name
}
