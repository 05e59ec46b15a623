// Package query exposes go-command compatible read handlers: activity and
// reply detail, the subject and user feeds, the already-shared map, audience
// resolution and per-action stats. Every handler runs the scope guard and the
// activity visibility rules for the viewer.
package query
