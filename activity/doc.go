// Package activity provides the Bun-backed persistence, access rules and
// rendering helpers for activities. The Repository implements
// types.ActivityRepository: activities, threaded replies and audiences are
// stored in four tables and every mutation maintains the reply_count and
// share_count counters in the same transaction. Feeds are paginated with
// page/page-size semantics where a page past the end serves the last page.
//
// Host applications can swap the repository if they prefer a different
// storage engine.
package activity
