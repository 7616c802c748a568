// Package client contains typed request builders for the social service
// REST API: Users, Posts and Comments.
//
// The clients hold no state. Every call goes through a Doer (the gateway),
// which attaches the session credential and classifies failures; errors are
// returned untouched so callers can match them with errors.Is against the
// sentinels in internal/common.
//
// Endpoints answering with an optional entity (like, unlike, follow,
// unfollow) return a nil pointer when the server sends an empty body.
package client
