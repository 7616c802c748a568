// Package views holds the list and detail view controllers of the client:
// the feed, the post thread, the profile, user search and settings.
//
// A view owns one in-memory collection fetched on Load and applies
// optimistic mutations to it. Views never render; the shell reads their
// state (Status, Err, Notice and the items) after every operation.
package views
