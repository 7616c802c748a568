// Package cli provides the interactive gophsocial command-line client.
//
// It wires configuration, the local credential database, the session store,
// the API gateway and the view controllers, and runs a REPL on top of them.
// Typical flow: resume the persisted session, then execute user commands
// until "exit".
//
// Key features:
//   - Signup / Login / Logout with a persisted session
//   - Feeds (following, trending, all, liked), profiles, hashtags, threads
//   - Likes, follows, posts and comments with immediate feedback
//   - User search, profile and password settings
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
