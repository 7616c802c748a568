// Package session holds who is signed in and the bearer credential used to
// authenticate requests.
//
// A Store has two states, anonymous and authenticated. Login moves to
// authenticated; Logout and Reject move back. The state is an immutable
// Snapshot replaced atomically, so readers never block and every request
// built after a transition observes it.
package session
