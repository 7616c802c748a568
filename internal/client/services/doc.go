// Package services holds the client's application services: the like and
// follow toggles built on the optimistic controller, and the authentication
// flows that drive the session store.
package services
