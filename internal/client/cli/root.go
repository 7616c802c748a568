package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := a.nav.Current()
	if id := a.store.Identity(); id != nil {
		s = id.Username + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

// Root resumes the persisted session and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to gophsocial (type 'help' for commands)")

	if err := a.deps.Auth.Restore(ctx); err != nil {
		a.log.Warn(ctx, "session not restored", "error", err)
	}
	if id := a.store.Identity(); id != nil {
		fmt.Fprintf(a.out, "Signed in as %s.\n", id.Username)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
