package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	Feed(ctx context.Context, tab string) error
	Sort(ctx context.Context, order string) error
	Liked(ctx context.Context) error
	Tag(ctx context.Context, name string) error
	User(ctx context.Context, id int) error
	Post(ctx context.Context, id int) error

	Like(ctx context.Context, postID int) error
	NewPost(ctx context.Context) error
	EditPost(ctx context.Context, id int) error
	DeletePost(ctx context.Context, id int) error
	Comment(ctx context.Context, postID int) error
	EditComment(ctx context.Context, id int) error
	DeleteComment(ctx context.Context, id int) error

	Follow(ctx context.Context, userID int) error
	Unfollow(ctx context.Context, userID int) error
	Followers(ctx context.Context, userID int) error
	Following(ctx context.Context, userID int) error
	Search(ctx context.Context, query string) error

	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error

	Open(ctx context.Context, path string) error
	Back(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: signup, login, feed trending, user <id>, post <id>, tag <name>, " +
		"search <query>, followers <id>, following <id>, sort, open <path>, back, exit"
	helpSignedIn = "Available commands: feed [following|trending|all], liked, sort [latest|oldest], " +
		"user <id>, tag <name>, post <id>, like <post-id>, newpost, editpost <id>, deletepost <id>, " +
		"comment <post-id>, editcomment <id>, deletecomment <id>, follow <id>, unfollow <id>, " +
		"followers <id>, following <id>, search <query>, profile, password, whoami, open <path>, back, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the gophsocial CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Commands taking an id report their usage when
// it is missing or not a positive number. The loop exits on EOF or when the
// user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own notices. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gs %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "signup":
			_ = a.Signup(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.Whoami(ctx)

		case "feed":
			_ = a.Feed(ctx, strings.Join(args, " "))
		case "sort":
			_ = a.Sort(ctx, strings.Join(args, " "))
		case "liked":
			_ = a.Liked(ctx)
		case "tag":
			if name, ok := textArg(args, "tag <name>"); ok {
				_ = a.Tag(ctx, strings.TrimPrefix(name, "#"))
			}
		case "user":
			if id, ok := idArg(args, "user <id>"); ok {
				_ = a.User(ctx, id)
			}
		case "post":
			if id, ok := idArg(args, "post <id>"); ok {
				_ = a.Post(ctx, id)
			}

		case "like":
			if id, ok := idArg(args, "like <post-id>"); ok {
				_ = a.Like(ctx, id)
			}
		case "newpost":
			_ = a.NewPost(ctx)
		case "editpost":
			if id, ok := idArg(args, "editpost <id>"); ok {
				_ = a.EditPost(ctx, id)
			}
		case "deletepost":
			if id, ok := idArg(args, "deletepost <id>"); ok {
				_ = a.DeletePost(ctx, id)
			}
		case "comment":
			if id, ok := idArg(args, "comment <post-id>"); ok {
				_ = a.Comment(ctx, id)
			}
		case "editcomment":
			if id, ok := idArg(args, "editcomment <id>"); ok {
				_ = a.EditComment(ctx, id)
			}
		case "deletecomment":
			if id, ok := idArg(args, "deletecomment <id>"); ok {
				_ = a.DeleteComment(ctx, id)
			}

		case "follow":
			if id, ok := idArg(args, "follow <user-id>"); ok {
				_ = a.Follow(ctx, id)
			}
		case "unfollow":
			if id, ok := idArg(args, "unfollow <user-id>"); ok {
				_ = a.Unfollow(ctx, id)
			}
		case "followers":
			if id, ok := idArg(args, "followers <user-id>"); ok {
				_ = a.Followers(ctx, id)
			}
		case "following":
			if id, ok := idArg(args, "following <user-id>"); ok {
				_ = a.Following(ctx, id)
			}
		case "search":
			if q, ok := textArg(args, "search <query>"); ok {
				_ = a.Search(ctx, q)
			}

		case "profile":
			_ = a.EditProfile(ctx)
		case "password":
			_ = a.ChangePassword(ctx)

		case "open":
			if p, ok := textArg(args, "open <path>"); ok {
				_ = a.Open(ctx, p)
			}
		case "back":
			_ = a.Back(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func idArg(args []string, usage string) (int, bool) {
	if len(args) == 0 {
		printlnFn("Usage:", usage)
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		printlnFn("Usage:", usage)
		return 0, false
	}
	return id, true
}

func textArg(args []string, usage string) (string, bool) {
	if len(args) == 0 {
		printlnFn("Usage:", usage)
		return "", false
	}
	return strings.Join(args, " "), true
}
