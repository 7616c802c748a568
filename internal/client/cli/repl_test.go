package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) record(name string, arg ...any) error {
	if len(arg) > 0 {
		name = fmt.Sprint(append([]any{name + " "}, arg...)...)
	}
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Signup(context.Context) error { return f.record("signup") }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Whoami(context.Context) error                 { return f.record("whoami") }
func (f *fakeExec) Feed(_ context.Context, tab string) error     { return f.record("feed", tab) }
func (f *fakeExec) Sort(_ context.Context, order string) error   { return f.record("sort", order) }
func (f *fakeExec) Liked(context.Context) error                  { return f.record("liked") }
func (f *fakeExec) Tag(_ context.Context, name string) error     { return f.record("tag", name) }
func (f *fakeExec) User(_ context.Context, id int) error         { return f.record("user", id) }
func (f *fakeExec) Post(_ context.Context, id int) error         { return f.record("post", id) }
func (f *fakeExec) Like(_ context.Context, id int) error         { return f.record("like", id) }
func (f *fakeExec) NewPost(context.Context) error                { return f.record("newpost") }
func (f *fakeExec) EditPost(_ context.Context, id int) error     { return f.record("editpost", id) }
func (f *fakeExec) DeletePost(_ context.Context, id int) error   { return f.record("deletepost", id) }
func (f *fakeExec) Comment(_ context.Context, id int) error      { return f.record("comment", id) }
func (f *fakeExec) EditComment(_ context.Context, id int) error  { return f.record("editcomment", id) }
func (f *fakeExec) DeleteComment(_ context.Context, id int) error { return f.record("deletecomment", id) }
func (f *fakeExec) Follow(_ context.Context, id int) error       { return f.record("follow", id) }
func (f *fakeExec) Unfollow(_ context.Context, id int) error     { return f.record("unfollow", id) }
func (f *fakeExec) Followers(_ context.Context, id int) error    { return f.record("followers", id) }
func (f *fakeExec) Following(_ context.Context, id int) error    { return f.record("following", id) }
func (f *fakeExec) Search(_ context.Context, q string) error     { return f.record("search", q) }
func (f *fakeExec) EditProfile(context.Context) error            { return f.record("profile") }
func (f *fakeExec) ChangePassword(context.Context) error         { return f.record("password") }
func (f *fakeExec) Open(_ context.Context, path string) error    { return f.record("open", path) }
func (f *fakeExec) Back(context.Context) error                   { return f.record("back") }

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"login",
		"feed trending",
		"sort oldest",
		"tag #go",
		"user 2",
		"post 7",
		"like 7",
		"newpost",
		"editpost 7",
		"deletepost 7",
		"comment 7",
		"editcomment 3",
		"deletecomment 3",
		"follow 2",
		"unfollow 2",
		"followers 2",
		"following 2",
		"search ann b",
		"open /tags/go",
		"back",
		"profile",
		"password",
		"whoami",
		"liked",
		"logout",
		"exit",
		"login",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"login", "feed trending", "sort oldest", "tag go", "user 2", "post 7", "like 7",
		"newpost", "editpost 7", "deletepost 7", "comment 7", "editcomment 3", "deletecomment 3",
		"follow 2", "unfollow 2", "followers 2", "following 2", "search ann b", "open /tags/go",
		"back", "profile", "password", "whoami", "liked", "logout",
	}, exec.calls, "nothing runs after exit")
}

func TestRunREPL_UsageAndUnknown(t *testing.T) {
	lines := capturePrintln(t)

	input := "like\nlike abc\nuser -1\nsearch\nfoobar\nquit\n"
	exec := &fakeExec{loggedIn: true}

	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader(input)))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Usage: like <post-id>")
	assert.Contains(t, *lines, "Usage: user <id>")
	assert.Contains(t, *lines, "Usage: search <query>")
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "Bye!")
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	lines := capturePrintln(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "" },
		bufio.NewReader(strings.NewReader("help")))
	assert.Contains(t, *lines, helpAnonymous, "a last line without newline still runs")

	*lines = nil
	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "" },
		bufio.NewReader(strings.NewReader("help\n")))
	assert.Contains(t, *lines, helpSignedIn)
}
