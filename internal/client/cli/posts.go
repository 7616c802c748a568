package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/optimistic"
	"github.com/dmitrijs2005/gophsocial/internal/client/router"
	"github.com/dmitrijs2005/gophsocial/internal/client/views"
)

// Feed shows one of the home tabs. Without a tab signed-in users get their
// following feed and visitors the trending one.
func (a *App) Feed(ctx context.Context, tab string) error {
	t := views.Tab(strings.ToLower(strings.TrimSpace(tab)))
	switch t {
	case "":
		t = views.TabTrending
		if a.isLoggedIn() {
			t = views.TabFollowing
		}
	case views.TabFollowing, views.TabTrending, views.TabAll, views.TabLiked:
	default:
		fmt.Fprintln(a.out, "Usage: feed [following|trending|all]")
		return nil
	}
	return a.showFeed(ctx, homePath(t), views.FeedParams{Tab: t})
}

func (a *App) Liked(ctx context.Context) error {
	return a.Feed(ctx, string(views.TabLiked))
}

func (a *App) Tag(ctx context.Context, name string) error {
	return a.showFeed(ctx, router.TagPath(name), views.FeedParams{Hashtag: name})
}

// Sort changes the order of listings and reloads the one on screen.
func (a *App) Sort(ctx context.Context, order string) error {
	switch o := client.SortOrder(strings.TrimSpace(order)); o {
	case client.SortLatest, client.SortOldest:
		a.sortBy = o
	case "":
		fmt.Fprintf(a.out, "Sorted by %s.\n", a.sortBy)
		return nil
	default:
		fmt.Fprintln(a.out, "Usage: sort [latest|oldest]")
		return nil
	}
	fmt.Fprintf(a.out, "Sorted by %s.\n", a.sortBy)

	if a.feed == nil {
		return nil
	}
	p := a.feed.Params()
	p.SortBy = a.sortBy
	a.feed.SetParams(p)
	err := a.feed.Load(ctx)
	printNotice(a.out, a.feed.Notice())
	printPosts(a.out, a.feed)
	return err
}

func homePath(t views.Tab) string {
	return router.PathHome + "?tab=" + string(t)
}

func (a *App) showFeed(ctx context.Context, path string, p views.FeedParams) error {
	p.SortBy = a.sortBy
	a.nav.Navigate(path)
	v := views.NewFeedView(a.deps, p)
	a.show(v, nil, nil)

	err := v.Load(ctx)
	printNotice(a.out, v.Notice())
	if v.Status() == views.StatusSignInRequired {
		fmt.Fprintln(a.out, "Use 'login' to sign in.")
		return err
	}
	printPosts(a.out, v)
	return err
}

// Post opens the thread of a post.
func (a *App) Post(ctx context.Context, id int) error {
	a.nav.Navigate(router.PostPath(id))
	v := views.NewThreadView(a.deps, id)
	a.show(nil, v, nil)

	if err := v.Load(ctx); err != nil {
		printNotice(a.out, v.Notice())
		return err
	}
	a.printThread()
	return nil
}

func (a *App) printThread() {
	p, ok := a.thread.Post()
	if !ok {
		return
	}
	printPost(a.out, p, a.thread.Pending())
	printComments(a.out, a.thread.Comments())
}

// onThread reports whether the thread of postID is on screen.
func (a *App) onThread(postID int) bool {
	return a.thread != nil && a.thread.PostID() == postID
}

// inFeed reports whether the listing on screen holds postID.
func (a *App) inFeed(postID int) bool {
	if a.feed == nil {
		return false
	}
	_, ok := a.feed.Post(postID)
	return ok
}

// Like toggles the like of a post in the page that shows it. A post that is
// not on screen is opened first.
func (a *App) Like(ctx context.Context, postID int) error {
	switch {
	case a.onThread(postID):
		return a.postResult(a.thread.Like(ctx), a.thread.Notice())
	case a.inFeed(postID):
		return a.postResult(a.feed.Like(ctx, postID), a.feed.Notice())
	}
	if err := a.Post(ctx, postID); err != nil {
		return err
	}
	return a.postResult(a.thread.Like(ctx), a.thread.Notice())
}

func (a *App) postResult(res optimistic.Result[models.Post], n views.Notice) error {
	printNotice(a.out, n)
	if res.Value.ID != 0 {
		printPostLine(a.out, res.Value, false)
	}
	return res.Err
}

// NewPost reads a post body and optional attachments and publishes it at the
// top of the listing on screen.
func (a *App) NewPost(ctx context.Context) error {
	content, err := GetMultiline(a.reader, "Write your post", a.out)
	if err != nil {
		return err
	}
	paths, err := GetList(a.reader, "Attach files (comma separated paths, empty for none)", a.out)
	if err != nil {
		return err
	}
	files, closeFiles, err := openFiles(paths)
	if err != nil {
		fmt.Fprintln(a.out, "! "+err.Error())
		return err
	}
	defer closeFiles()

	v := a.feed
	if v == nil {
		v = views.NewFeedView(a.deps, views.FeedParams{})
	}
	return a.postResult(v.Create(ctx, content, files), v.Notice())
}

func openFiles(paths []string) ([]models.File, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	files := make([]models.File, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open attachment: %w", err)
		}
		opened = append(opened, f)
		files = append(files, models.File{
			Name:        filepath.Base(p),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			Reader:      f,
		})
	}
	return files, closeAll, nil
}

func (a *App) EditPost(ctx context.Context, id int) error {
	if !a.onThread(id) && !a.inFeed(id) {
		if err := a.Post(ctx, id); err != nil {
			return err
		}
	}
	content, err := GetMultiline(a.reader, "New content", a.out)
	if err != nil {
		return err
	}
	if a.onThread(id) {
		return a.postResult(a.thread.EditPost(ctx, content), a.thread.Notice())
	}
	return a.postResult(a.feed.Edit(ctx, id, content), a.feed.Notice())
}

func (a *App) DeletePost(ctx context.Context, id int) error {
	if a.inFeed(id) {
		res := a.feed.Delete(ctx, id)
		printNotice(a.out, a.feed.Notice())
		return res.Err
	}
	if !a.onThread(id) {
		if err := a.Post(ctx, id); err != nil {
			return err
		}
	}
	res := a.thread.DeletePost(ctx)
	printNotice(a.out, a.thread.Notice())
	if res.OK() {
		a.show(nil, nil, nil)
	}
	return res.Err
}

// Comment adds a comment to a post, opening its thread when needed.
func (a *App) Comment(ctx context.Context, postID int) error {
	if !a.onThread(postID) {
		if err := a.Post(ctx, postID); err != nil {
			return err
		}
	}
	content, err := GetMultiline(a.reader, "Write your comment", a.out)
	if err != nil {
		return err
	}
	res := a.thread.AddComment(ctx, content)
	printNotice(a.out, a.thread.Notice())
	if res.OK() {
		printComments(a.out, a.thread.Comments())
	}
	return res.Err
}

// hasComment reports whether the thread on screen holds comment id.
func (a *App) hasComment(id int) bool {
	if a.thread == nil {
		return false
	}
	for _, c := range a.thread.Comments() {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (a *App) EditComment(ctx context.Context, id int) error {
	if !a.hasComment(id) {
		fmt.Fprintln(a.out, "Open the post with 'post <id>' first.")
		return nil
	}
	content, err := GetMultiline(a.reader, "New content", a.out)
	if err != nil {
		return err
	}
	res := a.thread.EditComment(ctx, id, content)
	printNotice(a.out, a.thread.Notice())
	return res.Err
}

func (a *App) DeleteComment(ctx context.Context, id int) error {
	if !a.hasComment(id) {
		fmt.Fprintln(a.out, "Open the post with 'post <id>' first.")
		return nil
	}
	res := a.thread.DeleteComment(ctx, id)
	printNotice(a.out, a.thread.Notice())
	return res.Err
}
