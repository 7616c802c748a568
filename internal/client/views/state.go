package views

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/router"
	"github.com/dmitrijs2005/gophsocial/internal/client/services"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
	StatusSignInRequired
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	case StatusSignInRequired:
		return "sign-in-required"
	default:
		return "idle"
	}
}

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is the last user-visible message of a view.
type Notice struct {
	Level   Level
	Message string
}

func (n Notice) Empty() bool { return n.Message == "" }

// Posts is the posts resource client as seen by the views.
type Posts interface {
	List(ctx context.Context, opts client.ListOptions) ([]models.Post, error)
	Feed(ctx context.Context, p client.Page) ([]models.Post, error)
	Trending(ctx context.Context, p client.Page) ([]models.Post, error)
	Liked(ctx context.Context) ([]models.Post, error)
	ByHashtag(ctx context.Context, tag string) ([]models.Post, error)
	Get(ctx context.Context, postID int) (*models.Post, error)
	Create(ctx context.Context, in models.PostCreate) (*models.Post, error)
	Update(ctx context.Context, postID int, in models.PostUpdate) (*models.Post, error)
	Delete(ctx context.Context, postID int) error
}

type Comments interface {
	List(ctx context.Context, postID int) ([]models.Comment, error)
	Create(ctx context.Context, postID int, in models.CommentCreate) (*models.Comment, error)
	Update(ctx context.Context, commentID int, in models.CommentUpdate) (*models.Comment, error)
	Delete(ctx context.Context, commentID int) error
}

type Users interface {
	Get(ctx context.Context, userID int) (*models.User, error)
	Search(ctx context.Context, query string) ([]models.User, error)
	Followers(ctx context.Context, userID int) ([]models.User, error)
	Following(ctx context.Context, userID int) ([]models.User, error)
}

// Deps are the collaborators shared by every view.
type Deps struct {
	Session  services.Session
	Posts    Posts
	Comments Comments
	Users    Users
	Likes    *services.LikeService
	Follows  *services.FollowService
	Auth     *services.AuthService
	// Nav, when set, receives the redirect to the sign-in page.
	Nav router.Navigator
	Log logging.Logger

	FeedPageSize     int
	TrendingPageSize int
}

func (d *Deps) logger() logging.Logger { return logging.OrNop(d.Log) }

// state is the status, error and notice every view carries.
type state struct {
	mu     sync.Mutex
	status Status
	err    error
	notice Notice
}

func (s *state) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err is the failure that put the view in StatusFailed or
// StatusSignInRequired.
func (s *state) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *state) Notice() Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *state) set(st Status, err error) {
	s.mu.Lock()
	s.status, s.err = st, err
	s.mu.Unlock()
}

func (s *state) note(l Level, msg string) {
	s.mu.Lock()
	s.notice = Notice{Level: l, Message: msg}
	s.mu.Unlock()
}

func (s *state) clearNotice() { s.note("", "") }

// loadFailed records a failed initial fetch. The caller has already emptied
// its collection.
func (s *state) loadFailed(err error, msg string) {
	if common.KindOf(err) == common.KindUnauthenticated {
		s.set(StatusSignInRequired, err)
		s.note(LevelError, common.UserMessage(err))
		return
	}
	s.set(StatusFailed, err)
	s.note(LevelError, msg)
}

// report turns a failed user action into a notice. failMsg is shown for
// not-found and unknown failures; an unauthenticated failure also redirects
// to the sign-in page (the gateway has already cleared the session).
func (s *state) report(ctx context.Context, d *Deps, op string, err error, failMsg string) {
	kind := common.KindOf(err)
	switch kind {
	case common.KindNone:
		return
	case common.KindValidation, common.KindBusy:
		s.note(LevelError, common.UserMessage(err))
	case common.KindUnauthenticated:
		s.note(LevelError, common.UserMessage(err))
		if d.Nav != nil {
			d.Nav.Navigate(router.PathSignIn)
		}
	default:
		s.note(LevelError, failMsg)
	}
	d.logger().Info(ctx, "view action failed", "op", op, "kind", kind.String())
}

func (d *Deps) viewer() (id int, authenticated bool) {
	snap := d.Session.Snapshot()
	return snap.UserID(), snap.Authenticated
}

// author builds the embedded user of an optimistic placeholder.
func (d *Deps) author() *models.User {
	snap := d.Session.Snapshot()
	if snap.Identity == nil {
		return nil
	}
	return &models.User{
		ID:             snap.Identity.ID,
		Email:          snap.Identity.Email,
		Username:       snap.Identity.Username,
		Bio:            snap.Identity.Bio,
		FollowerCount:  snap.Identity.FollowerCount,
		FollowingCount: snap.Identity.FollowingCount,
	}
}

// tempKeys hands out negative keys for placeholders; server ids are positive.
type tempKeys struct {
	mu   sync.Mutex
	next int
}

func (t *tempKeys) take() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next--
	return t.next
}
