package views

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/optimistic"
	"github.com/dmitrijs2005/gophsocial/internal/client/services"
	"github.com/dmitrijs2005/gophsocial/internal/common"
)

// ProfileView shows one user, their posts and the follow affordance.
type ProfileView struct {
	state
	d      *Deps
	userID int
	user   *services.UserCell
	posts  *FeedView
}

func NewProfileView(d *Deps, userID int) *ProfileView {
	return &ProfileView{
		d:      d,
		userID: userID,
		user:   optimistic.NewCell(services.UserKey, optimistic.WithName("follow"), optimistic.WithLogger(d.logger())),
		posts:  NewFeedView(d, FeedParams{UserID: userID}),
	}
}

func (v *ProfileView) UserID() int { return v.userID }

func (v *ProfileView) User() (models.User, bool) { return v.user.Get() }

// Posts is the author's listing. Its own status reports fetch failures.
func (v *ProfileView) Posts() *FeedView { return v.posts }

// Load fetches the user and then the user's posts. A posts failure does not
// fail the profile.
func (v *ProfileView) Load(ctx context.Context) error {
	v.set(StatusLoading, nil)
	v.clearNotice()

	u, err := v.d.Users.Get(ctx, v.userID)
	if err != nil {
		v.user.Clear()
		msg := "Failed to load the profile. Please try again later."
		if common.KindOf(err) == common.KindNotFound {
			msg = "User not found."
		}
		v.loadFailed(err, msg)
		return err
	}
	v.user.Set(*u)
	_ = v.posts.Load(ctx)
	v.set(StatusReady, nil)
	return nil
}

// IsOwn reports whether the profile belongs to the viewer.
func (v *ProfileView) IsOwn() bool {
	id, ok := v.d.viewer()
	return ok && id == v.userID
}

// FollowVisible is false on one's own profile, whatever is_following says.
func (v *ProfileView) FollowVisible() bool {
	id, ok := v.d.viewer()
	return services.FollowVisible(id, v.userID, ok)
}

func (v *ProfileView) Pending() bool { return v.user.InFlight() }

func (v *ProfileView) ToggleFollow(ctx context.Context) optimistic.Result[models.User] {
	res := v.d.Follows.Toggle(ctx, v.user)
	v.report(ctx, v.d, "follow", res.Err, "Could not update follow. Please try again later.")
	return res
}

func (v *ProfileView) Followers(ctx context.Context) ([]models.User, error) {
	return v.people(ctx, "followers", v.d.Users.Followers)
}

func (v *ProfileView) Following(ctx context.Context) ([]models.User, error) {
	return v.people(ctx, "following", v.d.Users.Following)
}

func (v *ProfileView) people(ctx context.Context, op string, fetch func(context.Context, int) ([]models.User, error)) ([]models.User, error) {
	users, err := fetch(ctx, v.userID)
	if err != nil {
		v.report(ctx, v.d, op, err, "Failed to load users. Please try again later.")
		return nil, err
	}
	return users, nil
}
