package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/views"
)

const (
	timeLayout     = "2006-01-02 15:04"
	previewLength  = 120
	pendingMarker  = " (saving...)"
	unsavedMarker  = " (publishing...)"
	followingLabel = "following"
)

func printNotice(w io.Writer, n views.Notice) {
	if n.Empty() {
		return
	}
	switch n.Level {
	case views.LevelError:
		fmt.Fprintln(w, "! "+n.Message)
	case views.LevelSuccess:
		fmt.Fprintln(w, "✓ "+n.Message)
	default:
		fmt.Fprintln(w, n.Message)
	}
}

func likeMark(p models.Post) string {
	if p.IsLiked {
		return "♥"
	}
	return "♡"
}

// printPostLine is the one-line listing form of a post.
func printPostLine(w io.Writer, p models.Post, pending bool) {
	suffix := ""
	switch {
	case p.ID < 0:
		suffix = unsavedMarker
	case pending:
		suffix = pendingMarker
	}
	id := fmt.Sprintf("#%d", p.ID)
	if p.ID < 0 {
		id = "#-"
	}
	content := strings.ReplaceAll(models.Truncate(p.Content, previewLength), "\n", " ")
	fmt.Fprintf(w, "%-6s %s: %s  %s %d%s\n", id, p.Author(), content, likeMark(p), p.LikeCount, suffix)
}

func printPost(w io.Writer, p models.Post, pending bool) {
	suffix := ""
	if pending {
		suffix = pendingMarker
	}
	fmt.Fprintf(w, "Post #%d by %s, %s%s\n", p.ID, p.Author(), p.CreatedAt.Local().Format(timeLayout), suffix)
	fmt.Fprintln(w, p.Content)
	for _, img := range p.Images {
		fmt.Fprintln(w, "  [image] "+img.URL)
	}
	if len(p.Hashtags) > 0 {
		tags := make([]string, 0, len(p.Hashtags))
		for _, h := range p.Hashtags {
			tags = append(tags, "#"+h.Name)
		}
		fmt.Fprintln(w, "  "+strings.Join(tags, " "))
	}
	fmt.Fprintf(w, "  %s %d\n", likeMark(p), p.LikeCount)
}

func printPosts(w io.Writer, v *views.FeedView) {
	posts := v.Posts()
	if len(posts) == 0 && v.Status() == views.StatusReady {
		fmt.Fprintln(w, "No posts yet.")
		return
	}
	for _, p := range posts {
		printPostLine(w, p, v.Pending(p.ID))
	}
}

func printComments(w io.Writer, cs []models.Comment) {
	if len(cs) == 0 {
		fmt.Fprintln(w, "No comments yet.")
		return
	}
	fmt.Fprintf(w, "%d comments:\n", len(cs))
	for _, c := range cs {
		id := fmt.Sprintf("#%d", c.ID)
		if c.ID < 0 {
			id = "#-"
		}
		fmt.Fprintf(w, "  %-6s %s: %s\n", id, c.Author(), strings.ReplaceAll(c.Content, "\n", " "))
	}
}

func printUser(w io.Writer, u models.User, followVisible, pending bool) {
	fmt.Fprintf(w, "%s (#%d)\n", u.Username, u.ID)
	if u.Bio != "" {
		fmt.Fprintln(w, u.Bio)
	}
	line := fmt.Sprintf("  %d followers, %d following", u.FollowerCount, u.FollowingCount)
	if followVisible && u.Following() {
		line += ", you are " + followingLabel
	}
	if pending {
		line += pendingMarker
	}
	fmt.Fprintln(w, line)
}

func printUsers(w io.Writer, users []models.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users.")
		return
	}
	for _, u := range users {
		fmt.Fprintf(w, "  #%-5d %s\n", u.ID, u.Username)
	}
}
