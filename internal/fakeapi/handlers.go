package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/go-chi/chi/v5"
)

// ---- users ----

func (s *Server) addUser(email, username, bio, password string) *user {
	u := &user{
		User: models.User{
			ID:        s.id(),
			Email:     email,
			Username:  username,
			Bio:       bio,
			CreatedAt: epoch,
		},
		password: password,
	}
	s.users[u.ID] = u
	return u
}

// userView must be called with mu held.
func (s *Server) userView(u *user, viewer int) models.User {
	out := u.User
	out.FollowerCount, out.FollowingCount = 0, 0
	for edge := range s.follows {
		if edge[1] == u.ID {
			out.FollowerCount++
		}
		if edge[0] == u.ID {
			out.FollowingCount++
		}
	}
	if viewer != 0 {
		f := s.follows[[2]int{viewer, u.ID}]
		out.IsFollowing = &f
	}
	return out
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request, _ int) {
	var in models.UserCreate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, in.Email) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	u := s.addUser(in.Email, in.Username, in.Bio, in.Password)
	writeJSON(w, http.StatusOK, s.userView(u, 0))
}

func (s *Server) token(w http.ResponseWriter, r *http.Request, _ int) {
	var in models.UserLogin
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, in.Email) && u.password == in.Password {
			writeJSON(w, http.StatusOK, models.Token{AccessToken: s.issue(u.ID), TokenType: "bearer"})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Incorrect email or password")
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, viewer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.userView(s.users[viewer], viewer))
}

func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request, viewer int) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.User{}
	for id := 1; id <= s.nextID; id++ {
		u, ok := s.users[id]
		if ok && q != "" && strings.Contains(strings.ToLower(u.Username), q) {
			out = append(out, s.userView(u, viewer))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) lookupUser(w http.ResponseWriter, r *http.Request) (*user, bool) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "invalid id")
		return nil, false
	}
	u, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	return u, true
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request, viewer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.lookupUser(w, r); ok {
		writeJSON(w, http.StatusOK, s.userView(u, viewer))
	}
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, viewer int) {
	var in models.UserUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.lookupUser(w, r)
	if !ok {
		return
	}
	if u.ID != viewer {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	writeJSON(w, http.StatusOK, s.userView(u, viewer))
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request, viewer int) {
	var in models.PasswordUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.lookupUser(w, r)
	if !ok {
		return
	}
	if u.ID != viewer {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	if u.password != in.OldPassword {
		writeError(w, http.StatusBadRequest, "Incorrect password")
		return
	}
	u.password = in.NewPassword
	writeJSON(w, http.StatusOK, s.userView(u, viewer))
}

func (s *Server) follow(on bool) handler {
	return func(w http.ResponseWriter, r *http.Request, viewer int) {
		s.mu.Lock()
		defer s.mu.Unlock()
		u, ok := s.lookupUser(w, r)
		if !ok {
			return
		}
		if u.ID == viewer {
			writeError(w, http.StatusBadRequest, "You cannot follow yourself")
			return
		}
		edge := [2]int{viewer, u.ID}
		if on {
			s.follows[edge] = true
		} else {
			delete(s.follows, edge)
		}
		if s.VoidMutations {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, s.userView(u, viewer))
	}
}

func (s *Server) followList(followers bool) handler {
	return func(w http.ResponseWriter, r *http.Request, viewer int) {
		s.mu.Lock()
		defer s.mu.Unlock()
		u, ok := s.lookupUser(w, r)
		if !ok {
			return
		}
		out := []models.User{}
		for id := 1; id <= s.nextID; id++ {
			other, ok := s.users[id]
			if !ok {
				continue
			}
			edge := [2]int{u.ID, id}
			if followers {
				edge = [2]int{id, u.ID}
			}
			if s.follows[edge] {
				out = append(out, s.userView(other, viewer))
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ---- posts ----

func (s *Server) addPost(userID int, content string) *post {
	id := s.id()
	p := &post{
		id:        id,
		userID:    userID,
		content:   content,
		createdAt: epoch.Add(time.Duration(id) * time.Minute),
		likes:     map[int]bool{},
	}
	s.posts[id] = p
	return p
}

// view must be called with mu held.
func (s *Server) view(p *post, viewer int) models.Post {
	out := models.Post{
		ID:        p.id,
		Content:   p.content,
		UserID:    p.userID,
		CreatedAt: p.createdAt,
		LikeCount: p.baseLikes + len(p.likes),
		IsLiked:   viewer != 0 && p.likes[viewer],
		Hashtags:  []models.Hashtag{},
		Images:    append([]models.Image{}, p.images...),
	}
	if u, ok := s.users[p.userID]; ok {
		author := s.userView(u, viewer)
		out.User = &author
	}
	for i, name := range models.ExtractHashtags(p.content) {
		out.Hashtags = append(out.Hashtags, models.Hashtag{ID: i + 1, Name: name})
	}
	return out
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request, viewer int) {
	userID := queryInt(r, "user_id", 0)
	if userID == 0 && viewer == 0 {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.sortedPosts(func(p *post) bool { return userID == 0 || p.userID == userID })
	if r.URL.Query().Get("sort_by") == "oldest" {
		for i, j := 0, len(ps)-1; i < j; i, j = i+1, j-1 {
			ps[i], ps[j] = ps[j], ps[i]
		}
	}
	ps = page(ps, queryInt(r, "skip", 0), queryInt(r, "limit", 100))
	writeJSON(w, http.StatusOK, s.views(ps, viewer))
}

func (s *Server) feed(w http.ResponseWriter, r *http.Request, viewer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.sortedPosts(func(p *post) bool { return s.follows[[2]int{viewer, p.userID}] })
	ps = page(ps, queryInt(r, "skip", 0), queryInt(r, "limit", 100))
	writeJSON(w, http.StatusOK, s.views(ps, viewer))
}

func (s *Server) trending(w http.ResponseWriter, r *http.Request, viewer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.sortedPosts(func(*post) bool { return true })
	count := func(p *post) int { return p.baseLikes + len(p.likes) }
	// stable on the newest-first order
	for i := 1; i < len(ps); i++ {
		for j := i; j > 0 && count(ps[j]) > count(ps[j-1]); j-- {
			ps[j], ps[j-1] = ps[j-1], ps[j]
		}
	}
	ps = page(ps, queryInt(r, "skip", 0), queryInt(r, "limit", 10))
	writeJSON(w, http.StatusOK, s.views(ps, viewer))
}

func (s *Server) liked(w http.ResponseWriter, _ *http.Request, viewer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.sortedPosts(func(p *post) bool { return p.likes[viewer] })
	writeJSON(w, http.StatusOK, s.views(ps, viewer))
}

func (s *Server) tagPosts(w http.ResponseWriter, r *http.Request, viewer int) {
	tag := strings.ToLower(chi.URLParam(r, "name"))
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.sortedPosts(func(p *post) bool {
		for _, t := range models.ExtractHashtags(p.content) {
			if strings.ToLower(t) == tag {
				return true
			}
		}
		return false
	})
	writeJSON(w, http.StatusOK, s.views(ps, viewer))
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request, viewer int) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form")
		return
	}
	content := r.FormValue("content")
	if strings.TrimSpace(content) == "" {
		writeError(w, http.StatusBadRequest, "Content must not be empty")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.addPost(viewer, content)
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			p.images = append(p.images, models.Image{ID: s.id(), URL: "/static/" + fh.Filename})
		}
	}
	writeJSON(w, http.StatusOK, s.view(p, viewer))
}

func (s *Server) lookupPost(w http.ResponseWriter, r *http.Request) (*post, bool) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "invalid id")
		return nil, false
	}
	p, ok := s.posts[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Post not found")
		return nil, false
	}
	return p, true
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request, viewer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.lookupPost(w, r); ok {
		writeJSON(w, http.StatusOK, s.view(p, viewer))
	}
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request, viewer int) {
	var in models.PostUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.lookupPost(w, r)
	if !ok {
		return
	}
	if p.userID != viewer {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			writeError(w, http.StatusBadRequest, "Content must not be empty")
			return
		}
		p.content = *in.Content
	}
	writeJSON(w, http.StatusOK, s.view(p, viewer))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request, viewer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.lookupPost(w, r)
	if !ok {
		return
	}
	if p.userID != viewer {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	delete(s.posts, p.id)
	for id, c := range s.comments {
		if c.PostID == p.id {
			delete(s.comments, id)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) like(on bool) handler {
	return func(w http.ResponseWriter, r *http.Request, viewer int) {
		s.mu.Lock()
		defer s.mu.Unlock()
		p, ok := s.lookupPost(w, r)
		if !ok {
			return
		}
		if on {
			p.likes[viewer] = true
		} else {
			delete(p.likes, viewer)
		}
		if s.VoidMutations {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, s.view(p, viewer))
	}
}

// ---- comments ----

func (s *Server) addComment(postID, userID int, content string) *models.Comment {
	id := s.id()
	c := &models.Comment{
		ID:        id,
		Content:   content,
		PostID:    postID,
		UserID:    userID,
		CreatedAt: epoch.Add(time.Duration(id) * time.Minute),
	}
	s.comments[id] = c
	return c
}

func (s *Server) commentView(c *models.Comment, viewer int) models.Comment {
	out := *c
	if u, ok := s.users[c.UserID]; ok {
		author := s.userView(u, viewer)
		out.User = &author
	}
	return out
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request, viewer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.lookupPost(w, r)
	if !ok {
		return
	}
	out := []models.Comment{}
	for id := 1; id <= s.nextID; id++ {
		if c, ok := s.comments[id]; ok && c.PostID == p.id {
			out = append(out, s.commentView(c, viewer))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createComment(w http.ResponseWriter, r *http.Request, viewer int) {
	var in models.CommentCreate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.lookupPost(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(in.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content must not be empty")
		return
	}
	c := s.addComment(p.id, viewer, in.Content)
	writeJSON(w, http.StatusOK, s.commentView(c, viewer))
}

func (s *Server) lookupComment(w http.ResponseWriter, r *http.Request, viewer int) (*models.Comment, bool) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "invalid id")
		return nil, false
	}
	c, ok := s.comments[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Comment not found")
		return nil, false
	}
	if c.UserID != viewer {
		writeError(w, http.StatusForbidden, "Not enough permissions")
		return nil, false
	}
	return c, true
}

func (s *Server) updateComment(w http.ResponseWriter, r *http.Request, viewer int) {
	var in models.CommentUpdate
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.lookupComment(w, r, viewer)
	if !ok {
		return
	}
	if strings.TrimSpace(in.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content must not be empty")
		return
	}
	c.Content = in.Content
	writeJSON(w, http.StatusOK, s.commentView(c, viewer))
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request, viewer int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.lookupComment(w, r, viewer)
	if !ok {
		return
	}
	delete(s.comments, c.ID)
	w.WriteHeader(http.StatusNoContent)
}
