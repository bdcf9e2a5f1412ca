package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/manelromero/blog/internal/apperror"
	"github.com/manelromero/blog/internal/auth"
	"github.com/manelromero/blog/internal/service"
)

// PostHandler serves the post listing, permalink, authoring, and vote
// routes. Authentication is enforced by the router middleware; ownership
// is enforced by the service — a refused mutation comes back as a domain
// error that Renderer.Error turns into a quiet redirect.
type PostHandler struct {
	posts    *service.PostService
	renderer *Renderer
	logger   *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, renderer *Renderer, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:    posts,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleHome lists all posts, newest first.
//
// HTTP: GET / (auth required — the router redirects anonymous visitors to
// /login before this runs)
func (h *PostHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListNewestFirst(r.Context())
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	data := baseData(r)
	data["Posts"] = posts
	h.renderer.Render(w, http.StatusOK, "home.html", data)
}

// HandleVote records a vote from the listing page.
//
// HTTP: POST / — fields: post_id, vote (integer)
//
// Voting is one-shot: a second vote by the same user on the same post is a
// conflict, which redirects home with no effect — exactly what the voter
// sees on success, so double-clicking the arrow isn't an error page.
func (h *PostHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	postID := r.PostFormValue("post_id")
	direction, _ := strconv.Atoi(r.PostFormValue("vote"))

	if err := h.posts.Vote(r.Context(), user, postID, direction); err != nil {
		if !errors.Is(err, apperror.ErrConflict) {
			h.renderer.Error(w, r, err)
			return
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleNewPostForm renders the empty post form.
//
// HTTP: GET /newpost (auth required)
func (h *PostHandler) HandleNewPostForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "new-post.html", baseData(r))
}

// HandleNewPost creates a post and redirects to its permalink.
//
// HTTP: POST /newpost — fields: subject, content
func (h *PostHandler) HandleNewPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	subject := r.PostFormValue("subject")
	content := r.PostFormValue("content")

	post, err := h.posts.Create(r.Context(), user, subject, content)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			data := baseData(r)
			data["Subject"] = subject
			data["Content"] = content
			data["Error"] = errorMessage(err)
			h.renderer.Render(w, http.StatusOK, "new-post.html", data)
			return
		}
		h.renderer.Error(w, r, err)
		return
	}

	http.Redirect(w, r, "/"+post.ID, http.StatusSeeOther)
}

// HandlePermalink renders a single post with its comment thread.
//
// HTTP: GET /{postID} — public; anonymous readers see the post but not the
// comment form.
func (h *PostHandler) HandlePermalink(w http.ResponseWriter, r *http.Request) {
	h.renderPermalink(w, r, chi.URLParam(r, "postID"), "")
}

// HandleAddComment attaches a comment and re-renders the same post.
//
// HTTP: POST /{postID} — field: content (auth required)
func (h *PostHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	postID := chi.URLParam(r, "postID")
	content := r.PostFormValue("content")

	_, err := h.posts.AddComment(r.Context(), user, postID, content)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			h.renderPermalink(w, r, postID, errorMessage(err))
			return
		}
		h.renderer.Error(w, r, err)
		return
	}

	h.renderPermalink(w, r, postID, "")
}

// HandleEditForm renders the edit form pre-filled with the post.
//
// HTTP: GET /edit/{postID} (auth + ownership required; a non-owner is
// redirected home without seeing the form)
func (h *PostHandler) HandleEditForm(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	post, _, err := h.posts.GetWithComments(r.Context(), postID)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	if user == nil || user.ID != post.AuthorID {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := baseData(r)
	data["Post"] = post
	data["Subject"] = post.Subject
	data["Content"] = post.Content
	h.renderer.Render(w, http.StatusOK, "edit-post.html", data)
}

// HandleEdit applies an edit and redirects home.
//
// HTTP: POST /edit/{postID} — fields: subject, content
func (h *PostHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	postID := chi.URLParam(r, "postID")
	subject := r.PostFormValue("subject")
	content := r.PostFormValue("content")

	_, err := h.posts.Edit(r.Context(), user, postID, subject, content)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			data := baseData(r)
			data["Post"] = map[string]string{"ID": postID}
			data["Subject"] = subject
			data["Content"] = content
			data["Error"] = errorMessage(err)
			h.renderer.Render(w, http.StatusOK, "edit-post.html", data)
			return
		}
		h.renderer.Error(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleDeleteForm renders a confirmation page for deleting a post.
//
// HTTP: GET /delete/{postID} (auth + ownership required)
func (h *PostHandler) HandleDeleteForm(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	post, _, err := h.posts.GetWithComments(r.Context(), postID)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	user, _ := auth.UserFromContext(r.Context())
	if user == nil || user.ID != post.AuthorID {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := baseData(r)
	data["Post"] = post
	h.renderer.Render(w, http.StatusOK, "delete-post.html", data)
}

// HandleDelete deletes the post (with its comments and votes) and redirects
// home.
//
// HTTP: POST /delete/{postID}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	postID := chi.URLParam(r, "postID")

	if err := h.posts.Delete(r.Context(), user, postID); err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderPermalink loads and renders the permalink page, optionally with a
// comment-form error. Shared by the GET view and the comment POST.
func (h *PostHandler) renderPermalink(w http.ResponseWriter, r *http.Request, postID, commentErr string) {
	post, comments, err := h.posts.GetWithComments(r.Context(), postID)
	if err != nil {
		h.renderer.Error(w, r, err)
		return
	}

	data := baseData(r)
	data["Post"] = post
	data["Comments"] = comments
	if commentErr != "" {
		data["CommentError"] = commentErr
	}
	h.renderer.Render(w, http.StatusOK, "permalink.html", data)
}

// errorMessage extracts the human-readable message from a domain error.
func errorMessage(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong"
}
