package blog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/caminemosjuntos/counseling/internal/auth"
	"github.com/caminemosjuntos/counseling/internal/middleware"
	"github.com/caminemosjuntos/counseling/internal/telemetry/metrics"
	"github.com/caminemosjuntos/counseling/internal/web"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	flashLoginToComment = "Necesitás estar logueado para comentar el post."
	flashTitleTaken     = "Ya existe un post con ese título."
)

type blogRepo interface {
	AddPost(ctx context.Context, post *Post) error
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id int) error
	All(ctx context.Context) ([]*Post, error)
	GetPost(ctx context.Context, id int) (*Post, error)
	AddComment(ctx context.Context, comment *Comment) error
	PostComments(ctx context.Context, postID int) ([]*Comment, error)
}

type postForm struct {
	Title    string `validate:"required,max=250" label:"Título"`
	Subtitle string `validate:"required,max=250" label:"Subtítulo"`
	ImgURL   string `validate:"required,url,max=400" label:"Url de imagen"`
	Body     string `validate:"required" label:"Contenido"`
}

type commentForm struct {
	Text string `validate:"required" label:"Comentario"`
}

type indexPage struct {
	Posts []*Post
}

type postPage struct {
	Post        *Post
	Comments    []*Comment
	CommentText string
}

type makePostPage struct {
	Form   postForm
	IsEdit bool
	PostID int
}

type Handler struct {
	repo           blogRepo
	cookies        *auth.SessionStore
	renderer       *web.Renderer
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewHandler(
	repo blogRepo,
	cookies *auth.SessionStore,
	renderer *web.Renderer,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		cookies:        cookies,
		renderer:       renderer,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(handler.renderer.ForbiddenHandler())(h)
	}

	router.HandleFunc("/", handler.handleIndex).Methods("GET").Name("index")
	router.HandleFunc("/post/{id:[0-9]+}", handler.handleShowPost).Methods("GET").Name("show-post")
	router.HandleFunc("/post/{id:[0-9]+}", handler.handleAddComment).Methods("POST").Name("add-comment")

	router.Handle("/new-post", adminOnly(handler.handleNewPostForm)).Methods("GET").Name("new-post")
	router.Handle("/new-post", adminOnly(handler.handleNewPost)).Methods("POST").Name("new-post-post")
	router.Handle("/edit-post/{id:[0-9]+}", adminOnly(handler.handleEditPostForm)).Methods("GET").Name("edit-post")
	router.Handle("/edit-post/{id:[0-9]+}", adminOnly(handler.handleEditPost)).Methods("POST").Name("edit-post-post")
	router.Handle("/delete/{id:[0-9]+}", adminOnly(handler.handleDeletePost)).Methods("GET").Name("delete-post")
}

func (handler *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("index, get all posts: %s", err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	handler.renderer.Render(w, r, http.StatusOK, "index", "Blog", indexPage{Posts: posts})
}

func (handler *Handler) handleShowPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := handler.postID(w, r)
	if !ok {
		return
	}
	handler.renderPost(w, r, http.StatusOK, postID, "")
}

func (handler *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := handler.postID(w, r)
	if !ok {
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		handler.cookies.AddFlash(w, r, flashLoginToComment)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	form := commentForm{Text: web.FormValue(r, "comment_text")}
	if messages := web.ValidateForm(form); len(messages) > 0 {
		for _, msg := range messages {
			handler.cookies.AddFlash(w, r, msg)
		}
		handler.renderPost(w, r, http.StatusUnprocessableEntity, postID, form.Text)
		return
	}

	comment := &Comment{
		PostID:   postID,
		AuthorID: identity.ID,
		Text:     form.Text,
	}
	if err := handler.repo.AddComment(r.Context(), comment); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			handler.renderer.RenderError(w, r, http.StatusNotFound)
			return
		}
		log.Errorf("add comment to post %d: %s", postID, err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterComments.Inc()
	log.Tracef("user %d commented on post %d", identity.ID, postID)

	http.Redirect(w, r, fmt.Sprintf("/post/%d", postID), http.StatusSeeOther)
}

func (handler *Handler) handleNewPostForm(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, http.StatusOK, "make-post", "Nuevo post", makePostPage{})
}

func (handler *Handler) handleNewPost(w http.ResponseWriter, r *http.Request) {
	form := readPostForm(r)
	page := makePostPage{Form: form}
	if messages := web.ValidateForm(form); len(messages) > 0 {
		handler.renderer.RenderInvalid(w, r, "make-post", "Nuevo post", messages, page)
		return
	}

	post := &Post{
		AuthorID: auth.IdentityFromContext(r.Context()).ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Date:     handler.now().Format(DateLayout),
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	}
	if err := handler.repo.AddPost(r.Context(), post); err != nil {
		if errors.Is(err, ErrPostTitleTaken) {
			handler.renderer.RenderInvalid(w, r, "make-post", "Nuevo post", []string{flashTitleTaken}, page)
			return
		}
		log.Errorf("add new post [%s]: %s", post.Title, err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	log.Debugf("new post %d: [%s] added", post.ID, post.Title)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (handler *Handler) handleEditPostForm(w http.ResponseWriter, r *http.Request) {
	postID, ok := handler.postID(w, r)
	if !ok {
		return
	}

	post, err := handler.repo.GetPost(r.Context(), postID)
	if err != nil {
		handler.renderRepoError(w, r, fmt.Sprintf("edit post %d, get post", postID), err)
		return
	}

	handler.renderer.Render(w, r, http.StatusOK, "make-post", "Editar post", makePostPage{
		Form: postForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			ImgURL:   post.ImgURL,
			Body:     post.Body,
		},
		IsEdit: true,
		PostID: post.ID,
	})
}

func (handler *Handler) handleEditPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := handler.postID(w, r)
	if !ok {
		return
	}

	form := readPostForm(r)
	page := makePostPage{Form: form, IsEdit: true, PostID: postID}
	if messages := web.ValidateForm(form); len(messages) > 0 {
		handler.renderer.RenderInvalid(w, r, "make-post", "Editar post", messages, page)
		return
	}

	err := handler.repo.UpdatePost(r.Context(), &Post{
		ID:       postID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	})
	if errors.Is(err, ErrPostTitleTaken) {
		handler.renderer.RenderInvalid(w, r, "make-post", "Editar post", []string{flashTitleTaken}, page)
		return
	}
	if err != nil {
		handler.renderRepoError(w, r, fmt.Sprintf("update post %d", postID), err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", postID), http.StatusSeeOther)
}

func (handler *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := handler.postID(w, r)
	if !ok {
		return
	}

	if err := handler.repo.DeletePost(r.Context(), postID); err != nil {
		handler.renderRepoError(w, r, fmt.Sprintf("delete post %d", postID), err)
		return
	}

	log.Debugf("post %d deleted", postID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (handler *Handler) renderPost(w http.ResponseWriter, r *http.Request, status, postID int, commentText string) {
	post, err := handler.repo.GetPost(r.Context(), postID)
	if err != nil {
		handler.renderRepoError(w, r, fmt.Sprintf("show post %d", postID), err)
		return
	}

	comments, err := handler.repo.PostComments(r.Context(), postID)
	if err != nil {
		log.Errorf("show post %d, get comments: %s", postID, err)
		handler.renderer.RenderError(w, r, http.StatusInternalServerError)
		return
	}

	handler.renderer.Render(w, r, status, "post", post.Title, postPage{
		Post:        post,
		Comments:    comments,
		CommentText: commentText,
	})
}

// renderRepoError renders 404 for a missing post and logs everything else as a 500
func (handler *Handler) renderRepoError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, ErrPostNotFound) {
		handler.renderer.RenderError(w, r, http.StatusNotFound)
		return
	}
	log.Errorf("%s: %s", op, err)
	handler.renderer.RenderError(w, r, http.StatusInternalServerError)
}

func (handler *Handler) postID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		// only reachable with ids overflowing int, the route only matches digits
		handler.renderer.RenderError(w, r, http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func readPostForm(r *http.Request) postForm {
	return postForm{
		Title:    web.FormValue(r, "title"),
		Subtitle: web.FormValue(r, "subtitle"),
		ImgURL:   web.FormValue(r, "img_url"),
		Body:     web.FormValue(r, "body"),
	}
}
