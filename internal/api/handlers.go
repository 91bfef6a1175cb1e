package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/api/objects"
	"github.com/yatube/yatube/internal/auth"
	"github.com/yatube/yatube/internal/feed"
	"github.com/yatube/yatube/internal/follow"
	"github.com/yatube/yatube/internal/media"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/internal/posts"
	"github.com/yatube/yatube/pkg/logging"
)

// Handlers serves the feed, follow and post views
type Handlers struct {
	feed     *feed.Service
	follow   *follow.Service
	posts    *posts.Service
	media    media.Store
	objects  *objects.Builder
	loginURL string
	logger   *zap.Logger
}

// NewHandlers creates the view handlers
func NewHandlers(feedSvc *feed.Service, followSvc *follow.Service, postsSvc *posts.Service, mediaStore media.Store, loginURL string) *Handlers {
	return &Handlers{
		feed:     feedSvc,
		follow:   followSvc,
		posts:    postsSvc,
		media:    mediaStore,
		objects:  objects.NewBuilder(mediaStore.URL),
		loginURL: loginURL,
		logger:   logging.WithComponent("views"),
	}
}

func postIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errPageNotFound
	}
	return id, nil
}

// index renders every post
func (h *Handlers) index(c *gin.Context) {
	page, err := h.feed.Global(c.Request.Context(), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/index.html", gin.H{
		"page_obj": h.objects.Page(page),
	})
}

// groupPosts renders the posts of one group
func (h *Handlers) groupPosts(c *gin.Context) {
	g, err := h.feed.Group(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/group_list.html", gin.H{
		"group":    h.objects.Group(g.Group),
		"page_obj": h.objects.Page(g.Page),
	})
}

// profile renders the posts of one author
func (h *Handlers) profile(c *gin.Context) {
	p, err := h.feed.Profile(c.Request.Context(), auth.CurrentUser(c), c.Param("username"), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/profile.html", gin.H{
		"author":             h.objects.User(p.Author),
		"author_posts_count": p.PostCount,
		"following":          p.Following,
		"is_self":            p.IsSelf,
		"is_profile":         true,
		"page_obj":           h.objects.Page(p.Page),
	})
}

// followIndex renders posts by the authors the viewer follows
func (h *Handlers) followIndex(c *gin.Context) {
	f, err := h.feed.Followed(c.Request.Context(), auth.CurrentUser(c), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/follow.html", gin.H{
		"is_following": f.HasPosts,
		"page_obj":     h.objects.Page(f.Page),
	})
}

// profileFollow follows the author and returns to their profile
func (h *Handlers) profileFollow(c *gin.Context) {
	res, err := h.follow.Follow(c.Request.Context(), auth.CurrentUser(c), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, objects.ProfileURL(res.Target.Username))
}

// profileUnfollow unfollows the author and returns to their profile
func (h *Handlers) profileUnfollow(c *gin.Context) {
	res, err := h.follow.Unfollow(c.Request.Context(), auth.CurrentUser(c), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, objects.ProfileURL(res.Target.Username))
}

// postDetail renders a post with its comments
func (h *Handlers) postDetail(c *gin.Context) {
	id, err := postIDParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.renderDetail(c, id, http.StatusOK, objects.Form(nil, nil))
}

func (h *Handlers) renderDetail(c *gin.Context, postID int64, status int, form map[string]interface{}) {
	d, err := h.posts.Detail(c.Request.Context(), auth.CurrentUser(c), postID)
	if err != nil {
		h.fail(c, err)
		return
	}
	ctx := gin.H{
		"post":               h.objects.Post(d.Post),
		"author_posts_count": d.AuthorPostCount,
		"comments":           h.objects.Comments(d.Comments),
		"form":               form,
	}
	if d.IsEdit {
		ctx["is_edit"] = true
	}
	h.render(c, status, "posts/post_detail.html", ctx)
}

// postCreateForm renders an empty post form
func (h *Handlers) postCreateForm(c *gin.Context) {
	h.render(c, http.StatusOK, "posts/create_post.html", gin.H{
		"form": objects.Form(nil, nil),
	})
}

// postCreate publishes a post and returns to the author's profile
func (h *Handlers) postCreate(c *gin.Context) {
	viewer := auth.CurrentUser(c)

	form, ok := h.bindPostForm(c, "posts/create_post.html", gin.H{})
	if !ok {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), viewer, form)
	if h.formFailed(c, err, form, "posts/create_post.html", gin.H{}) {
		return
	}
	h.logger.Debug("Redirecting after create", zap.Int64("post_id", post.ID))
	c.Redirect(http.StatusFound, objects.ProfileURL(viewer.Username))
}

// postEditForm renders the edit form for the viewer's own post
func (h *Handlers) postEditForm(c *gin.Context) {
	id, err := postIDParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	post, err := h.posts.EditForm(c.Request.Context(), auth.CurrentUser(c), id)
	if errors.Is(err, posts.ErrForbidden) {
		c.Redirect(http.StatusFound, objects.PostURL(id))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.render(c, http.StatusOK, "posts/create_post.html", gin.H{
		"form":    objects.Form(postFormData(post), nil),
		"post":    h.objects.Post(post),
		"is_edit": true,
	})
}

// postEdit saves the viewer's changes and returns to the post
func (h *Handlers) postEdit(c *gin.Context) {
	id, err := postIDParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	viewer := auth.CurrentUser(c)

	// authorship is checked before the upload is stored
	if _, err := h.posts.EditForm(c.Request.Context(), viewer, id); err != nil {
		if errors.Is(err, posts.ErrForbidden) {
			c.Redirect(http.StatusFound, objects.PostURL(id))
			return
		}
		h.fail(c, err)
		return
	}

	extra := gin.H{"is_edit": true}
	form, ok := h.bindPostForm(c, "posts/create_post.html", extra)
	if !ok {
		return
	}

	_, err = h.posts.Edit(c.Request.Context(), viewer, id, form)
	if errors.Is(err, posts.ErrForbidden) {
		c.Redirect(http.StatusFound, objects.PostURL(id))
		return
	}
	if h.formFailed(c, err, form, "posts/create_post.html", extra) {
		return
	}
	c.Redirect(http.StatusFound, objects.PostURL(id))
}

// addComment leaves a comment and returns to the post
func (h *Handlers) addComment(c *gin.Context) {
	id, err := postIDParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var form posts.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, NewError(http.StatusBadRequest, "invalid form"))
		return
	}

	_, err = h.posts.AddComment(c.Request.Context(), auth.CurrentUser(c), id, form)
	var verr *posts.ValidationError
	if errors.As(err, &verr) {
		h.renderDetail(c, id, http.StatusBadRequest,
			objects.Form(map[string]string{"text": form.Text}, verr.Fields))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, objects.PostURL(id))
}

// bindPostForm reads the post form and stores an attached image. It renders
// the form with errors and returns false when the input is rejected.
func (h *Handlers) bindPostForm(c *gin.Context, template string, extra gin.H) (posts.PostForm, bool) {
	var form posts.PostForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, NewError(http.StatusBadRequest, "invalid form"))
		return form, false
	}

	// text and group are checked first so a rejected form stores no file
	if err := h.posts.Validate(c.Request.Context(), form); h.formFailed(c, err, form, template, extra) {
		return form, false
	}

	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return form, true
	}
	if err != nil {
		h.fail(c, NewError(http.StatusBadRequest, "invalid upload"))
		return form, false
	}

	ref, err := h.media.Save(c.Request.Context(), file)
	if errors.Is(err, media.ErrNotImage) {
		err = posts.NewValidationError("image", posts.MsgInvalidImage)
	}
	if h.formFailed(c, err, form, template, extra) {
		return form, false
	}
	form.Image = ref
	return form, true
}

// formFailed renders err and reports whether there was one. Validation errors
// re-show the form with field messages.
func (h *Handlers) formFailed(c *gin.Context, err error, form posts.PostForm, template string, extra gin.H) bool {
	if err == nil {
		return false
	}

	var verr *posts.ValidationError
	if !errors.As(err, &verr) {
		h.fail(c, err)
		return true
	}

	ctx := gin.H{
		"form": objects.Form(map[string]string{"text": form.Text, "group": form.Group}, verr.Fields),
	}
	for k, v := range extra {
		ctx[k] = v
	}
	h.render(c, http.StatusBadRequest, template, ctx)
	return true
}

func postFormData(p *models.Post) map[string]string {
	data := map[string]string{"text": p.Text, "group": ""}
	if p.GroupID != nil {
		data["group"] = strconv.FormatInt(*p.GroupID, 10)
	}
	return data
}
