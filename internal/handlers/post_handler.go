package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/caiots/vorp-friends/internal/identity"
	"github.com/caiots/vorp-friends/internal/imaging"
	"github.com/caiots/vorp-friends/internal/models"
	"github.com/caiots/vorp-friends/internal/repositories"
)

// PostHandler handles HTTP requests related to posts and likes
type PostHandler struct {
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
	identity          *identity.Service
	images            *imaging.Client
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, identitySvc *identity.Service, images *imaging.Client) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		commentRepository: commentRepo,
		identity:          identitySvc,
		images:            images,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts/feed", h.GetFeed)
	g.POST("/posts", h.CreatePost)
	g.PATCH("/posts/:postId", h.UpdatePost)
	g.DELETE("/posts/:postId", h.DeletePost)
	g.POST("/posts/like/:postId", h.LikePost)
	g.DELETE("/posts/like/:postId", h.UnlikePost)
}

// GetFeed returns the newest-first post feed, optionally filtered by author
// and by a createdAt cutoff
func (h *PostHandler) GetFeed(c echo.Context) error {
	userID := currentUserID(c)
	page, limit := parsePagination(c, 10, 50)

	filter := repositories.FeedFilter{AuthorID: c.QueryParam("authorId")}
	if raw := c.QueryParam("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Parâmetro since inválido")
		}
		filter.Since = &since
	}

	ctx := c.Request().Context()
	posts, err := h.postRepository.Find(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.postRepository.Count(ctx, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ids := make([]string, 0, len(posts))
	for i := range posts {
		ids = append(ids, posts[i].AuthorID)
	}
	users := h.identity.GetUsers(ctx, ids)

	data := make([]models.PostData, 0, len(posts))
	for i := range posts {
		data = append(data, hydratePost(&posts[i], users[posts[i].AuthorID], userID))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       data,
		"pagination": newPagination(page, limit, total),
	})
}

// CreatePost creates a new post. The body is either JSON (content plus an
// optional location) or multipart form data carrying image files under the
// "images" field. Failed image uploads are logged and skipped; the post is
// still created with whatever uploaded successfully.
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := currentUserID(c)

	var content string
	var location *models.Location
	var images []models.ImageRef

	contentType := c.Request().Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
		content = c.FormValue("content")
		if raw := c.FormValue("location"); raw != "" {
			location = &models.Location{}
			if err := json.Unmarshal([]byte(raw), location); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Localização inválida")
			}
		}

		for _, fileHeader := range form.File["images"] {
			file, err := fileHeader.Open()
			if err != nil {
				log.Printf("posts: open upload %s: %v", fileHeader.Filename, err)
				continue
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				log.Printf("posts: read upload %s: %v", fileHeader.Filename, err)
				continue
			}

			ref, err := h.images.Upload(c.Request().Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
			if err != nil {
				log.Printf("posts: upload %s: %v", fileHeader.Filename, err)
				continue
			}
			images = append(images, models.ImageRef{UUID: ref.UUID, URL: ref.URL})
		}
	} else {
		var req models.CreatePostRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
		}
		content = req.Content
		location = req.Location
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Conteúdo do post é obrigatório")
	}
	if len([]rune(content)) > 500 {
		return echo.NewHTTPError(http.StatusBadRequest, "Conteúdo do post deve ter no máximo 500 caracteres")
	}

	post := &models.Post{
		Content:  content,
		AuthorID: userID,
		Location: location,
		Images:   images,
	}
	ctx := c.Request().Context()
	if err := h.postRepository.Create(ctx, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	author := h.identity.GetUser(ctx, userID)
	data := hydratePost(post, author, userID)
	return c.JSON(http.StatusCreated, echo.Map{"data": data})
}

// UpdatePost edits the content of the caller's own post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID := currentUserID(c)
	postID := c.Param("postId")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	post, err := h.postRepository.GetByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if post == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post não encontrado")
	}
	if post.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Você não pode editar este post")
	}

	updated, err := h.postRepository.UpdateContent(ctx, postID, req.Content)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if updated == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post não encontrado")
	}

	author := h.identity.GetUser(ctx, userID)
	data := hydratePost(updated, author, userID)
	return c.JSON(http.StatusOK, echo.Map{"data": data})
}

// DeletePost removes the caller's own post, its hosted images and all of
// its comments. Image deletion runs first and any image that cannot be
// removed aborts the whole operation, so billed storage is never orphaned
// silently; the post stays visible and the client can retry.
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := currentUserID(c)
	postID := c.Param("postId")

	ctx := c.Request().Context()
	post, err := h.postRepository.GetByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if post == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post não encontrado")
	}
	if post.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Você não pode excluir este post")
	}

	for _, img := range post.Images {
		id := img.UUID
		if id == "" {
			id = imaging.IDFromURL(img.URL)
		}
		if err := h.images.Delete(ctx, id); err != nil {
			log.Printf("posts: delete image %s: %v", id, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Falha ao excluir imagens do post")
		}
	}

	if err := h.commentRepository.DeleteByPost(ctx, postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.postRepository.Delete(ctx, postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// LikePost adds the caller to the post's likes set. The update is filtered
// on "not yet liked", so a concurrent double-tap can never double count.
func (h *PostHandler) LikePost(c echo.Context) error {
	userID := currentUserID(c)
	postID := c.Param("postId")

	ctx := c.Request().Context()
	post, err := h.postRepository.GetByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if post == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post não encontrado")
	}

	matched, err := h.postRepository.AddLike(ctx, postID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !matched {
		return echo.NewHTTPError(http.StatusBadRequest, "Post já foi curtido")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"likesCount": post.LikesCount + 1,
		"isLiked":    true,
	})
}

// UnlikePost removes the caller from the post's likes set
func (h *PostHandler) UnlikePost(c echo.Context) error {
	userID := currentUserID(c)
	postID := c.Param("postId")

	ctx := c.Request().Context()
	post, err := h.postRepository.GetByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if post == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post não encontrado")
	}

	matched, err := h.postRepository.RemoveLike(ctx, postID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !matched {
		return echo.NewHTTPError(http.StatusBadRequest, "Post não foi curtido")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"likesCount": post.LikesCount - 1,
		"isLiked":    false,
	})
}

func hydratePost(post *models.Post, author models.UserInfo, viewerID string) models.PostData {
	images := post.Images
	if images == nil {
		images = []models.ImageRef{}
	}
	return models.PostData{
		ID:            post.ID.Hex(),
		Content:       post.Content,
		AuthorID:      post.AuthorID,
		Author:        author,
		Location:      post.Location,
		Images:        images,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		IsLiked:       post.IsLikedBy(viewerID),
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
}
