package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/caiots/vorp-friends/internal/identity"
	"github.com/caiots/vorp-friends/internal/models"
	"github.com/caiots/vorp-friends/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments and replies
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	identity          *identity.Service
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, identitySvc *identity.Service) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		identity:          identitySvc,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/comments/:postId", h.ListComments)
	g.POST("/posts/comments/:postId", h.CreateComment)
	g.PATCH("/posts/comments/:postId/:commentId", h.UpdateComment)
	g.DELETE("/posts/comments/:postId/:commentId", h.DeleteComment)
}

// ListComments lists a post's comments newest-first. The parentId query
// param narrows the listing: "root" for top-level comments only, a comment
// id for that comment's replies, absent for everything. The pagination
// total always counts all of the post's comments.
func (h *CommentHandler) ListComments(c echo.Context) error {
	postID := c.Param("postId")
	page, limit := parsePagination(c, 20, 100)

	parent := c.QueryParam("parentId")

	ctx := c.Request().Context()
	post, err := h.postRepository.GetByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if post == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post não encontrado")
	}

	comments, err := h.commentRepository.Find(ctx, postID, parent, (page-1)*limit, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.commentRepository.CountByPost(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ids := make([]string, 0, len(comments))
	for i := range comments {
		ids = append(ids, comments[i].AuthorID)
	}
	users := h.identity.GetUsers(ctx, ids)

	data := make([]models.CommentData, 0, len(comments))
	for i := range comments {
		data = append(data, hydrateComment(&comments[i], users[comments[i].AuthorID]))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       data,
		"pagination": newPagination(page, limit, total),
	})
}

// CreateComment adds a comment or a reply to a post. Only top-level
// comments bump the post's commentsCount; replies never nest deeper than
// one level, so a reply's parent must itself be top-level.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := currentUserID(c)
	postID := c.Param("postId")

	var req models.CreateCommentRequest
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

	if req.ParentID != nil {
		parent, err := h.commentRepository.GetByID(ctx, *req.ParentID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if parent == nil || parent.PostID != postID {
			return echo.NewHTTPError(http.StatusNotFound, "Comentário pai não encontrado")
		}
		if parent.ParentID != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Respostas não podem ser aninhadas")
		}
	}

	comment := &models.Comment{
		Content:  req.Content,
		PostID:   postID,
		AuthorID: userID,
		ParentID: req.ParentID,
	}
	if err := h.commentRepository.Create(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.ParentID == nil {
		if err := h.postRepository.IncCommentsCount(ctx, postID, 1); err != nil {
			log.Printf("comments: bump count for post %s: %v", postID, err)
		}
	}

	author := h.identity.GetUser(ctx, userID)
	return c.JSON(http.StatusCreated, echo.Map{"data": hydrateComment(comment, author)})
}

// UpdateComment edits the content of the caller's own comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID := currentUserID(c)
	postID := c.Param("postId")
	commentID := c.Param("commentId")

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	comment, err := h.commentRepository.GetByID(ctx, commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if comment == nil || comment.PostID != postID {
		return echo.NewHTTPError(http.StatusNotFound, "Comentário não encontrado")
	}
	if comment.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Você não pode editar este comentário")
	}

	updated, err := h.commentRepository.UpdateContent(ctx, commentID, req.Content)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if updated == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comentário não encontrado")
	}

	author := h.identity.GetUser(ctx, userID)
	return c.JSON(http.StatusOK, echo.Map{"data": hydrateComment(updated, author)})
}

// DeleteComment removes the caller's own comment and, for a top-level
// comment, its replies and its slot in the post's commentsCount
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := currentUserID(c)
	postID := c.Param("postId")
	commentID := c.Param("commentId")

	ctx := c.Request().Context()
	comment, err := h.commentRepository.GetByID(ctx, commentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if comment == nil || comment.PostID != postID {
		return echo.NewHTTPError(http.StatusNotFound, "Comentário não encontrado")
	}
	if comment.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "Você não pode excluir este comentário")
	}

	if err := h.commentRepository.Delete(ctx, commentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if comment.ParentID == nil {
		if err := h.commentRepository.DeleteReplies(ctx, commentID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if err := h.postRepository.IncCommentsCount(ctx, postID, -1); err != nil {
			log.Printf("comments: drop count for post %s: %v", postID, err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func hydrateComment(comment *models.Comment, author models.UserInfo) models.CommentData {
	return models.CommentData{
		ID:        comment.ID.Hex(),
		Content:   comment.Content,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		ParentID:  comment.ParentID,
		Author:    author,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
