package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/caiots/vorp-friends/internal/models"
)

func newCommentHandler() (*CommentHandler, *fakePostRepo, *fakeCommentRepo) {
	posts := newFakePostRepo()
	comments := newFakeCommentRepo()
	users := newFakeUserRepo()
	users.Upsert(&models.UserProfile{UID: "alice", Username: "alice", DisplayName: "Alice"})
	return NewCommentHandler(comments, posts, newTestIdentity(users)), posts, comments
}

func seedPost(t *testing.T, posts *fakePostRepo, author string) string {
	t.Helper()
	post := &models.Post{Content: "post", AuthorID: author}
	if err := posts.Create(context.Background(), post); err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post.ID.Hex()
}

func addComment(t *testing.T, h *CommentHandler, postID, author, body string) string {
	t.Helper()
	c, rec := newTestContext(http.MethodPost, "/api/posts/comments/"+postID, body, author)
	c.SetParamNames("postId")
	c.SetParamValues(postID)
	if err := h.CreateComment(c); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("CreateComment status = %d", rec.Code)
	}
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestCreateCommentMissingPost(t *testing.T) {
	h, _, _ := newCommentHandler()
	c, rec := newTestContext(http.MethodPost, "/api/posts/comments/x", `{"content":"oi"}`, "alice")
	c.SetParamNames("postId")
	c.SetParamValues("000000000000000000000000")
	if got := httpStatus(h.CreateComment(c), rec); got != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}
}

func TestCommentsCountTracksTopLevelOnly(t *testing.T) {
	h, posts, _ := newCommentHandler()
	postID := seedPost(t, posts, "alice")
	ctx := context.Background()

	rootID := addComment(t, h, postID, "alice", `{"content":"primeiro"}`)
	if p, _ := posts.GetByID(ctx, postID); p.CommentsCount != 1 {
		t.Fatalf("after root comment: count = %d", p.CommentsCount)
	}

	addComment(t, h, postID, "alice", `{"content":"resposta","parentId":"`+rootID+`"}`)
	if p, _ := posts.GetByID(ctx, postID); p.CommentsCount != 1 {
		t.Fatalf("after reply: count = %d, replies must not bump it", p.CommentsCount)
	}
}

func TestReplyToReplyRejected(t *testing.T) {
	h, posts, _ := newCommentHandler()
	postID := seedPost(t, posts, "alice")
	rootID := addComment(t, h, postID, "alice", `{"content":"raiz"}`)
	replyID := addComment(t, h, postID, "alice", `{"content":"resposta","parentId":"`+rootID+`"}`)

	c, rec := newTestContext(http.MethodPost, "/api/posts/comments/"+postID, `{"content":"nope","parentId":"`+replyID+`"}`, "alice")
	c.SetParamNames("postId")
	c.SetParamValues(postID)
	if got := httpStatus(h.CreateComment(c), rec); got != http.StatusBadRequest {
		t.Fatalf("nested reply: expected 400, got %d", got)
	}
}

func TestReplyParentMustBelongToPost(t *testing.T) {
	h, posts, _ := newCommentHandler()
	postA := seedPost(t, posts, "alice")
	postB := seedPost(t, posts, "alice")
	rootOnA := addComment(t, h, postA, "alice", `{"content":"em A"}`)

	c, rec := newTestContext(http.MethodPost, "/api/posts/comments/"+postB, `{"content":"cruzado","parentId":"`+rootOnA+`"}`, "alice")
	c.SetParamNames("postId")
	c.SetParamValues(postB)
	if got := httpStatus(h.CreateComment(c), rec); got != http.StatusNotFound {
		t.Fatalf("cross-post reply: expected 404, got %d", got)
	}
}

func TestListCommentsParentFilter(t *testing.T) {
	h, posts, _ := newCommentHandler()
	postID := seedPost(t, posts, "alice")
	rootID := addComment(t, h, postID, "alice", `{"content":"raiz"}`)
	addComment(t, h, postID, "alice", `{"content":"resposta","parentId":"`+rootID+`"}`)

	list := func(query string) (int, map[string]interface{}) {
		c, rec := newTestContext(http.MethodGet, "/api/posts/comments/"+postID+query, "", "alice")
		c.SetParamNames("postId")
		c.SetParamValues(postID)
		if err := h.ListComments(c); err != nil {
			t.Fatalf("ListComments: %v", err)
		}
		body := decodeBody(t, rec)
		return len(body["data"].([]interface{})), body["pagination"].(map[string]interface{})
	}

	if n, _ := list(""); n != 2 {
		t.Errorf("all comments: got %d", n)
	}
	if n, _ := list("?parentId=root"); n != 1 {
		t.Errorf("roots only: got %d", n)
	}
	if n, _ := list("?parentId=" + rootID); n != 1 {
		t.Errorf("replies of root: got %d", n)
	}
	// The total always counts every comment on the post.
	if _, pagination := list("?parentId=root"); pagination["total"].(float64) != 2 {
		t.Errorf("total = %v", pagination["total"])
	}
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	h, posts, _ := newCommentHandler()
	postID := seedPost(t, posts, "alice")
	commentID := addComment(t, h, postID, "alice", `{"content":"original"}`)

	c, rec := newTestContext(http.MethodPatch, "/x", `{"content":"hacked"}`, "mallory")
	c.SetParamNames("postId", "commentId")
	c.SetParamValues(postID, commentID)
	if got := httpStatus(h.UpdateComment(c), rec); got != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", got)
	}
}

func TestDeleteCommentCascade(t *testing.T) {
	h, posts, comments := newCommentHandler()
	postID := seedPost(t, posts, "alice")
	ctx := context.Background()

	rootID := addComment(t, h, postID, "alice", `{"content":"raiz"}`)
	addComment(t, h, postID, "bob", `{"content":"resposta","parentId":"`+rootID+`"}`)

	c, rec := newTestContext(http.MethodDelete, "/x", "", "alice")
	c.SetParamNames("postId", "commentId")
	c.SetParamValues(postID, rootID)
	if err := h.DeleteComment(c); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if n, _ := comments.CountByPost(ctx, postID); n != 0 {
		t.Errorf("expected cascade to remove replies, %d left", n)
	}
	if p, _ := posts.GetByID(ctx, postID); p.CommentsCount != 0 {
		t.Errorf("commentsCount = %d after delete", p.CommentsCount)
	}
}

func TestDeleteReplyKeepsCount(t *testing.T) {
	h, posts, _ := newCommentHandler()
	postID := seedPost(t, posts, "alice")
	ctx := context.Background()

	rootID := addComment(t, h, postID, "alice", `{"content":"raiz"}`)
	replyID := addComment(t, h, postID, "bob", `{"content":"resposta","parentId":"`+rootID+`"}`)

	c, _ := newTestContext(http.MethodDelete, "/x", "", "bob")
	c.SetParamNames("postId", "commentId")
	c.SetParamValues(postID, replyID)
	if err := h.DeleteComment(c); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if p, _ := posts.GetByID(ctx, postID); p.CommentsCount != 1 {
		t.Errorf("deleting a reply must not change the count, got %d", p.CommentsCount)
	}
}
