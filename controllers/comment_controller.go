package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/gamehouse/services"
	"github.com/cppla/gamehouse/utils"
)

// CommentController exposes comment threads.
type CommentController struct {
	thread *services.CommentThread
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(thread *services.CommentThread) *CommentController {
	return &CommentController{thread: thread}
}

// Create adds a comment or a reply to a root comment.
func (c *CommentController) Create(ctx *gin.Context) {
	var req struct {
		Content       string `json:"content"`
		Article       uint   `json:"article" binding:"required"`
		ParentComment *uint  `json:"parentComment"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	comment, err := c.thread.Create(ctx.Request.Context(), identity(ctx), req.Article, req.ParentComment, req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, comment)
}

// ListForArticle returns the threaded comments of one article.
func (c *CommentController) ListForArticle(ctx *gin.Context) {
	articleID, ok := parseID(ctx, "articleId")
	if !ok {
		return
	}
	comments, err := c.thread.ListForArticle(ctx.Request.Context(), articleID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, comments)
}

// ListAll returns every comment for moderation. Admin only.
func (c *CommentController) ListAll(ctx *gin.Context) {
	comments, err := c.thread.ListAll(ctx.Request.Context(), identity(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, comments)
}

// Update edits a comment's content.
func (c *CommentController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	comment, err := c.thread.Edit(ctx.Request.Context(), identity(ctx), id, req.Content)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, comment)
}

// Delete removes a comment and its replies.
func (c *CommentController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := c.thread.Delete(ctx.Request.Context(), identity(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"id": id})
}
