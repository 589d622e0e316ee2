package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/gamehouse/services"
	"github.com/cppla/gamehouse/utils"
)

// ArticleController exposes articles and their like/react toggles.
type ArticleController struct {
	articles *services.ArticleService
}

// NewArticleController creates a new ArticleController instance.
func NewArticleController(articles *services.ArticleService) *ArticleController {
	return &ArticleController{articles: articles}
}

type articleRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	ImageURL *string   `json:"imageUrl"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
}

func (r articleRequest) input() services.ArticleInput {
	return services.ArticleInput{Title: r.Title, Content: r.Content, ImageURL: r.ImageURL, Category: r.Category, Tags: r.Tags}
}

// List returns a page of articles filtered by category, tag or search term.
func (a *ArticleController) List(ctx *gin.Context) {
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"))
	result, err := a.articles.List(ctx.Request.Context(), services.ArticleFilter{
		Category: ctx.Query("category"),
		Tag:      ctx.Query("tag"),
		Search:   ctx.Query("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// Get returns one article with its comments and counts the view.
func (a *ArticleController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	view, err := a.articles.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, view)
}

// Create stores a new article for the caller.
func (a *ArticleController) Create(ctx *gin.Context) {
	var req articleRequest
	if !bindJSON(ctx, &req) {
		return
	}
	article, err := a.articles.Create(ctx.Request.Context(), identity(ctx), req.input())
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, article)
}

// Update patches an article owned by the caller.
func (a *ArticleController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req articleRequest
	if !bindJSON(ctx, &req) {
		return
	}
	article, err := a.articles.Update(ctx.Request.Context(), identity(ctx), id, req.input())
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, article)
}

// Delete removes an article owned by the caller.
func (a *ArticleController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := a.articles.Delete(ctx.Request.Context(), identity(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"id": id})
}

// Like toggles the caller's like.
func (a *ArticleController) Like(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	result, err := a.articles.Like(ctx.Request.Context(), identity(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// React toggles one of the caller's reactions.
func (a *ArticleController) React(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Type string `json:"type" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	result, err := a.articles.React(ctx.Request.Context(), identity(ctx), id, req.Type)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}
