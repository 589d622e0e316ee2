package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/gamehouse/models"
	"github.com/cppla/gamehouse/utils"
)

const articleListCachePrefix = "cache:articles:list:"

// ArticleInput carries the editable fields of an article. Nil fields are left
// untouched on update; Title, Content and Category are required on create.
type ArticleInput struct {
	Title    *string
	Content  *string
	ImageURL *string
	Category *string
	Tags     *[]string
}

// ArticleFilter selects a page of articles.
type ArticleFilter struct {
	Category string
	Tag      string
	Search   string
	Page     int
	Limit    int
}

// ArticlePage is one page of a listing.
type ArticlePage struct {
	Articles    []models.Article `json:"articles"`
	Total       int64            `json:"total"`
	TotalPages  int              `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
}

// ArticleView is a single article with reaction counts and its comment thread.
type ArticleView struct {
	*models.Article
	Reactions map[string]int   `json:"reactions"`
	Comments  []models.Comment `json:"comments"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}

// ReactionResult is the outcome of a reaction toggle.
type ReactionResult struct {
	Reactions     map[string]int  `json:"reactions"`
	UserReactions map[string]bool `json:"userReactions"`
}

// ArticleService manages articles and the like/react toggles on them.
type ArticleService struct {
	db      *gorm.DB
	toggler *Toggler
	thread  *CommentThread
	cache   *utils.Cache
	log     *zap.Logger
}

// NewArticleService creates an ArticleService.
func NewArticleService(db *gorm.DB, thread *CommentThread, cache *utils.Cache, log *zap.Logger) *ArticleService {
	return &ArticleService{db: db, toggler: NewToggler(db), thread: thread, cache: cache, log: log}
}

// Create stores a new article authored by actor.
func (s *ArticleService) Create(ctx context.Context, actor Identity, in ArticleInput) (*models.Article, error) {
	article := models.Article{AuthorID: actor.UserID, Tags: []string{}}
	if in.Title == nil || in.Content == nil || in.Category == nil {
		return nil, Validation("title, content and category are required")
	}
	if err := applyArticleInput(&article, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&article).Error; err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	return &article, nil
}

// Get loads an article with author and comments and counts the view.
// The view increment is best-effort: a failed write is logged, not returned.
func (s *ArticleService) Get(ctx context.Context, id uint) (*ArticleView, error) {
	db := s.db.WithContext(ctx)
	var article models.Article
	if err := db.Preload("Author", authorColumns).First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	if err := db.Model(&models.Article{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		s.log.Warn("view increment failed", zap.Uint("article_id", id), zap.Error(err))
	} else {
		article.Views++
	}

	comments, err := s.thread.ListForArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ArticleView{Article: &article, Reactions: article.ReactionCounts(), Comments: comments}, nil
}

// List returns a filtered page of articles, newest first. Pages without a
// search term are served from the cache when possible.
func (s *ArticleService) List(ctx context.Context, f ArticleFilter) (*ArticlePage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
	f.Category = strings.TrimSpace(f.Category)
	f.Tag = strings.TrimSpace(f.Tag)
	f.Search = strings.TrimSpace(f.Search)

	cacheKey := ""
	if f.Search == "" {
		cacheKey = fmt.Sprintf("%scat=%s:tag=%s:page=%d:limit=%d", articleListCachePrefix, f.Category, f.Tag, f.Page, f.Limit)
		var cached ArticlePage
		if s.cache.GetJSON(ctx, cacheKey, &cached) {
			return &cached, nil
		}
	}

	query := s.db.WithContext(ctx).Model(&models.Article{})
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Tag != "" {
		// Tags are stored as a JSON array; match the element encoded the same way.
		query = query.Where("tags LIKE ? ESCAPE '!'", "%"+escapeLike(jsonString(f.Tag))+"%")
	}
	if f.Search != "" {
		like := "%" + escapeLike(f.Search) + "%"
		quoted := jsonString(f.Search)
		tagLike := "%" + escapeLike(quoted[1:len(quoted)-1]) + "%"
		query = query.Where("title LIKE ? ESCAPE '!' OR content LIKE ? ESCAPE '!' OR tags LIKE ? ESCAPE '!'", like, like, tagLike)
	}

	page := &ArticlePage{Articles: []models.Article{}, CurrentPage: f.Page}
	if err := query.Session(&gorm.Session{}).Count(&page.Total).Error; err != nil {
		return nil, err
	}
	if err := query.Preload("Author", authorColumns).
		Order("created_at DESC, id DESC").
		Offset((f.Page - 1) * f.Limit).Limit(f.Limit).
		Find(&page.Articles).Error; err != nil {
		return nil, err
	}
	page.TotalPages = int((page.Total + int64(f.Limit) - 1) / int64(f.Limit))

	if cacheKey != "" {
		s.cache.SetJSON(ctx, cacheKey, page, time.Hour)
	}
	return page, nil
}

// Update applies in to the article when actor owns it or is an admin.
func (s *ArticleService) Update(ctx context.Context, actor Identity, id uint, in ArticleInput) (*models.Article, error) {
	db := s.db.WithContext(ctx)
	article, err := s.load(db, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, article.AuthorID, ActionEdit); err != nil {
		return nil, err
	}
	if err := applyArticleInput(article, in); err != nil {
		return nil, err
	}
	if err := db.Model(article).Select("title", "content", "image_url", "category", "tags").Updates(article).Error; err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	return article, nil
}

// Delete removes the article together with its toggles, favorites and comments.
func (s *ArticleService) Delete(ctx context.Context, actor Identity, id uint) error {
	article, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, article.AuthorID, ActionDelete); err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&models.ArticleToggle{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.UserFavorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Article{}, id).Error
	})
	if err != nil {
		return err
	}
	s.log.Info("article deleted", zap.Uint("article_id", id), zap.Uint("actor", actor.UserID))
	s.invalidateLists(ctx)
	return nil
}

// Like toggles the caller's like and the matching favorite.
func (s *ArticleService) Like(ctx context.Context, actor Identity, id uint) (*LikeResult, error) {
	if actor.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	liked, likes, err := s.toggler.Toggle(ctx, LikeSet, id, actor.UserID)
	if err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	return &LikeResult{Likes: likes, Liked: liked}, nil
}

// React toggles the caller's reaction of the given kind and reports all
// reaction counts plus the caller's membership in each set.
func (s *ArticleService) React(ctx context.Context, actor Identity, id uint, kind string) (*ReactionResult, error) {
	if actor.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	set, err := ReactionSet(kind)
	if err != nil {
		return nil, err
	}

	res := &ReactionResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, _, err := ToggleTx(tx, set, id, actor.UserID); err != nil {
			return err
		}
		var article models.Article
		if err := tx.First(&article, id).Error; err != nil {
			return err
		}
		members, err := Members(tx, id, actor.UserID)
		if err != nil {
			return err
		}
		res.Reactions = article.ReactionCounts()
		res.UserReactions = make(map[string]bool, len(models.ReactionKinds))
		for _, k := range models.ReactionKinds {
			res.UserReactions[k] = members[k]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	return res, nil
}

func (s *ArticleService) load(db *gorm.DB, id uint) (*models.Article, error) {
	var article models.Article
	if err := db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (s *ArticleService) invalidateLists(ctx context.Context) {
	s.cache.InvalidateByPrefix(ctx, articleListCachePrefix)
}

func applyArticleInput(a *models.Article, in ArticleInput) error {
	if in.Title != nil {
		title := utils.SanitizePlain(strings.TrimSpace(*in.Title))
		if title == "" {
			return Validation("title cannot be empty")
		}
		a.Title = title
	}
	if in.Content != nil {
		content := utils.Sanitize(*in.Content)
		if strings.TrimSpace(content) == "" {
			return Validation("content cannot be empty")
		}
		a.Content = content
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			return Validation("category cannot be empty")
		}
		a.Category = category
	}
	if in.ImageURL != nil {
		a.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Tags != nil {
		tags := make([]string, 0, len(*in.Tags))
		for _, t := range *in.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		a.Tags = utils.Unique(tags)
	}
	return nil
}

// jsonString encodes s exactly as the json serializer stores it inside tags.
func jsonString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes s match literally in a LIKE pattern using ESCAPE '!'.
// MySQL and SQLite disagree on backslash literals, so '!' is the escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
