package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/gamehouse/models"
	"github.com/cppla/gamehouse/utils"
)

// CommentThread manages the two-level comment threads under articles.
type CommentThread struct {
	db    *gorm.DB
	cache *utils.Cache
	log   *zap.Logger
}

// NewCommentThread creates a CommentThread. Comment writes change article
// comment counts, so they drop cached article listings.
func NewCommentThread(db *gorm.DB, cache *utils.Cache, log *zap.Logger) *CommentThread {
	return &CommentThread{db: db, cache: cache, log: log}
}

// Create adds a comment to an article, optionally as a reply to a root comment.
func (t *CommentThread) Create(ctx context.Context, actor Identity, articleID uint, parentID *uint, content string) (*models.Comment, error) {
	if actor.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	content, err := cleanComment(content)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{ArticleID: articleID, AuthorID: actor.UserID, ParentID: parentID, Content: content}
	err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Article{}).Where("id = ?", articleID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrArticleNotFound
		}

		if parentID != nil {
			var parent models.Comment
			if err := tx.First(&parent, *parentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrCommentNotFound
				}
				return err
			}
			if parent.ArticleID != articleID || parent.ParentID != nil {
				return ErrNestedReply
			}
		}

		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Article{}).Where("id = ?", articleID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	t.cache.InvalidateByPrefix(ctx, articleListCachePrefix)
	return t.load(ctx, comment.ID)
}

// Edit replaces the content of a comment owned by actor (or any comment for admins).
func (t *CommentThread) Edit(ctx context.Context, actor Identity, id uint, content string) (*models.Comment, error) {
	content, err := cleanComment(content)
	if err != nil {
		return nil, err
	}
	comment, err := t.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, comment.AuthorID, ActionEdit); err != nil {
		return nil, err
	}
	if err := t.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).
		Updates(map[string]interface{}{"content": content, "is_edited": true}).Error; err != nil {
		return nil, err
	}
	return t.load(ctx, id)
}

// Delete removes a comment and all of its replies.
func (t *CommentThread) Delete(ctx context.Context, actor Identity, id uint) error {
	comment, err := t.load(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, comment.AuthorID, ActionDelete); err != nil {
		return err
	}

	err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? OR parent_id = ?", id, id).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		return tx.Model(&models.Article{}).Where("id = ?", comment.ArticleID).
			UpdateColumn("comment_count", gorm.Expr("CASE WHEN comment_count >= ? THEN comment_count - ? ELSE 0 END", res.RowsAffected, res.RowsAffected)).Error
	})
	if err != nil {
		return err
	}
	t.cache.InvalidateByPrefix(ctx, articleListCachePrefix)
	t.log.Info("comment deleted", zap.Uint("comment_id", id), zap.Uint("actor", actor.UserID))
	return nil
}

// ListForArticle returns the root comments of an article newest first, each
// carrying its replies oldest first.
func (t *CommentThread) ListForArticle(ctx context.Context, articleID uint) ([]models.Comment, error) {
	var flat []models.Comment
	if err := t.db.WithContext(ctx).Preload("Author", authorColumns).
		Where("article_id = ?", articleID).
		Order("created_at ASC, id ASC").
		Find(&flat).Error; err != nil {
		return nil, err
	}
	return buildThread(flat), nil
}

// ListAll returns every comment with its author and article. Admin only.
func (t *CommentThread) ListAll(ctx context.Context, actor Identity) ([]models.Comment, error) {
	if err := Authorize(actor, 0, ActionListAllComments); err != nil {
		return nil, err
	}
	comments := []models.Comment{}
	err := t.db.WithContext(ctx).
		Preload("Author", authorColumns).
		Preload("Article", func(db *gorm.DB) *gorm.DB { return db.Select("id", "title") }).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (t *CommentThread) load(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := t.db.WithContext(ctx).Preload("Author", authorColumns).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// buildThread arranges comments sorted oldest first into roots (newest first)
// with their replies (oldest first). Replies whose root is missing are dropped.
func buildThread(flat []models.Comment) []models.Comment {
	index := make(map[uint]int, len(flat))
	roots := make([]int, 0, len(flat))
	for i := range flat {
		flat[i].Replies = []models.Comment{}
		if flat[i].ParentID == nil {
			index[flat[i].ID] = i
			roots = append(roots, i)
		}
	}
	for i := range flat {
		if p := flat[i].ParentID; p != nil {
			if ri, ok := index[*p]; ok {
				flat[ri].Replies = append(flat[ri].Replies, flat[i])
			}
		}
	}

	out := make([]models.Comment, 0, len(roots))
	for j := len(roots) - 1; j >= 0; j-- {
		out = append(out, flat[roots[j]])
	}
	return out
}

func cleanComment(content string) (string, error) {
	content = strings.TrimSpace(utils.Sanitize(content))
	if content == "" {
		return "", Validation("comment content cannot be empty")
	}
	return content, nil
}
