package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/gamehouse/models"
)

// ToggleSet describes one named membership set on an article.
type ToggleSet struct {
	// Key identifies the set in article_toggles.
	Key string
	// Counter is the articles column that mirrors the set cardinality.
	Counter string
	// Coupled runs inside the toggle transaction after membership changed.
	Coupled func(tx *gorm.DB, articleID, userID uint, member bool) error
}

// LikeSet is the unconditional like set. Liking also favorites the article
// for the user; both rows commit or roll back together.
var LikeSet = ToggleSet{Key: models.SetLike, Counter: "likes", Coupled: syncFavorite}

// reactionSets maps every reaction kind to its toggle set.
var reactionSets = map[string]ToggleSet{
	models.ReactionHeart:      {Key: models.ReactionHeart, Counter: "heart_count"},
	models.ReactionFire:       {Key: models.ReactionFire, Counter: "fire_count"},
	models.ReactionThumbsUp:   {Key: models.ReactionThumbsUp, Counter: "thumbs_up_count"},
	models.ReactionThumbsDown: {Key: models.ReactionThumbsDown, Counter: "thumbs_down_count"},
}

// ReactionSet returns the toggle set for a reaction kind.
func ReactionSet(kind string) (ToggleSet, error) {
	set, ok := reactionSets[kind]
	if !ok {
		return ToggleSet{}, ErrInvalidReaction
	}
	return set, nil
}

// Toggler flips set membership with a single transaction per call.
type Toggler struct {
	db *gorm.DB
}

// NewToggler creates a Toggler.
func NewToggler(db *gorm.DB) *Toggler {
	return &Toggler{db: db}
}

// Toggle adds userID to the set when absent and removes it when present,
// moving the counter by one in the same direction. It returns the new
// membership and the counter value after the change.
func (t *Toggler) Toggle(ctx context.Context, set ToggleSet, articleID, userID uint) (member bool, count int, err error) {
	err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		member, count, err = ToggleTx(tx, set, articleID, userID)
		return err
	})
	return member, count, err
}

// ToggleTx is Toggle inside a caller-owned transaction.
func ToggleTx(tx *gorm.DB, set ToggleSet, articleID, userID uint) (bool, int, error) {
	var exists int64
	if err := tx.Model(&models.Article{}).Where("id = ?", articleID).Count(&exists).Error; err != nil {
		return false, 0, err
	}
	if exists == 0 {
		return false, 0, ErrArticleNotFound
	}

	// Insert-if-absent; the composite key turns a concurrent duplicate into a no-op.
	row := models.ArticleToggle{ArticleID: articleID, SetKey: set.Key, UserID: userID}
	ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if ins.Error != nil {
		return false, 0, ins.Error
	}

	member := ins.RowsAffected == 1
	delta := 1
	if !member {
		del := tx.Where("article_id = ? AND set_key = ? AND user_id = ?", articleID, set.Key, userID).
			Delete(&models.ArticleToggle{})
		if del.Error != nil {
			return false, 0, del.Error
		}
		if del.RowsAffected == 0 {
			// Membership vanished between the two statements; nothing changed.
			delta = 0
		} else {
			delta = -1
		}
	}

	if delta != 0 {
		if err := tx.Model(&models.Article{}).Where("id = ?", articleID).
			UpdateColumn(set.Counter, gorm.Expr(set.Counter+" + ?", delta)).Error; err != nil {
			return false, 0, err
		}
		if set.Coupled != nil {
			if err := set.Coupled(tx, articleID, userID, member); err != nil {
				return false, 0, err
			}
		}
	}

	var count int
	if err := tx.Model(&models.Article{}).Where("id = ?", articleID).Select(set.Counter).Scan(&count).Error; err != nil {
		return false, 0, err
	}
	return member, count, nil
}

// Members reports, for every set key, whether userID belongs to it on articleID.
func Members(db *gorm.DB, articleID, userID uint) (map[string]bool, error) {
	var keys []string
	if err := db.Model(&models.ArticleToggle{}).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Pluck("set_key", &keys).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out, nil
}

func syncFavorite(tx *gorm.DB, articleID, userID uint, member bool) error {
	if member {
		fav := models.UserFavorite{UserID: userID, ArticleID: articleID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error
	}
	err := tx.Where("user_id = ? AND article_id = ?", userID, articleID).Delete(&models.UserFavorite{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
