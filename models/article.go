package models

import "time"

// Article is a piece of community content. Likes and the reaction counters
// mirror the cardinality of the matching ArticleToggle sets.
type Article struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	ImageURL        string    `gorm:"size:1024" json:"imageUrl"`
	AuthorID        uint      `gorm:"index;not null" json:"author_id"`
	Category        string    `gorm:"size:64;index;not null" json:"category"`
	Tags            []string  `gorm:"type:text;serializer:json" json:"tags"`
	Likes           int       `gorm:"not null;default:0" json:"likes"`
	HeartCount      int       `gorm:"not null;default:0" json:"-"`
	FireCount       int       `gorm:"not null;default:0" json:"-"`
	ThumbsUpCount   int       `gorm:"not null;default:0" json:"-"`
	ThumbsDownCount int       `gorm:"not null;default:0" json:"-"`
	CommentCount    int       `gorm:"not null;default:0" json:"commentCount"`
	Views           int       `gorm:"not null;default:0" json:"views"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Author          User      `gorm:"foreignKey:AuthorID" json:"author"`
}

// ReactionCounts returns the counter of every reaction kind keyed by kind name.
func (a *Article) ReactionCounts() map[string]int {
	return map[string]int{
		ReactionHeart:      a.HeartCount,
		ReactionFire:       a.FireCount,
		ReactionThumbsUp:   a.ThumbsUpCount,
		ReactionThumbsDown: a.ThumbsDownCount,
	}
}

// Toggle set keys. Like is the unconditional like set; the rest are reaction kinds.
const (
	SetLike            = "like"
	ReactionHeart      = "heart"
	ReactionFire       = "fire"
	ReactionThumbsUp   = "thumbsUp"
	ReactionThumbsDown = "thumbsDown"
)

// ReactionKinds lists every valid reaction kind in display order.
var ReactionKinds = []string{ReactionHeart, ReactionFire, ReactionThumbsUp, ReactionThumbsDown}

// ArticleToggle records membership of a user in one named set of an article.
// The composite primary key makes insert-if-absent a single conditional write.
type ArticleToggle struct {
	ArticleID uint      `gorm:"primaryKey;autoIncrement:false" json:"article_id"`
	SetKey    string    `gorm:"primaryKey;size:16" json:"set"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
