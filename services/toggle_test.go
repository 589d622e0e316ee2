package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cppla/gamehouse/models"
)

func TestLikeToggleKeepsFavoriteInSync(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice", models.RoleUser)
	article := seedArticle(t, db, alice)
	tg := NewToggler(db)

	favorites := func() int64 {
		var n int64
		db.Model(&models.UserFavorite{}).Where("user_id = ? AND article_id = ?", alice.UserID, article.ID).Count(&n)
		return n
	}

	member, count, err := tg.Toggle(ctx, LikeSet, article.ID, alice.UserID)
	if err != nil || !member || count != 1 {
		t.Fatalf("first toggle = (%v, %d, %v), want (true, 1, nil)", member, count, err)
	}
	if favorites() != 1 {
		t.Fatal("like should add a favorite")
	}

	member, count, err = tg.Toggle(ctx, LikeSet, article.ID, alice.UserID)
	if err != nil || member || count != 0 {
		t.Fatalf("second toggle = (%v, %d, %v), want (false, 0, nil)", member, count, err)
	}
	if favorites() != 0 {
		t.Fatal("unlike should remove the favorite")
	}
}

func TestToggleMissingArticle(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice", models.RoleUser)
	_, _, err := NewToggler(db).Toggle(context.Background(), LikeSet, 999, alice.UserID)
	if !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("err = %v, want ErrArticleNotFound", err)
	}
}

func TestReactionSetUnknownKind(t *testing.T) {
	if _, err := ReactionSet("laugh"); !errors.Is(err, ErrInvalidReaction) {
		t.Fatalf("err = %v, want ErrInvalidReaction", err)
	}
	for _, k := range models.ReactionKinds {
		if _, err := ReactionSet(k); err != nil {
			t.Fatalf("ReactionSet(%q): %v", k, err)
		}
	}
}

func TestConcurrentTogglesKeepCounterEqualToMembers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "author", models.RoleUser)
	article := seedArticle(t, db, author)

	const users = 8
	const flips = 3
	ids := make([]uint, users)
	for i := range ids {
		ids[i] = seedUser(t, db, "u"+string(rune('a'+i)), models.RoleUser).UserID
	}

	tg := NewToggler(db)
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			for i := 0; i < flips; i++ {
				if _, _, err := tg.Toggle(ctx, LikeSet, article.ID, id); err != nil {
					t.Errorf("toggle: %v", err)
				}
			}
		}(id)
	}
	wg.Wait()

	var members int64
	db.Model(&models.ArticleToggle{}).Where("article_id = ? AND set_key = ?", article.ID, models.SetLike).Count(&members)
	got := reload[models.Article](t, db, article.ID)
	if int64(got.Likes) != members {
		t.Fatalf("likes = %d, members = %d", got.Likes, members)
	}
	// Every user flipped an odd number of times.
	if members != users {
		t.Fatalf("members = %d, want %d", members, users)
	}
}
