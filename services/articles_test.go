package services

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cppla/gamehouse/models"
	"github.com/cppla/gamehouse/utils"
)

func newArticleService(t *testing.T, cache *utils.Cache) (*ArticleService, *CommentThread) {
	db := newTestDB(t)
	thread := NewCommentThread(db, cache, nop)
	return NewArticleService(db, thread, cache, nop), thread
}

func TestArticleCreateGetCountsViews(t *testing.T) {
	svc, _ := newArticleService(t, utils.NewCache(nil))
	ctx := context.Background()
	alice := seedUser(t, svc.db, "alice", models.RoleUser)

	tags := []string{"rpg", " rpg ", "indie", ""}
	a, err := svc.Create(ctx, alice, ArticleInput{
		Title:    strptr("Hello"),
		Content:  strptr(`<p>World</p><script>alert(1)</script>`),
		Category: strptr("news"),
		Tags:     &tags,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Views != 0 || a.Likes != 0 {
		t.Fatalf("fresh article counters = views %d likes %d", a.Views, a.Likes)
	}
	if len(a.Tags) != 2 {
		t.Fatalf("tags = %v, want deduplicated [rpg indie]", a.Tags)
	}
	if a.Content != "<p>World</p>" {
		t.Fatalf("content not sanitized: %q", a.Content)
	}

	view, err := svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Views != 1 {
		t.Fatalf("views after first get = %d", view.Views)
	}
	if view.Author.Username != "alice" {
		t.Fatalf("author not preloaded: %+v", view.Author)
	}
	if len(view.Reactions) != len(models.ReactionKinds) {
		t.Fatalf("reactions = %v", view.Reactions)
	}

	if _, err := svc.Get(ctx, 4242); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("err = %v, want ErrArticleNotFound", err)
	}
}

func TestArticleCreateValidation(t *testing.T) {
	svc, _ := newArticleService(t, utils.NewCache(nil))
	alice := seedUser(t, svc.db, "alice", models.RoleUser)
	_, err := svc.Create(context.Background(), alice, ArticleInput{Title: strptr("x"), Content: strptr("y")})
	if KindOf(err) != KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestArticleUpdateDeletePolicy(t *testing.T) {
	svc, thread := newArticleService(t, utils.NewCache(nil))
	ctx := context.Background()
	alice := seedUser(t, svc.db, "alice", models.RoleUser)
	bob := seedUser(t, svc.db, "bob", models.RoleUser)
	admin := seedUser(t, svc.db, "root", models.RoleAdmin)
	a := seedArticle(t, svc.db, alice)

	if _, err := svc.Update(ctx, bob, a.ID, ArticleInput{Title: strptr("mine now")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("bob update err = %v, want ErrForbidden", err)
	}
	updated, err := svc.Update(ctx, alice, a.ID, ArticleInput{Title: strptr("Renamed")})
	if err != nil || updated.Title != "Renamed" || updated.Content != a.Content {
		t.Fatalf("owner update = %+v, %v", updated, err)
	}

	if _, err := svc.Like(ctx, bob, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := thread.Create(ctx, bob, a.ID, nil, "first"); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, bob, a.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("bob delete err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, admin, a.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	for _, m := range []interface{}{&models.ArticleToggle{}, &models.UserFavorite{}, &models.Comment{}} {
		var n int64
		svc.db.Model(m).Where("article_id = ?", a.ID).Count(&n)
		if n != 0 {
			t.Fatalf("%T rows left after delete: %d", m, n)
		}
	}
	if err := svc.Delete(ctx, admin, a.ID); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestArticleLikeAndReact(t *testing.T) {
	svc, _ := newArticleService(t, utils.NewCache(nil))
	ctx := context.Background()
	alice := seedUser(t, svc.db, "alice", models.RoleUser)
	a := seedArticle(t, svc.db, alice)

	res, err := svc.Like(ctx, alice, a.ID)
	if err != nil || !res.Liked || res.Likes != 1 {
		t.Fatalf("like = %+v, %v", res, err)
	}
	res, err = svc.Like(ctx, alice, a.ID)
	if err != nil || res.Liked || res.Likes != 0 {
		t.Fatalf("unlike = %+v, %v", res, err)
	}

	r, err := svc.React(ctx, alice, a.ID, models.ReactionHeart)
	if err != nil {
		t.Fatal(err)
	}
	if r.Reactions["heart"] != 1 || !r.UserReactions["heart"] || r.UserReactions["fire"] {
		t.Fatalf("react = %+v", r)
	}
	if _, err := svc.React(ctx, alice, a.ID, models.ReactionFire); err != nil {
		t.Fatal(err)
	}
	r, err = svc.React(ctx, alice, a.ID, models.ReactionHeart)
	if err != nil {
		t.Fatal(err)
	}
	if r.Reactions["heart"] != 0 || r.Reactions["fire"] != 1 || r.UserReactions["heart"] || !r.UserReactions["fire"] {
		t.Fatalf("react after second heart = %+v", r)
	}

	if _, err := svc.React(ctx, alice, a.ID, "laugh"); !errors.Is(err, ErrInvalidReaction) {
		t.Fatalf("err = %v, want ErrInvalidReaction", err)
	}
	if _, err := svc.Like(ctx, Identity{}, a.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous like err = %v", err)
	}
}

func TestArticleListFiltersAndPages(t *testing.T) {
	svc, _ := newArticleService(t, utils.NewCache(nil))
	ctx := context.Background()
	alice := seedUser(t, svc.db, "alice", models.RoleUser)

	mk := func(title, category string, tags ...string) {
		if _, err := svc.Create(ctx, alice, ArticleInput{Title: &title, Content: strptr("body of " + title), Category: &category, Tags: &tags}); err != nil {
			t.Fatal(err)
		}
	}
	mk("Dragon guide", "guides", "rpg")
	mk("Speedrun tips", "guides", "speedrun")
	mk("Patch 1.2", "news", "rpg")

	page, err := svc.List(ctx, ArticleFilter{Category: "guides"})
	if err != nil || page.Total != 2 {
		t.Fatalf("category filter = %+v, %v", page, err)
	}
	page, _ = svc.List(ctx, ArticleFilter{Tag: "rpg"})
	if page.Total != 2 {
		t.Fatalf("tag filter total = %d", page.Total)
	}
	page, _ = svc.List(ctx, ArticleFilter{Search: "speedrun"})
	if page.Total != 1 || page.Articles[0].Title != "Speedrun tips" {
		t.Fatalf("search = %+v", page)
	}
	page, _ = svc.List(ctx, ArticleFilter{Page: 2, Limit: 2})
	if page.Total != 3 || page.TotalPages != 2 || page.CurrentPage != 2 || len(page.Articles) != 1 {
		t.Fatalf("paging = %+v", page)
	}
	if page.Articles[0].Title != "Dragon guide" {
		t.Fatalf("expected oldest article on last page, got %q", page.Articles[0].Title)
	}

	// Special characters in tags and search terms match literally.
	mk("Lab notes", "dev", "R&D", "a_b")
	mk("Cross notes", "dev", "axb")
	mk("Discount 50% off", "deals")
	mk("Discount 500 coins", "deals")

	literal := []struct {
		name   string
		filter ArticleFilter
		want   string
	}{
		{"html-escaped tag", ArticleFilter{Tag: "R&D"}, "Lab notes"},
		{"underscore tag", ArticleFilter{Tag: "a_b"}, "Lab notes"},
		{"underscore search", ArticleFilter{Search: "a_b"}, "Lab notes"},
		{"ampersand search", ArticleFilter{Search: "R&D"}, "Lab notes"},
		{"percent search", ArticleFilter{Search: "50%"}, "Discount 50% off"},
	}
	for _, tc := range literal {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.List(ctx, tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			if page.Total != 1 || page.Articles[0].Title != tc.want {
				t.Fatalf("got total %d %+v, want only %q", page.Total, page.Articles, tc.want)
			}
		})
	}
}

func TestArticleListCacheInvalidatedOnCreate(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc, _ := newArticleService(t, utils.NewCache(rdb))
	ctx := context.Background()
	alice := seedUser(t, svc.db, "alice", models.RoleUser)
	seedArticle(t, svc.db, alice)

	page, err := svc.List(ctx, ArticleFilter{})
	if err != nil || page.Total != 1 {
		t.Fatalf("first list = %+v, %v", page, err)
	}
	if len(mr.Keys()) == 0 {
		t.Fatal("listing was not cached")
	}

	if _, err := svc.Create(ctx, alice, ArticleInput{Title: strptr("Second"), Content: strptr("c"), Category: strptr("news")}); err != nil {
		t.Fatal(err)
	}
	page, _ = svc.List(ctx, ArticleFilter{})
	if page.Total != 2 {
		t.Fatalf("stale cached page after create: total = %d", page.Total)
	}
}
