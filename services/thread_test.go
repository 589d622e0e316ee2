package services

import (
	"context"
	"errors"
	"testing"

	"github.com/cppla/gamehouse/models"
	"github.com/cppla/gamehouse/utils"
)

func TestCommentThreadShape(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	thread := NewCommentThread(db, utils.NewCache(nil), nop)
	alice := seedUser(t, db, "alice", models.RoleUser)
	bob := seedUser(t, db, "bob", models.RoleUser)
	a := seedArticle(t, db, alice)

	first, err := thread.Create(ctx, alice, a.ID, nil, "first root")
	if err != nil {
		t.Fatal(err)
	}
	second, err := thread.Create(ctx, bob, a.ID, nil, "second root")
	if err != nil {
		t.Fatal(err)
	}
	r1, _ := thread.Create(ctx, bob, a.ID, &first.ID, "reply one")
	r2, _ := thread.Create(ctx, alice, a.ID, &first.ID, "reply two")

	if _, err := thread.Create(ctx, bob, a.ID, &r1.ID, "too deep"); !errors.Is(err, ErrNestedReply) {
		t.Fatalf("nested reply err = %v", err)
	}
	missing := uint(9999)
	if _, err := thread.Create(ctx, bob, a.ID, &missing, "orphan"); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("missing parent err = %v", err)
	}
	if _, err := thread.Create(ctx, bob, 4242, nil, "nowhere"); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("missing article err = %v", err)
	}
	if _, err := thread.Create(ctx, bob, a.ID, nil, "  "); KindOf(err) != KindValidation {
		t.Fatalf("blank comment err = %v", err)
	}

	list, err := thread.ListForArticle(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("roots out of order: %+v", list)
	}
	replies := list[1].Replies
	if len(replies) != 2 || replies[0].ID != r1.ID || replies[1].ID != r2.ID {
		t.Fatalf("replies out of order: %+v", replies)
	}
	if list[0].Author.Username != "bob" {
		t.Fatalf("author not loaded: %+v", list[0].Author)
	}

	if got := reload[models.Article](t, db, a.ID); got.CommentCount != 4 {
		t.Fatalf("comment count = %d, want 4", got.CommentCount)
	}
}

func TestCommentEditAndCascadeDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	thread := NewCommentThread(db, utils.NewCache(nil), nop)
	alice := seedUser(t, db, "alice", models.RoleUser)
	bob := seedUser(t, db, "bob", models.RoleUser)
	admin := seedUser(t, db, "root", models.RoleAdmin)
	a := seedArticle(t, db, alice)

	root, _ := thread.Create(ctx, alice, a.ID, nil, "root")
	thread.Create(ctx, bob, a.ID, &root.ID, "reply")
	other, _ := thread.Create(ctx, bob, a.ID, nil, "other")

	if _, err := thread.Edit(ctx, bob, root.ID, "hijack"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("edit by non-author err = %v", err)
	}
	edited, err := thread.Edit(ctx, alice, root.ID, "root, revised")
	if err != nil || !edited.IsEdited || edited.Content != "root, revised" {
		t.Fatalf("edit = %+v, %v", edited, err)
	}

	if err := thread.Delete(ctx, bob, root.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete by non-author err = %v", err)
	}
	if err := thread.Delete(ctx, alice, root.ID); err != nil {
		t.Fatal(err)
	}
	list, _ := thread.ListForArticle(ctx, a.ID)
	if len(list) != 1 || list[0].ID != other.ID {
		t.Fatalf("after delete = %+v", list)
	}
	if got := reload[models.Article](t, db, a.ID); got.CommentCount != 1 {
		t.Fatalf("comment count = %d, want 1", got.CommentCount)
	}

	if err := thread.Delete(ctx, admin, other.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := thread.Delete(ctx, admin, other.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestDeleteReplyKeepsRootAndSibling(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	thread := NewCommentThread(db, utils.NewCache(nil), nop)
	alice := seedUser(t, db, "alice", models.RoleUser)
	bob := seedUser(t, db, "bob", models.RoleUser)
	a := seedArticle(t, db, alice)

	root, _ := thread.Create(ctx, alice, a.ID, nil, "root")
	r1, _ := thread.Create(ctx, bob, a.ID, &root.ID, "reply one")
	r2, _ := thread.Create(ctx, alice, a.ID, &root.ID, "reply two")
	before := reload[models.Article](t, db, a.ID).CommentCount

	if err := thread.Delete(ctx, bob, r1.ID); err != nil {
		t.Fatalf("delete reply: %v", err)
	}

	list, err := thread.ListForArticle(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != root.ID {
		t.Fatalf("root should survive reply delete: %+v", list)
	}
	if replies := list[0].Replies; len(replies) != 1 || replies[0].ID != r2.ID {
		t.Fatalf("replies = %+v, want only %d", replies, r2.ID)
	}
	if got := reload[models.Article](t, db, a.ID).CommentCount; got != before-1 {
		t.Fatalf("comment count = %d, want %d", got, before-1)
	}
}

func TestCommentListAllIsAdminOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	thread := NewCommentThread(db, utils.NewCache(nil), nop)
	alice := seedUser(t, db, "alice", models.RoleUser)
	admin := seedUser(t, db, "root", models.RoleAdmin)
	a := seedArticle(t, db, alice)
	thread.Create(ctx, alice, a.ID, nil, "hello")

	if _, err := thread.ListAll(ctx, alice); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	all, err := thread.ListAll(ctx, admin)
	if err != nil || len(all) != 1 {
		t.Fatalf("all = %+v, %v", all, err)
	}
	if all[0].Article == nil || all[0].Article.Title != a.Title {
		t.Fatalf("article title not loaded: %+v", all[0].Article)
	}
}

func TestQuestionService(t *testing.T) {
	svc := NewQuestionService(newTestDB(t))
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", nil); KindOf(err) != KindValidation {
		t.Fatalf("err = %v", err)
	}
	q, err := svc.Create(ctx, "Which engine?", []QuestionOptionInput{{Text: "Source", IsCorrect: true}, {Text: "Unreal"}})
	if err != nil {
		t.Fatal(err)
	}
	list, err := svc.List(ctx)
	if err != nil || len(list) != 1 || list[0].ID != q.ID || len(list[0].Options) != 2 || !list[0].Options[0].IsCorrect {
		t.Fatalf("list = %+v, %v", list, err)
	}
}
