package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/gamehouse/config"
	"github.com/cppla/gamehouse/models"
)

var dbSeq atomic.Int64

// newTestDB opens a private in-memory database with every model migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.Migrate(db, models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) Identity {
	t.Helper()
	u := models.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func seedArticle(t *testing.T, db *gorm.DB, author Identity) models.Article {
	t.Helper()
	a := models.Article{Title: "Patch notes", Content: "Balance changes", Category: "news", AuthorID: author.UserID, Tags: []string{"patch"}}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("seed article: %v", err)
	}
	return a
}

func reload[T any](t *testing.T, db *gorm.DB, id uint) T {
	t.Helper()
	var v T
	if err := db.First(&v, id).Error; err != nil {
		t.Fatalf("reload %T %d: %v", v, id, err)
	}
	return v
}

var nop = zap.NewNop()

func strptr(s string) *string { return &s }
