// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/civitas/internal/clock"
	"github.com/smallbiznis/civitas/internal/migration"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Epoch is the fixed start time of every FakeClock handed out here.
var Epoch = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

// OpenDB returns an in-memory sqlite database with the full schema applied.
// Each test gets its own database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// shared-cache sqlite reports "table is locked" under concurrent writers
	sqlDB.SetMaxOpenConns(1)

	if err := migration.ApplySQL(conn); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func Node(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func Clock() *clock.FakeClock {
	return clock.NewFakeClock(Epoch)
}
