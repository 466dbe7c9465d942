package main

import (
	"path/filepath"
	"testing"
	"time"

	"invitation/constants"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testDBFile = "test_invitation.db"

// newTestDB opens a fresh SQLite file under the test's temp dir.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), testDBFile)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&SheetRow{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testConfig(t *testing.T) *Config {
	t.Helper()

	loc, err := time.LoadLocation(constants.DEFAULT_TIMEZONE)
	if err != nil {
		t.Fatalf("loading time zone: %v", err)
	}
	return &Config{
		Site: SiteConfig{Timezone: constants.DEFAULT_TIMEZONE, location: loc},
		Guestbook: GuestbookConfig{
			PreviewLimit: constants.DEFAULT_PREVIEW_LIMIT,
			PageSize:     constants.DEFAULT_PAGE_SIZE,
			DeletePolicy: constants.DELETE_POLICY_PASSWORD,
			PasswordCost: bcrypt.MinCost,
		},
	}
}

type recordingNotifier struct {
	entries []GuestbookEntry
	records []AttendanceRecord
}

func (n *recordingNotifier) NewEntry(entry GuestbookEntry)         { n.entries = append(n.entries, entry) }
func (n *recordingNotifier) NewAttendance(record AttendanceRecord) { n.records = append(n.records, record) }
