package data

import (
	"log"
	"strings"
	"time"

	"github.com/castforge/castforge/src/shared/types"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MustDB opens the relational store or exits. driver is "mysql" or "sqlite";
// sqlite exists for local development only.
func MustDB(driver, dsn string) *gorm.DB {
	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		dsn = ensureParam(dsn, "parseTime", "true")
		if !strings.Contains(dsn, "charset=") {
			dsn = ensureParam(dsn, "charset", "utf8mb4")
			dsn = ensureParam(dsn, "collation", "utf8mb4_unicode_ci")
		}
		dialector = mysql.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	return db
}

// Migrate creates or updates the bot's tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Setting{},
		&types.ImageAnalysis{},
		&types.Conversation{},
		&types.TokenCreation{},
	)
}

func ensureParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}
