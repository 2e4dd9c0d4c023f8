package Models

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database and runs migrations. MySQL is used when
// DB_DSN is set, otherwise a local sqlite file (dev default).
func Connect() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	var err error
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	} else {
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "lobby.db"
		}
		DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}

// Migrate runs AutoMigrate for every model, base tables first.
func Migrate(db *gorm.DB) error {
	// 1. Base tables with no relationships
	if err := db.AutoMigrate(
		&User{},
		&Incident{},
		&ClientRequest{},
		&FollowUp{},
		&InternalTask{},
		&TrainingTask{},
		&Reminder{},
	); err != nil {
		return err
	}

	// 2. Tables referencing users or tasks
	if err := db.AutoMigrate(
		&Shift{},
		&TaskAttachment{},
		&ReminderReceipt{},
		&APILog{},
	); err != nil {
		return err
	}

	// 3. Tables referencing shifts
	return db.AutoMigrate(
		&ShiftHandover{},
		&ShiftReview{},
		&WebhookOutbox{},
	)
}
