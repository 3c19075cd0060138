package database

import (
	"log"
	"os"

	"prism-backend/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB dipakai bersama seluruh proses. Diisi sekali lewat ConnectDatabase
// (atau Connect di test), bukan per-request.
var DB *gorm.DB

// ConnectDatabase buka koneksi dari env dan jalankan migrasi.
// Migrasi HANYA di sini (sekali saat startup), tidak ada ALTER TABLE di handler.
func ConnectDatabase() {
	dsn := os.Getenv("DATABASE_PATH")
	if dsn == "" {
		dsn = "prism.db"
	}
	// busy_timeout biar penulis konkuren antri, bukan langsung SQLITE_BUSY
	db, err := Connect(dsn + "?_pragma=busy_timeout(5000)")
	if err != nil {
		log.Fatal("Gagal konek database: ", err)
	}
	DB = db
}

// Connect dipisah supaya test bisa buka DB sendiri (file temp) lewat jalur yang sama.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Notebook{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.Subscription{},
	)
	if err != nil {
		return nil, err
	}
	return db, nil
}
