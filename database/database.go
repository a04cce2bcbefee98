// Package database manages the MySQL connection, its pool and the schema
// migration.
package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
)

var DB *gorm.DB

// GetDB returns the global database connection.
func GetDB() *gorm.DB {
	return DB
}

// SetDB replaces the global connection, used by tests to inject an
// in-memory database.
func SetDB(newDB *gorm.DB) {
	DB = newDB
}

// Init loads the environment and opens the database connection. The
// database is created when it does not exist yet.
func Init() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, relying on the environment")
	}

	initConnection()
}

func initConnection() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	// Connect without a database first so it can be created on a fresh
	// server.
	dsnWithoutDB := fmt.Sprintf("%s:%s@tcp(%s:%s)/?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port)

	tempDB, err := gorm.Open(mysql.Open(dsnWithoutDB), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to MySQL server: %v", err)
	}

	createDBSQL := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", dbname)
	if err := tempDB.Exec(createDBSQL).Error; err != nil {
		log.Fatalf("failed to create database: %v", err)
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local&collation=utf8mb4_unicode_ci",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to access underlying connection: %v", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	db.Set("gorm:table_options", "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci")

	DB = db
	log.Printf("database connected at %s:%s/%s", host, port, dbname)
}

// Migrate creates or updates the schema for every model.
func Migrate() {
	log.Println("running database migration...")

	db := DB.Set("gorm:table_options", "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci")

	err := db.AutoMigrate(
		&models.User{},
		&models.Partner{},
		&models.Operator{},
		&models.Sale{},
		&models.Alert{},
		&models.SaleAuditLog{},
		&models.CommissionReport{},
		&models.Counter{},
	)
	if err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	log.Println("database migration complete")
}
