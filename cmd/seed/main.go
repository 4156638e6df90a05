package main

import (
	"log"
	"os"
	"time"

	"studiobook/internal/database"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds a local dev database with a studio, rooms, operating hours and demo
// accounts. Intended for sqlite; postgres deployments apply
// migrations/0001_init.sql instead, which also carries the no-overbooking
// exclusion constraint sqlite cannot express.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "studiobook.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}

	log.Println("Creating schema...")
	for _, ddl := range schema {
		if err := db.Exec(ddl).Error; err != nil {
			log.Fatal("schema: ", err)
		}
	}

	log.Println("Cleaning old data...")
	for _, table := range []string{
		"booking_messages", "charges", "bookings", "operating_entries",
		"rooms", "addresses", "company_admins", "companies", "users",
	} {
		db.Exec("DELETE FROM " + table)
	}

	log.Println("Creating users...")
	ownerID := insertUser(db, "owner@studiobook.dev", "owner123", "Aigerim", "studio_owner")
	clientID := insertUser(db, "client@studiobook.dev", "client123", "Bekzat", "client")

	log.Println("Creating studio...")
	db.Exec(`INSERT INTO companies (id, name, created_at, updated_at) VALUES (1, 'Aurora Studios', ?, ?)`,
		time.Now().UTC(), time.Now().UTC())
	db.Exec(`INSERT INTO company_admins (company_id, user_id) VALUES (1, ?)`, ownerID)
	db.Exec(`INSERT INTO addresses (id, company_id, street, city, timezone, available_balance, created_at, updated_at)
VALUES (1, 1, 'Abay Ave 10', 'Almaty', 'Asia/Almaty', 0, ?, ?)`,
		time.Now().UTC(), time.Now().UTC())

	log.Println("Creating rooms...")
	db.Exec(`INSERT INTO rooms (id, address_id, name, description, area_sqm, capacity, price_per_hour, is_active, created_at, updated_at)
VALUES (1, 1, 'Daylight Hall', 'South-facing windows', 60, 10, 12000, 1, ?, ?)`,
		time.Now().UTC(), time.Now().UTC())
	db.Exec(`INSERT INTO rooms (id, address_id, name, description, area_sqm, capacity, price_per_hour, is_active, created_at, updated_at)
VALUES (2, 1, 'Cyclorama', 'White cyc wall', 45, 6, 15000, 1, ?, ?)`,
		time.Now().UTC(), time.Now().UTC())

	log.Println("Creating operating hours (weekdays 09:00-21:00, weekends 10:00-18:00)...")
	for day := 1; day <= 5; day++ {
		db.Exec(`INSERT INTO operating_entries (address_id, mode, day_of_week, open_time, close_time, is_closed, created_at)
VALUES (1, 'variable_by_day', ?, '09:00', '21:00', 0, ?)`, day, time.Now().UTC())
	}
	for _, day := range []int{6, 0} {
		db.Exec(`INSERT INTO operating_entries (address_id, mode, day_of_week, open_time, close_time, is_closed, created_at)
VALUES (1, 'variable_by_day', ?, '10:00', '18:00', 0, ?)`, day, time.Now().UTC())
	}

	log.Printf("Done. owner=%d client=%d (passwords: owner123 / client123)", ownerID, clientID)
}

func insertUser(db *gorm.DB, email, password, name, role string) int64 {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	db.Exec(`INSERT INTO users (email, password_hash, name, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`, email, string(hash), name, role, time.Now().UTC(), time.Now().UTC())

	var id int64
	db.Raw(`SELECT id FROM users WHERE email = ?`, email).Scan(&id)
	return id
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	phone TEXT,
	role TEXT NOT NULL DEFAULT 'client',
	created_at TIMESTAMP,
	updated_at TIMESTAMP,
	deleted_at TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS companies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	created_at TIMESTAMP,
	updated_at TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS company_admins (
	company_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	PRIMARY KEY (company_id, user_id)
)`,
	`CREATE TABLE IF NOT EXISTS addresses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	company_id INTEGER NOT NULL,
	street TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	timezone TEXT,
	available_balance REAL NOT NULL DEFAULT 0,
	created_at TIMESTAMP,
	updated_at TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS rooms (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	address_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	area_sqm INTEGER NOT NULL DEFAULT 0,
	capacity INTEGER NOT NULL DEFAULT 0,
	price_per_hour REAL NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at TIMESTAMP,
	updated_at TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS operating_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	address_id INTEGER NOT NULL,
	mode TEXT NOT NULL,
	day_of_week INTEGER,
	open_time TEXT,
	close_time TEXT,
	is_closed BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS bookings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	date TIMESTAMP NOT NULL,
	start_at TIMESTAMP NOT NULL,
	end_at TIMESTAMP NOT NULL,
	end_date TIMESTAMP,
	total_price REAL NOT NULL DEFAULT 0,
	payment_link TEXT,
	payment_link_expires_at TIMESTAMP,
	payment_ref TEXT,
	created_at TIMESTAMP,
	updated_at TIMESTAMP,
	cancelled_at TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS charges (
	id TEXT PRIMARY KEY,
	booking_id INTEGER NOT NULL,
	amount REAL NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'created',
	pay_url TEXT,
	signature TEXT,
	expires_at TIMESTAMP,
	raw_body TEXT,
	paid_at TIMESTAMP,
	created_at TIMESTAMP,
	updated_at TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS booking_messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	booking_id INTEGER NOT NULL,
	sender_id INTEGER NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP,
	read_at TIMESTAMP
)`,
}
