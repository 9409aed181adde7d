package database

import (
	"database/sql"
	stdlog "log"

	"github.com/Alltrendsfy/zenith-sub000/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	// sqlite allows a single writer; pinning the pool to one connection
	// serializes balance read-modify-write at the storage layer.
	db.SetMaxOpenConns(1)

	DB = db

	if logger.L != nil {
		logger.L.Info("Ensuring database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Ensuring database schema for:", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS bank_accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		balance INTEGER NOT NULL DEFAULT 0,
		initial_balance INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS obligations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		counterparty TEXT,
		total_amount INTEGER NOT NULL,
		settled_amount INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pendente',
		issue_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		cost_center_id INTEGER,
		bank_account_id INTEGER,
		recurrence_type TEXT NOT NULL DEFAULT 'unica',
		recurrence_status TEXT,
		recurrence_start_date TEXT,
		recurrence_end_date TEXT,
		recurrence_next_date TEXT,
		recurrence_parent_id INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id),
		FOREIGN KEY(cost_center_id) REFERENCES cost_centers(id),
		FOREIGN KEY(bank_account_id) REFERENCES bank_accounts(id),
		FOREIGN KEY(recurrence_parent_id) REFERENCES obligations(id)
	);

	CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		transaction_type TEXT NOT NULL,
		transaction_id INTEGER NOT NULL,
		payment_method TEXT,
		bank_account_id INTEGER,
		amount INTEGER NOT NULL,
		payment_date TEXT NOT NULL,
		notes TEXT,
		reference TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id),
		FOREIGN KEY(transaction_id) REFERENCES obligations(id),
		FOREIGN KEY(bank_account_id) REFERENCES bank_accounts(id),
		UNIQUE(user_id, reference)
	);

	CREATE TABLE IF NOT EXISTS bank_transfers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		from_account_id INTEGER NOT NULL,
		to_account_id INTEGER NOT NULL,
		amount INTEGER NOT NULL,
		transfer_date TEXT NOT NULL,
		description TEXT,
		reference TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id),
		FOREIGN KEY(from_account_id) REFERENCES bank_accounts(id),
		FOREIGN KEY(to_account_id) REFERENCES bank_accounts(id),
		UNIQUE(user_id, reference)
	);

	CREATE TABLE IF NOT EXISTS cost_centers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		parent_id INTEGER,
		level INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id),
		FOREIGN KEY(parent_id) REFERENCES cost_centers(id)
	);

	CREATE TABLE IF NOT EXISTS cost_allocations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		transaction_type TEXT NOT NULL,
		transaction_id INTEGER NOT NULL,
		cost_center_id INTEGER NOT NULL,
		percentage TEXT NOT NULL,
		amount INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id),
		FOREIGN KEY(transaction_id) REFERENCES obligations(id),
		FOREIGN KEY(cost_center_id) REFERENCES cost_centers(id)
	);

	CREATE INDEX IF NOT EXISTS idx_obligations_user_status ON obligations(user_id, status);
	CREATE INDEX IF NOT EXISTS idx_obligations_recurrence ON obligations(user_id, recurrence_status, recurrence_next_date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_obligations_parent_due ON obligations(recurrence_parent_id, due_date)
		WHERE recurrence_parent_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_payments_account_date ON payments(bank_account_id, payment_date);
	CREATE INDEX IF NOT EXISTS idx_transfers_from_date ON bank_transfers(from_account_id, transfer_date);
	CREATE INDEX IF NOT EXISTS idx_transfers_to_date ON bank_transfers(to_account_id, transfer_date);
	CREATE INDEX IF NOT EXISTS idx_allocations_transaction ON cost_allocations(user_id, transaction_type, transaction_id);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}
