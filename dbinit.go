package main

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
)

const schemaVersion = 1

func initSchema(db *sql.DB) error {
	var dbVersion int
	err := db.QueryRow("SELECT version FROM db_version WHERE name='graphcal'").Scan(&dbVersion)
	if err != nil {
		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS db_version (
			name TEXT PRIMARY KEY,
			version INTEGER
		)`)
		if err != nil {
			return fmt.Errorf("create db_version table: %w", err)
		}
		_, err = db.Exec(`INSERT OR IGNORE INTO db_version (name, version) VALUES ('graphcal', 0)`)
		if err != nil {
			return fmt.Errorf("initialize db_version table: %w", err)
		}
		dbVersion = 0
	}

	if dbVersion == 0 {
		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS tokens (
		account_name TEXT PRIMARY KEY,
		token TEXT)`)
		if err != nil {
			return fmt.Errorf("create tokens table: %w", err)
		}

		_, err = db.Exec(`UPDATE db_version SET version = ? WHERE name = 'graphcal'`, schemaVersion)
		if err != nil {
			return fmt.Errorf("update db_version table: %w", err)
		}
	}

	return nil
}

func saveToken(db *sql.DB, accountName string, token *oauth2.Token) error {
	tokenJSON, err := json.Marshal(token)
	if err != nil {
		return err
	}

	_, err = db.Exec("INSERT OR REPLACE INTO tokens (account_name, token) VALUES (?, ?)", accountName, tokenJSON)
	return err
}

// loadToken returns sql.ErrNoRows when the account never signed in.
func loadToken(db *sql.DB, accountName string) (*oauth2.Token, error) {
	var tokenJSON []byte
	err := db.QueryRow("SELECT token FROM tokens WHERE account_name = ?", accountName).Scan(&tokenJSON)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("unmarshal token for %s: %w", accountName, err)
	}
	return &token, nil
}

func deleteToken(db *sql.DB, accountName string) (bool, error) {
	res, err := db.Exec("DELETE FROM tokens WHERE account_name = ?", accountName)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
