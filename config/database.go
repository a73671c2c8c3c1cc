package config

import (
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

//go:embed schema.sql
var schemaSQL string

// Schema devolve o DDL das tabelas usadas pelo backend.
func Schema() string {
	return schemaSQL
}

// GetDSN garante os parâmetros que os repositórios esperam (parseTime e multiStatements).
func (c *StoreConfig) GetDSN() (string, error) {
	if c == nil || c.DSN == "" {
		return "", fmt.Errorf("STORE_DSN não configurado")
	}
	parsed, err := mysql.ParseDSN(c.DSN)
	if err != nil {
		return "", fmt.Errorf("error parsing STORE_DSN: %w", err)
	}
	parsed.ParseTime = true
	parsed.MultiStatements = true
	return parsed.FormatDSN(), nil
}

func ConnectDatabase(cfg *StoreConfig) (*sql.DB, error) {
	dsn, err := cfg.GetDSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Configurar o pool de conexões
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if cfg.AutoMigrate {
		if _, err = db.Exec(schemaSQL); err != nil {
			db.Close()
			return nil, fmt.Errorf("error applying schema: %w", err)
		}
	}

	return db, nil
}
