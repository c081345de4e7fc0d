package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// DataSourceName строит DSN для драйвера исходной базы данных
func (c DatabaseConfig) DataSourceName() (string, error) {
	switch c.Driver {
	case "sqlite":
		if c.Path == "" {
			return "", fmt.Errorf("sqlite path is empty")
		}
		return c.Path, nil
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User,
			c.Password,
			c.Host,
			c.Port,
			c.DBName,
		), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", c.Driver)
	}
}

// ConnectDatabase устанавливает подключение к исходной базе данных
func ConnectDatabase(ctx context.Context, config DatabaseConfig) (*sql.DB, error) {
	dsn, err := config.DataSourceName()
	if err != nil {
		return nil, err
	}

	// sqlite молча создаёт пустой файл, поэтому отсутствие базы проверяется заранее
	if config.Driver == "sqlite" {
		if _, err := os.Stat(config.Path); err != nil {
			return nil, fmt.Errorf("database file %s: %w", config.Path, err)
		}
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", config.Driver, err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", config.Driver, err)
	}

	return db, nil
}
