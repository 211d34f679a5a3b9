package notes

import (
	"fmt"
	"strings"

	"github.com/ethanbaker/soundscript/pkg/notes"
	"github.com/ethanbaker/soundscript/pkg/utils"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

// Supported values of DB_DRIVER
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// DefaultSQLitePath is where the SQLite database lives unless SQLITE_PATH is set
const DefaultSQLitePath = "database/mydb.sqlite"

// Open creates the store selected by DB_DRIVER
func Open(cfg *utils.Config) (notes.Store, error) {
	driver := strings.ToLower(cfg.GetWithDefault("DB_DRIVER", DriverSQLite))

	switch driver {
	case DriverSQLite:
		path := cfg.GetWithDefault("SQLITE_PATH", DefaultSQLitePath)
		log.Info().Str("path", path).Msg("[STORE]: opening sqlite database")
		return NewSQLiteStore(path)

	case DriverMySQL:
		dsn, err := mysqlDSN(cfg)
		if err != nil {
			return nil, err
		}
		log.Info().Str("host", cfg.Get("MYSQL_HOST")).Msg("[STORE]: opening mysql database")
		return NewMySQLStore(dsn)

	case DriverMemory:
		log.Warn().Msg("[STORE]: using in-memory store (data will not persist across restarts)")
		return NewInMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// mysqlDSN builds the MySQL DSN from the MYSQL_* settings
func mysqlDSN(cfg *utils.Config) (string, error) {
	dbName, err := cfg.Require("MYSQL_DATABASE")
	if err != nil {
		return "", err
	}

	dbConfig := gomysql.Config{
		User:                 cfg.Get("MYSQL_USER"),
		Passwd:               cfg.Get("MYSQL_ROOT_PASSWORD"),
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%s", cfg.GetWithDefault("MYSQL_HOST", "127.0.0.1"), cfg.GetWithDefault("MYSQL_PORT", "3306")),
		DBName:               dbName,
		ParseTime:            true,
		AllowNativePasswords: true,
	}

	return dbConfig.FormatDSN(), nil
}
