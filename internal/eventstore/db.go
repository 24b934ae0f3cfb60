package eventstore

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Config struct {
	// File is a path to a local sqlite database, ":memory:" works too.
	File string `json:"file"`
	// Url is a remote libsql database, it takes precedence over File.
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// OpenDB opens the configured database and makes sure the schema exists.
func OpenDB(config Config) (*sql.DB, error) {
	var db *sql.DB
	var err error
	switch {
	case config.Url != "":
		values := url.Values{}
		if config.AuthToken != "" {
			values.Add("authToken", config.AuthToken)
		}
		dsn := config.Url
		if len(values) > 0 {
			dsn += "?" + values.Encode()
		}
		db, err = sql.Open("libsql", dsn)
	case config.File != "":
		db, err = sql.Open("sqlite", config.File)
		if err == nil {
			// sqlite allows a single writer, an in-memory database
			// only exists on the connection that created it
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("either a database file or url must be specified")
	}
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
