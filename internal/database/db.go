package database

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Options describes how to reach MySQL.  Timeout bounds dialing and every
// read/write on a connection so a stalled server surfaces as an error
// instead of hanging a request.
type Options struct {
	User, Pass       string
	Host, Port, Name string
	Timeout          time.Duration
}

// DSN renders opts as a go-sql-driver DSN.  parseTime maps DATETIME to
// time.Time and loc=UTC keeps stored times zone-free.
func (o Options) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, o.Port)
	cfg.DBName = o.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
		cfg.ReadTimeout = o.Timeout
		cfg.WriteTimeout = o.Timeout
	}
	return cfg.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", opts.DSN())
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}
