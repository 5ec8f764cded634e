package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  User and vendor tokens are signed with separate
// keys so a token issued for one audience is never accepted by the other.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	DBTimeout      time.Duration // bound on connect/read/write round trips
	JWTUserKey     string        // key used to sign user tokens
	JWTVendorKey   string        // key used to sign vendor tokens
	AccessTTLMin   int           // access token time-to-live in minutes
	RefreshTTLDays int           // refresh token time-to-live in days
	BcryptCost     int           // bcrypt cost for password hashing
	CORSOrigins    []string      // allowed browser origins
	Log            LogConfig
	Media          MediaConfig
	AMQP           AMQPConfig

	// DeleteReleasesRoom makes deleting a booking also free its room.
	DeleteReleasesRoom bool
}

// LogConfig controls the slog handler built at startup.
type LogConfig struct {
	Level     string
	Format    string
	Directory string
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:                must("APP_ENV"),
		Port:               must("APP_PORT"),
		DBUser:             must("DB_USER"),
		DBPass:             os.Getenv("DB_PASS"), // empty allowed
		DBHost:             must("DB_HOST"),
		DBPort:             must("DB_PORT"),
		DBName:             must("DB_NAME"),
		DBTimeout:          envDur("DB_TIMEOUT", 5*time.Second),
		JWTUserKey:         must("JWT_USER_KEY"),
		JWTVendorKey:       must("JWT_VENDOR_KEY"),
		AccessTTLMin:       envInt("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays:     envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:         mustInt("BCRYPT_COST"),
		CORSOrigins:        splitList(envStr("CORS_ORIGINS", "http://localhost:5173")),
		DeleteReleasesRoom: envBool("BOOKING_DELETE_RELEASES_ROOM", true),
		Log: LogConfig{
			Level:     envStr("LOG_LEVEL", "info"),
			Format:    envStr("LOG_FORMAT", "text"),
			Directory: envStr("LOG_DIR", "./logs"),
		},
		Media: LoadMediaConfig(),
		AMQP:  LoadAMQPConfig(),
	}
	if cfg.JWTUserKey == cfg.JWTVendorKey {
		log.Fatalf("JWT_USER_KEY and JWT_VENDOR_KEY must differ")
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
