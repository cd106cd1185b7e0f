package db

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/avibot-labs/pgdata/pkg/pgdata"
)

// connStringCredentials matches the userinfo section of a connection URI.
var connStringCredentials = regexp.MustCompile(`://[^@/\s]+@`)

// BuildConnString assembles a PostgreSQL connection URI from the
// configuration. The result contains the password in cleartext; use
// RedactConnString before logging it.
func BuildConnString(config *pgdata.ConnectionConfig) string {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   fmt.Sprintf("%s:%d", config.Host, config.Port),
		Path:   "/" + config.Database,
	}

	if config.Username != "" {
		if config.Password != "" {
			u.User = url.UserPassword(config.Username, config.Password)
		} else {
			u.User = url.User(config.Username)
		}
	}

	query := url.Values{}
	if config.SSLMode != "" {
		query.Set("sslmode", config.SSLMode)
	}
	if config.AppName != "" {
		query.Set("application_name", config.AppName)
	}
	if config.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(config.ConnectTimeout.Seconds())))
	}

	u.RawQuery = query.Encode()
	return u.String()
}

// RedactConnString replaces the credentials in a connection URI so it can be
// logged safely.
func RedactConnString(connStr string) string {
	return connStringCredentials.ReplaceAllString(connStr, "://[REDACTED]@")
}
