package db

import (
	"fmt"
	"net/url"
	"strings"
)

// WithApplicationName returns the DSN with application_name set so that
// benchmark sessions show up in pg_stat_activity. Supports postgres:// and
// postgresql:// URLs as well as keyword/value strings.
func WithApplicationName(dsn, name string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("empty DSN")
	}
	if name == "" {
		return dsn, nil
	}
	if !strings.Contains(dsn, "://") && strings.Contains(dsn, "=") {
		// keyword/value form: host=... dbname=...
		return dsn + " application_name=" + quoteKV(name), nil
	}
	if !strings.Contains(dsn, "://") {
		dsn = "postgres://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("unsupported DSN scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("application_name", name)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func quoteKV(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
