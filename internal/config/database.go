// internal/config/database.go
package config

import "fmt"

// SQLiteDSN returns the file DSN with a bounded busy wait, so a writer that
// finds the database locked blocks for the configured window instead of
// failing immediately.
func (d *DatabaseConfig) SQLiteDSN() string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", d.Path, d.BusyTimeoutMS)
}

func (d *DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}
