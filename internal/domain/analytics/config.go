package analytics

import "time"

// Config controls the reporting aggregations.
type Config struct {
	PopularWindow time.Duration
	PopularLimit  int
}

const (
	defaultPopularWindow = 7 * 24 * time.Hour
	defaultPopularLimit  = 10
)

func (c Config) withDefaults() Config {
	if c.PopularWindow <= 0 {
		c.PopularWindow = defaultPopularWindow
	}
	if c.PopularLimit <= 0 {
		c.PopularLimit = defaultPopularLimit
	}
	return c
}
