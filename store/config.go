package store

// Config holds configuration for the Store.
type Config struct {
	// TableName is the DynamoDB table holding all customer records
	// (primary, lookups, and locks share one table).
	// Default: "customers"
	TableName string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TableName: "customers",
	}
}

// validate ensures config values are usable.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = "customers"
	}
}
