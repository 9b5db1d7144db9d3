package mongo

import "time"

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds MongoDB connection settings.
type ClientConfig struct {
	URI            string
	Database       string
	AppName        string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

func WithURI(uri string) ClientOption {
	return func(c *ClientConfig) {
		c.URI = uri
	}
}

// WithDatabase selects the database; a database named in the URI path is
// used when this is empty.
func WithDatabase(name string) ClientOption {
	return func(c *ClientConfig) {
		c.Database = name
	}
}

func WithAppName(name string) ClientOption {
	return func(c *ClientConfig) {
		c.AppName = name
	}
}

func WithConnectTimeout(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.ConnectTimeout = d
	}
}

func WithMaxPoolSize(n uint64) ClientOption {
	return func(c *ClientConfig) {
		c.MaxPoolSize = n
	}
}
