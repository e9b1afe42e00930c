package clickhouse

import "time"

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds the record store connection settings.
type ClientConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	UseHTTP  bool

	Pool     PoolConfig
	Timeouts TimeoutConfig

	// Server-side query settings carried in the DSN.
	AsyncInsert  bool
	WaitForAsync bool
	MaxExecTime  time.Duration
}

// PoolConfig sizes the database/sql pool.
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// TimeoutConfig bounds connection setup and reads. Write is enforced
// client-side only.
type TimeoutConfig struct {
	Dial  time.Duration
	Read  time.Duration
	Write time.Duration
}

func defaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Port:     9000,
		Database: "betpulse",
		User:     "default",
		Pool: PoolConfig{
			MaxOpen:     10,
			MaxIdle:     5,
			MaxLifetime: 5 * time.Minute,
		},
		Timeouts: TimeoutConfig{
			Dial:  5 * time.Second,
			Read:  10 * time.Second,
			Write: 10 * time.Second,
		},
	}
}

func (c *ClientConfig) scheme() string {
	if c.UseHTTP {
		return "http"
	}
	return "clickhouse"
}

// WithAddr sets the server address. Port 0 keeps the default.
func WithAddr(host string, port int) ClientOption {
	return func(c *ClientConfig) {
		c.Host = host
		if port > 0 {
			c.Port = port
		}
	}
}

// WithAuth selects the database and credentials.
func WithAuth(database, user, password string) ClientOption {
	return func(c *ClientConfig) {
		if database != "" {
			c.Database = database
		}
		if user != "" {
			c.User = user
		}
		c.Password = password
	}
}

// WithPool sizes the connection pool.
func WithPool(maxOpen, maxIdle int, lifetime time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Pool = PoolConfig{MaxOpen: maxOpen, MaxIdle: maxIdle, MaxLifetime: lifetime}
	}
}

// WithTimeouts sets dial/read/write timeouts.
func WithTimeouts(dial, read, write time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeouts = TimeoutConfig{Dial: dial, Read: read, Write: write}
	}
}

// WithHTTP switches from the native protocol to HTTP.
func WithHTTP(useHTTP bool) ClientOption {
	return func(c *ClientConfig) {
		c.UseHTTP = useHTTP
	}
}

// WithAsyncInsert lets the server buffer ingested records.
func WithAsyncInsert(enabled, wait bool) ClientOption {
	return func(c *ClientConfig) {
		c.AsyncInsert = enabled
		c.WaitForAsync = wait
	}
}

// WithMaxExecutionTime caps a single aggregation query.
func WithMaxExecutionTime(d time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.MaxExecTime = d
	}
}
