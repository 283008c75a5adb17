package settings

type Config struct {
	Server Server `mapstructure:"server"`
	Logger Logger `mapstructure:"logger"`
	Redis  Redis  `mapstructure:"redis"`
	Kafka  Kafka  `mapstructure:"kafka"`
	Queue  Queue  `mapstructure:"queue"`
	Audit  Audit  `mapstructure:"audit"`
}

// Server is the configuration for the HTTP server
type Server struct {
	Mode            string `mapstructure:"mode"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // Seconds
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAge      int    `mapstructure:"max_age"`
	MaxSize     int    `mapstructure:"max_size"`
	Compress    bool   `mapstructure:"compress"`
}

// Redis is the configuration for Redis
type Redis struct {
	Enabled         bool   `mapstructure:"enabled"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Password        string `mapstructure:"password"`
	Database        int    `mapstructure:"database"`
	PoolSize        int    `mapstructure:"pool_size"`
	MinIdleConns    int    `mapstructure:"min_idle_conns"`
	PoolTimeout     int    `mapstructure:"pool_timeout"`  // Seconds
	DialTimeout     int    `mapstructure:"dial_timeout"`  // Seconds
	ReadTimeout     int    `mapstructure:"read_timeout"`  // Seconds
	WriteTimeout    int    `mapstructure:"write_timeout"` // Seconds
	MaxRetries      int    `mapstructure:"max_retries"`
	MaxRetryBackoff int    `mapstructure:"max_retry_backoff"` // Milliseconds
	MinRetryBackoff int    `mapstructure:"min_retry_backoff"` // Milliseconds
}

// Kafka is the configuration for Kafka
type Kafka struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	Topic           string   `mapstructure:"topic"`
	FlushFrequency  int      `mapstructure:"flush_frequency"`   // Milliseconds
	FlushBytes      int      `mapstructure:"flush_bytes"`       // Bytes
	MaxMessageBytes int      `mapstructure:"max_message_bytes"` // Bytes
	Timeout         int      `mapstructure:"timeout"`           // Seconds
	MaxRetries      int      `mapstructure:"max_retries"`       // Number of retries
	RetryBackoff    int      `mapstructure:"retry_backoff"`     // Milliseconds
}

// Queue is the configuration for the service queue
type Queue struct {
	Name     string `mapstructure:"name"`
	Policy   string `mapstructure:"policy"`   // fifo | lifo
	Rule     string `mapstructure:"rule"`     // validator tag applied on enqueue, e.g. "required,max=256"
	Capacity int    `mapstructure:"capacity"` // initial backing capacity
}

// Audit is the configuration for the checkpoint trail
type Audit struct {
	Enabled       bool  `mapstructure:"enabled"`
	StripeSize    int   `mapstructure:"stripe_size"`
	Stripes       int   `mapstructure:"stripes"`
	WriteTimeout  int   `mapstructure:"write_timeout"`  // Milliseconds
	FlushInterval int   `mapstructure:"flush_interval"` // Milliseconds, 0 disables periodic flush
	NodeID        int64 `mapstructure:"node_id"`        // Snowflake node for record IDs, 0-1023
	MaxEntries    int   `mapstructure:"max_entries"`    // Redis list length per queue
	LatestTTL     int   `mapstructure:"latest_ttl"`     // Seconds, 0 keeps forever
}
