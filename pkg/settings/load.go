package settings

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SERVICEQUEUE_SERVER_PORT.
const EnvPrefix = "SERVICEQUEUE"

// setDefaults registers the values used when neither file nor env sets a key.
// Every key is registered, since viper only reads env overrides for keys it
// knows. Zero values leave the choice to the component reading them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("logger.log_level", "info")
	v.SetDefault("logger.file_log_name", "")
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.compress", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.pool_size", 0)
	v.SetDefault("redis.min_idle_conns", 0)
	v.SetDefault("redis.pool_timeout", 0)
	v.SetDefault("redis.dial_timeout", 0)
	v.SetDefault("redis.read_timeout", 0)
	v.SetDefault("redis.write_timeout", 0)
	v.SetDefault("redis.max_retries", 0)
	v.SetDefault("redis.max_retry_backoff", 0)
	v.SetDefault("redis.min_retry_backoff", 0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "queue-audit")
	v.SetDefault("kafka.flush_frequency", 0)
	v.SetDefault("kafka.flush_bytes", 0)
	v.SetDefault("kafka.max_message_bytes", 0)
	v.SetDefault("kafka.timeout", 0)
	v.SetDefault("kafka.max_retries", 0)
	v.SetDefault("kafka.retry_backoff", 0)

	v.SetDefault("queue.name", "default")
	v.SetDefault("queue.policy", "fifo")
	v.SetDefault("queue.rule", "")
	v.SetDefault("queue.capacity", 0)

	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.stripe_size", 64)
	v.SetDefault("audit.stripes", 1)
	v.SetDefault("audit.write_timeout", 2000)
	v.SetDefault("audit.flush_interval", 1000)
	v.SetDefault("audit.node_id", 0)
	v.SetDefault("audit.latest_ttl", 0)
	v.SetDefault("audit.max_entries", 1000)
}

// Load reads configuration from path (any format viper understands) and
// environment variables. An empty path loads defaults and env only.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}
