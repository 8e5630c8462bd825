package config

import "time"

// Config is the root application configuration.
type Config struct {
	Lexicon  LexiconConfig  `yaml:"lexicon"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Seeder   SeederConfig   `yaml:"seeder"`
	Corpus   CorpusConfig   `yaml:"corpus"`
}

// LexiconConfig locates the SALDO source and the sentinel root sense.
type LexiconConfig struct {
	Path   string `yaml:"path"   env:"SALDO_PATH"`
	Format string `yaml:"format" env:"SALDO_FORMAT" env-default:"auto"`
	Root   string `yaml:"root"   env:"SALDO_ROOT"   env-default:"PRIM..1" validate:"required"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"  validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"  validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"  validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"  validate:"gt=0"`
}

// DatabaseConfig holds PostgreSQL connection settings. The database is
// optional: an empty DSN disables persistence.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10" validate:"gte=1"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"  validate:"gte=0,ltefield=MaxConns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool { return c.DSN != "" }

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json" validate:"oneof=json text"`
}

// SeederConfig controls persisting a loaded lexicon.
type SeederConfig struct {
	BatchSize int  `yaml:"batch_size" env:"SEEDER_BATCH_SIZE" env-default:"1000" validate:"gte=1,lte=50000"`
	DryRun    bool `yaml:"dry_run"    env:"SEEDER_DRY_RUN"    env-default:"false"`
	Keep      int  `yaml:"keep"       env:"SEEDER_KEEP"       env-default:"2"     validate:"gte=0"`
}

// CorpusConfig controls corpus checks.
type CorpusConfig struct {
	BatchSize int `yaml:"batch_size" env:"CORPUS_BATCH_SIZE" env-default:"1" validate:"gte=1"`
}
