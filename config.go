package trustly

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything a Client needs. Build it with DefaultConfig or
// LoadConfig and pass it to New.
type Config struct {
	Host  string `mapstructure:"host"`
	Port  int    `mapstructure:"port"`
	HTTPS bool   `mapstructure:"https"`

	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// PEM encoded keys. When empty, the matching *File is read instead.
	PrivateKeyPEM  string `mapstructure:"private_key"`
	PublicKeyPEM   string `mapstructure:"public_key"`
	PrivateKeyFile string `mapstructure:"private_key_file"`
	PublicKeyFile  string `mapstructure:"public_key_file"`

	Timeout time.Duration `mapstructure:"timeout"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig selects the logger built by cmd/trustly-notify.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// Endpoint defaults.
const (
	DefaultHost    = "test.trustly.com"
	DefaultPort    = 443
	DefaultTimeout = 30 * time.Second
)

// DefaultConfig returns the test environment endpoint without credentials.
func DefaultConfig() Config {
	return Config{
		Host:    DefaultHost,
		Port:    DefaultPort,
		HTTPS:   true,
		Timeout: DefaultTimeout,
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// BaseURL returns scheme://host[:port]. The port is omitted when it is
// zero or the default of the scheme.
func (c Config) BaseURL() string {
	scheme, defaultPort := "http", 80
	if c.HTTPS {
		scheme, defaultPort = "https", 443
	}
	if c.Port == 0 || c.Port == defaultPort {
		return scheme + "://" + c.Host
	}
	return scheme + "://" + c.Host + ":" + strconv.Itoa(c.Port)
}

// LoadConfig reads the configuration from an optional .env file, the YAML
// (or any viper supported) file at path when path is not empty, and the
// environment. Environment variables use the TRUSTLY_ prefix
// (TRUSTLY_HOST, TRUSTLY_LOG_LEVEL, ...); MERCHANT_PRIVATE_KEY is honoured
// for the private key.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("host", def.Host)
	v.SetDefault("port", def.Port)
	v.SetDefault("https", def.HTTPS)
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("private_key", "")
	v.SetDefault("public_key", "")
	v.SetDefault("private_key_file", "")
	v.SetDefault("public_key_file", "")
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	v.SetEnvPrefix("TRUSTLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("private_key", "TRUSTLY_PRIVATE_KEY", "MERCHANT_PRIVATE_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// keyPEM returns the inline PEM, or the contents of file when the inline
// value is empty.
func keyPEM(inline, file string) ([]byte, error) {
	if inline != "" {
		return []byte(inline), nil
	}
	if file == "" {
		return nil, nil
	}
	return os.ReadFile(file)
}
