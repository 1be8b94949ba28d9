// MIT License

// Copyright (c) 2023 wetrycode

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package vmwiz

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var settingsLog = GetLogger("settings")

// Settings read-only access to raw configuration values
type Settings interface {
	// GetValue get the value of a dotted configuration key
	GetValue(key string) (interface{}, error)
}

// Configuration viper backed configuration loader
type Configuration struct {
	*viper.Viper
}

// BackendConfig location of the vmwiz backend.
// It is a value type and never mutated after it is built.
type BackendConfig struct {
	Scheme string `mapstructure:"scheme"`
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
}

// ClientSettings gateway client tuning
type ClientSettings struct {
	// Rate maximum requests per second sent to the backend, 0 means unlimited
	Rate int `mapstructure:"rate"`
	// Timeout per request timeout, 0 means no timeout
	Timeout time.Duration `mapstructure:"timeout"`
	// LegacyPaths use the first revision endpoint paths
	LegacyPaths bool `mapstructure:"legacy_paths"`
	// InsecureSkipVerify skip backend TLS certificate verification
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// ServerSettings web server settings
type ServerSettings struct {
	Addr         string        `mapstructure:"addr"`
	StaticDir    string        `mapstructure:"static_dir"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisSettings redis connection used by the options cache
type RedisSettings struct {
	Addr     string        `mapstructure:"addr"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// CacheSettings options cache settings
type CacheSettings struct {
	// TTL lifetime of the cached VM options, 0 disables the cache
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisSettings `mapstructure:"redis"`
}

// LogSettings logging settings
type LogSettings struct {
	Level string `mapstructure:"level"`
}

// AppSettings all settings of the application
type AppSettings struct {
	Backend BackendConfig  `mapstructure:"backend"`
	Client  ClientSettings `mapstructure:"client"`
	Server  ServerSettings `mapstructure:"server"`
	Cache   CacheSettings  `mapstructure:"cache"`
	Log     LogSettings    `mapstructure:"log"`
}

// backendEnv environment variables naming the backend location
var backendEnv = map[string]string{
	"backend.scheme": "VMWIZ_SCHEME",
	"backend.host":   "VMWIZ_HOSTNAME",
	"backend.port":   "VMWIZ_PORT",
}

var defaultSettings = map[string]interface{}{
	"backend.scheme":              "http",
	"backend.host":                "localhost",
	"backend.port":                8081,
	"client.rate":                 0,
	"client.timeout":              "0s",
	"client.legacy_paths":         false,
	"client.insecure_skip_verify": false,
	"server.addr":                 "0.0.0.0:8080",
	"server.static_dir":           "./dist",
	"server.read_timeout":         "10s",
	"server.write_timeout":        "10s",
	"cache.ttl":                   "0s",
	"cache.redis.addr":            "",
	"cache.redis.username":        "",
	"cache.redis.password":        "",
	"cache.redis.db":              0,
	"cache.redis.timeout":         "5s",
	"log.level":                   "info",
}

// BaseURL the backend base url, {scheme}://{host}:{port}
func (b BackendConfig) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", b.Scheme, b.Host, b.Port)
}

// Validate check the backend location is usable
func (b BackendConfig) Validate() error {
	if b.Scheme != "http" && b.Scheme != "https" {
		return fmt.Errorf("%w: backend scheme %q must be http or https", ErrInvalidConfig, b.Scheme)
	}
	if strings.TrimSpace(b.Host) == "" || strings.ContainsAny(b.Host, "/:") {
		return fmt.Errorf("%w: backend host %q", ErrInvalidConfig, b.Host)
	}
	if b.Port <= 0 || b.Port > 65535 {
		return fmt.Errorf("%w: backend port %d out of range", ErrInvalidConfig, b.Port)
	}
	return nil
}

// NewConfiguration get a configuration with defaults and environment bindings
func NewConfiguration() *Configuration {
	c := &Configuration{
		viper.New(),
	}
	for key, value := range defaultSettings {
		c.SetDefault(key, value)
	}
	c.SetEnvPrefix("VMWIZ")
	c.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.AutomaticEnv()
	for key, env := range backendEnv {
		// BindEnv only fails without a key
		_ = c.BindEnv(key, env)
	}
	return c
}

func (c *Configuration) GetValue(key string) (interface{}, error) {
	if !c.IsSet(key) {
		return nil, fmt.Errorf("%w: unknown key %s", ErrInvalidConfig, key)
	}
	return c.Get(key), nil
}

// load read settings.yaml from dir
func (c *Configuration) load(dir string) (bool, error) {
	c.AddConfigPath(dir)
	c.SetConfigName("settings")
	c.SetConfigType("yaml")
	err := c.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: read settings: %s", ErrInvalidConfig, err.Error())
	}
	return true, nil
}

// Load read settings.yaml from the first dir containing one.
// A missing file is not an error, defaults and environment still apply.
func (c *Configuration) Load(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		ok, err := c.load(dir)
		if err != nil {
			return err
		}
		if ok {
			settingsLog.Debugf("Loaded settings from %s", c.ConfigFileUsed())
			return nil
		}
	}
	return nil
}

// Settings decode and validate the loaded configuration
func (c *Configuration) Settings() (AppSettings, error) {
	var s AppSettings
	err := c.Unmarshal(&s, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return AppSettings{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	if err := s.Backend.Validate(); err != nil {
		return AppSettings{}, err
	}
	if s.Client.Rate < 0 {
		return AppSettings{}, fmt.Errorf("%w: client rate %d", ErrInvalidConfig, s.Client.Rate)
	}
	return s, nil
}

// LoadSettings load settings from dirs, falling back to the working directory
func LoadSettings(dirs ...string) (AppSettings, error) {
	c := NewConfiguration()
	if len(dirs) == 0 {
		wd, _ := os.Getwd()
		dirs = []string{wd}
	}
	if err := c.Load(dirs...); err != nil {
		return AppSettings{}, err
	}
	return c.Settings()
}
