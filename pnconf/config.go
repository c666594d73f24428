/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package pnconf holds the Context's construction-time configuration: the
// subscribe/non-subscribe timeouts, transaction timeout, retry interval,
// TLS policy and keepalive knobs that spec.md 2.1 lists as per-context
// config, plus the optional file/env loader built on viper for programs
// that want to source these from a config file instead of call-site
// options.
package pnconf

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is the full set of tunables for one Context. Zero value is not
// valid; use Default() and then apply Options.
type Config struct {
	Origin string `mapstructure:"origin" json:"origin" yaml:"origin"`

	SubscribeTimeout    time.Duration `mapstructure:"subscribe_timeout" json:"subscribe_timeout" yaml:"subscribe_timeout"`
	NonSubscribeTimeout time.Duration `mapstructure:"non_subscribe_timeout" json:"non_subscribe_timeout" yaml:"non_subscribe_timeout"`
	TransactionTimeout  time.Duration `mapstructure:"transaction_timeout" json:"transaction_timeout" yaml:"transaction_timeout"`

	RetryInterval  time.Duration `mapstructure:"retry_interval" json:"retry_interval" yaml:"retry_interval"`
	MaximumRetries int           `mapstructure:"maximum_retries" json:"maximum_retries" yaml:"maximum_retries"`

	KeepAlive        bool `mapstructure:"keep_alive" json:"keep_alive" yaml:"keep_alive"`
	UseHTTPKeepAlive bool `mapstructure:"use_http_keep_alive" json:"use_http_keep_alive" yaml:"use_http_keep_alive"`

	TLSInsecureSkipVerify bool `mapstructure:"tls_insecure_skip_verify" json:"tls_insecure_skip_verify" yaml:"tls_insecure_skip_verify"`

	UUID      string `mapstructure:"uuid" json:"uuid" yaml:"uuid"`
	AuthKey   string `mapstructure:"auth_key" json:"auth_key" yaml:"auth_key"`
	PublishKey   string `mapstructure:"publish_key" json:"publish_key" yaml:"publish_key"`
	SubscribeKey string `mapstructure:"subscribe_key" json:"subscribe_key" yaml:"subscribe_key"`
	SecretKey    string `mapstructure:"secret_key" json:"secret_key" yaml:"secret_key"`

	CipherKey  string `mapstructure:"cipher_key" json:"cipher_key" yaml:"cipher_key"`
	UseRandomIV bool  `mapstructure:"use_random_iv" json:"use_random_iv" yaml:"use_random_iv"`

	// ProxyHTTP/ProxyHTTPS/ProxyNoProxy are the optional proxy
	// configuration spec.md 3 lists among a Context's essential fields.
	// All three empty means "resolve from the process's own
	// HTTP_PROXY/HTTPS_PROXY/NO_PROXY environment", matching
	// net/http.ProxyFromEnvironment's own fallback. Only the TLS
	// transport honors a resolved proxy (internal/pal.Dial).
	ProxyHTTP    string `mapstructure:"proxy_http" json:"proxy_http" yaml:"proxy_http"`
	ProxyHTTPS   string `mapstructure:"proxy_https" json:"proxy_https" yaml:"proxy_https"`
	ProxyNoProxy string `mapstructure:"proxy_no_proxy" json:"proxy_no_proxy" yaml:"proxy_no_proxy"`
}

// Default mirrors the original library's documented defaults (original_source
// core/pubnub_config.c / pubnub_internal_common.h): 310s subscribe timeout,
// 10s non-subscribe, 310s transaction cap, 3s retry interval (legacy PAL
// default), keep-alive on.
func Default() Config {
	return Config{
		Origin:              "ps.pndsn.com",
		SubscribeTimeout:    310 * time.Second,
		NonSubscribeTimeout: 10 * time.Second,
		TransactionTimeout:  310 * time.Second,
		RetryInterval:       3 * time.Second,
		MaximumRetries:      10,
		KeepAlive:           true,
		UseHTTPKeepAlive:    true,
		UseRandomIV:         true,
	}
}

// Option mutates a Config at construction time, in the teacher's
// functional-options idiom (httpcli.Options is built the same way, one
// struct plus small mutator funcs).
type Option func(*Config)

func WithOrigin(origin string) Option {
	return func(c *Config) { c.Origin = origin }
}

func WithKeys(publish, subscribe, secret string) Option {
	return func(c *Config) {
		c.PublishKey = publish
		c.SubscribeKey = subscribe
		c.SecretKey = secret
	}
}

func WithUUID(uuid string) Option {
	return func(c *Config) { c.UUID = uuid }
}

func WithAuthKey(key string) Option {
	return func(c *Config) { c.AuthKey = key }
}

func WithCipherKey(key string, useRandomIV bool) Option {
	return func(c *Config) {
		c.CipherKey = key
		c.UseRandomIV = useRandomIV
	}
}

func WithTimeouts(subscribe, nonSubscribe, transaction time.Duration) Option {
	return func(c *Config) {
		c.SubscribeTimeout = subscribe
		c.NonSubscribeTimeout = nonSubscribe
		c.TransactionTimeout = transaction
	}
}

func WithRetry(interval time.Duration, maximum int) Option {
	return func(c *Config) {
		c.RetryInterval = interval
		c.MaximumRetries = maximum
	}
}

func WithTLSInsecureSkipVerify(skip bool) Option {
	return func(c *Config) { c.TLSInsecureSkipVerify = skip }
}

// WithProxy sets explicit HTTP(S) proxy URLs and a no-proxy exclusion list;
// pass all empty strings to fall back to the environment at dial time.
func WithProxy(httpProxy, httpsProxy, noProxy string) Option {
	return func(c *Config) {
		c.ProxyHTTP = httpProxy
		c.ProxyHTTPS = httpsProxy
		c.ProxyNoProxy = noProxy
	}
}

// New builds a Config from Default() with opts applied in order.
func New(opts ...Option) Config {
	c := Default()
	for _, o := range opts {
		if o != nil {
			o(&c)
		}
	}
	return c
}

// Validate checks the invariants spec.md 2.1 requires of a usable Config:
// non-empty subscribe key at minimum, positive timeouts.
func (c Config) Validate() error {
	if c.SubscribeKey == "" {
		return fmt.Errorf("pnconf: subscribe_key must not be empty")
	}
	if c.SubscribeTimeout <= 0 || c.NonSubscribeTimeout <= 0 || c.TransactionTimeout <= 0 {
		return fmt.Errorf("pnconf: timeouts must be positive")
	}
	if c.MaximumRetries < 0 {
		return fmt.Errorf("pnconf: maximum_retries must not be negative")
	}
	return nil
}

// Loader reads a Config from a file plus environment overlay, the way the
// teacher's config/ package wires viper: prefix PN_, file formats json/
// yaml/toml/ini auto-detected by extension.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a Loader pre-seeded with Default()'s values so unset
// keys in the file/env still resolve sanely.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("PN")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("origin", def.Origin)
	v.SetDefault("subscribe_timeout", def.SubscribeTimeout)
	v.SetDefault("non_subscribe_timeout", def.NonSubscribeTimeout)
	v.SetDefault("transaction_timeout", def.TransactionTimeout)
	v.SetDefault("retry_interval", def.RetryInterval)
	v.SetDefault("maximum_retries", def.MaximumRetries)
	v.SetDefault("keep_alive", def.KeepAlive)
	v.SetDefault("use_http_keep_alive", def.UseHTTPKeepAlive)
	v.SetDefault("use_random_iv", def.UseRandomIV)
	v.SetDefault("proxy_http", def.ProxyHTTP)
	v.SetDefault("proxy_https", def.ProxyHTTPS)
	v.SetDefault("proxy_no_proxy", def.ProxyNoProxy)

	return &Loader{v: v}
}

// ReadFile loads path into the Loader (extension selects the viper codec).
func (l *Loader) ReadFile(path string) error {
	l.v.SetConfigFile(path)
	return l.v.ReadInConfig()
}

// Build decodes the loaded viper tree into a Config via mapstructure,
// using time.Duration-aware decode hooks the same way viper.Unmarshal does
// internally — spelled out here so the Loader also accepts a bare
// map[string]interface{} fed by a CLI flag set.
func (l *Loader) Build() (Config, error) {
	var c Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &c,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(l.v.AllSettings()); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
