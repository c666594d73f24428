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

// Package pubnub is the public-facing SDK surface: Context, its functional
// options, and one method per transaction kind. A Context drives exactly
// one transaction at a time (spec.md 3/5): Publish, Subscribe, Time,
// presence, history, message-actions, object-metadata, grant/revoke-token
// all build an internal/endpoint request, hand it to the shared scheduler
// through internal/fsm, and block the calling goroutine until the
// transaction reaches a terminal outcome — the "sync mode is callback plus
// a wait" design note from spec.md 9, grounded on nabbar-golib/cluster's
// sync.go wrapper over its async engine.
package pubnub

import (
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/nabbar/pncore/internal/endpoint"
	"github.com/nabbar/pncore/internal/heartbeat"
	"github.com/nabbar/pncore/internal/httpwire"
	"github.com/nabbar/pncore/internal/pal"
	"github.com/nabbar/pncore/internal/pnconf/tlsprep"
	"github.com/nabbar/pncore/internal/pncrypto"
	"github.com/nabbar/pncore/internal/sched"
	"github.com/nabbar/pncore/internal/txrxbuf"
	"github.com/nabbar/pncore/pnconf"
	"github.com/nabbar/pncore/pnlog"
)

// sdkName is the "pnsdk" query parameter every request carries.
const sdkName = "pncore-go/1.0"

// defaultBufferCapacity sizes the per-context reusable buffer generously
// enough for a subscribe-v2 envelope carrying a handful of messages without
// regrowing on the steady-state path.
const defaultBufferCapacity = 32 * 1024

// Cursor is a subscribe loop's resume position: the timetoken of the last
// message received and the region it was served from (spec.md 3's
// subscribe cursor).
type Cursor struct {
	Timetoken string
	Region    int
}

// Context is one long-lived client object. It is not safe for concurrent
// use by multiple goroutines invoking operations simultaneously — exactly
// one transaction runs at a time, enforced by txMu, mirroring the
// original's single pubnub_t-per-context-at-a-time contract.
type Context struct {
	cfg pnconf.Config
	id  endpoint.Identity

	host string
	port int
	tls  *tlsConfigHolder

	// proxy is the resolved proxy routing policy for this Context's TLS
	// transport (spec.md 3's "optional proxy configuration"), copied from
	// cfg's Proxy* fields by New.
	proxy pal.ProxyConfig

	log     pnlog.Logger
	sch     *sched.Scheduler
	buf     *txrxbuf.Buffer
	crypto  *pncrypto.Module
	thumper *heartbeat.Thumper

	// maxReplyLen bounds ReadBody's allocation/inflation (spec.md 4.4's
	// PUBNUB_REPLY_MAXLEN); zero means "use httpwire.DefaultMaxReplyLen",
	// filled in by New.
	maxReplyLen int64

	txMu sync.Mutex

	cursor Cursor

	subMu       sync.Mutex
	subChannels []string
	subGroups   []string

	closed bool
}

type tlsConfigHolder struct {
	insecureTransport bool
}

// Option mutates a Context at construction time, the same functional-
// options idiom pnconf.Option and the teacher's httpcli.Options use.
type Option func(*Context)

// WithLogger attaches a pnlog.Logger; Discard() is used if none is given.
func WithLogger(l pnlog.Logger) Option {
	return func(c *Context) { c.log = l }
}

// WithScheduler pins this Context to an explicit Scheduler instead of the
// process-wide Default() singleton — used by tests that want an isolated
// worker loop.
func WithScheduler(s *sched.Scheduler) Option {
	return func(c *Context) { c.sch = s }
}

// WithPlainHTTP disables the TLS dial entirely, talking plain HTTP to the
// configured origin. It exists for pointing a Context at a local test
// server; production traffic always uses TLS, matching the original's
// PUBNUB_NOSSL-less default build.
func WithPlainHTTP() Option {
	return func(c *Context) { c.tls.insecureTransport = true }
}

// WithPort overrides the default TLS/plain-HTTP port (443/80) — used for
// pointing a Context at a local test server listening on an ephemeral
// port.
func WithPort(port int) Option {
	return func(c *Context) { c.port = port }
}

// WithMaxReplyLen overrides httpwire.DefaultMaxReplyLen, the cap ReadBody
// enforces on a response body (declared, chunked-accumulated, or
// gzip-inflated) before outcoming REPLY_TOO_BIG (spec.md 4.4).
func WithMaxReplyLen(n int64) Option {
	return func(c *Context) { c.maxReplyLen = n }
}

// New builds a Context from cfg, generating a random v4 UUID for the user
// id when cfg.UUID is empty via generateUUID (useruuid.go) — ported from
// pubnub_generate_uuid_v4_random_std.c, reimplemented with
// github.com/google/uuid rather than hand-rolled CSPRNG glue (SPEC_FULL's
// supplemented-feature note).
func New(cfg pnconf.Config, opts ...Option) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.UUID == "" {
		cfg.UUID = generateUUID()
	}

	c := &Context{
		cfg:  cfg,
		host: cfg.Origin,
		tls:  &tlsConfigHolder{},
		log:  pnlog.Discard(),
		buf:  txrxbuf.New(defaultBufferCapacity),
		proxy: pal.ProxyConfig{
			HTTPProxy:  cfg.ProxyHTTP,
			HTTPSProxy: cfg.ProxyHTTPS,
			NoProxy:    cfg.ProxyNoProxy,
		},
		id: endpoint.Identity{
			PublishKey:   cfg.PublishKey,
			SubscribeKey: cfg.SubscribeKey,
			SecretKey:    cfg.SecretKey,
			UserID:       cfg.UUID,
			AuthKey:      cfg.AuthKey,
			SDKName:      sdkName,
		},
	}

	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}

	if c.port == 0 {
		if c.tls.insecureTransport {
			c.port = 80
		} else {
			c.port = 443
		}
	}

	if c.sch == nil {
		c.sch = Default()
	}

	if c.maxReplyLen == 0 {
		c.maxReplyLen = httpwire.DefaultMaxReplyLen
	}

	if cfg.CipherKey != "" {
		c.crypto = pncrypto.NewModule(cfg.CipherKey, cfg.UseRandomIV)
	}

	c.thumper = heartbeat.New(heartbeatPeriod(cfg), c.startAutoHeartbeat)

	return c, nil
}

// heartbeatPeriod derives the auto-heartbeat interval from the configured
// subscribe timeout, matching the original's "roughly in step with the
// subscribe loop" default (spec.md 4.8); a zero subscribe timeout disables
// auto-heartbeat entirely.
func heartbeatPeriod(cfg pnconf.Config) time.Duration {
	if cfg.SubscribeTimeout <= 0 {
		return 0
	}
	return cfg.SubscribeTimeout / 2
}

// Close disarms the heartbeat thumper. The shared scheduler is not
// stopped: other Contexts may still be using it.
func (c *Context) Close() {
	c.txMu.Lock()
	defer c.txMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.thumper.Disable()
}

// UUID returns the user id this Context identifies itself with (either the
// one supplied in Config or the one generated by New).
func (c *Context) UUID() string { return c.id.UserID }

// dialOptions builds the pal.DialOptions for this Context's transport.
func (c *Context) dialOptions(connectTimeout time.Duration) pal.DialOptions {
	if c.tls.insecureTransport {
		return pal.DialOptions{ConnectTimeout: connectTimeout}
	}
	return pal.DialOptions{
		ConnectTimeout: connectTimeout,
		TLSConfig:      tlsprep.Build(c.host, c.cfg.TLSInsecureSkipVerify),
	}
}

// resolveProxy returns the proxy URL this Context's transport should tunnel
// through, or nil for a direct connection. Plain-HTTP mode (WithPlainHTTP,
// used to point a Context at a local test server) is never proxied.
func (c *Context) resolveProxy() *url.URL {
	if c.tls.insecureTransport {
		return nil
	}
	target := &url.URL{Scheme: "https", Host: net.JoinHostPort(c.host, strconv.Itoa(c.port))}
	proxyURL, err := c.proxy.ResolveProxy(target)
	if err != nil {
		return nil
	}
	return proxyURL
}

// proxyPort extracts the dial port for proxyURL, defaulting to 80/443 by
// scheme when no port is explicit.
func proxyPort(proxyURL *url.URL) int {
	if p := proxyURL.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
	}
	if proxyURL.Scheme == "https" {
		return 443
	}
	return 80
}

// encrypt runs the configured cipher over a publish payload, or returns it
// unchanged if no cipher key was configured.
func (c *Context) encrypt(plaintext []byte) ([]byte, error) {
	if c.crypto == nil {
		return plaintext, nil
	}
	return c.crypto.Encrypt(plaintext)
}

// decrypt inverts encrypt for a subscribed/fetched payload.
func (c *Context) decrypt(envelope []byte) ([]byte, error) {
	if c.crypto == nil {
		return envelope, nil
	}
	return c.crypto.Decrypt(envelope)
}
