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

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nabbar/pncore/pnconf"
	"github.com/nabbar/pncore/pnlog"
	"github.com/nabbar/pncore/pubnub"
)

// cliFlags holds the persistent flag values shared by every subcommand,
// the same one-struct-of-mutable-flags shape the teacher's cobra package
// builds its Command tree around.
type cliFlags struct {
	origin       string
	publishKey   string
	subscribeKey string
	secretKey    string
	authKey      string
	uuid         string
	cipherKey    string
	insecure     bool
	verbose      bool
}

func newRootCommand() *cobra.Command {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:           "pnctl",
		Short:         "pnctl drives a pncore pubnub.Context from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&flags.origin, "origin", "ps.pndsn.com", "PubNub origin host")
	root.PersistentFlags().StringVar(&flags.publishKey, "publish-key", "demo", "publish key")
	root.PersistentFlags().StringVar(&flags.subscribeKey, "subscribe-key", "demo", "subscribe key")
	root.PersistentFlags().StringVar(&flags.secretKey, "secret-key", "", "secret key (grant/revoke token)")
	root.PersistentFlags().StringVar(&flags.authKey, "auth-key", "", "auth key / access token")
	root.PersistentFlags().StringVar(&flags.uuid, "uuid", "", "user id (random v4 UUID if empty)")
	root.PersistentFlags().StringVar(&flags.cipherKey, "cipher-key", "", "cipher key for message encryption")
	root.PersistentFlags().BoolVar(&flags.insecure, "insecure", false, "use plain HTTP instead of TLS")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug-level logging")

	root.AddCommand(
		newTimeCommand(flags),
		newPublishCommand(flags),
		newSubscribeCommand(flags),
		newCryptoCommand(),
	)

	return root
}

// newContext builds a pubnub.Context from the persistent flags, the
// construction step every subcommand shares.
func (f *cliFlags) newContext() (*pubnub.Context, error) {
	level := pnlog.InfoLevel
	if f.verbose {
		level = pnlog.DebugLevel
	}

	cfgOpts := []pnconf.Option{
		pnconf.WithOrigin(f.origin),
		pnconf.WithKeys(f.publishKey, f.subscribeKey, f.secretKey),
		pnconf.WithAuthKey(f.authKey),
		pnconf.WithUUID(f.uuid),
	}
	if f.cipherKey != "" {
		cfgOpts = append(cfgOpts, pnconf.WithCipherKey(f.cipherKey, true))
	}

	opts := []pubnub.Option{pubnub.WithLogger(pnlog.New(nil, level))}
	if f.insecure {
		opts = append(opts, pubnub.WithPlainHTTP())
	}
	return pubnub.New(pnconf.New(cfgOpts...), opts...)
}

const cliTimeout = 10 * time.Second
