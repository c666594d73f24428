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
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/nabbar/pncore/pubnub"
)

// newSubscribeCommand runs the subscribe loop until interrupted,
// mirroring original_source/core/samples/pubnub_sync_subloop_sample.c's
// "subscribe, print every message forever" shape. A mpb bar tracks a
// running message count instead of the sample's bare printf counter,
// since this is the one command long-lived enough for a progress
// indicator to be worth showing.
func newSubscribeCommand(flags *cliFlags) *cobra.Command {
	var channelGroups []string

	cmd := &cobra.Command{
		Use:   "subscribe <channel> [channel...]",
		Short: "subscribe to one or more channels and print messages as they arrive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.newContext()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			defer signal.Stop(sigCh)
			go func() {
				<-sigCh
				cancel()
			}()

			out := colorable.NewColorableStdout()
			progress := mpb.New(mpb.WithOutput(out), mpb.WithWidth(24))
			bar := progress.AddBar(-1,
				mpb.PrependDecorators(decor.Name("messages received: "), decor.CurrentNoUnit("%d")),
			)

			err = c.Subscribe(ctx, args, channelGroups, func(msg pubnub.Message) {
				bar.Increment()
				fmt.Fprintf(out, "%s %s: %s\n", color.YellowString("["+msg.Channel+"]"), msg.Timetoken, msg.Payload)
			})

			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&channelGroups, "channel-group", nil, "subscribe to these channel groups as well")
	return cmd
}
