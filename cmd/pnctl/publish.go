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
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newPublishCommand(flags *cliFlags) *cobra.Command {
	var noStore bool

	cmd := &cobra.Command{
		Use:   "publish <channel> <message>",
		Short: "publish a JSON-encoded message to a channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channel, raw := args[0], args[1]

			var payload json.RawMessage
			if err := json.Unmarshal([]byte(raw), &payload); err != nil {
				// Not already valid JSON: treat it as a bare string, the
				// same leniency pubnub_publish's char* message argument
				// has in the original.
				encoded, merr := json.Marshal(raw)
				if merr != nil {
					return merr
				}
				payload = encoded
			}

			c, err := flags.newContext()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()

			res, err := c.Publish(ctx, channel, payload, !noStore)
			if err != nil {
				return err
			}

			fmt.Printf("%s %s\n", color.GreenString("published:"), res.Timetoken)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not store the message in history")
	return cmd
}
