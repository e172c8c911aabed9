package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/luhaoyun888/go-imapwire/imapwire"
	"github.com/luhaoyun888/go-imapwire/internal/logging"
)

func newParseCmd(a *app) *cobra.Command {
	var keepGoing bool
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse server responses into value trees",
		Long:  "Read server responses from a file or stdin and print every response as a YAML document.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, name, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()

			ctx := cmd.Context()
			logger := logging.WithComponent(logging.FromContext(ctx), "parse")
			return a.eachResponse(ctx, in, name, keepGoing, func(n int, values []imapwire.Value) error {
				logger.Debug("response parsed", "input", name, "index", n, "values", len(values))
				return enc.Encode(values)
			})
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "skip malformed responses instead of stopping")
	return cmd
}

// eachResponse 从 r 中逐个读取响应并交给 f，f 返回后响应持有的字面量流被释放。
//
// keepGoing 为 true 时，格式错误的响应被记录并跳过。传输层错误总是终止读取。
func (a *app) eachResponse(ctx context.Context, r io.Reader, name string, keepGoing bool, f func(n int, values []imapwire.Value) error) error {
	logger := logging.WithComponent(logging.FromContext(ctx), "receiver")
	parser := imapwire.NewParser(a.cfg.Parser.ParserOptions())
	receiver := imapwire.NewReceiver(imapwire.NewLineReader(bufio.NewReader(r)), parser)

	var malformed int
	for n := 1; ; n++ {
		values, err := receiver.ReadResponse()
		if errors.Is(err, io.EOF) {
			break
		} else if errors.Is(err, imapwire.ErrMalformed) && keepGoing {
			logger.Warn("skipping malformed response", "input", name, "index", n, "error", err)
			malformed++
			continue
		} else if err != nil {
			return fmt.Errorf("%v: response %v: %w", name, n, err)
		}

		err = f(n, values)
		for _, v := range values {
			v.Close()
		}
		if err != nil {
			return err
		}
	}

	if malformed > 0 {
		logger.Info("finished with malformed responses", "input", name, "skipped", malformed)
	}
	return nil
}
