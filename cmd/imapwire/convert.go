package main

import (
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapconv"
	"github.com/luhaoyun888/go-imapwire/imapwire"
	"github.com/luhaoyun888/go-imapwire/internal/logging"
)

// convertedResponse 是 convert 命令输出的一个 YAML 文档。
type convertedResponse struct {
	Index  int                    `yaml:"index"`
	Type   string                 `yaml:"type"`
	Tag    string                 `yaml:"tag,omitempty"`
	Num    uint32                 `yaml:"num,omitempty"`
	Name   string                 `yaml:"name,omitempty"`
	Text   string                 `yaml:"text,omitempty"`
	Status *imapconv.StatusResult `yaml:"status,omitempty"`
	Data   interface{}            `yaml:"data,omitempty"`
	Args   []imapwire.Value       `yaml:"args,omitempty"`
}

func newConvertCmd(a *app) *cobra.Command {
	var (
		keepGoing  bool
		selectMode bool
	)
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert server responses into typed data",
		Long: "Read server responses from a file or stdin, convert every response and print it as a YAML document.\n" +
			"With --select the responses are treated as the result of SELECT or EXAMINE and the mailbox summary is printed last.",
		Args: cobra.MaximumNArgs(1),
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
			logger := logging.WithComponent(logging.FromContext(ctx), "convert")
			conv := imapconv.New(a.cfg.Convert.ConverterOptions())
			var acc imapconv.SelectAccumulator

			err = a.eachResponse(ctx, in, name, keepGoing, func(n int, values []imapwire.Value) error {
				resp, err := conv.Response(values)
				if err != nil {
					if keepGoing {
						logger.Warn("skipping unconvertible response", "input", name, "index", n, "error", err)
						return nil
					}
					return err
				}
				if utf8Enabled(resp) {
					// 之后的邮箱名是原始 UTF-8
					options := a.cfg.Convert.ConverterOptions()
					options.DecodeMailboxUTF7 = false
					conv = imapconv.New(options)
					logger.Info("UTF8=ACCEPT enabled, mailbox names no longer decoded as UTF-7", "index", n)
				}
				if selectMode && acc.Add(resp) {
					logger.Debug("response folded into select data", "index", n)
				}
				return enc.Encode(describeResponse(n, resp))
			})
			if err != nil {
				return err
			}

			if selectMode {
				return enc.Encode(struct {
					Select imap.SelectData `yaml:"select"`
				}{acc.Data})
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "skip malformed responses instead of stopping")
	cmd.Flags().BoolVar(&selectMode, "select", false, "accumulate SELECT/EXAMINE results")
	return cmd
}

// utf8Enabled 判断 resp 是否是启用了 UTF8=ACCEPT 的 ENABLED 响应。
func utf8Enabled(resp imapconv.Response) bool {
	named, ok := resp.(*imapconv.NamedData)
	if !ok || !strings.EqualFold(named.Name, "ENABLED") {
		return false
	}
	caps, ok := named.Data.(imap.CapSet)
	return ok && !caps.MailboxUTF7()
}

func describeResponse(n int, resp imapconv.Response) *convertedResponse {
	out := &convertedResponse{Index: n}
	switch resp := resp.(type) {
	case *imapconv.ContinuationRequest:
		out.Type = "continuation"
		out.Text = resp.Text
	case *imapconv.TaggedStatus:
		out.Type = "tagged"
		out.Tag = resp.Tag
		out.Status = resp.Status
	case *imapconv.UntaggedStatus:
		out.Type = "status"
		out.Status = resp.Status
	case *imapconv.NumberedData:
		out.Type = "numbered"
		out.Num = resp.Num
		out.Name = resp.Name
		if resp.Fetch != nil {
			out.Data = resp.Fetch
		} else {
			out.Args = resp.Args
		}
	case *imapconv.NamedData:
		out.Type = "data"
		out.Name = resp.Name
		if resp.Data != nil {
			out.Data = resp.Data
		} else {
			out.Args = resp.Args
		}
	}
	return out
}
