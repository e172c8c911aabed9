package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/luhaoyun888/go-imapwire/imapwire"
	"github.com/luhaoyun888/go-imapwire/internal/logging"
)

// fragmentOut 是 --fragments 输出中的一个片段。
type fragmentOut struct {
	Chunk   string `yaml:"chunk,omitempty"`
	Payload *int64 `yaml:"payload,omitempty"`
	Suspend bool   `yaml:"suspend,omitempty"`
	Wait    bool   `yaml:"wait,omitempty"`
}

func newEncodeCmd(a *app) *cobra.Command {
	var (
		showFragments bool
		literalPlus   bool
		literalMinus  bool
	)
	cmd := &cobra.Command{
		Use:   "encode TAG NAME [ARG...]",
		Short: "Encode a command",
		Long: "Encode a command and write it in wire form.\n\n" +
			"Every ARG is written as an atom when possible, otherwise as a quoted string or a literal.\n" +
			"@FILE sends the content of FILE as a literal, ~@FILE as a binary literal (literal8).",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := a.cfg.Encoder.Encoder()
			if cmd.Flags().Changed("literal-plus") {
				enc.LiteralPlus = literalPlus
			}
			if cmd.Flags().Changed("literal-minus") {
				enc.LiteralMinus = literalMinus
			}

			cmdArgs := make([]imapwire.Arg, 0, len(args)-2)
			for _, s := range args[2:] {
				arg, err := commandArg(s)
				if err != nil {
					return err
				}
				cmdArgs = append(cmdArgs, arg)
			}

			frags, err := enc.EncodeCommand(args[0], args[1], cmdArgs...)
			if err != nil {
				return err
			}

			if showFragments {
				out := yaml.NewEncoder(cmd.OutOrStdout())
				out.SetIndent(2)
				defer out.Close()
				return out.Encode(describeFragments(frags))
			}

			logger := logging.WithComponent(logging.FromContext(cmd.Context()), "encode")
			sender := imapwire.NewSender(bufio.NewWriter(cmd.OutOrStdout()))
			sender.Enqueue(frags...)
			for {
				suspended, err := sender.Send()
				if err != nil {
					return err
				}
				if !suspended {
					return nil
				}
				// 没有服务器，继续请求视为已收到
				logger.Debug("synchronizing literal, continuing", "pending", sender.Pending())
			}
		},
	}
	cmd.Flags().BoolVar(&showFragments, "fragments", false, "print the fragment sequence as YAML instead of wire bytes")
	cmd.Flags().BoolVar(&literalPlus, "literal-plus", false, "use non-synchronizing literals (LITERAL+)")
	cmd.Flags().BoolVar(&literalMinus, "literal-minus", false, "use non-synchronizing literals up to 4096 bytes (LITERAL-)")
	return cmd
}

func commandArg(s string) (imapwire.Arg, error) {
	var binary bool
	switch {
	case strings.HasPrefix(s, "~@"):
		binary = true
		s = s[1:]
		fallthrough
	case strings.HasPrefix(s, "@"):
		b, err := os.ReadFile(s[1:])
		if err != nil {
			return nil, err
		}
		lit := imapwire.LiteralBytes(b)
		lit.Binary = binary
		return lit, nil
	default:
		return imapwire.AString(s), nil
	}
}

func describeFragments(frags []imapwire.Fragment) []fragmentOut {
	out := make([]fragmentOut, 0, len(frags))
	for _, frag := range frags {
		switch frag := frag.(type) {
		case imapwire.Chunk:
			out = append(out, fragmentOut{Chunk: string(frag)})
		case imapwire.Payload:
			size := frag.Size
			out = append(out, fragmentOut{Payload: &size})
		case imapwire.Suspend:
			out = append(out, fragmentOut{Suspend: true})
		case *imapwire.ContinuationWait:
			out = append(out, fragmentOut{Wait: true})
		}
	}
	return out
}
