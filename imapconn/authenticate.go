package imapconn

import (
	"fmt"

	"github.com/emersion/go-sasl"

	"github.com/luhaoyun888/go-imapwire/imapconv"
	"github.com/luhaoyun888/go-imapwire/imapwire"
	"github.com/luhaoyun888/go-imapwire/internal"
)

// Authenticate 发送 AUTHENTICATE 命令，并完成整个 SASL 交换。
//
// saslIR 表示服务器支持 SASL-IR（RFC 4959），此时初始响应直接附在命令中。
// 选择哪种机制由调用方决定。服务器拒绝时返回 *imap.Error。
func (c *Conn) Authenticate(tag string, saslClient sasl.Client, saslIR bool) error {
	mech, initialResp, err := saslClient.Start()
	if err != nil {
		return err
	}

	args := []imapwire.Arg{imapwire.Atom(mech)}
	if initialResp != nil && saslIR {
		args = append(args, imapwire.Atom(internal.EncodeSASL(initialResp)))
		initialResp = nil
	}
	if _, err := c.WriteCommand(tag, "AUTHENTICATE", args...); err != nil {
		return err
	}

	// SASL 客户端出错时用 "*" 取消交换，但仍要读到带标签响应，连接才能继续使用
	var saslErr error
	for {
		values, err := c.ReadResponse()
		if err != nil {
			return err
		}

		if isTagged(values, tag) {
			status, err := imapconv.StatusResponse(values[1:])
			if err != nil {
				return fmt.Errorf("imapconn: in response to %v: %w", tag, err)
			}
			if saslErr != nil {
				return saslErr
			}
			return status.Err()
		}

		if len(values) == 0 || !values[0].IsAtom("+") {
			closeValues(values)
			continue
		}

		var challengeStr string
		if len(values) > 1 {
			if challengeStr, err = values[1].Text(); err != nil {
				return err
			}
		}

		var resp []byte
		if challengeStr == "" && initialResp != nil {
			resp, initialResp = initialResp, nil
		} else {
			challenge, err := internal.DecodeSASL(challengeStr)
			if err == nil {
				resp, err = saslClient.Next(challenge)
			}
			if err != nil {
				saslErr = err
				if err := c.writeLine("*"); err != nil {
					return err
				}
				continue
			}
		}

		if err := c.writeLine(internal.EncodeSASL(resp)); err != nil {
			return err
		}
	}
}
