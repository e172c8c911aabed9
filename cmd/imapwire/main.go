// Command imapwire 解析、转换和编码 IMAP 协议数据，用于检查抓取的会话记录。
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
