package imapwire_test

import (
	"bufio"
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/luhaoyun888/go-imapwire/imapwire"
)

func describe(frags []imapwire.Fragment) []string {
	l := make([]string, len(frags))
	for i, frag := range frags {
		switch frag := frag.(type) {
		case imapwire.Chunk:
			l[i] = string(frag)
		case imapwire.Payload:
			l[i] = fmt.Sprintf("<payload %v>", frag.Size)
		case imapwire.Suspend:
			l[i] = "<suspend>"
		case *imapwire.ContinuationWait:
			l[i] = "<wait>"
		}
	}
	return l
}

func TestEncode(t *testing.T) {
	big := bytes.Repeat([]byte("x"), 5000)
	tests := []struct {
		name string
		enc  imapwire.Encoder
		args []imapwire.Arg
		want []string
	}{
		{
			name: "原子与数字",
			args: []imapwire.Arg{imapwire.Atom("UID"), imapwire.Number(42)},
			want: []string{"UID 42"},
		},
		{
			name: "带引号的字符串",
			args: []imapwire.Arg{imapwire.Quoted(`a "b" \c`)},
			want: []string{`"a \"b\" \\c"`},
		},
		{
			name: "嵌套列表和分组",
			args: []imapwire.Arg{imapwire.List{imapwire.Atom("FLAGS"), imapwire.Group{imapwire.Atom("BODY.PEEK[]"), imapwire.NilArg{}}}},
			want: []string{"(FLAGS BODY.PEEK[] NIL)"},
		},
		{
			name: "同步字面量",
			args: []imapwire.Arg{imapwire.LiteralBytes([]byte("hello"))},
			want: []string{"{5}\r\n", "<suspend>", "<payload 5>"},
		},
		{
			name: "LITERAL+",
			enc:  imapwire.Encoder{LiteralPlus: true},
			args: []imapwire.Arg{imapwire.LiteralBytes([]byte("hello"))},
			want: []string{"{5+}\r\n", "<payload 5>"},
		},
		{
			name: "LITERAL- 小字面量",
			enc:  imapwire.Encoder{LiteralMinus: true},
			args: []imapwire.Arg{imapwire.LiteralBytes([]byte("hello"))},
			want: []string{"{5+}\r\n", "<payload 5>"},
		},
		{
			name: "LITERAL- 大字面量",
			enc:  imapwire.Encoder{LiteralMinus: true},
			args: []imapwire.Arg{imapwire.LiteralBytes(big)},
			want: []string{"{5000}\r\n", "<suspend>", "<payload 5000>"},
		},
		{
			name: "二进制字面量",
			args: []imapwire.Arg{imapwire.Literal{Data: strings.NewReader("ab"), Size: 2, Binary: true}},
			want: []string{"~{2}\r\n", "<suspend>", "<payload 2>"},
		},
		{
			name: "空字面量",
			args: []imapwire.Arg{imapwire.Atom("X"), imapwire.LiteralBytes(nil)},
			want: []string{"X {0}\r\n", "<suspend>"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frags, err := tc.enc.Encode(tc.args...)
			if err != nil {
				t.Fatalf("Encode() 出错: %v", err)
			}
			if got := describe(frags); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Encode() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEncodeCommand(t *testing.T) {
	var enc imapwire.Encoder
	frags, err := enc.EncodeCommand("A2", "APPEND",
		imapwire.AString("INBOX"),
		imapwire.FlagList([]string{`\Seen`}),
		imapwire.LiteralBytes([]byte("Hi!")))
	if err != nil {
		t.Fatalf("EncodeCommand() 出错: %v", err)
	}
	want := []string{"A2 APPEND INBOX (\\Seen) {3}\r\n", "<suspend>", "<payload 3>", "\r\n"}
	if got := describe(frags); !reflect.DeepEqual(got, want) {
		t.Errorf("EncodeCommand() = %q, want %q", got, want)
	}

	frags, err = enc.EncodeCommand("A3", "NOOP")
	if err != nil {
		t.Fatalf("EncodeCommand() 出错: %v", err)
	}
	if got := describe(frags); !reflect.DeepEqual(got, []string{"A3 NOOP\r\n"}) {
		t.Errorf("EncodeCommand() = %q", got)
	}

	if _, err := enc.EncodeCommand("A 4", "NOOP"); err == nil {
		t.Errorf("EncodeCommand() 接受了非法标签")
	}
}

func TestEncodeInvalid(t *testing.T) {
	var enc imapwire.Encoder
	for _, arg := range []imapwire.Arg{
		imapwire.Quoted("a\r\nb"),
		imapwire.Atom(""),
		imapwire.Literal{Size: 3},
		nil,
	} {
		if _, err := enc.Encode(arg); err == nil {
			t.Errorf("Encode(%#v) 没有返回错误", arg)
		}
	}
}

func TestStringArg(t *testing.T) {
	tests := []struct {
		arg  imapwire.Arg
		want string
	}{
		{imapwire.AString("INBOX"), "INBOX"},
		{imapwire.AString("nil"), `"nil"`},
		{imapwire.AString(""), `""`},
		{imapwire.AString("a b"), `"a b"`},
		{imapwire.String("INBOX"), `"INBOX"`},
		{imapwire.String("héllo"), "{6}\r\n"},
		{imapwire.NString(nil), "NIL"},
	}
	var enc imapwire.Encoder
	for _, tc := range tests {
		frags, err := enc.Encode(tc.arg)
		if err != nil {
			t.Fatalf("Encode() 出错: %v", err)
		}
		if got := describe(frags)[0]; got != tc.want {
			t.Errorf("Encode(%#v) = %q, want %q", tc.arg, got, tc.want)
		}
	}
}

func TestFlagListRoundTrip(t *testing.T) {
	flags := []string{`\Seen`, `\Answered`, "$Forwarded"}
	var enc imapwire.Encoder
	frags, err := enc.Encode(imapwire.FlagList(flags))
	if err != nil {
		t.Fatalf("Encode() 出错: %v", err)
	}
	line := string(frags[0].(imapwire.Chunk)) + "\r\n"

	values, err := imapwire.NewParser(nil).ParseBytes([]byte(line))
	if err != nil {
		t.Fatalf("ParseBytes() 出错: %v", err)
	}
	children, err := values[0].List()
	if err != nil {
		t.Fatalf("List() 出错: %v", err)
	}
	var got []string
	for _, child := range children {
		s, _ := child.Text()
		got = append(got, s)
	}
	if !reflect.DeepEqual(got, flags) {
		t.Errorf("round trip = %v, want %v", got, flags)
	}
}

func TestSender(t *testing.T) {
	var buf bytes.Buffer
	s := imapwire.NewSender(bufio.NewWriter(&buf))

	var enc imapwire.Encoder
	frags, err := enc.EncodeCommand("A1", "APPEND", imapwire.Atom("INBOX"), imapwire.LiteralBytes([]byte("hello")))
	if err != nil {
		t.Fatalf("EncodeCommand() 出错: %v", err)
	}
	s.Enqueue(frags...)

	suspended, err := s.Send()
	if err != nil || !suspended {
		t.Fatalf("Send() = %v, %v, want suspended", suspended, err)
	}
	if got := buf.String(); got != "A1 APPEND INBOX {5}\r\n" {
		t.Errorf("暂停前写出 %q", got)
	}

	suspended, err = s.Send()
	if err != nil || suspended {
		t.Fatalf("Send() = %v, %v, want done", suspended, err)
	}
	if got := buf.String(); got != "A1 APPEND INBOX {5}\r\nhello\r\n" {
		t.Errorf("写出 %q", got)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %v", s.Pending())
	}
}

func TestSenderContinuationWait(t *testing.T) {
	var buf bytes.Buffer
	s := imapwire.NewSender(bufio.NewWriter(&buf))
	cw := imapwire.NewContinuationWait()
	s.Enqueue(imapwire.Chunk("A1 IDLE\r\n"), cw, imapwire.Chunk("DONE\r\n"))

	for i := 0; i < 2; i++ {
		suspended, err := s.Send()
		if err != nil || !suspended {
			t.Fatalf("Send() = %v, %v, want suspended", suspended, err)
		}
		if s.Pending() != 2 {
			t.Errorf("Pending() = %v, want 2", s.Pending())
		}
	}
	if got := buf.String(); got != "A1 IDLE\r\n" {
		t.Errorf("写出 %q", got)
	}

	cw.Resolve()
	if suspended, err := s.Send(); err != nil || suspended {
		t.Fatalf("Send() = %v, %v, want done", suspended, err)
	}
	if got := buf.String(); got != "A1 IDLE\r\nDONE\r\n" {
		t.Errorf("写出 %q", got)
	}
}

func TestSenderDiscard(t *testing.T) {
	var buf bytes.Buffer
	s := imapwire.NewSender(bufio.NewWriter(&buf))

	var enc imapwire.Encoder
	frags, err := enc.EncodeCommand("A1", "APPEND", imapwire.Atom("INBOX"), imapwire.LiteralBytes([]byte("hello")))
	if err != nil {
		t.Fatalf("EncodeCommand() 出错: %v", err)
	}
	s.Enqueue(frags...)
	if suspended, err := s.Send(); err != nil || !suspended {
		t.Fatalf("Send() = %v, %v, want suspended", suspended, err)
	}

	// 服务器用 NO 拒绝了字面量，剩余的载荷不能再写出
	if n := s.Discard(); n == 0 {
		t.Errorf("Discard() = 0, want > 0")
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %v", s.Pending())
	}

	s.Enqueue(imapwire.Chunk("A2 NOOP\r\n"))
	if suspended, err := s.Send(); err != nil || suspended {
		t.Fatalf("Send() = %v, %v, want done", suspended, err)
	}
	if got := buf.String(); got != "A1 APPEND INBOX {5}\r\nA2 NOOP\r\n" {
		t.Errorf("写出 %q", got)
	}
}
