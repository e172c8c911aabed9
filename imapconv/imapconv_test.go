package imapconv_test

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapconv"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// parseValues 把一个完整的响应解析为顶层值。
func parseValues(t *testing.T, s string) []imapwire.Value {
	t.Helper()
	values, err := imapwire.NewParser(nil).ParseBytes([]byte(s))
	if err != nil {
		t.Fatalf("ParseBytes(%q) 出错: %v", s, err)
	}
	return values
}

// parseValue 解析一个单独的值，例如 "(FLAGS (\Seen))"。
func parseValue(t *testing.T, s string) imapwire.Value {
	t.Helper()
	values := parseValues(t, s+"\r\n")
	if len(values) != 1 {
		t.Fatalf("ParseBytes(%q) 返回了 %v 个值", s, len(values))
	}
	return values[0]
}

func TestMessageAttributes(t *testing.T) {
	v := parseValue(t, `(FLAGS (\Seen \Answered) UID 17)`)

	l, err := v.List()
	if err != nil {
		t.Fatalf("List() 出错: %v", err)
	}
	if len(l) != 4 {
		t.Fatalf("len(List()) = %v, want 4", len(l))
	}

	c := imapconv.New(nil)
	data, err := c.MessageAttributes(1, v, nil)
	if err != nil {
		t.Fatalf("MessageAttributes() 出错: %v", err)
	}
	wantFlags := []imap.Flag{imap.FlagSeen, imap.FlagAnswered}
	if !reflect.DeepEqual(data.Flags, wantFlags) {
		t.Errorf("Flags = %v, want %v", data.Flags, wantFlags)
	}
	if data.UID != 17 {
		t.Errorf("UID = %v, want 17", data.UID)
	}
	if data.SeqNum != 1 {
		t.Errorf("SeqNum = %v, want 1", data.SeqNum)
	}
}

func TestMessageAttributes_sections(t *testing.T) {
	values := parseValues(t, "* 3 FETCH (RFC822.SIZE 4286 INTERNALDATE \" 5-Mar-2024 09:08:07 -0700\" "+
		"BODY[HEADER.FIELDS (FROM TO)]<0> {11}\r\nFrom: a@b\r\n "+
		"BINARY[1] ~{3}\r\nabc BINARY.SIZE[1] 3 MODSEQ (12) RFC822.TEXT NIL X-GM-MSGID 1278455344230334865)\r\n")

	resp, err := imapconv.New(nil).Response(values)
	if err != nil {
		t.Fatalf("Response() 出错: %v", err)
	}
	numbered, ok := resp.(*imapconv.NumberedData)
	if !ok || numbered.Name != "FETCH" || numbered.Num != 3 {
		t.Fatalf("Response() = %#v, want FETCH 3", resp)
	}
	data := numbered.Fetch
	defer data.Close()

	if data.RFC822Size != 4286 {
		t.Errorf("RFC822Size = %v, want 4286", data.RFC822Size)
	}
	wantDate := time.Date(2024, time.March, 5, 9, 8, 7, 0, time.FixedZone("", -7*3600))
	if !data.InternalDate.Equal(wantDate) {
		t.Errorf("InternalDate = %v, want %v", data.InternalDate, wantDate)
	}
	if data.ModSeq != 12 {
		t.Errorf("ModSeq = %v, want 12", data.ModSeq)
	}

	section := &imap.FetchItemBodySection{
		Specifier:    imap.PartSpecifierHeader,
		HeaderFields: []string{"FROM", "TO"},
		Partial:      &imap.SectionPartial{Offset: 0},
	}
	lit, ok := data.FindBodySection(section)
	if !ok {
		t.Fatalf("FindBodySection(%v) 没有找到", section)
	}
	if s, _ := lit.Text(); s != "From: a@b\r\n" {
		t.Errorf("BODY[HEADER.FIELDS (FROM TO)] = %q", s)
	}

	if len(data.BinarySection) != 1 {
		t.Fatalf("len(BinarySection) = %v, want 1", len(data.BinarySection))
	}
	if s, _ := data.BinarySection[0].Literal.Text(); s != "abc" {
		t.Errorf("BINARY[1] = %q, want \"abc\"", s)
	}
	wantSize := []imap.FetchBinarySectionSizeData{{Part: []int{1}, Size: 3}}
	if !reflect.DeepEqual(data.BinarySectionSize, wantSize) {
		t.Errorf("BinarySectionSize = %v, want %v", data.BinarySectionSize, wantSize)
	}

	text, ok := data.FindBodySection(&imap.FetchItemBodySection{Specifier: imap.PartSpecifierText})
	if !ok || !text.IsNil() {
		t.Errorf("RFC822.TEXT = %v, %v, want NIL", text, ok)
	}

	if _, ok := data.Unknown["X-GM-MSGID"]; !ok {
		t.Errorf("Unknown 中没有 X-GM-MSGID: %v", data.Unknown)
	}
}

func TestMessageAttributes_malformed(t *testing.T) {
	c := imapconv.New(nil)
	for _, s := range []string{
		`(FLAGS)`,
		`(UID 0)`,
		`(UID abc)`,
		`(FLAGS \Seen)`,
		`(MODSEQ (0))`,
		`(ENVELOPE (NIL NIL))`,
		`(BODY[1.HEADERS] NIL)`,
		`(BODY[HEADER.FIELDS] NIL)`,
		`(BINARY.SIZE[1]<0> 3)`,
		`(RFC822.SIZE (1))`,
	} {
		v := parseValue(t, s)
		_, err := c.MessageAttributes(1, v, nil)
		if !errors.Is(err, imapwire.ErrMalformed) {
			t.Errorf("MessageAttributes(%v) = %v, want malformed error", s, err)
		}
	}
}

func TestFetchFlags(t *testing.T) {
	v := parseValue(t, `(\seen \Seen $Forwarded \Bogus \Custom $Forwarded)`)

	flags, err := imapconv.FetchFlags(v, []imap.Flag{"\\custom"})
	if err != nil {
		t.Fatalf("FetchFlags() 出错: %v", err)
	}
	want := []imap.Flag{imap.FlagSeen, imap.FlagForwarded, "\\Custom"}
	if !reflect.DeepEqual(flags, want) {
		t.Errorf("FetchFlags() = %v, want %v", flags, want)
	}

	flags, err = imapconv.FlagList(v)
	if err != nil {
		t.Fatalf("FlagList() 出错: %v", err)
	}
	want = []imap.Flag{imap.FlagSeen, imap.FlagForwarded, "\\Bogus", "\\Custom"}
	if !reflect.DeepEqual(flags, want) {
		t.Errorf("FlagList() = %v, want %v", flags, want)
	}

	if _, err := imapconv.FlagList(parseValue(t, `(\*)`)); !errors.Is(err, imapwire.ErrMalformed) {
		t.Errorf("FlagList(\\*) = %v, want malformed error", err)
	}
	perm, err := imapconv.PermanentFlags(parseValue(t, `(\Deleted \*)`))
	if err != nil {
		t.Fatalf("PermanentFlags() 出错: %v", err)
	}
	if want := []imap.Flag{imap.FlagDeleted, imap.FlagWildcard}; !reflect.DeepEqual(perm, want) {
		t.Errorf("PermanentFlags() = %v, want %v", perm, want)
	}
}

func TestFlagListRoundTrip(t *testing.T) {
	in := `(\Answered \Seen $Forwarded)`
	flags, err := imapconv.FlagList(parseValue(t, in))
	if err != nil {
		t.Fatalf("FlagList() 出错: %v", err)
	}
	l := make([]string, len(flags))
	for i, flag := range flags {
		l[i] = string(flag)
	}
	var enc imapwire.Encoder
	frags, err := enc.Encode(imapwire.FlagList(l))
	if err != nil {
		t.Fatalf("Encode() 出错: %v", err)
	}
	if len(frags) != 1 {
		t.Fatalf("Encode() 返回了 %v 个片段", len(frags))
	}
	if got := string(frags[0].(imapwire.Chunk)); got != in {
		t.Errorf("Encode(FlagList()) = %q, want %q", got, in)
	}
}

func TestNumbers(t *testing.T) {
	zero := imapwire.NewTextString("0")
	if n, err := imapconv.ModSeqValzer(zero); err != nil || n != 0 {
		t.Errorf("ModSeqValzer(0) = %v, %v, want 0, nil", n, err)
	}
	if _, err := imapconv.ModSeqValue(zero); !errors.Is(err, imapwire.ErrMalformed) {
		t.Errorf("ModSeqValue(0) = %v, want malformed error", err)
	}
	if n, err := imapconv.ModSeqValue(imapwire.NewTextString("917162500")); err != nil || n != 917162500 {
		t.Errorf("ModSeqValue(917162500) = %v, %v", n, err)
	}
	if _, err := imapconv.ModSeqValzer(imapwire.NewTextString("9223372036854775808")); err == nil {
		t.Errorf("ModSeqValzer() 接受了超过 63 位的数字")
	}
	if _, err := imapconv.NZNumber(zero); err == nil {
		t.Errorf("NZNumber(0) 没有出错")
	}
	if _, err := imapconv.Number(imapwire.NewTextString("4294967296")); err == nil {
		t.Errorf("Number() 接受了超过 32 位的数字")
	}
	if _, err := imapconv.Number(imapwire.NewList()); !errors.Is(err, imapwire.ErrMalformed) {
		t.Errorf("Number(()) = %v, want malformed error", err)
	}
	if n, err := imapconv.Number64(imapwire.NewTextString("8589934592")); err != nil || n != 8589934592 {
		t.Errorf("Number64() = %v, %v", n, err)
	}
}

var seqSetTests = []struct {
	in   string
	want string
}{
	{"1", "1"},
	{"1:3,5,7:*", "1:3,5,7:*"},
	{"*", "1:*"},
	{"*:*", "1:*"},
	{"3,*:*", "1:*"},
	{"*:4", "4:*"},
	{"1,3,2", "1:3"},
	{"5:7,2,1,3", "1:3,5:7"},
	{"4:2", "2:4"},
}

func TestSeqSet(t *testing.T) {
	for _, tc := range seqSetTests {
		set, err := imapconv.SeqSet(imapwire.NewTextString(tc.in))
		if err != nil {
			t.Errorf("SeqSet(%q) 出错: %v", tc.in, err)
			continue
		}
		if got := set.String(); got != tc.want {
			t.Errorf("SeqSet(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"", "0", "a", "1:", ",1", "1::2"} {
		if _, err := imapconv.SeqSet(imapwire.NewTextString(in)); !errors.Is(err, imapwire.ErrMalformed) {
			t.Errorf("SeqSet(%q) = %v, want malformed error", in, err)
		}
	}
}

func TestSeqSet_orderIndependent(t *testing.T) {
	orders := []string{"1,3,2,5:7", "2,5:7,1,3", "5:7,1,3,2", "3,1,5:7,2"}
	var first string
	for _, in := range orders {
		set, err := imapconv.SeqSet(imapwire.NewTextString(in))
		if err != nil {
			t.Fatalf("SeqSet(%q) 出错: %v", in, err)
		}
		for num := uint32(1); num <= 8; num++ {
			want := num <= 3 || (num >= 5 && num <= 7)
			if set.Contains(num) != want {
				t.Errorf("SeqSet(%q).Contains(%v) = %v, want %v", in, num, !want, want)
			}
		}
		if first == "" {
			first = set.String()
		} else if set.String() != first {
			t.Errorf("SeqSet(%q) = %q, want %q", in, set.String(), first)
		}
	}
}

func TestSeqSet_starStar(t *testing.T) {
	for _, in := range []string{"*", "*:*"} {
		set, err := imapconv.SeqSet(imapwire.NewTextString(in))
		if err != nil {
			t.Fatalf("SeqSet(%q) 出错: %v", in, err)
		}
		if !set.Contains(5) {
			t.Errorf("SeqSet(%q).Contains(5) = false, want true", in)
		}
	}
}

func TestSeqSet_large(t *testing.T) {
	const n = 20000
	segs := make([]string, n)
	for i := range segs {
		segs[i] = strconv.Itoa(2*(n-i) - 1)
	}
	set, err := imapconv.SeqSet(imapwire.NewTextString(strings.Join(segs, ",")))
	if err != nil {
		t.Fatalf("SeqSet() 出错: %v", err)
	}
	if len(set) != n {
		t.Fatalf("len(SeqSet()) = %v, want %v", len(set), n)
	}
	if set[0].Start != 1 || set[n-1].Stop != 2*n-1 {
		t.Errorf("SeqSet() 首尾区间 = %v, %v", set[0], set[n-1])
	}
	if set.Contains(2) || !set.Contains(3) {
		t.Errorf("SeqSet().Contains() 结果错误")
	}
}

func TestUIDSet(t *testing.T) {
	set, err := imapconv.UIDSet(imapwire.NewTextString("304,319:320"))
	if err != nil {
		t.Fatalf("UIDSet() 出错: %v", err)
	}
	uids, ok := set.Nums()
	if want := []imap.UID{304, 319, 320}; !ok || !reflect.DeepEqual(uids, want) {
		t.Errorf("UIDSet().Nums() = %v, %v, want %v", uids, ok, want)
	}
}

func TestEnvelope(t *testing.T) {
	v := parseValue(t, `("Wed, 17 Jul 1996 02:23:25 -0700 (PDT)" "=?UTF-8?B?5L2g5aW9?=" `+
		`(("Terry Gray" NIL "gray" "cac.washington.edu")) NIL NIL `+
		`((NIL NIL "imap" "cac.washington.edu") (NIL NIL "team" NIL) ("=?ISO-8859-1?Q?J=F6rg?=" NIL "joerg" "example.org") (NIL NIL NIL NIL)) `+
		`NIL NIL "<parent@example.org>" "<B27397-0100000@cac.washington.edu>")`)

	envelope, err := imapconv.New(nil).Envelope(v)
	if err != nil {
		t.Fatalf("Envelope() 出错: %v", err)
	}

	wantDate := time.Date(1996, time.July, 17, 2, 23, 25, 0, time.FixedZone("", -7*3600))
	if !envelope.Date.Equal(wantDate) {
		t.Errorf("Date = %v, want %v", envelope.Date, wantDate)
	}
	if envelope.Subject != "你好" {
		t.Errorf("Subject = %q, want %q", envelope.Subject, "你好")
	}
	wantFrom := []imap.Address{{Name: "Terry Gray", Mailbox: "gray", Host: "cac.washington.edu"}}
	if !reflect.DeepEqual(envelope.From, wantFrom) {
		t.Errorf("From = %v, want %v", envelope.From, wantFrom)
	}
	if envelope.Sender != nil || envelope.Cc != nil {
		t.Errorf("Sender = %v, Cc = %v, want nil", envelope.Sender, envelope.Cc)
	}
	if len(envelope.To) != 4 {
		t.Fatalf("len(To) = %v, want 4", len(envelope.To))
	}
	if !envelope.To[1].IsGroupStart() || !envelope.To[3].IsGroupEnd() {
		t.Errorf("To 中的组标记不正确: %v", envelope.To)
	}
	if envelope.To[2].Name != "Jörg" || envelope.To[2].Addr() != "joerg@example.org" {
		t.Errorf("To[2] = %v", envelope.To[2])
	}
	if want := []string{"parent@example.org"}; !reflect.DeepEqual(envelope.InReplyTo, want) {
		t.Errorf("InReplyTo = %v, want %v", envelope.InReplyTo, want)
	}
	if envelope.MessageID != "B27397-0100000@cac.washington.edu" {
		t.Errorf("MessageID = %q", envelope.MessageID)
	}
}

func TestBodyStructure_sections(t *testing.T) {
	v := parseValue(t, `(`+
		`("TEXT" "PLAIN" ("CHARSET" "US-ASCII") NIL NIL "7BIT" 10 1)`+
		`("TEXT" "HTML" NIL NIL NIL "7BIT" 20 2)`+
		`("IMAGE" "PNG" ("NAME" "a.png") NIL NIL "BASE64" 30)`+
		`("MESSAGE" "RFC822" NIL NIL NIL "7BIT" 100 (NIL "inner" NIL NIL NIL NIL NIL NIL NIL NIL) `+
		`(("TEXT" "PLAIN" NIL NIL NIL "7BIT" 5 1)("TEXT" "HTML" NIL NIL NIL "7BIT" 6 1) "ALTERNATIVE") 12)`+
		` "MIXED")`)

	bs, err := imapconv.New(nil).BodyStructure(v)
	if err != nil {
		t.Fatalf("BodyStructure() 出错: %v", err)
	}

	var sections []string
	bs.Walk(func(path []int, part imap.BodyStructure) bool {
		if _, ok := part.(*imap.BodyStructureMultiPart); !ok {
			sections = append(sections, part.SectionString())
		}
		return true
	})
	want := []string{"1", "2", "3", "4", "4.1", "4.2"}
	if !reflect.DeepEqual(sections, want) {
		t.Errorf("sections = %v, want %v", sections, want)
	}

	mp := bs.(*imap.BodyStructureMultiPart)
	if mp.MediaType() != "multipart/mixed" || mp.SectionString() != "" || mp.Extended != nil {
		t.Errorf("root = %v %q %v", mp.MediaType(), mp.SectionString(), mp.Extended)
	}
	msg, ok := mp.Children[3].(*imap.BodyStructureMessageRFC822)
	if !ok {
		t.Fatalf("Children[3] = %T, want *imap.BodyStructureMessageRFC822", mp.Children[3])
	}
	if msg.Envelope.Subject != "inner" || msg.NumLines != 12 {
		t.Errorf("message/rfc822 = %q %v", msg.Envelope.Subject, msg.NumLines)
	}
	img := mp.Children[2].(*imap.BodyStructureSinglePart)
	if img.Filename() != "a.png" || img.Text != nil {
		t.Errorf("image/png = %q %v", img.Filename(), img.Text)
	}
	text := mp.Children[0].(*imap.BodyStructureSinglePart)
	if text.Text == nil || text.Text.NumLines != 1 || text.Params["charset"] != "US-ASCII" {
		t.Errorf("text/plain = %v %v", text.Text, text.Params)
	}
}

func TestBodyStructure_extended(t *testing.T) {
	c := imapconv.New(nil)

	v := parseValue(t, `("TEXT" "PLAIN" ("CHARSET" "UTF-8") NIL NIL "QUOTED-PRINTABLE" 42 3 NIL ("INLINE" ("FILENAME" "a.txt")))`)
	bs, err := c.BodyStructure(v)
	if err != nil {
		t.Fatalf("BodyStructure() 出错: %v", err)
	}
	part := bs.(*imap.BodyStructureSinglePart)
	if part.SectionString() != "1" {
		t.Errorf("SectionString() = %q, want \"1\"", part.SectionString())
	}
	ext := part.Extended
	if ext == nil {
		t.Fatalf("Extended = nil")
	}
	if ext.MD5 != nil || ext.Language != nil || ext.Location != nil || ext.Extensions != nil {
		t.Errorf("省略的扩展字段不是 nil: %+v", ext)
	}
	wantDisp := &imap.BodyStructureDisposition{Value: "INLINE", Params: map[string]string{"filename": "a.txt"}}
	if !reflect.DeepEqual(ext.Disposition, wantDisp) {
		t.Errorf("Disposition = %v, want %v", ext.Disposition, wantDisp)
	}
	if part.Filename() != "a.txt" {
		t.Errorf("Filename() = %q", part.Filename())
	}

	v = parseValue(t, `(("TEXT" "PLAIN" NIL NIL NIL "7BIT" 5 1) "MIXED" ("BOUNDARY" "xyz") NIL "EN" "http://example.org/" "future" (1 2))`)
	bs, err = c.BodyStructure(v)
	if err != nil {
		t.Fatalf("BodyStructure() 出错: %v", err)
	}
	mpExt := bs.(*imap.BodyStructureMultiPart).Extended
	if mpExt == nil || mpExt.Params["boundary"] != "xyz" || mpExt.Disposition != nil {
		t.Fatalf("Extended = %+v", mpExt)
	}
	if !reflect.DeepEqual(mpExt.Language, []string{"EN"}) || mpExt.Location == nil || *mpExt.Location != "http://example.org/" {
		t.Errorf("Language = %v, Location = %v", mpExt.Language, mpExt.Location)
	}
	if len(mpExt.Extensions) != 2 {
		t.Errorf("len(Extensions) = %v, want 2", len(mpExt.Extensions))
	}

	for _, s := range []string{
		`()`,
		`("TEXT" "PLAIN" NIL NIL NIL "7BIT")`,
		`("TEXT" "PLAIN" NIL NIL NIL "7BIT" 5)`,
		`(("TEXT" "PLAIN" NIL NIL NIL "7BIT" 5 1))`,
		`("TEXT" "PLAIN" ("CHARSET") NIL NIL "7BIT" 5 1)`,
	} {
		if _, err := c.BodyStructure(parseValue(t, s)); !errors.Is(err, imapwire.ErrMalformed) {
			t.Errorf("BodyStructure(%v) = %v, want malformed error", s, err)
		}
	}
}
