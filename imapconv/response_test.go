package imapconv_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/luhaoyun888/go-imapwire"
	"github.com/luhaoyun888/go-imapwire/imapconv"
	"github.com/luhaoyun888/go-imapwire/imapwire"
)

// namedData 把一行不带标签的响应转换为 *imapconv.NamedData。
func namedData(t *testing.T, s string) *imapconv.NamedData {
	t.Helper()
	resp, err := imapconv.New(nil).Response(parseValues(t, s))
	if err != nil {
		t.Fatalf("Response(%q) 出错: %v", s, err)
	}
	data, ok := resp.(*imapconv.NamedData)
	if !ok {
		t.Fatalf("Response(%q) = %T, want *imapconv.NamedData", s, resp)
	}
	return data
}

func TestResponse_status(t *testing.T) {
	c := imapconv.New(nil)

	resp, err := c.Response(parseValues(t, "* OK [UIDVALIDITY 3857529045] UIDs valid (really)\r\n"))
	if err != nil {
		t.Fatalf("Response() 出错: %v", err)
	}
	untagged, ok := resp.(*imapconv.UntaggedStatus)
	if !ok {
		t.Fatalf("Response() = %T, want *imapconv.UntaggedStatus", resp)
	}
	status := untagged.Status
	if status.Type != imap.StatusResponseTypeOK || status.Code != imap.ResponseCodeUIDValidity {
		t.Errorf("Type = %v, Code = %v", status.Type, status.Code)
	}
	if status.CodeData == nil || status.CodeData.UIDValidity != 3857529045 {
		t.Errorf("CodeData = %+v", status.CodeData)
	}
	if status.Text != "UIDs valid (really)" {
		t.Errorf("Text = %q", status.Text)
	}
	if status.Err() != nil {
		t.Errorf("Err() = %v, want nil", status.Err())
	}

	resp, err = c.Response(parseValues(t, "A003 NO [TRYCREATE] Mailbox doesn't exist: \"Bogus\r\n"))
	if err != nil {
		t.Fatalf("Response() 出错: %v", err)
	}
	tagged, ok := resp.(*imapconv.TaggedStatus)
	if !ok || tagged.Tag != "A003" {
		t.Fatalf("Response() = %#v, want tagged A003", resp)
	}
	var imapErr *imap.Error
	if err := tagged.Status.Err(); !errors.As(err, &imapErr) || imapErr.Code != imap.ResponseCodeTryCreate {
		t.Errorf("Err() = %v, want TRYCREATE error", err)
	}
	if tagged.Status.CodeData != nil {
		t.Errorf("CodeData = %+v, want nil", tagged.Status.CodeData)
	}

	resp, err = c.Response(parseValues(t, "* BYE\r\n"))
	if err != nil {
		t.Fatalf("Response() 出错: %v", err)
	}
	if untagged, ok := resp.(*imapconv.UntaggedStatus); !ok || untagged.Status.Type != imap.StatusResponseTypeBye {
		t.Errorf("Response(* BYE) = %#v", resp)
	}
}

func TestResponse_continuation(t *testing.T) {
	c := imapconv.New(nil)
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"+ Ready for literal data\r\n", "Ready for literal data"},
		{"+ YGgGCSqGSIb3EgECAgIAb1kwV6ADAgEFoQMCAQ+iSzBJoAMCAQGiQgRA\r\n", "YGgGCSqGSIb3EgECAgIAb1kwV6ADAgEFoQMCAQ+iSzBJoAMCAQGiQgRA"},
		{"+\r\n", ""},
	} {
		resp, err := c.Response(parseValues(t, tc.in))
		if err != nil {
			t.Errorf("Response(%q) 出错: %v", tc.in, err)
			continue
		}
		cont, ok := resp.(*imapconv.ContinuationRequest)
		if !ok || cont.Text != tc.want {
			t.Errorf("Response(%q) = %#v, want %q", tc.in, resp, tc.want)
		}
	}
}

func TestResponse_malformed(t *testing.T) {
	c := imapconv.New(nil)
	for _, s := range []string{
		"A001 FOO bar\r\n",
		"* 3 EXISTS extra\r\n",
		"* 3\r\n",
		"* 12 FETCH (UID)\r\n",
		"* STATUS INBOX\r\n",
		"* OK [UIDNEXT abc] Predicted next UID\r\n",
		"* OK [COPYUID 38505 304,319:320] Done\r\n",
		"* FLAGS \\Seen\r\n",
	} {
		_, err := c.Response(parseValues(t, s))
		if !errors.Is(err, imapwire.ErrMalformed) {
			t.Errorf("Response(%q) = %v, want malformed error", s, err)
		}
	}
}

func TestCode(t *testing.T) {
	c := imapconv.New(nil)

	resp, err := c.Response(parseValues(t, "A003 OK [COPYUID 38505 304,319:320 3956:3958] Done\r\n"))
	if err != nil {
		t.Fatalf("Response() 出错: %v", err)
	}
	status := resp.(*imapconv.TaggedStatus).Status
	if status.Code != imap.ResponseCodeCopyUID || status.CodeData == nil || status.CodeData.Copy == nil {
		t.Fatalf("Code = %v, CodeData = %+v", status.Code, status.CodeData)
	}
	copyData := status.CodeData.Copy
	if copyData.UIDValidity != 38505 {
		t.Errorf("UIDValidity = %v, want 38505", copyData.UIDValidity)
	}
	if copyData.SourceUIDs.String() != "304,319:320" || copyData.DestUIDs.String() != "3956:3958" {
		t.Errorf("SourceUIDs = %v, DestUIDs = %v", copyData.SourceUIDs, copyData.DestUIDs)
	}

	code, data, err := imapconv.Code(imapwire.NewTextString("[APPENDUID 38505 3955]"))
	if err != nil {
		t.Fatalf("Code() 出错: %v", err)
	}
	if want := (&imap.AppendData{UIDValidity: 38505, UID: 3955}); code != imap.ResponseCodeAppendUID || !reflect.DeepEqual(data.Append, want) {
		t.Errorf("Code() = %v %+v, want APPENDUID %+v", code, data.Append, want)
	}

	code, data, err = imapconv.Code(imapwire.NewTextString("[PERMANENTFLAGS (\\Deleted \\Seen \\*)]"))
	if err != nil {
		t.Fatalf("Code() 出错: %v", err)
	}
	wantFlags := []imap.Flag{imap.FlagDeleted, imap.FlagSeen, imap.FlagWildcard}
	if code != imap.ResponseCodePermanentFlags || !reflect.DeepEqual(data.PermanentFlags, wantFlags) {
		t.Errorf("Code() = %v %v, want PERMANENTFLAGS %v", code, data.PermanentFlags, wantFlags)
	}

	code, data, err = imapconv.Code(imapwire.NewTextString("[BADCHARSET (UTF-8 US-ASCII)]"))
	if err != nil {
		t.Fatalf("Code() 出错: %v", err)
	}
	if want := []string{"UTF-8", "US-ASCII"}; code != imap.ResponseCodeBadCharset || !reflect.DeepEqual(data.Charsets, want) {
		t.Errorf("Code() = %v %v, want BADCHARSET %v", code, data.Charsets, want)
	}

	code, data, err = imapconv.Code(imapwire.NewTextString("[capability IMAP4rev1 IDLE]"))
	if err != nil {
		t.Fatalf("Code() 出错: %v", err)
	}
	if code != imap.ResponseCodeCapability || !data.Capabilities.Has(imap.CapIdle) {
		t.Errorf("Code() = %v %v", code, data.Capabilities)
	}

	code, data, err = imapconv.Code(imapwire.NewTextString("[X-FUTURE 1 (a b)]"))
	if err != nil {
		t.Fatalf("Code() 出错: %v", err)
	}
	if code != "X-FUTURE" || data == nil || len(data.Args) != 2 {
		t.Errorf("Code() = %v %+v", code, data)
	}

	if _, _, err := imapconv.Code(imapwire.NewTextString("[]")); !errors.Is(err, imapwire.ErrMalformed) {
		t.Errorf("Code([]) = %v, want malformed error", err)
	}
}

func TestSelectAccumulator(t *testing.T) {
	lines := []string{
		"* 172 EXISTS\r\n",
		"* 1 RECENT\r\n",
		"* OK [UNSEEN 12] Message 12 is first unseen\r\n",
		"* OK [UIDVALIDITY 3857529045] UIDs valid\r\n",
		"* OK [UIDNEXT 4392] Predicted next UID\r\n",
		"* FLAGS (\\Answered \\Flagged \\Deleted \\Seen \\Draft)\r\n",
		"* OK [PERMANENTFLAGS (\\Deleted \\Seen \\*)] Limited\r\n",
		"* OK [HIGHESTMODSEQ 715194045007] Highest\r\n",
		"* OK [ALERT] System shutdown in 10 minutes\r\n",
		"A142 OK [READ-ONLY] EXAMINE completed\r\n",
	}
	handled := []bool{true, true, true, true, true, true, true, true, false, true}

	c := imapconv.New(nil)
	var acc imapconv.SelectAccumulator
	for i, line := range lines {
		resp, err := c.Response(parseValues(t, line))
		if err != nil {
			t.Fatalf("Response(%q) 出错: %v", line, err)
		}
		if got := acc.Add(resp); got != handled[i] {
			t.Errorf("Add(%q) = %v, want %v", line, got, handled[i])
		}
	}

	want := imap.SelectData{
		Flags:          []imap.Flag{imap.FlagAnswered, imap.FlagFlagged, imap.FlagDeleted, imap.FlagSeen, imap.FlagDraft},
		PermanentFlags: []imap.Flag{imap.FlagDeleted, imap.FlagSeen, imap.FlagWildcard},
		NumMessages:    172,
		NumRecent:      1,
		FirstUnseen:    12,
		UIDNext:        4392,
		UIDValidity:    3857529045,
		ReadOnly:       true,
		HighestModSeq:  715194045007,
	}
	if !reflect.DeepEqual(acc.Data, want) {
		t.Errorf("Data = %+v, want %+v", acc.Data, want)
	}
}

func TestStatus(t *testing.T) {
	data := namedData(t, "* STATUS blurdybloop (MESSAGES 231 UIDNEXT 44292 unseen 0 APPENDLIMIT NIL HIGHESTMODSEQ 0 X-FUTURE 7)\r\n")
	status, ok := data.Data.(*imap.StatusData)
	if !ok {
		t.Fatalf("Data = %T, want *imap.StatusData", data.Data)
	}
	if status.Mailbox != "blurdybloop" || status.UIDNext != 44292 || status.HighestModSeq != 0 {
		t.Errorf("StatusData = %+v", status)
	}
	if status.NumMessages == nil || *status.NumMessages != 231 {
		t.Errorf("NumMessages = %v, want 231", status.NumMessages)
	}
	if status.NumUnseen == nil || *status.NumUnseen != 0 {
		t.Errorf("NumUnseen = %v, want 0", status.NumUnseen)
	}
	if status.AppendLimit == nil || *status.AppendLimit != ^uint32(0) {
		t.Errorf("AppendLimit = %v, want max uint32", status.AppendLimit)
	}
	if status.NumDeleted != nil || status.Size != nil {
		t.Errorf("NumDeleted = %v, Size = %v, want nil", status.NumDeleted, status.Size)
	}
}

func TestList(t *testing.T) {
	c := imapconv.New(&imapconv.Options{DecodeMailboxUTF7: true})

	resp, err := c.Response(parseValues(t, "* LIST (\\hasnochildren \\Sent) \"/\" \"Sent &ZeVnLIqe-\"\r\n"))
	if err != nil {
		t.Fatalf("Response() 出错: %v", err)
	}
	list := resp.(*imapconv.NamedData).Data.(*imap.ListData)
	want := &imap.ListData{
		Attrs:   []imap.MailboxAttr{imap.MailboxAttrHasNoChildren, imap.MailboxAttrSent},
		Delim:   '/',
		Mailbox: "Sent 日本語",
	}
	if !reflect.DeepEqual(list, want) {
		t.Errorf("ListData = %+v, want %+v", list, want)
	}

	resp, err = c.Response(parseValues(t, "* LIST () NIL inbox (CHILDINFO (\"SUBSCRIBED\") OLDNAME (\"Old\"))\r\n"))
	if err != nil {
		t.Fatalf("Response() 出错: %v", err)
	}
	list = resp.(*imapconv.NamedData).Data.(*imap.ListData)
	if list.Mailbox != "INBOX" || list.Delim != 0 || list.OldName != "Old" {
		t.Errorf("ListData = %+v", list)
	}
	if list.ChildInfo == nil || !list.ChildInfo.Subscribed {
		t.Errorf("ChildInfo = %+v", list.ChildInfo)
	}

	statusResp, err := c.Response(parseValues(t, "* STATUS INBOX (MESSAGES 17)\r\n"))
	if err != nil {
		t.Fatalf("Response() 出错: %v", err)
	}
	status := statusResp.(*imapconv.NamedData).Data.(*imap.StatusData)
	imapconv.MergeListStatus([]*imap.ListData{list}, []*imap.StatusData{status})
	if list.Status != status {
		t.Errorf("MergeListStatus() 没有合并 STATUS")
	}

	if _, err := c.Response(parseValues(t, "* LIST () \"//\" INBOX\r\n")); !errors.Is(err, imapwire.ErrMalformed) {
		t.Errorf("Response() = %v, want malformed error", err)
	}
}

func TestSearch(t *testing.T) {
	data := namedData(t, "* SEARCH 2 3 6 (MODSEQ 917162500)\r\n")
	search := data.Data.(*imap.SearchData)
	if search.ModSeq != 917162500 {
		t.Errorf("ModSeq = %v, want 917162500", search.ModSeq)
	}
	if want := []uint32{2, 3, 6}; !reflect.DeepEqual(search.AllSeqNums(), want) {
		t.Errorf("AllSeqNums() = %v, want %v", search.AllSeqNums(), want)
	}

	search, err := imapconv.Search(data.Args, true)
	if err != nil {
		t.Fatalf("Search() 出错: %v", err)
	}
	if want := []imap.UID{2, 3, 6}; !reflect.DeepEqual(search.AllUIDs(), want) {
		t.Errorf("AllUIDs() = %v, want %v", search.AllUIDs(), want)
	}

	search = namedData(t, "* SEARCH\r\n").Data.(*imap.SearchData)
	if len(search.AllSeqNums()) != 0 {
		t.Errorf("AllSeqNums() = %v, want empty", search.AllSeqNums())
	}

	sortData := namedData(t, "* SORT 5 3 4 1 2\r\n").Data.(*imap.SortData)
	if want := []uint32{5, 3, 4, 1, 2}; !reflect.DeepEqual(sortData.Nums, want) {
		t.Errorf("SortData.Nums = %v, want %v", sortData.Nums, want)
	}

	for _, s := range []string{
		"* SEARCH 0\r\n",
		"* SEARCH 2 (MODSEQ 0)\r\n",
		"* SEARCH (MODSEQ 1) 2\r\n",
		"* SEARCH 2 (FOO 1)\r\n",
	} {
		if _, err := imapconv.New(nil).Response(parseValues(t, s)); !errors.Is(err, imapwire.ErrMalformed) {
			t.Errorf("Response(%q) = %v, want malformed error", s, err)
		}
	}
}

func TestESearch(t *testing.T) {
	search := namedData(t, "* ESEARCH (TAG \"A285\") UID MIN 7 MAX 3800 COUNT 4 ALL 7,3800:3802\r\n").Data.(*imap.SearchData)
	if search.Tag != "A285" || !search.UID {
		t.Errorf("Tag = %q, UID = %v", search.Tag, search.UID)
	}
	if search.Min != 7 || search.Max != 3800 || search.Count != 4 {
		t.Errorf("Min = %v, Max = %v, Count = %v", search.Min, search.Max, search.Count)
	}
	if want := []imap.UID{7, 3800, 3801, 3802}; !reflect.DeepEqual(search.AllUIDs(), want) {
		t.Errorf("AllUIDs() = %v, want %v", search.AllUIDs(), want)
	}

	search = namedData(t, "* ESEARCH (TAG \"A283\") COUNT 0\r\n").Data.(*imap.SearchData)
	if _, ok := search.All.(imap.SeqSet); !ok || search.Count != 0 || search.UID {
		t.Errorf("SearchData = %+v", search)
	}

	if _, err := imapconv.ESearch(parseValues(t, "ALL 1:*\r\n")); !errors.Is(err, imapwire.ErrMalformed) {
		t.Errorf("ESearch(ALL 1:*) = %v, want malformed error", err)
	}
}

func TestThread(t *testing.T) {
	threads := namedData(t, "* THREAD (2)(3 6 (4 23)(44 7 96))\r\n").Data.([]imap.ThreadData)
	want := []imap.ThreadData{
		{Chain: []uint32{2}},
		{
			Chain: []uint32{3, 6},
			SubThreads: []imap.ThreadData{
				{Chain: []uint32{4, 23}},
				{Chain: []uint32{44, 7, 96}},
			},
		},
	}
	if !reflect.DeepEqual(threads, want) {
		t.Errorf("Thread() = %+v, want %+v", threads, want)
	}
}

func TestNamespace(t *testing.T) {
	ns := namedData(t, "* NAMESPACE ((\"\" \"/\")) NIL ((\"#shared.\" \".\" \"X-PARAM\" (\"FLAG1\")))\r\n").Data.(*imap.NamespaceData)
	want := &imap.NamespaceData{
		Personal: []imap.NamespaceDescriptor{{Prefix: "", Delim: '/'}},
		Shared:   []imap.NamespaceDescriptor{{Prefix: "#shared.", Delim: '.'}},
	}
	if !reflect.DeepEqual(ns, want) {
		t.Errorf("Namespace() = %+v, want %+v", ns, want)
	}
}

func TestQuota(t *testing.T) {
	quota := namedData(t, "* QUOTA \"\" (storage 10 512 MESSAGE 3 100)\r\n").Data.(*imap.QuotaData)
	want := &imap.QuotaData{
		Root: "",
		Resources: map[imap.QuotaResourceType]imap.QuotaResourceData{
			imap.QuotaResourceStorage: {Usage: 10, Limit: 512},
			imap.QuotaResourceMessage: {Usage: 3, Limit: 100},
		},
	}
	if !reflect.DeepEqual(quota, want) {
		t.Errorf("Quota() = %+v, want %+v", quota, want)
	}

	root := namedData(t, "* QUOTAROOT inbox \"\" user.foo\r\n").Data.(*imap.QuotaRootData)
	if wantRoot := (&imap.QuotaRootData{Mailbox: "INBOX", Roots: []string{"", "user.foo"}}); !reflect.DeepEqual(root, wantRoot) {
		t.Errorf("QuotaRoot() = %+v, want %+v", root, wantRoot)
	}
}

func TestCapabilityAndID(t *testing.T) {
	caps := namedData(t, "* CAPABILITY IMAP4rev1 STARTTLS AUTH=PLAIN LITERAL+\r\n").Data.(imap.CapSet)
	for _, c := range []imap.Cap{imap.CapIMAP4rev1, imap.CapStartTLS, imap.CapLiteralMinus} {
		if !caps.Has(c) {
			t.Errorf("CapSet.Has(%v) = false", c)
		}
	}
	if mechs := caps.AuthMechanisms(); !reflect.DeepEqual(mechs, []string{"PLAIN"}) {
		t.Errorf("AuthMechanisms() = %v", mechs)
	}

	id := namedData(t, "* ID (\"name\" \"Cyrus\" \"VERSION\" \"1.5\" \"os\" NIL \"x-custom\" \"y\")\r\n").Data.(*imap.IDData)
	if id.Name != "Cyrus" || id.Version != "1.5" || id.OS != "" {
		t.Errorf("ID() = %+v", id)
	}
	id = namedData(t, "* ID NIL\r\n").Data.(*imap.IDData)
	if *id != (imap.IDData{}) {
		t.Errorf("ID(NIL) = %+v, want zero", id)
	}
}

func TestACL(t *testing.T) {
	acl := namedData(t, "* ACL INBOX Fred rwipsldexta anyone lr\r\n").Data.(*imap.ACLData)
	want := &imap.ACLData{
		Mailbox: "INBOX",
		Rights: map[imap.RightsIdentifier]imap.RightSet{
			"Fred":                     imap.RightSet("rwipsldexta"),
			imap.RightsIdentifierAnyone: imap.RightSet("lr"),
		},
	}
	if !reflect.DeepEqual(acl, want) {
		t.Errorf("ACL() = %+v, want %+v", acl, want)
	}

	my := namedData(t, "* MYRIGHTS INBOX rwiptsldaex\r\n").Data.(*imap.MyRightsData)
	if my.Mailbox != "INBOX" || my.Rights.String() != "rwiptsldaex" {
		t.Errorf("MyRights() = %+v", my)
	}

	lr := namedData(t, "* LISTRIGHTS ~/Mail/saved smith la r swicdkxte\r\n").Data.(*imap.ListRightsData)
	if lr.Mailbox != "~/Mail/saved" || lr.Identifier != "smith" || lr.Required.String() != "la" {
		t.Errorf("ListRights() = %+v", lr)
	}
	if len(lr.Optional) != 2 || lr.Optional[0].String() != "r" || lr.Optional[1].String() != "swicdkxte" {
		t.Errorf("Optional = %v", lr.Optional)
	}

	if _, err := imapconv.New(nil).Response(parseValues(t, "* ACL INBOX Fred\r\n")); !errors.Is(err, imapwire.ErrMalformed) {
		t.Errorf("Response() = %v, want malformed error", err)
	}
}

func TestMetadata(t *testing.T) {
	md := namedData(t, "* METADATA \"\" (/shared/comment \"My comment\" /private/comment NIL /shared/x {3}\r\nabc)\r\n").Data.(*imap.MetadataData)
	if md.Mailbox != "" || len(md.EntryValues) != 3 {
		t.Fatalf("Metadata() = %+v", md)
	}
	if v := md.EntryValues["/shared/comment"]; v == nil || string(*v) != "My comment" {
		t.Errorf("/shared/comment = %v", v)
	}
	if v, ok := md.EntryValues["/private/comment"]; !ok || v != nil {
		t.Errorf("/private/comment = %v, %v, want nil", v, ok)
	}
	if v := md.EntryValues["/shared/x"]; v == nil || string(*v) != "abc" {
		t.Errorf("/shared/x = %v", v)
	}

	md = namedData(t, "* METADATA INBOX /shared/comment /private/comment\r\n").Data.(*imap.MetadataData)
	if want := []string{"/shared/comment", "/private/comment"}; md.Mailbox != "INBOX" || !reflect.DeepEqual(md.EntryList, want) {
		t.Errorf("Metadata() = %+v", md)
	}
}

func TestResponse_unknown(t *testing.T) {
	data := namedData(t, "* XAPPLEPUSHSERVICE aps-version 2\r\n")
	if data.Name != "XAPPLEPUSHSERVICE" || data.Data != nil || len(data.Args) != 2 {
		t.Errorf("Response() = %+v", data)
	}

	resp, err := imapconv.New(nil).Response(parseValues(t, "* 23 EXPUNGE\r\n"))
	if err != nil {
		t.Fatalf("Response() 出错: %v", err)
	}
	if numbered, ok := resp.(*imapconv.NumberedData); !ok || numbered.Num != 23 || numbered.Name != "EXPUNGE" {
		t.Errorf("Response() = %#v", resp)
	}
}
