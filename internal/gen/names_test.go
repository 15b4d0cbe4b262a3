package gen

import (
	"testing"

	"github.com/danmuck/tlgen/internal/testutil/testlog"
)

func TestGoName(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"foo":                  "Foo",
		"inputPeerUser":        "InputPeerUser",
		"messages.sendMessage": "MessagesSendMessage",
		"reply_to_msg_id":      "ReplyToMsgID",
		"FLOOD_WAIT_X":         "FloodWaitX",
		"user_id":              "UserID",
		"2fa":                  "X2fa",
		"photo_url":            "PhotoURL",
	}
	for in, want := range cases {
		if got := GoName(in); got != want {
			t.Fatalf("GoName(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestLocalName(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"bar":     "bar",
		"user_id": "userID",
		"id":      "id",
		"type":    "type_",
		"flags":   "flags_",
		"b":       "b_",
	}
	for in, want := range cases {
		if got := LocalName(in); got != want {
			t.Fatalf("LocalName(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestFormatDeterministic(t *testing.T) {
	testlog.Start(t)
	var w Writer
	w.Line("package x")
	w.Blank()
	w.Line("func   F( ) int {")
	w.Line("return 1")
	w.Line("}")
	first, err := w.Render("x.go")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := w.Render("x.go")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "package x\n\nfunc F() int {\n\treturn 1\n}\n"
	if string(first.Content) != want {
		t.Fatalf("expected %q, got %q", want, first.Content)
	}
	if string(second.Content) != string(first.Content) {
		t.Fatalf("expected identical output")
	}
}

func TestWriteAndDiff(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	files := []File{{Name: "a.go", Content: []byte("package a\n")}}
	stale, err := Diff(dir, files)
	if err != nil || len(stale) != 1 {
		t.Fatalf("expected missing file to be stale, got %v %v", stale, err)
	}
	if err := Write(dir, files); err != nil {
		t.Fatalf("write: %v", err)
	}
	stale, err = Diff(dir, files)
	if err != nil || len(stale) != 0 {
		t.Fatalf("expected no stale files, got %v %v", stale, err)
	}
	files[0].Content = []byte("package b\n")
	stale, err = Diff(dir, files)
	if err != nil || len(stale) != 1 || stale[0] != "a.go" {
		t.Fatalf("expected a.go stale, got %v %v", stale, err)
	}
}
