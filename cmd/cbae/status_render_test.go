package main

import (
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
)

func TestRenderStatusLinePlain(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "ffmpeg version 6.1", false)
	if !strings.HasPrefix(got, "  FFmpeg:") {
		t.Fatalf("unexpected prefix: %q", got)
	}
	if !strings.HasSuffix(got, "[OK] ffmpeg version 6.1") {
		t.Fatalf("unexpected suffix: %q", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("plain output contains escape codes: %q", got)
	}
}

func TestRenderStatusLineColorized(t *testing.T) {
	text.EnableColors()
	got := renderStatusLine("Output directory", statusError, "not writable", true)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected escape codes, got %q", got)
	}
	if !strings.Contains(got, "[ERROR] not writable") {
		t.Fatalf("missing status text: %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader(" History ", false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "== History ==" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("unexpected rule %q", lines[1])
	}
}
