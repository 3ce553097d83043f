package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/john32b/cbae/internal/config"
	"github.com/john32b/cbae/internal/services"
)

func stubCommand(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append([]string{name}, args...)
		}
		helperArgs := append([]string{"-test.run=TestHelperProcess", "--"}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], helperArgs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "FFMPEG_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestCodecArgs(t *testing.T) {
	tests := []struct {
		codec   string
		quality int
		want    []string
	}{
		{"flac", 0, []string{"-c:a", "flac", "-compression_level", "5"}},
		{"flac", 12, []string{"-c:a", "flac", "-compression_level", "12"}},
		{"ogg", 0, []string{"-c:a", "libvorbis", "-q:a", "6"}},
		{"opus", 96, []string{"-c:a", "libopus", "-b:a", "96k"}},
		{"mp3", 10, []string{"-c:a", "libmp3lame", "-q:a", "0"}},
		{"mp3", 0, []string{"-c:a", "libmp3lame", "-q:a", "2"}},
		{"WAV", 0, []string{"-c:a", "pcm_s16le"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s-%d", tt.codec, tt.quality), func(t *testing.T) {
			c, ok := LookupCodec(tt.codec)
			if !ok {
				t.Fatalf("codec %q not found", tt.codec)
			}
			if got := c.Args(tt.quality); !slices.Equal(got, tt.want) {
				t.Fatalf("Args(%d) = %v, want %v", tt.quality, got, tt.want)
			}
		})
	}
}

func TestCodecTableMatchesConfig(t *testing.T) {
	if got, want := CodecNames(), config.Codecs(); !slices.Equal(got, slices.Sorted(slices.Values(want))) {
		t.Fatalf("codec names %v do not match config %v", got, want)
	}
	for _, name := range config.Codecs() {
		c, _ := LookupCodec(name)
		enc := config.Encoder{Codec: name}
		if c.DefaultQuality != enc.EffectiveQuality() {
			t.Fatalf("%s default quality %d, config says %d", name, c.DefaultQuality, enc.EffectiveQuality())
		}
	}
}

func TestNewCLIRejectsUnknownCodec(t *testing.T) {
	_, err := NewCLI("aac")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestEncodeStreamsInputAndRenamesOutput(t *testing.T) {
	var captured []string
	stubCommand(t, "success", &captured)

	cli, err := NewCLI("ogg", WithBinary("/opt/ffmpeg"), WithQuality(3))
	if err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(t.TempDir(), "01. Intro.ogg")
	pcm := bytes.Repeat([]byte{1, 2, 3, 4}, 2352)

	if err := cli.Encode(context.Background(), bytes.NewReader(pcm), output); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, pcm) {
		t.Fatal("helper did not receive the full input stream")
	}
	if captured[0] != "/opt/ffmpeg" {
		t.Fatalf("binary = %q", captured[0])
	}
	joined := strings.Join(captured, " ")
	for _, fragment := range []string{"-f s16le -ar 44100 -ac 2 -i pipe:0", "-c:a libvorbis -q:a 3", "-f ogg -y"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in %q", fragment, joined)
		}
	}
	if last := captured[len(captured)-1]; !strings.HasSuffix(last, ".part") {
		t.Fatalf("expected temporary output path, got %q", last)
	}
}

func TestEncodeFailureWrapsStderr(t *testing.T) {
	stubCommand(t, "failure", nil)

	cli, _ := NewCLI("flac")
	dir := t.TempDir()
	output := filepath.Join(dir, "track.flac")
	err := cli.Encode(context.Background(), strings.NewReader("pcm"), output)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Fatalf("expected stderr in error, got %q", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no leftovers, found %d entries", len(entries))
	}
}

func TestEncodeValidatesArguments(t *testing.T) {
	cli, _ := NewCLI("flac")
	if err := cli.Encode(context.Background(), nil, "/tmp/x.flac"); err == nil {
		t.Fatal("expected error for nil source")
	}
	if err := cli.Encode(context.Background(), strings.NewReader(""), " "); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func TestVersion(t *testing.T) {
	stubCommand(t, "version", nil)
	cli, _ := NewCLI("flac")
	v, err := cli.Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "ffmpeg version 7.1 Copyright (c) 2000-2024 the FFmpeg developers" {
		t.Fatalf("unexpected version %q", v)
	}
}

const sampleEncoders = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC
 A....D flac                 FLAC (Free Lossless Audio Codec)
 A....D libopus              libopus Opus
 A....D pcm_s16le            PCM signed 16-bit little-endian
`

func TestEncoders(t *testing.T) {
	stubCommand(t, "encoders", nil)
	cli, _ := NewCLI("opus")
	got, err := cli.Encoders(context.Background())
	if err != nil {
		t.Fatalf("Encoders: %v", err)
	}
	for _, name := range []string{"flac", "libopus", "pcm_s16le"} {
		if !got[name] {
			t.Fatalf("expected %s in %v", name, got)
		}
	}
	if got["libx264"] || got["libvorbis"] {
		t.Fatalf("unexpected encoders in %v", got)
	}
	if got["="] || len(got) != 3 {
		t.Fatalf("legend rows leaked into %v", got)
	}
}

func TestCodecEncodersAreDistinct(t *testing.T) {
	seen := map[string]string{}
	for _, name := range CodecNames() {
		c, _ := LookupCodec(name)
		if c.Encoder == "" {
			t.Fatalf("codec %s has no encoder", name)
		}
		if other, dup := seen[c.Encoder]; dup {
			t.Fatalf("codecs %s and %s share encoder %s", name, other, c.Encoder)
		}
		seen[c.Encoder] = name
	}
}

func TestTailBufferKeepsEnd(t *testing.T) {
	tb := &tailBuffer{limit: 5}
	io.WriteString(tb, "abc")
	io.WriteString(tb, "defgh")
	if tb.String() != "defgh" {
		t.Fatalf("tail = %q", tb.String())
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}

	switch os.Getenv("FFMPEG_HELPER_MODE") {
	case "success":
		out, err := os.Create(args[len(args)-1])
		if err != nil {
			os.Exit(3)
		}
		if _, err := io.Copy(out, os.Stdin); err != nil {
			os.Exit(4)
		}
		out.Close()
		os.Exit(0)
	case "failure":
		io.Copy(io.Discard, os.Stdin)
		fmt.Fprintln(os.Stderr, "Unknown encoder 'flac'")
		os.Exit(1)
	case "encoders":
		fmt.Print(sampleEncoders)
		os.Exit(0)
	case "version":
		fmt.Println("ffmpeg version 7.1 Copyright (c) 2000-2024 the FFmpeg developers")
		fmt.Println("built with gcc 14")
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
