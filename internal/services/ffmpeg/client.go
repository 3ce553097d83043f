package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/john32b/cbae/internal/services"
)

var commandContext = exec.CommandContext

// Raw CD-DA input format.
var inputArgs = []string{"-f", "s16le", "-ar", "44100", "-ac", "2", "-i", "pipe:0"}

const stderrTailBytes = 4096

// Client encodes a stream of raw CD audio into a file.
type Client interface {
	Encode(ctx context.Context, src io.Reader, output string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithQuality sets the codec quality; 0 keeps the codec default.
func WithQuality(quality int) Option {
	return func(c *CLI) {
		c.quality = quality
	}
}

// CLI wraps the ffmpeg executable.
type CLI struct {
	binary  string
	codec   Codec
	quality int
}

// NewCLI constructs a client for the named codec.
func NewCLI(codec string, opts ...Option) (*CLI, error) {
	c, ok := LookupCodec(codec)
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "ffmpeg", "codec", fmt.Sprintf("unsupported codec %q", codec), nil)
	}
	cli := &CLI{binary: "ffmpeg", codec: c}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// Codec returns the codec the client encodes to.
func (c *CLI) Codec() Codec {
	return c.codec
}

// Args returns the complete argument list used to encode into output.
func (c *CLI) Args(output string) []string {
	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, inputArgs...)
	args = append(args, c.codec.Args(c.quality)...)
	args = append(args, "-f", c.codec.Muxer, "-y", output)
	return args
}

// Encode feeds src to ffmpeg and writes the encoded file to output. The file
// only appears at output once ffmpeg succeeded.
func (c *CLI) Encode(ctx context.Context, src io.Reader, output string) error {
	if src == nil {
		return errors.New("source stream required")
	}
	if strings.TrimSpace(output) == "" {
		return errors.New("output path required")
	}

	tmp := filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+".part")
	cmd := commandContext(ctx, c.binary, c.Args(tmp)...) //nolint:gosec
	cmd.Stdin = src
	stderr := &tailBuffer{limit: stderrTailBytes}
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(tmp)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ffmpeg interrupted: %w", ctxErr)
		}
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "encode "+filepath.Base(output), stderr.String(), err)
	}
	if err := os.Rename(tmp, output); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize %s: %w", output, err)
	}
	return nil
}

// Version returns the first line of ffmpeg -version.
func (c *CLI) Version(ctx context.Context) (string, error) {
	out, err := commandContext(ctx, c.binary, "-hide_banner", "-version").Output()
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ffmpeg", "version", "", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", services.Wrap(services.ErrExternalTool, "ffmpeg", "version", "empty output", nil)
}

// Encoders returns the names of the audio encoders compiled into ffmpeg.
func (c *CLI) Encoders(ctx context.Context) (map[string]bool, error) {
	out, err := commandContext(ctx, c.binary, "-hide_banner", "-encoders").Output()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ffmpeg", "list encoders", "", err)
	}
	return parseEncoders(out), nil
}

// parseEncoders reads "-encoders" output. Audio rows start with a capability
// column whose first flag is 'A'; the legend above the separator is skipped.
func parseEncoders(out []byte) map[string]bool {
	encoders := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	listing := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !listing {
			listing = strings.HasPrefix(line, "---")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "A") {
			continue
		}
		encoders[fields[1]] = true
	}
	return encoders
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return strings.TrimSpace(string(t.buf))
}

var _ Client = (*CLI)(nil)
