package deps

import (
	"fmt"
	"strings"

	"github.com/john32b/cbae/internal/config"
)

const defaultFFmpeg = "ffmpeg"

// Requirements lists the external binaries a conversion with cfg needs.
// Data tracks are copied in-process, so only audio encoding needs ffmpeg.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	return []Requirement{ffmpegRequirement(cfg.FFmpegBinary(), cfg.Encoder.Codec)}
}

// ResolveFFmpeg reports the ffmpeg binary a conversion will execute. A
// configured path is used as-is; a bare name is resolved against PATH.
func ResolveFFmpeg(command string) Status {
	return resolve(ffmpegRequirement(command, ""))
}

func ffmpegRequirement(command, codec string) Requirement {
	if strings.TrimSpace(command) == "" {
		command = defaultFFmpeg
	}
	desc := "Encodes audio tracks"
	if codec != "" {
		desc = fmt.Sprintf("Encodes audio tracks to %s", codec)
	}
	return Requirement{Name: "FFmpeg", Command: command, Description: desc}
}
