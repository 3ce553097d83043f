package cue

import "fmt"

const (
	// CDFramesPerSec is the number of sectors (frames) per second of CD audio.
	CDFramesPerSec = 75
	// SecPerMin is the number of seconds in a minute of disc time.
	SecPerMin = 60

	framesPerMin = CDFramesPerSec * SecPerMin
)

// TimeCode is an MM:SS:FF disc address attached to an INDEX or PREGAP line.
type TimeCode struct {
	Index   int
	Minutes int
	Seconds int
	Frames  int
}

// TimeCodeFromFrames derives a time code from a linear frame count. Negative
// counts clamp to 00:00:00.
func TimeCodeFromFrames(index, frames int) TimeCode {
	frames = max(frames, 0)
	return TimeCode{
		Index:   index,
		Minutes: frames / framesPerMin,
		Seconds: (frames % framesPerMin) / CDFramesPerSec,
		Frames:  frames % CDFramesPerSec,
	}
}

// FrameCount returns the linear frame offset of the time code.
func (tc TimeCode) FrameCount() int {
	return tc.Seconds*CDFramesPerSec + tc.Minutes*framesPerMin + tc.Frames
}

// String renders the time code as MM:SS:FF.
func (tc TimeCode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", tc.Minutes, tc.Seconds, tc.Frames)
}
