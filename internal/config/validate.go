package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if strings.TrimSpace(c.Encoder.FFmpegBinary) == "" {
		return errors.New("encoder.ffmpeg_binary must be set")
	}
	limits, ok := codecQuality[c.Encoder.Codec]
	if !ok {
		return fmt.Errorf("encoder.codec %q is not supported (use one of %s)", c.Encoder.Codec, strings.Join(Codecs(), ", "))
	}
	q := c.Encoder.Quality
	if q == 0 {
		return nil
	}
	if limits.max == 0 {
		return fmt.Errorf("encoder.quality is not used by codec %q; remove it", c.Encoder.Codec)
	}
	if q < limits.min || q > limits.max {
		return fmt.Errorf("encoder.quality for %s must be between %d and %d", c.Encoder.Codec, limits.min, limits.max)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers <= 0 {
		return errors.New("workflow.workers must be positive")
	}
	if c.Workflow.Workers > maxWorkers {
		return fmt.Errorf("workflow.workers must be at most %d", maxWorkers)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	u, err := url.Parse(topic)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic %q must be an http(s) URL", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
