package config

import "strings"

// Overrides carries command-line values that take precedence over the file.
// Nil pointers and empty strings leave the configured value alone.
type Overrides struct {
	OutputDir    string
	Codec        string
	Quality      *int
	Workers      *int
	NameTemplate *string
	Overwrite    bool
	LogLevel     string
}

// WithOverrides returns a normalized, validated copy of c with o applied.
func (c *Config) WithOverrides(o Overrides) (*Config, error) {
	out := *c
	if dir := strings.TrimSpace(o.OutputDir); dir != "" {
		out.Paths.OutputDir = dir
	}
	if codec := strings.TrimSpace(o.Codec); codec != "" {
		out.Encoder.Codec = codec
		// The file's quality belongs to the file's codec.
		if o.Quality == nil && !strings.EqualFold(codec, c.Encoder.Codec) {
			out.Encoder.Quality = 0
		}
	}
	if o.Quality != nil {
		out.Encoder.Quality = *o.Quality
	}
	if o.Workers != nil {
		out.Workflow.Workers = *o.Workers
	}
	if o.NameTemplate != nil {
		out.Workflow.NameTemplate = *o.NameTemplate
	}
	if o.Overwrite {
		out.Workflow.Overwrite = true
	}
	if level := strings.TrimSpace(o.LogLevel); level != "" {
		out.Logging.Level = level
	}

	if err := out.normalize(); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}
