package encoding

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/john32b/cbae/internal/cue"
	"github.com/john32b/cbae/internal/services"
)

const dataExtension = "bin"

// trackJob converts one track's extent into one output file.
type trackJob struct {
	Number int
	Name   string
	Extent cue.Extent
	Output string
}

func (j trackJob) label() string {
	return fmt.Sprintf("track %02d", j.Number)
}

type conversionPlan struct {
	dir   string
	sheet string
	jobs  []trackJob
}

// outputs lists every file the plan creates, the sheet last.
func (p conversionPlan) outputs() []string {
	paths := make([]string, 0, len(p.jobs)+1)
	for _, job := range p.jobs {
		paths = append(paths, job.Output)
	}
	return append(paths, p.sheet)
}

func planConversion(disc *cue.Disc, names []string, outDir, audioExt string) conversionPlan {
	extents := disc.Extents()
	plan := conversionPlan{
		dir:   outDir,
		sheet: filepath.Join(outDir, disc.SafeTitle+".cue"),
		jobs:  make([]trackJob, 0, len(extents)),
	}
	for i, extent := range extents {
		ext := dataExtension
		if extent.Audio {
			ext = audioExt
		}
		plan.jobs = append(plan.jobs, trackJob{
			Number: extent.Track,
			Name:   names[i],
			Extent: extent,
			Output: filepath.Join(outDir, names[i]+"."+ext),
		})
	}
	return plan
}

// checkExisting refuses to replace files unless overwrite is set. Planned
// outputs that would replace one of the source images are always refused.
func checkExisting(plan conversionPlan, overwrite bool) error {
	sources := make(map[string]struct{}, len(plan.jobs))
	for _, job := range plan.jobs {
		sources[filepath.Clean(job.Extent.Path)] = struct{}{}
	}
	for _, path := range plan.outputs() {
		if _, ok := sources[filepath.Clean(path)]; ok {
			return services.Wrap(services.ErrValidation, stageName, "plan outputs", fmt.Sprintf("%s would overwrite a source image", path), nil)
		}
		_, err := os.Stat(path)
		switch {
		case err == nil && !overwrite:
			return services.Wrap(services.ErrValidation, stageName, "plan outputs", fmt.Sprintf("%s already exists", path), nil)
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return services.Wrap(services.ErrTransient, stageName, "plan outputs", path, err)
		}
	}
	return nil
}
