package encoding

import (
	"fmt"
	"os"

	"github.com/john32b/cbae/internal/services"
)

// validateOutputs checks every track file landed: data tracks must match their
// extent exactly and encoded audio must not be empty.
func validateOutputs(plan conversionPlan, codec string) error {
	for _, job := range plan.jobs {
		info, err := os.Stat(job.Output)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, stageName, "validate output", job.label(), err)
		}
		switch {
		case !job.Extent.Audio && info.Size() != job.Extent.ByteSize:
			return services.Wrap(services.ErrTransient, stageName, "validate output",
				fmt.Sprintf("%s is %d bytes, expected %d", job.Output, info.Size(), job.Extent.ByteSize), nil)
		case job.Extent.Audio && job.Extent.ByteSize > 0 && info.Size() == 0:
			return services.Wrap(services.ErrExternalTool, stageName, "validate output",
				fmt.Sprintf("%s encoder produced an empty %s", codec, job.Output), nil)
		}
	}
	return nil
}
