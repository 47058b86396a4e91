package images

import (
	"io/ioutil"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v2"

	"github.com/tinyzimmer/imgfetch/pkg/log"
	"github.com/tinyzimmer/imgfetch/pkg/types"
)

// Report collects the results of a batch run.
type Report struct {
	Results []*types.Result
	// Number of images never started because the run was interrupted
	Interrupted int
}

// Add appends a result to the report.
func (r *Report) Add(res *types.Result) { r.Results = append(r.Results, res) }

// Count returns the number of results with the given outcome.
func (r *Report) Count(outcome types.Outcome) int {
	var n int
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Failed returns the number of images that could not be materialized.
func (r *Report) Failed() int {
	var n int
	for _, res := range r.Results {
		if res.Outcome.Failed() {
			n++
		}
	}
	return n
}

// BytesSaved is the total size of the archives written during the run.
func (r *Report) BytesSaved() int64 {
	var total int64
	for _, res := range r.Results {
		if res.Outcome == types.OutcomeSaved {
			total += res.Size
		}
	}
	return total
}

// Summary returns the count for every outcome.
func (r *Report) Summary() map[types.Outcome]int {
	out := make(map[types.Outcome]int, len(types.Outcomes))
	for _, o := range types.Outcomes {
		out[o] = r.Count(o)
	}
	return out
}

// LogSummary writes a one line summary of the run, followed by the images that
// failed.
func (r *Report) LogSummary() {
	log.Divider()
	log.Infof("Processed %d image(s): %d saved (%s), %d skipped, %d failed\n",
		len(r.Results), r.Count(types.OutcomeSaved), humanize.Bytes(uint64(r.BytesSaved())),
		r.Count(types.OutcomeSkipped), r.Failed())
	for _, res := range r.Results {
		if res.Outcome.Failed() {
			log.Warningf("  %s: %s\n", res.Image, res.Outcome)
		}
	}
	if r.Interrupted > 0 {
		log.Warningf("%d image(s) were not processed\n", r.Interrupted)
	}
}

type reportFile struct {
	Summary     map[types.Outcome]int `yaml:"summary"`
	Interrupted int                   `yaml:"interrupted,omitempty"`
	Results     []*types.Result       `yaml:"results"`
}

// WriteYAML writes the report to the given path.
func (r *Report) WriteYAML(path string) error {
	out, err := yaml.Marshal(&reportFile{
		Summary:     r.Summary(),
		Interrupted: r.Interrupted,
		Results:     r.Results,
	})
	if err != nil {
		return err
	}
	log.Debugf("Writing run report to %q\n", path)
	return ioutil.WriteFile(path, out, 0644)
}
