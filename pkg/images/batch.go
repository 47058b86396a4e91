package images

import (
	"context"

	"github.com/tinyzimmer/imgfetch/pkg/log"
	"github.com/tinyzimmer/imgfetch/pkg/types"
)

// BatchOptions are the options shared by every image in a batch.
type BatchOptions struct {
	// Directory archives are written to
	Path string
	// Archive filename suffix
	Extension string
	// Replace archives that already exist
	Redownload bool
}

// Run materializes each raw reference in order, one at a time. A failing image
// never stops the batch. If ctx is cancelled the images that have not been
// started yet are left out of the report.
func Run(ctx context.Context, m *Materializer, opts *BatchOptions, refs []string) *Report {
	report := &Report{}
	for idx, raw := range refs {
		if err := ctx.Err(); err != nil {
			log.Warningf("Interrupted, %d image(s) were not processed\n", len(refs)-idx)
			report.Interrupted = len(refs) - idx
			break
		}
		log.Divider()
		image, dest := Normalize(raw, opts.Path, opts.Extension)
		report.Add(m.Materialize(ctx, &types.MaterializeOptions{
			Image:       image,
			Destination: dest,
			Redownload:  opts.Redownload,
		}))
	}
	return report
}
