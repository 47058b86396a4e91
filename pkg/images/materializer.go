package images

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tinyzimmer/imgfetch/pkg/log"
	"github.com/tinyzimmer/imgfetch/pkg/types"
	"github.com/tinyzimmer/imgfetch/pkg/util"
)

// Materializer ensures single images exist as archive files on disk.
type Materializer struct {
	runtime        types.ContainerRuntime
	pullPolicy     types.PullPolicy
	inspectTimeout time.Duration

	// filesystem access, replaced in tests
	fileExists func(path string) (bool, error)
	remove     func(path string) error
}

// NewMaterializer returns a Materializer backed by the given runtime. A zero
// pull policy or inspect timeout falls back to the defaults.
func NewMaterializer(rt types.ContainerRuntime, pullPolicy types.PullPolicy, inspectTimeout time.Duration) *Materializer {
	if pullPolicy == "" {
		pullPolicy = types.PullPolicyIfNotPresent
	}
	if inspectTimeout <= 0 {
		inspectTimeout = types.DefaultInspectTimeout
	}
	return &Materializer{
		runtime:        rt,
		pullPolicy:     pullPolicy,
		inspectTimeout: inspectTimeout,
		fileExists:     util.FileExists,
		remove:         util.RemoveIfExists,
	}
}

// Materialize decides what to do for one image and does it. Failures are logged
// and recorded on the returned result, they are never returned.
func (m *Materializer) Materialize(ctx context.Context, opts *types.MaterializeOptions) *types.Result {
	res := &types.Result{Image: opts.Image, Destination: opts.Destination}

	exists, err := m.fileExists(opts.Destination)
	if err != nil {
		log.Warningf("Could not check for an existing archive at %q: %s\n", opts.Destination, err)
	}

	if exists {
		if !opts.Redownload {
			log.Infof("Image '%s' already downloaded, skipping it\n", opts.Image)
			res.Decision = types.DecisionSkipCached
			res.Outcome = types.OutcomeSkipped
			return res
		}
		log.Infof("Image '%s' already downloaded, redownloading it\n", opts.Image)
		res.Decision = types.DecisionReplaceCached
		if err := m.remove(opts.Destination); err != nil {
			log.Errorf("Could not remove existing archive %q, skipping it: %s\n", opts.Destination, err)
			return failed(res, types.OutcomeRemoveFailed, err)
		}
	}

	if m.isPresent(ctx, opts.Image) {
		log.Infof("Image '%s' already present on machine\n", opts.Image)
		setDecision(res, types.DecisionSaveOnly)
	} else {
		if m.pullPolicy == types.PullPolicyNever {
			log.Errorf("Image '%s' is not present on the machine and pull policy is %s, skipping it\n", opts.Image, m.pullPolicy)
			return failed(res, types.OutcomeNotPresent, nil)
		}
		log.Infof("Pulling image: %s\n", opts.Image)
		setDecision(res, types.DecisionPullAndSave)
		if err := m.runtime.Pull(ctx, opts.Image); err != nil {
			if ctx.Err() != nil {
				return interrupted(res, err)
			}
			log.Errorf("Image '%s' was not pulled successfully, skipping it: %s\n", opts.Image, err)
			return failed(res, types.OutcomePullFailed, err)
		}
	}

	log.Infof("Downloading '%s' image to: '%s'\n", opts.Image, opts.Destination)
	if err := m.runtime.Save(ctx, opts.Image, opts.Destination); err != nil {
		// A partial archive would be mistaken for a finished one on the next run.
		m.removePartial(opts.Destination)
		if ctx.Err() != nil {
			return interrupted(res, err)
		}
		log.Errorf("Image '%s' could not be saved: %s\n", opts.Image, err)
		return failed(res, types.OutcomeSaveFailed, err)
	}

	res.Outcome = types.OutcomeSaved
	res.Size = util.FileSize(opts.Destination)
	if res.Size > 0 {
		log.Infof("Saved '%s' (%s)\n", opts.Image, humanize.Bytes(uint64(res.Size)))
	}
	return res
}

// removePartial removes whatever the runtime left at dest, but only if it is a
// regular file.
func (m *Materializer) removePartial(dest string) {
	partial, err := m.fileExists(dest)
	if err != nil || !partial {
		return
	}
	if err := m.remove(dest); err != nil {
		log.Warningf("Could not clean up partial archive %q: %s\n", dest, err)
	}
}

// isPresent probes the runtime for the image. Any failure, including the probe
// timing out, counts as the image not being present.
func (m *Materializer) isPresent(ctx context.Context, image string) bool {
	if m.pullPolicy == types.PullPolicyAlways {
		log.Debugf("Pull policy is %s, not checking the %s runtime for %s\n", m.pullPolicy, m.runtime.Name(), image)
		return false
	}
	inspectCtx, cancel := context.WithTimeout(ctx, m.inspectTimeout)
	defer cancel()
	if err := m.runtime.Inspect(inspectCtx, image); err != nil {
		log.Debugf("Image %s not available from the %s runtime: %s\n", image, m.runtime.Name(), err)
		return false
	}
	return true
}

// setDecision records d unless an existing archive is being replaced, which takes
// precedence.
func setDecision(res *types.Result, d types.Decision) {
	if res.Decision == types.DecisionReplaceCached {
		return
	}
	res.Decision = d
}

func failed(res *types.Result, outcome types.Outcome, err error) *types.Result {
	res.Outcome = outcome
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func interrupted(res *types.Result, err error) *types.Result {
	log.Warningf("Interrupted while processing image '%s': %s\n", res.Image, err)
	return failed(res, types.OutcomeInterrupted, err)
}
