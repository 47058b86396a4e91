package images

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/tinyzimmer/imgfetch/pkg/runtime"
	"github.com/tinyzimmer/imgfetch/pkg/types"
)

var _ = Describe("Image Materializer", func() {
	var (
		tmpDir     string
		rt         *runtime.MockRuntime
		policy     types.PullPolicy
		timeout    time.Duration
		opts       *types.MaterializeOptions
		res        *types.Result
		err        error
		archiveErr error
		ctx        context.Context
		setup      func(*Materializer)
	)

	const image = "alpine:latest"

	BeforeEach(func() {
		tmpDir, err = ioutil.TempDir("", "")
		Expect(err).ToNot(HaveOccurred())
		rt = runtime.Mock()
		policy = types.PullPolicyIfNotPresent
		timeout = time.Second
		ctx = context.Background()
		setup = nil
		opts = &types.MaterializeOptions{
			Image:       image,
			Destination: filepath.Join(tmpDir, "alpine.latest.docker"),
		}
	})

	AfterEach(func() { os.RemoveAll(tmpDir) })

	JustBeforeEach(func() {
		m := NewMaterializer(rt, policy, timeout)
		if setup != nil {
			setup(m)
		}
		res = m.Materialize(ctx, opts)
		_, archiveErr = os.Stat(opts.Destination)
	})

	writeArchive := func(body string) {
		Expect(ioutil.WriteFile(opts.Destination, []byte(body), 0644)).To(Succeed())
	}

	Context("When an archive exists and redownload is off", func() {
		BeforeEach(func() { writeArchive("previous run") })
		It("Should skip without calling the runtime", func() {
			Expect(rt.Calls).To(BeEmpty())
			Expect(res.Decision).To(Equal(types.DecisionSkipCached))
			Expect(res.Outcome).To(Equal(types.OutcomeSkipped))
			body, _ := ioutil.ReadFile(opts.Destination)
			Expect(string(body)).To(Equal("previous run"))
		})
	})

	Context("When an archive exists and redownload is on", func() {
		var existedAtFirstCall *bool

		BeforeEach(func() {
			writeArchive("previous run")
			opts.Redownload = true
			rt.Present[image] = true
			existedAtFirstCall = nil
			rt.BeforeCall = func(op, img string) {
				if existedAtFirstCall == nil {
					_, statErr := os.Stat(opts.Destination)
					existed := statErr == nil
					existedAtFirstCall = &existed
				}
			}
		})
		It("Should remove the archive before calling the runtime and save it again", func() {
			Expect(existedAtFirstCall).ToNot(BeNil())
			Expect(*existedAtFirstCall).To(BeFalse())
			Expect(rt.Calls).To(Equal([]string{"inspect " + image, "save " + image}))
			Expect(res.Decision).To(Equal(types.DecisionReplaceCached))
			Expect(res.Outcome).To(Equal(types.OutcomeSaved))
			body, _ := ioutil.ReadFile(opts.Destination)
			Expect(string(body)).To(Equal("archive of " + image))
		})
	})

	Context("When the runtime already has the image", func() {
		BeforeEach(func() { rt.Present[image] = true })
		It("Should save without pulling", func() {
			Expect(rt.Calls).To(Equal([]string{"inspect " + image, "save " + image}))
			Expect(res.Decision).To(Equal(types.DecisionSaveOnly))
			Expect(res.Outcome).To(Equal(types.OutcomeSaved))
			Expect(res.Size).To(BeNumerically(">", 0))
			Expect(archiveErr).ToNot(HaveOccurred())
		})
	})

	Context("When the runtime does not have the image", func() {
		It("Should pull and then save", func() {
			Expect(rt.Calls).To(Equal([]string{"inspect " + image, "pull " + image, "save " + image}))
			Expect(res.Decision).To(Equal(types.DecisionPullAndSave))
			Expect(res.Outcome).To(Equal(types.OutcomeSaved))
			Expect(archiveErr).ToNot(HaveOccurred())
		})
	})

	Context("When the pull fails", func() {
		BeforeEach(func() { rt.Unpullable[image] = true })
		It("Should never save", func() {
			Expect(rt.Calls).To(Equal([]string{"inspect " + image, "pull " + image}))
			Expect(res.Outcome).To(Equal(types.OutcomePullFailed))
			Expect(res.Error).To(ContainSubstring("pull access denied"))
			Expect(os.IsNotExist(archiveErr)).To(BeTrue())
		})
	})

	Context("When the save fails part way", func() {
		BeforeEach(func() {
			rt.Present[image] = true
			rt.SaveErr = errors.New("no space left on device")
			rt.BeforeCall = func(op, img string) {
				if op == "save" {
					writeArchive("partial")
				}
			}
		})
		It("Should report the failure and remove the partial archive", func() {
			Expect(res.Outcome).To(Equal(types.OutcomeSaveFailed))
			Expect(res.Error).To(Equal("no space left on device"))
			Expect(os.IsNotExist(archiveErr)).To(BeTrue())
		})
	})

	Context("When the inspect probe hangs", func() {
		BeforeEach(func() {
			rt.Present[image] = true
			rt.InspectDelay = 5 * time.Second
			timeout = 50 * time.Millisecond
		})
		It("Should treat the image as missing and pull it", func() {
			Expect(rt.Calls).To(Equal([]string{"inspect " + image, "pull " + image, "save " + image}))
			Expect(res.Outcome).To(Equal(types.OutcomeSaved))
		})
	})

	Context("When the pull policy is Always", func() {
		BeforeEach(func() {
			policy = types.PullPolicyAlways
			rt.Present[image] = true
		})
		It("Should pull without probing", func() {
			Expect(rt.Calls).To(Equal([]string{"pull " + image, "save " + image}))
			Expect(res.Decision).To(Equal(types.DecisionPullAndSave))
		})
	})

	Context("When the pull policy is Never", func() {
		BeforeEach(func() { policy = types.PullPolicyNever })

		Context("And the runtime does not have the image", func() {
			It("Should report it missing without pulling", func() {
				Expect(rt.Calls).To(Equal([]string{"inspect " + image}))
				Expect(res.Outcome).To(Equal(types.OutcomeNotPresent))
				Expect(os.IsNotExist(archiveErr)).To(BeTrue())
			})
		})

		Context("And the runtime has the image", func() {
			BeforeEach(func() { rt.Present[image] = true })
			It("Should save it", func() {
				Expect(rt.Calls).To(Equal([]string{"inspect " + image, "save " + image}))
				Expect(res.Outcome).To(Equal(types.OutcomeSaved))
			})
		})
	})

	Context("When an existing archive can not be removed for a redownload", func() {
		BeforeEach(func() {
			writeArchive("previous run")
			opts.Redownload = true
			setup = func(m *Materializer) {
				m.remove = func(string) error { return errors.New("permission denied") }
			}
		})
		It("Should skip the image without calling the runtime", func() {
			Expect(rt.Calls).To(BeEmpty())
			Expect(res.Decision).To(Equal(types.DecisionReplaceCached))
			Expect(res.Outcome).To(Equal(types.OutcomeRemoveFailed))
			Expect(res.Error).To(Equal("permission denied"))
			body, _ := ioutil.ReadFile(opts.Destination)
			Expect(string(body)).To(Equal("previous run"))
		})
	})

	Context("When the archive path can not be checked", func() {
		BeforeEach(func() {
			setup = func(m *Materializer) {
				m.fileExists = func(string) (bool, error) { return false, errors.New("input/output error") }
			}
		})
		It("Should treat the archive as missing and download it", func() {
			Expect(rt.Calls).To(Equal([]string{"inspect " + image, "pull " + image, "save " + image}))
			Expect(res.Outcome).To(Equal(types.OutcomeSaved))
		})
	})

	Context("When the destination is a directory and the save fails", func() {
		BeforeEach(func() {
			Expect(os.Mkdir(opts.Destination, 0755)).To(Succeed())
			rt.Present[image] = true
			rt.SaveErr = errors.New("is a directory")
		})
		It("Should leave the directory alone", func() {
			Expect(res.Outcome).To(Equal(types.OutcomeSaveFailed))
			Expect(archiveErr).ToNot(HaveOccurred())
			Expect(opts.Destination).To(BeADirectory())
		})
	})

	Context("When the run is cancelled during the pull", func() {
		BeforeEach(func() {
			cctx, cancel := context.WithCancel(context.Background())
			ctx = cctx
			rt.BeforeCall = func(op, img string) {
				if op == "pull" {
					cancel()
				}
			}
		})
		It("Should report the image as interrupted", func() {
			Expect(rt.Calls).To(Equal([]string{"inspect " + image, "pull " + image}))
			Expect(res.Outcome).To(Equal(types.OutcomeInterrupted))
			Expect(os.IsNotExist(archiveErr)).To(BeTrue())
		})
	})

	Context("When the run is cancelled during the save", func() {
		BeforeEach(func() {
			cctx, cancel := context.WithCancel(context.Background())
			ctx = cctx
			rt.Present[image] = true
			rt.SaveErr = context.Canceled
			rt.BeforeCall = func(op, img string) {
				if op == "save" {
					writeArchive("partial")
					cancel()
				}
			}
		})
		It("Should report the image as interrupted and remove the partial archive", func() {
			Expect(res.Outcome).To(Equal(types.OutcomeInterrupted))
			Expect(os.IsNotExist(archiveErr)).To(BeTrue())
		})
	})
})
