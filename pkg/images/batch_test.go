package images

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v2"

	"github.com/tinyzimmer/imgfetch/pkg/runtime"
	"github.com/tinyzimmer/imgfetch/pkg/types"
)

var _ = Describe("Batch Runs", func() {
	var (
		tmpDir string
		rt     *runtime.MockRuntime
		opts   *BatchOptions
		refs   []string
		ctx    context.Context
		report *Report
		err    error
		setup  func(*Materializer)
	)

	run := func() *Report {
		m := NewMaterializer(rt, types.PullPolicyIfNotPresent, 0)
		if setup != nil {
			setup(m)
		}
		return Run(ctx, m, opts, refs)
	}

	archive := func(name string) string { return filepath.Join(tmpDir, name) }

	BeforeEach(func() {
		tmpDir, err = ioutil.TempDir("", "")
		Expect(err).ToNot(HaveOccurred())
		rt = runtime.Mock()
		rt.Unpullable["bogus/nonexistent:tag"] = true
		opts = &BatchOptions{Path: tmpDir, Extension: types.DefaultExtension}
		refs = []string{"alpine", "alpine:3.18", "bogus/nonexistent:tag"}
		ctx = context.Background()
		setup = nil
	})

	AfterEach(func() { os.RemoveAll(tmpDir) })

	JustBeforeEach(func() { report = run() })

	Context("On an empty output directory", func() {
		It("Should save the pullable images and skip the rest", func() {
			Expect(report.Results).To(HaveLen(3))
			Expect(archive("alpine.latest.docker")).To(BeARegularFile())
			Expect(archive("alpine.3.18.docker")).To(BeARegularFile())
			Expect(archive("bogus.nonexistent.tag.docker")).ToNot(BeAnExistingFile())
			Expect(report.Count(types.OutcomeSaved)).To(Equal(2))
			Expect(report.Count(types.OutcomePullFailed)).To(Equal(1))
			Expect(report.Failed()).To(Equal(1))
		})
	})

	Context("When an early image fails", func() {
		BeforeEach(func() {
			refs = []string{"bogus/nonexistent:tag", "alpine", "alpine:3.18"}
		})
		It("Should still process the images after it", func() {
			Expect(report.Results[0].Outcome).To(Equal(types.OutcomePullFailed))
			Expect(report.Results[1].Outcome).To(Equal(types.OutcomeSaved))
			Expect(report.Results[2].Outcome).To(Equal(types.OutcomeSaved))
		})
	})

	Context("When run a second time without redownload", func() {
		It("Should not call the runtime for images saved by the first run", func() {
			rt.Reset()
			second := run()
			Expect(rt.CallsFor("alpine:latest")).To(BeEmpty())
			Expect(rt.CallsFor("alpine:3.18")).To(BeEmpty())
			Expect(rt.CallsFor("bogus/nonexistent:tag")).To(Equal([]string{"inspect", "pull"}))
			Expect(second.Count(types.OutcomeSkipped)).To(Equal(2))
		})
	})

	Context("When run a second time with redownload", func() {
		It("Should replace every archive", func() {
			Expect(ioutil.WriteFile(archive("alpine.latest.docker"), []byte("stale"), 0644)).To(Succeed())
			opts.Redownload = true
			second := run()
			body, rerr := ioutil.ReadFile(archive("alpine.latest.docker"))
			Expect(rerr).ToNot(HaveOccurred())
			Expect(string(body)).To(Equal("archive of alpine:latest"))
			for _, res := range second.Results[:2] {
				Expect(res.Decision).To(Equal(types.DecisionReplaceCached))
				Expect(res.Outcome).To(Equal(types.OutcomeSaved))
			}
		})
	})

	Context("When an archive can not be removed for a redownload", func() {
		BeforeEach(func() {
			refs = []string{"alpine", "alpine:3.18"}
			opts.Redownload = true
			Expect(ioutil.WriteFile(archive("alpine.latest.docker"), []byte("stale"), 0644)).To(Succeed())
			setup = func(m *Materializer) {
				m.remove = func(path string) error {
					if path == archive("alpine.latest.docker") {
						return errors.New("permission denied")
					}
					return os.Remove(path)
				}
			}
		})
		It("Should skip that image and process the rest", func() {
			Expect(report.Results[0].Outcome).To(Equal(types.OutcomeRemoveFailed))
			Expect(rt.CallsFor("alpine:latest")).To(BeEmpty())
			Expect(report.Results[1].Outcome).To(Equal(types.OutcomeSaved))
			Expect(archive("alpine.3.18.docker")).To(BeARegularFile())
		})
	})

	Context("When the context is already cancelled", func() {
		BeforeEach(func() {
			cctx, cancel := context.WithCancel(context.Background())
			cancel()
			ctx = cctx
		})
		It("Should not start any image", func() {
			Expect(rt.Calls).To(BeEmpty())
			Expect(report.Results).To(BeEmpty())
			Expect(report.Interrupted).To(Equal(3))
		})
	})

	Describe("Writing the report", func() {
		It("Should contain the summary and every result", func() {
			path := filepath.Join(tmpDir, "report.yaml")
			Expect(report.WriteYAML(path)).To(Succeed())
			body, rerr := ioutil.ReadFile(path)
			Expect(rerr).ToNot(HaveOccurred())

			var out struct {
				Summary map[string]int  `yaml:"summary"`
				Results []*types.Result `yaml:"results"`
			}
			Expect(yaml.Unmarshal(body, &out)).To(Succeed())
			Expect(out.Summary["saved"]).To(Equal(2))
			Expect(out.Summary["pull-failed"]).To(Equal(1))
			Expect(out.Results).To(HaveLen(3))
			Expect(out.Results[2].Image).To(Equal("bogus/nonexistent:tag"))
			Expect(out.Results[2].Error).ToNot(BeEmpty())
		})

		It("Should log a summary without panicking", func() {
			Expect(report.LogSummary).ToNot(Panic())
		})
	})
})
