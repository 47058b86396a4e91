package main

import (
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra/doc"

	"github.com/tinyzimmer/imgfetch/pkg/cmd"
	"github.com/tinyzimmer/imgfetch/pkg/log"
)

func main() {
	out := flag.String("out", "doc", "directory to write the markdown reference to")
	flag.Parse()
	if err := genMarkdownDocs(*out); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// genMarkdownDocs writes the CLI reference to outDir. The --cache-dir default is
// derived from the home directory of whoever runs this, so it is written back
// in its ~ form.
func genMarkdownDocs(outDir string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	tmpDir, err := ioutil.TempDir("", "")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	root := cmd.GetRootCommand()
	root.DisableAutoGenTag = true
	if err := doc.GenMarkdownTree(root, tmpDir); err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	files, err := filepath.Glob(filepath.Join(tmpDir, "*.md"))
	if err != nil {
		return err
	}
	for _, file := range files {
		data, err := ioutil.ReadFile(file)
		if err != nil {
			return err
		}
		sanitized := strings.Replace(string(data), home, "~", -1)
		log.Infof("Writing %s\n", filepath.Join(outDir, filepath.Base(file)))
		if err := ioutil.WriteFile(filepath.Join(outDir, filepath.Base(file)), []byte(sanitized), 0644); err != nil {
			return err
		}
	}
	return nil
}
