package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"iondetect/pkg/core"
	"iondetect/pkg/loader"
)

// sourceWellFromPath derives the well tag stored with each result row.
// Consensus files collapse to the plain "post_process" tag.
func sourceWellFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.HasSuffix(base, "post_process") {
		return "post_process"
	}
	return base
}

func runLoad(cmd *cobra.Command, args []string) error {
	l, err := loader.NewLoader(loadOut)
	if err != nil {
		return err
	}

	loaded := 0
	for _, path := range args {
		model, err := core.ReadAnalysisModel(path)
		if err != nil {
			l.Close()
			return err
		}
		if err := l.LoadModel(sourceWellFromPath(path), model); err != nil {
			l.Close()
			return err
		}
		loaded += len(model.Results)
	}

	if err := l.Finalize(); err != nil {
		return err
	}

	fmt.Printf("Loaded %d results from %d files\n", loaded, len(args))
	fmt.Printf("Output: %s\n", loadOut)
	return nil
}
