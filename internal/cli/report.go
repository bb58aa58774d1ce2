package cli

import (
	"fmt"
	"path"

	"github.com/matzehuels/stickerpack/pkg/pipeline"
)

// reportError is returned when a run finished with per-image failures.
type reportError struct {
	failed, total int
}

func (e *reportError) Error() string {
	return fmt.Sprintf("%d of %d images failed", e.failed, e.total)
}

// printReport prints a run summary and itemizes failures. It returns a
// *reportError if the report failed.
func printReport(rep *pipeline.Report) error {
	failed := 0
	for _, doc := range rep.Documents() {
		if rep.Track(doc).Failed() {
			failed++
		}
	}

	switch {
	case len(rep.Tracks) == 0 && len(rep.Exported) == 0:
		printInfo("Nothing to do")
	case failed == 0:
		printSuccess("Processed %d images", len(rep.Tracks))
	default:
		printError("Processed %d images, %d failed", len(rep.Tracks), failed)
	}
	printStats(len(rep.Tracks), len(rep.Variants), len(rep.Exported), rep.Stats.ExportCached)
	for _, v := range rep.Variants {
		printDetail("%s %s", iconArrow, v)
	}
	if n := len(rep.Exported); n > 0 {
		printFile(path.Dir(rep.Exported[0]))
	}

	if len(rep.Failures) > 0 {
		printNewline()
		fmt.Println(failureTable(rep.Failures))
	}
	if len(rep.Warnings()) > 0 && !rep.Failed() {
		printWarning("%d warnings", len(rep.Warnings()))
	}

	if rep.Failed() {
		if failed == 0 {
			failed = len(rep.Errors())
		}
		return &reportError{failed: failed, total: len(rep.Tracks)}
	}
	return nil
}
