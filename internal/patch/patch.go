// Package patch renders a two-pane text comparison into a patch file.
package patch

import (
	"fmt"
	"os"

	"github.com/sergi/go-diff/diffmatchpatch"

	"collate/internal/errors"
	"collate/internal/logger"
)

// Writer produces patch reports for text comparisons.
type Writer struct{}

// WritePatch diffs the first two source locations and writes the patch
// to reportPath. Only two-pane path-backed comparisons can produce a
// patch.
func (Writer) WritePatch(locations []string, reportPath string) error {
	const op = errors.Op("patch.WritePatch")
	if len(locations) < 2 {
		return errors.E(op, errors.KindInvalid, "patch needs two sources")
	}
	left, err := os.ReadFile(locations[0])
	if err != nil {
		return errors.E(op, errors.KindIO, locations[0], err)
	}
	right, err := os.ReadFile(locations[1])
	if err != nil {
		return errors.E(op, errors.KindIO, locations[1], err)
	}

	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(string(left), string(right))
	header := fmt.Sprintf("--- %s\n+++ %s\n", locations[0], locations[1])
	body := header + dmp.PatchToText(patches)

	if err := os.WriteFile(reportPath, []byte(body), 0644); err != nil {
		return errors.E(op, errors.KindIO, reportPath, err)
	}
	logger.Info("Patch: wrote %d patch hunks to %s", len(patches), reportPath)
	return nil
}
