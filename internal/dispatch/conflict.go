package dispatch

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"collate/internal/doc"
	"collate/internal/errors"
	"collate/internal/params"
)

// Conflict marker prefixes as written by merge tools.
const (
	markerMine      = "<<<<<<<"
	markerSeparator = "======="
	markerBase      = "|||||||"
	markerTheirs    = ">>>>>>>"
)

// splitConflict separates a conflict-marked file into the "mine" and
// "theirs" versions. Diff3-style base sections are dropped. Lines
// outside conflict regions appear in both outputs.
func splitConflict(content []byte) (mine, theirs []byte, conflicts int, err error) {
	const (
		sectCommon = iota
		sectMine
		sectBase
		sectTheirs
	)

	var mineBuf, theirsBuf bytes.Buffer
	section := sectCommon

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, markerMine):
			if section != sectCommon {
				return nil, nil, 0, fmt.Errorf("nested conflict marker %q", markerMine)
			}
			section = sectMine
		case strings.HasPrefix(line, markerBase) && section == sectMine:
			section = sectBase
		case strings.HasPrefix(line, markerSeparator) && (section == sectMine || section == sectBase):
			section = sectTheirs
		case strings.HasPrefix(line, markerTheirs):
			if section != sectTheirs {
				return nil, nil, 0, fmt.Errorf("unexpected conflict marker %q", markerTheirs)
			}
			section = sectCommon
			conflicts++
		default:
			switch section {
			case sectCommon:
				mineBuf.WriteString(line)
				mineBuf.WriteByte('\n')
				theirsBuf.WriteString(line)
				theirsBuf.WriteByte('\n')
			case sectMine:
				mineBuf.WriteString(line)
				mineBuf.WriteByte('\n')
			case sectTheirs:
				theirsBuf.WriteString(line)
				theirsBuf.WriteByte('\n')
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, 0, err
	}
	if section != sectCommon {
		return nil, nil, 0, fmt.Errorf("unterminated conflict section")
	}
	return mineBuf.Bytes(), theirsBuf.Bytes(), conflicts, nil
}

// OpenConflict splits a conflict-marked file into a two-pane compare:
// an editable "mine" pane backed by a temp copy, and a read-only
// "theirs" pane. The original file is left untouched.
func (d *Dispatcher) OpenConflict(path string, p params.OpenParams) (*ViewHandle, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.PathNotFound(path)
	}
	mine, theirs, conflicts, err := splitConflict(content)
	if err != nil {
		return nil, errors.E(errors.Op("dispatch.OpenConflict"), errors.KindInvalid, path, err)
	}
	if conflicts == 0 {
		return nil, errors.E(errors.Op("dispatch.OpenConflict"), errors.KindInvalid,
			fmt.Sprintf("%s has no conflict markers", path))
	}

	base := filepath.Base(path)
	req := &params.OpenRequest{
		TargetKind: doc.KindFile,
		Params:     p,
		Items: []params.Item{
			{
				Location:    "untitled:" + base + ".theirs",
				Buffer:      theirs,
				Description: "Theirs: " + base,
				Flags:       doc.FlagReadOnly,
			},
			{
				Location:    "untitled:" + base + ".mine",
				Buffer:      mine,
				Description: "Mine: " + base,
			},
		},
	}
	handle, err := d.Dispatch(req)
	if err != nil {
		return nil, err
	}
	if d.recents != nil {
		d.recents.AddRecent(RecentConflicts, doc.NormalizeLocation(path), 0)
	}
	return handle, nil
}
