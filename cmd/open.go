package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"collate/internal/doc"
	"collate/internal/params"
)

var openFlags struct {
	as            string
	line          int
	column        int
	fileExt       string
	saveAs        string
	delimiter     string
	quote         string
	quotedNewline bool
	address       int64
	startX        int
	startY        int
	binaryHint    bool
	recurse       bool
	hidden        []string
	descriptions  []string
	report        string
	leftReadonly  bool
	rightReadonly bool
	selfCompare   bool
}

var openCmd = &cobra.Command{
	Use:   "open <path> [path...]",
	Short: "Open a comparison",
	Long: `Opens a comparison of the given paths. The frame kind is classified
from the sources unless --as forces one. A single path opens a
self-compare: a snapshot of the file against its live content.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpen,
}

func init() {
	f := openCmd.Flags()
	f.StringVar(&openFlags.as, "as", "auto", "Frame kind: auto, text, table, binary, image, web, folder")
	f.IntVar(&openFlags.line, "line", 0, "Line to move the caret to (text)")
	f.IntVar(&openFlags.column, "column", 0, "Column to move the caret to (text)")
	f.StringVar(&openFlags.fileExt, "ext", "", "Extension hint for syntax handling (text)")
	f.StringVar(&openFlags.saveAs, "save-as", "", "Alternate path the merge result is saved to")
	f.StringVar(&openFlags.delimiter, "delimiter", "", "Field delimiter (table)")
	f.StringVar(&openFlags.quote, "quote", "", "Quote character (table)")
	f.BoolVar(&openFlags.quotedNewline, "quoted-newlines", false, "Allow newlines inside quoted fields (table)")
	f.Int64Var(&openFlags.address, "address", 0, "Start byte offset (binary)")
	f.IntVar(&openFlags.startX, "x", 0, "Start X position (image)")
	f.IntVar(&openFlags.startY, "y", 0, "Start Y position (image)")
	f.BoolVar(&openFlags.binaryHint, "binary-hint", false, "Classify unrecognized sources as binary (auto)")
	f.BoolVarP(&openFlags.recurse, "recurse", "r", false, "Recurse into subfolders (folder)")
	f.StringSliceVar(&openFlags.hidden, "hide", nil, "Item names hidden from the folder view (folder)")
	f.StringSliceVarP(&openFlags.descriptions, "desc", "d", nil, "Pane description, repeatable in pane order")
	f.StringVar(&openFlags.report, "report", "", "Write a comparison report to this path")
	f.BoolVar(&openFlags.leftReadonly, "left-readonly", false, "Open the first pane read-only")
	f.BoolVar(&openFlags.rightReadonly, "right-readonly", false, "Open the last pane read-only")
	f.BoolVar(&openFlags.selfCompare, "self", false, "Compare a snapshot of the file against its live content")
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	p, target, err := buildOpenParams(cmd)
	if err != nil {
		return err
	}

	ws, err := newWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	if openFlags.selfCompare || len(args) == 1 {
		handle, err := ws.disp.SelfCompare(args[0], p)
		if err != nil {
			return err
		}
		ws.model.QueueOpen(handle)
		return ws.Run()
	}

	req := &params.OpenRequest{
		TargetKind: target,
		ReportPath: openFlags.report,
		Params:     p,
	}
	if cmd.Flags().Changed("recurse") {
		recurse := openFlags.recurse
		req.Recurse = &recurse
	}
	for i, path := range args {
		item := params.Item{Location: path}
		if i < len(openFlags.descriptions) {
			item.Description = openFlags.descriptions[i]
		}
		if (i == 0 && openFlags.leftReadonly) || (i == len(args)-1 && openFlags.rightReadonly) {
			item.Flags |= doc.FlagReadOnly
		}
		if openFlags.binaryHint {
			item.Flags |= doc.FlagBinaryHint
		}
		req.Items = append(req.Items, item)
	}

	handle, err := ws.disp.Dispatch(req)
	if err != nil {
		return err
	}
	ws.model.QueueOpen(handle)
	return ws.Run()
}

// modeFlagKinds maps each mode flag to the --as values it is legal
// with. "auto" carries the union, so every mode flag is legal there.
var modeFlagKinds = map[string][]string{
	"line":            {"auto", "text", "table"},
	"column":          {"auto", "text", "table"},
	"ext":             {"auto", "text", "table"},
	"save-as":         {"auto", "text", "table", "binary", "image"},
	"delimiter":       {"auto", "table"},
	"quote":           {"auto", "table"},
	"quoted-newlines": {"auto", "table"},
	"address":         {"auto", "binary"},
	"x":               {"auto", "image"},
	"y":               {"auto", "image"},
	"hide":            {"auto", "folder"},
	"recurse":         {"auto", "folder"},
	"binary-hint":     {"auto"},
}

// checkModeFlags rejects mode flags that belong to a different frame
// kind than the one requested.
func checkModeFlags(cmd *cobra.Command, as string) error {
	for name, kinds := range modeFlagKinds {
		if !cmd.Flags().Changed(name) {
			continue
		}
		legal := false
		for _, k := range kinds {
			if k == as {
				legal = true
				break
			}
		}
		if !legal {
			return fmt.Errorf("--%s does not apply to --as %s", name, as)
		}
	}
	return nil
}

// buildOpenParams maps the mode flags onto a parameter record for the
// requested frame kind. Flags belonging to another kind are rejected up
// front rather than silently ignored.
func buildOpenParams(cmd *cobra.Command) (params.OpenParams, doc.Kind, error) {
	if err := checkModeFlags(cmd, openFlags.as); err != nil {
		return params.OpenParams{}, doc.KindOther, err
	}
	text := params.TextOptions{
		StartLine:   params.Unspecified,
		StartColumn: params.Unspecified,
		FileExt:     openFlags.fileExt,
		SaveAsPath:  openFlags.saveAs,
	}
	if cmd.Flags().Changed("line") {
		text.StartLine = openFlags.line
	}
	if cmd.Flags().Changed("column") {
		text.StartColumn = openFlags.column
	}

	var table params.TableOptions
	if openFlags.delimiter != "" {
		d := []rune(openFlags.delimiter)[0]
		table.Delimiter = &d
	}
	if openFlags.quote != "" {
		q := []rune(openFlags.quote)[0]
		table.Quote = &q
	}
	if cmd.Flags().Changed("quoted-newlines") {
		allow := openFlags.quotedNewline
		table.AllowNewlinesInQuotes = &allow
	}

	address := int64(params.Unspecified)
	if cmd.Flags().Changed("address") {
		address = openFlags.address
	}
	startX, startY := params.Unspecified, params.Unspecified
	if cmd.Flags().Changed("x") {
		startX = openFlags.startX
	}
	if cmd.Flags().Changed("y") {
		startY = openFlags.startY
	}

	switch openFlags.as {
	case "auto":
		return params.Auto(params.AutoOptions{
			Text:    text,
			Table:   table,
			Address: address,
			StartX:  startX,
			StartY:  startY,
		}), doc.KindOther, nil
	case "text":
		return params.Text(text), doc.KindFile, nil
	case "table":
		return params.Table(text, table), doc.KindTable, nil
	case "binary":
		return params.Binary(params.BinaryOptions{Address: address, SaveAsPath: openFlags.saveAs}), doc.KindHex, nil
	case "image":
		return params.Image(params.ImageOptions{StartX: startX, StartY: startY, SaveAsPath: openFlags.saveAs}), doc.KindImage, nil
	case "web":
		return params.Web(), doc.KindWebPage, nil
	case "folder":
		return params.Folder(params.FolderOptions{HiddenItems: openFlags.hidden}), doc.KindFolder, nil
	default:
		return params.OpenParams{}, doc.KindOther, fmt.Errorf("unknown frame kind %q", openFlags.as)
	}
}
