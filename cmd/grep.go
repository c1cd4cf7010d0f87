package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bascanada/yategrep/pkg/config"
	"github.com/bascanada/yategrep/pkg/writer"
	"github.com/bascanada/yategrep/pkg/yategrep"
)

var (
	outputPath string
	dumpOnFlush bool
	xhtml       bool
	xhtmlDoc    bool
	contextSize int
	bufferSize  int
	noNetwork   bool

	followInput bool
	copyOutput  bool
	expandJSON  bool

	colorFlag bool
	noColor   bool

	configPath string
	savedQuery string
)

func registerGrepFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write output to PATH, truncating it (default stdout)")
	cmd.Flags().BoolVarP(&dumpOnFlush, "dump-on-flush", "D", false, "dump the correlation snapshot to stderr on every query flush")
	cmd.Flags().BoolVarP(&xhtml, "xhtml", "x", false, "emit each entry as an XHTML <pre> fragment")
	cmd.Flags().BoolVarP(&xhtmlDoc, "xhtml-document", "X", false, "like --xhtml, plus a full HTML document frame")
	cmd.Flags().IntVarP(&contextSize, "context", "C", 0, "show N entries of context before and after each match")
	cmd.Flags().IntVarP(&bufferSize, "buffer-size", "B", 300, "size of the rolling look-back buffer")
	cmd.Flags().BoolVarP(&noNetwork, "no-network", "N", false, "suppress correlation via network addresses")

	cmd.Flags().BoolVarP(&followInput, "follow", "f", false, "keep reading INPUT as it grows, like tail -f")
	cmd.Flags().BoolVarP(&copyOutput, "copy", "y", false, "copy the output file to the clipboard on success (only with --output)")
	cmd.Flags().BoolVar(&expandJSON, "expand-json", false, "pretty-print embedded JSON objects found in entry text")

	cmd.Flags().BoolVar(&colorFlag, "color", false, "force ANSI bold highlighting of marked entries")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI bold highlighting of marked entries")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default resolution order: $YATEGREP_CONFIG, ~/.yategrep/config.yaml)")
	cmd.Flags().StringVar(&savedQuery, "saved", "", "use a named query from the config file's queries map")
}

func runGrep(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	queryArg, inputArg, err := resolveQueryAndInput(args, cfg)
	if err != nil {
		return err
	}

	mode := writer.Plain
	switch {
	case xhtmlDoc:
		mode = writer.XHTMLDocument
	case xhtml:
		mode = writer.XHTML
	}

	if !cmd.Flags().Changed("buffer-size") {
		bufferSize = cfg.Defaults.BufferSize
	}
	if !cmd.Flags().Changed("context") {
		contextSize = cfg.Defaults.Context
	}
	if !cmd.Flags().Changed("no-network") {
		noNetwork = cfg.Defaults.NoNetwork
	}
	if !cmd.Flags().Changed("dump-on-flush") {
		dumpOnFlush = cfg.Defaults.DumpOnFlush
	}

	var colorOverride *bool
	switch {
	case colorFlag:
		v := true
		colorOverride = &v
	case noColor:
		v := false
		colorOverride = &v
	}

	return yategrep.Run(yategrep.Options{
		Query:       queryArg,
		Input:       inputArg,
		Output:      outputPath,
		BufferSize:  bufferSize,
		Context:     contextSize,
		NoNetwork:   noNetwork,
		DumpOnFlush: dumpOnFlush,
		Mode:        mode,
		Follow:      followInput,
		Copy:        copyOutput,
		ExpandJSON:  expandJSON,
		Color:       colorOverride,
	})
}

// resolveQueryAndInput reconciles the positional query/input arguments
// with --saved: a saved name supplies the query when no positional query
// was given, but an explicit positional query always wins.
func resolveQueryAndInput(args []string, cfg *config.Config) (query, input string, err error) {
	switch len(args) {
	case 0:
		if savedQuery == "" {
			return "", "", fmt.Errorf("%w: missing query argument", yategrep.ErrArgument)
		}
	case 1:
		query = args[0]
	case 2:
		query, input = args[0], args[1]
	}

	if query == "" {
		saved, ok := cfg.Queries[savedQuery]
		if !ok {
			return "", "", fmt.Errorf("%w: no saved query named %q", yategrep.ErrArgument, savedQuery)
		}
		query = saved
	}

	return query, input, nil
}
