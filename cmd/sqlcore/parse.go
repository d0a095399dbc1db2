package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ha1tch/sqlcore/ast"
	"github.com/ha1tch/sqlcore/config"
	"github.com/ha1tch/sqlcore/lexer"
	"github.com/ha1tch/sqlcore/parser"
)

var errStatementFailed = errors.New("one or more statements failed to parse")

type parseOptions struct {
	jsonOutput bool
	useColor   bool
	maxDepth   int
	maxErrors  int
	dialect    config.Dialect
}

var parseCmd = &cobra.Command{
	Use:   "parse [file ...]",
	Short: "Parse one or more SQL scripts",
	Long:  "Parse each file (or stdin if none is given) as a `;`-separated script, printing one outcome per statement.",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadParseOptions(cmd)
		if err != nil {
			return err
		}

		sources, err := readSources(args)
		if err != nil {
			return err
		}

		anyFailed := false
		for _, src := range sources {
			if runParse(cmd, src, opts) {
				anyFailed = true
			}
		}
		if anyFailed {
			return errStatementFailed
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().Bool("json", false, "emit ast.DumpJSON instead of a colorized text dump")
	parseCmd.Flags().Int("max-depth", config.DefaultMaxDepth, "maximum expression/statement nesting depth")
	parseCmd.Flags().Int("max-errors", config.DefaultMaxErrors, "maximum recorded failures before a script stops")
	parseCmd.Flags().String("dialect", "ansi", `SQL dialect: "ansi" or "extended"`)

	rootCmd.AddCommand(parseCmd)
}

func loadParseOptions(cmd *cobra.Command) (parseOptions, error) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	maxErrors, _ := cmd.Flags().GetInt("max-errors")
	dialectFlag, _ := cmd.Flags().GetString("dialect")

	dialect, err := parseDialect(dialectFlag)
	if err != nil {
		return parseOptions{}, err
	}

	return parseOptions{
		jsonOutput: jsonOutput,
		useColor:   resolveColor(cmd),
		maxDepth:   maxDepth,
		maxErrors:  maxErrors,
		dialect:    dialect,
	}, nil
}

func parseDialect(s string) (config.Dialect, error) {
	switch s {
	case "ansi", "":
		return config.DialectANSI, nil
	case "extended":
		return config.DialectExtended, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q (want \"ansi\" or \"extended\")", s)
	}
}

// namedSource pairs a script's text with a label used in diagnostics;
// "stdin" when no files are given on the command line.
type namedSource struct {
	name string
	text string
}

func readSources(paths []string) ([]namedSource, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "read stdin")
		}
		return []namedSource{{name: "stdin", text: string(data)}}, nil
	}

	sources := make([]namedSource, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read %q", path)
		}
		sources = append(sources, namedSource{name: path, text: string(data)})
	}
	return sources, nil
}

// runParse parses one source as a script and prints its outcomes,
// reporting whether any statement in it failed.
func runParse(cmd *cobra.Command, src namedSource, opts parseOptions) bool {
	entry := log.WithField("source", src.name)
	cfg := config.New(
		config.WithMaxDepth(opts.maxDepth),
		config.WithMaxErrors(opts.maxErrors),
		config.WithDialect(opts.dialect),
		config.WithLogger(entry),
	)

	lx := lexer.New(src.text)
	p := parser.NewWithConfig(lx, src.text, cfg)
	result := p.ParseScript()

	for _, stmt := range result.Statements {
		printNode(cmd, src.name, stmt, opts)
	}
	for _, failure := range result.Failures {
		entry.WithFields(logrus.Fields{
			"kind":   failure.Kind,
			"offset": failure.Offset,
		}).Error(failure.Error())
		cmd.PrintErrf("%s: %s\n", src.name, failure.Error())
	}

	return len(result.Failures) > 0
}

func printNode(cmd *cobra.Command, sourceName string, n *ast.Node, opts parseOptions) {
	if opts.jsonOutput {
		data, err := ast.DumpJSON(n)
		if err != nil {
			cmd.PrintErrf("%s: dump json: %s\n", sourceName, err)
			return
		}
		cmd.Println(string(data))
		return
	}
	ast.DumpText(cmd.OutOrStdout(), n, opts.useColor)
}
