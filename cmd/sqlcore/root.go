// Command sqlcore is the external driver that sits on top of the parser
// core (spec §6 "CLI surface"): it owns file I/O, flag parsing, and
// output formatting, none of which the core package touches itself. The
// command tree follows the pack's one genuine cobra precedent,
// XTheocharis-crush's internal/cmd/tsaudit: a package-level *cobra.Command
// per subcommand, an init() that both defines flags and registers the
// command on rootCmd, and a small options struct populated by a
// loadXOptions helper so the parsing logic stays independently testable.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "sqlcore",
	Short: "Parse SQL scripts with the sqlcore parser core",
	Long:  "sqlcore drives the sqlcore parser core over files or stdin and prints one outcome per statement.",
}

func init() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colorized text output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveColor decides whether a command should colorize its output: an
// explicit --no-color always wins, otherwise color is used only when
// stdout looks like a TTY, matching spec §6's "auto-disabled when stdout
// is not a TTY" rule for the default text dump.
func resolveColor(cmd *cobra.Command) bool {
	noColor, _ := cmd.Flags().GetBool("no-color")
	if noColor {
		return false
	}
	return !color.NoColor
}
