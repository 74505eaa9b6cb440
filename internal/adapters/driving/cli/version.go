package cli

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the reposcope version and build details",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionString reports the linked version, falling back to the module
// version recorded by `go install`, plus the VCS revision and toolchain.
func versionString() string {
	v := version
	info, ok := readBuildInfo()
	if !ok {
		return "reposcope " + v
	}
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}

	var details []string
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision != "" {
		if len(revision) > 7 {
			revision = revision[:7]
		}
		if dirty {
			revision += "-dirty"
		}
		details = append(details, revision)
	}
	if info.GoVersion != "" {
		details = append(details, info.GoVersion)
	}

	if len(details) == 0 {
		return "reposcope " + v
	}
	return "reposcope " + v + " (" + strings.Join(details, ", ") + ")"
}
