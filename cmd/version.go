package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/spigell/gig-hunter/cmd.version=v0.3.0 -X github.com/spigell/gig-hunter/cmd.commit=$(git rev-parse --short HEAD) -X github.com/spigell/gig-hunter/cmd.buildDate=$(date -u +%FT%TZ)"
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// BuildInfo is what `gig-hunter version` reports.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func buildInfo() BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s, %s %s)", app, b.Version, b.Commit, b.BuildDate, b.GoVersion, b.Platform)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build metadata",
	RunE: func(_ *cobra.Command, _ []string) error {
		info := buildInfo()
		if viper.GetBool("json") {
			return json.NewEncoder(os.Stdout).Encode(info)
		}
		fmt.Println(info)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
