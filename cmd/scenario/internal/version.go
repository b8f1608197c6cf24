package internal

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of scenario",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "could not read build info")
				return
			}
			v, err := versionFromBuildInfo(info)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
		},
	}
}

func versionFromBuildInfo(info *debug.BuildInfo) (string, error) {
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v, nil
	}

	settings := make(map[string]string)
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	revision, at := settings["vcs.revision"], settings["vcs.time"]
	if revision == "" && at == "" {
		return "", errors.New("version information is not available")
	}

	// https://go.dev/ref/mod#pseudo-versions
	v := "v0.0.0-"
	if t, err := time.Parse(time.RFC3339, at); err == nil {
		v += t.UTC().Format("20060102150405") + "-"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	v += revision
	if settings["vcs.modified"] == "true" {
		v += "+dirty"
	}
	return v, nil
}
