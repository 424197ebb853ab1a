/*
CommitPanel - review and commit LLM-generated commit messages
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/huimingz/commitpanel/internal/cli"
)

// Version information (injected at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func buildVersion() string {
	if GitCommit == "unknown" {
		return Version
	}
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, BuildTime)
}

func main() {
	cli.SetVersionInfo(Version, GitCommit, BuildTime)
	if err := fang.Execute(context.Background(), cli.Root(),
		fang.WithVersion(buildVersion()),
		fang.WithErrorHandler(cli.ErrorHandler),
	); err != nil {
		os.Exit(1)
	}
}
