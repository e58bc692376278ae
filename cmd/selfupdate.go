package cmd

import (
	"errors"
	"fmt"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const githubRepoSlug = "s0up4200/portsync"

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update portsync to the latest release",
		Long: `Checks for the latest release of portsync on GitHub and replaces the
running binary when a newer version is available.`,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	current := rootCmd.Version
	if current == "" || current == "dev" {
		return errors.New("cannot self-update a development version")
	}
	if _, err := semver.ParseTolerant(current); err != nil {
		return fmt.Errorf("cannot self-update unparsable version %q: %w", current, err)
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(githubRepoSlug))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", githubRepoSlug)
	}

	if latest.LessOrEqual(current) {
		printSuccess(out, fmt.Sprintf("Already up to date (%s)", current))
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}

	fmt.Fprintf(out, "Updating %s to %s...\n", current, latest.Version())
	if err := selfupdate.DefaultUpdater().UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	printSuccess(out, fmt.Sprintf("Updated to %s", latest.Version()))
	return nil
}
