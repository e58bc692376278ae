package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/portsync/config"
	"github.com/s0up4200/portsync/filter"
	"github.com/s0up4200/portsync/vpnlog"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Show the forwarded port found in the VPN logs",
	Long: `Locate the newest log file, extract the forwarded port it announces and
evaluate the accept expression. The torrent client is not contacted.`,
	PreRunE: initializeApp(config.RequireLogs),
	RunE:    runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Checking logs in %s...\n", cfg.LogDir)

	file, err := newLocator().Latest()
	if err != nil {
		printFailure(out, "No log file found")
		return err
	}
	printField(out, "File", filepath.Base(file.Path))
	printField(out, "Modified", file.ModTime.Format(time.RFC3339))

	port, err := newExtractor().Extract(file.Path)
	if err != nil {
		if errors.Is(err, vpnlog.ErrNoAnnouncement) {
			printFailure(out, "No port announcement in the log tail")
			return nil
		}
		printFailure(out, "Could not read log file")
		return err
	}
	printField(out, "Port", port)

	guard, err := newGuard()
	if err != nil {
		return err
	}
	if guard == nil {
		printSuccess(out, fmt.Sprintf("Port %d would be applied", port))
		return nil
	}

	allowed, err := guard.Allow(filter.Candidate{
		Port:    port,
		File:    filepath.Base(file.Path),
		ModTime: file.ModTime,
	})
	if err != nil {
		printFailure(out, "Accept expression failed")
		return err
	}
	if !allowed {
		printFailure(out, fmt.Sprintf("Port %d rejected by %q", port, guard.String()))
		return nil
	}

	printSuccess(out, fmt.Sprintf("Port %d would be applied", port))
	return nil
}
