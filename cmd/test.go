package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/portsync/backend"
	"github.com/s0up4200/portsync/config"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to the torrent client",
	Long: `Authenticate against the configured torrent client and, where the
backend supports it, show the listening port it currently uses.`,
	PreRunE: initializeApp(config.RequireBackend),
	RunE:    runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	client, err := backend.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", cfg.Backend, err)
	}
	defer client.Close()

	fmt.Fprintf(out, "Testing connection to %s...\n", client.Name())

	if !newExecutor(nil).Run(ctx, "authenticate", client.Authenticate) {
		printFailure(out, "Authentication failed")
		return fmt.Errorf("could not authenticate with %s", client.Name())
	}
	printSuccess(out, "Connection successful!")

	reader, ok := client.(backend.PortReader)
	if !ok {
		printField(out, "Port", "not reported by this backend")
		return nil
	}

	port, err := reader.ListenPort(ctx)
	if err != nil {
		return fmt.Errorf("failed to read listening port: %w", err)
	}
	printField(out, "Port", port)

	return nil
}
