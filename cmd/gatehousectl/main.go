// Command gatehousectl administers a running gatehouse server over its
// HTTP API: registering targets and actors, maintaining roles and groups,
// managing policy rules, and issuing test check requests.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/pkg/config"
)

var (
	serverHost string
	serverPort int
)

func main() {
	root := &cobra.Command{
		Use:           "gatehousectl",
		Short:         "Administer a gatehouse policy server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&serverHost, "host", "localhost", "gatehouse server host")
	root.PersistentFlags().IntVar(&serverPort, "port", config.DefaultPort, "gatehouse server port")

	root.AddCommand(
		newTargetCommand(),
		newActorCommand(),
		newRoleCommand(),
		newGroupCommand(),
		newPolicyCommand(),
		newCheckCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gatehousectl: %v\n", err)
		os.Exit(1)
	}
}
