package main

import (
	"fmt"
	"os"

	"github.com/Arkiver2/pyroTorrent/pkg/pyroclient"
	"github.com/function61/gokit/dynversion"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     os.Args[0],
		Short:   "Query and control rtorrent daemons over XML-RPC",
		Version: dynversion.Version,
	}

	for _, entrypoint := range pyroclient.Entrypoints() {
		rootCmd.AddCommand(entrypoint)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
