package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/talk-to-your-terms/tosapi/internal/cli"
	"github.com/talk-to-your-terms/tosapi/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tosd",
		Short: "ToS analysis daemon and admin CLI",
		Long:  "Daemon for running the analysis API server and exporting feedback datasets",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ExportCmd())
	rootCmd.AddCommand(admin.MigrateCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
