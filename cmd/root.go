package cmd

import (
	"fmt"
	"os"

	"github.com/spotify/snakebite/cmd/fs"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "snakebite",
		Short: "pure Go HDFS client",
		Long: fmt.Sprintf(`snakebite (v%s)

A client for the HDFS NameNode that speaks the Hadoop RPC protocol
directly, without a JVM or the hadoop binaries installed.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of snakebite",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("snakebite v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(fs.FsCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
