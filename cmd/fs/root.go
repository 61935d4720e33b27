package fs

import (
	"github.com/spotify/snakebite/cmd/util"
	"github.com/spotify/snakebite/rpc/client"
	"github.com/spotify/snakebite/rpc/common"
	"github.com/spotify/snakebite/rpc/transport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	fsClient *client.Client

	// FsCommands represents the filesystem command group
	FsCommands = &cobra.Command{
		Use:               "fs",
		Short:             "Perform filesystem operations against the NameNode",
		PersistentPreRunE: setupFsClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Finalizers run even when a command returns an error, unlike the
	// PersistentPostRun hooks.
	cobra.OnFinalize(teardownFsClient)

	// Add common NameNode connection flags to the fs command
	util.SetupRPCClientFlags(FsCommands)

	// Add subcommands
	FsCommands.AddCommand(lsCmd)
	FsCommands.AddCommand(mkdirCmd)
	FsCommands.AddCommand(rmCmd)
	FsCommands.AddCommand(rmdirCmd)
	FsCommands.AddCommand(mvCmd)
	FsCommands.AddCommand(chmodCmd)
	FsCommands.AddCommand(chownCmd)
	FsCommands.AddCommand(chgrpCmd)
	FsCommands.AddCommand(setrepCmd)
	FsCommands.AddCommand(statCmd)
	FsCommands.AddCommand(dfCmd)
	FsCommands.AddCommand(duCmd)
	FsCommands.AddCommand(countCmd)
	FsCommands.AddCommand(serverDefaultsCmd)
	FsCommands.AddCommand(testCmd)
	FsCommands.AddCommand(touchzCmd)
}

// setupFsClient initializes the NameNode client
func setupFsClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := common.SetLogLevel(viper.GetString("log-level")); err != nil {
		return err
	}

	config, err := util.GetClientConfig()
	if err != nil {
		return err
	}

	fsClient, err = client.New(*config, transport.NewTCPConnector())
	return err
}

func teardownFsClient() {
	if fsClient != nil {
		_ = fsClient.Close()
		fsClient = nil
	}
}
