package ctr

import (
	"github.com/ValentinKolb/dSEQ/cmd/util"
	"github.com/ValentinKolb/dSEQ/lib/store"
	"github.com/ValentinKolb/dSEQ/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcStore store.ICounterStore

	// CounterCommands represents the ctr command group
	CounterCommands = &cobra.Command{
		Use:               "ctr",
		Short:             "Perform raw counter store operations",
		PersistentPreRunE: setupCtrClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the ctr command
	util.SetupRPCClientFlags(CounterCommands)

	// Set default shard ID for counter operations
	CounterCommands.PersistentFlags().Int("shard", 100, util.WrapString("ID of the shard to connect to"))

	// Add subcommands
	CounterCommands.AddCommand(setCmd)
	CounterCommands.AddCommand(setnxCmd)
	CounterCommands.AddCommand(incCmd)
	CounterCommands.AddCommand(getCmd)
	CounterCommands.AddCommand(hasCmd)
	CounterCommands.AddCommand(delCmd)
}

// setupCtrClient initializes the RPC counter store client
func setupCtrClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	shardId := util.GetShardID()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the counter store client
	rpcStore, err = client.NewRPCCounterStore(
		shardId,
		*config,
		t,
		s,
	)

	return err
}
