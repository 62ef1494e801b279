package seq

import (
	"github.com/ValentinKolb/dSEQ/cmd/util"
	"github.com/ValentinKolb/dSEQ/lib/counter"
	"github.com/ValentinKolb/dSEQ/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcSeq counter.ISequenceCounter

	// SequenceCommands represents the seq command group
	SequenceCommands = &cobra.Command{
		Use:               "seq",
		Short:             "Perform sequence operations",
		PersistentPreRunE: setupSeqClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the seq command
	util.SetupRPCClientFlags(SequenceCommands)

	// Set default shard ID for sequence operations
	SequenceCommands.PersistentFlags().Int("shard", 100, util.WrapString("ID of the shard to connect to"))

	// Counter configuration
	SequenceCommands.PersistentFlags().String("namespace", counter.DefaultOptions().Namespace, util.WrapString("Namespace the sequences live in"))
	SequenceCommands.PersistentFlags().Int64("step", counter.DefaultOptions().Step, util.WrapString("Step size for generated ids"))

	// Add subcommands
	SequenceCommands.AddCommand(nextCmd)
	SequenceCommands.AddCommand(initCmd)
	SequenceCommands.AddCommand(existsCmd)
	SequenceCommands.AddCommand(perfTestCmd)
}

// setupSeqClient initializes the RPC sequence counter client
func setupSeqClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	shardId := util.GetShardID()

	// Counter options from flags
	opts := counter.DefaultOptions()
	opts.Namespace = viper.GetString("namespace")
	opts.Step = viper.GetInt64("step")

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the sequence counter client
	rpcSeq, err = client.NewRPCSequenceCounter(
		shardId,
		opts,
		*config,
		t,
		s,
	)

	return err
}
