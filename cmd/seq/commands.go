package seq

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	nextCmd = &cobra.Command{
		Use:   "next [name]",
		Short: "Draws the next id from a sequence",
		Long:  "Draws the next id from the named sequence. The sequence is created on first use, starting at the default initial value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if id, err := rpcSeq.GenerateID(name); err != nil {
				return err
			} else {
				fmt.Printf("name=%s, id=%d\n", name, id)
			}
			return nil
		},
	}
	initCmd = &cobra.Command{
		Use:   "init [name] [initialValue]",
		Short: "Sets the initial value of a sequence",
		Long:  "Sets the initial value of the named sequence. The next generated id will be initialValue plus the step size. Resets the sequence if it already exists.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			initialValue, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("initialValue must be a number: %w", err)
			}
			if err := rpcSeq.SetInitialValue(name, initialValue); err != nil {
				return err
			} else {
				fmt.Println("init successfully")
			}
			return nil
		},
	}
	existsCmd = &cobra.Command{
		Use:   "exists [name]",
		Short: "Checks if a sequence exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if found, err := rpcSeq.Exists(name); err != nil {
				return err
			} else {
				fmt.Printf("name=%s, exists=%v\n", name, found)
			}
			return nil
		},
	}
)
