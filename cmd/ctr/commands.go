package ctr

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value of a counter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("value must be a number: %w", err)
			}
			if err := rpcStore.Upsert(key, value); err != nil {
				return err
			} else {
				fmt.Println("set successfully")
			}
			return nil
		},
	}
	setnxCmd = &cobra.Command{
		Use:   "setnx [key] [value]",
		Short: "Sets the value of a counter if it does not exist yet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("value must be a number: %w", err)
			}
			if err := rpcStore.UpsertIfAbsent(key, value); err != nil {
				return err
			} else {
				fmt.Println("setnx successfully")
			}
			return nil
		},
	}
	incCmd = &cobra.Command{
		Use:   "inc [key] [delta]",
		Short: "Atomically adds a delta to a counter and returns the new value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			delta, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("delta must be a number: %w", err)
			}
			if value, found, err := rpcStore.IncrementAndGet(key, delta); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, value=%d\n", key, found, value)
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value of a counter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if value, found, err := rpcStore.Find(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, value=%d\n", key, found, value)
			}
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a counter exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if found, err := rpcStore.Has(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v\n", key, found)
			}
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a counter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := rpcStore.Delete(key); err != nil {
				return err
			} else {
				fmt.Println("delete successfully")
			}
			return nil
		},
	}
)
