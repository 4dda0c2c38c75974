package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vsariola/modsynth/rpc"
)

var remoteAddress string

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Get, set or list the ports of a running modsynth serve",
	Long: `Remote talks to the rpc server of modsynth serve. Ports are addressed by
name or by specifier.

Example:
  modsynth remote set volume 0.5
  modsynth remote list env-0-
`,
}

var remoteGetCmd = &cobra.Command{
	Use:   "get PORT",
	Short: "Print the value of a port",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return withClient(func(client *rpc.Client) error {
			v, err := client.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), v)
			return nil
		})
	},
}

var remoteSetCmd = &cobra.Command{
	Use:   "set PORT VALUE",
	Short: "Set a port, clamped to its bounds, and print the value stored",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		return withClient(func(client *rpc.Client) error {
			stored, err := client.Set(args[0], value)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), stored)
			return nil
		})
	},
}

var remoteListCmd = &cobra.Command{
	Use:   "list [PREFIX]",
	Short: "List the ports whose names start with PREFIX",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		var prefix string
		if len(args) > 0 {
			prefix = args[0]
		}
		return withClient(func(client *rpc.Client) error {
			infos, err := client.List(prefix)
			if err != nil {
				return err
			}
			for _, info := range infos {
				fmt.Fprintf(c.OutOrStdout(), "%-40s %10.3f  [%v, %v] %s\n", info.Specifier, info.Value, info.Lower, info.Upper, info.Unit)
			}
			return nil
		})
	},
}

func init() {
	remoteCmd.PersistentFlags().StringVarP(&remoteAddress, "address", "a", "localhost"+rpc.DefaultAddress, "Address of the rpc server.")
	remoteCmd.AddCommand(remoteGetCmd, remoteSetCmd, remoteListCmd)
	rootCmd.AddCommand(remoteCmd)
}

func withClient(f func(client *rpc.Client) error) error {
	client, err := rpc.Dial(remoteAddress)
	if err != nil {
		return err
	}
	defer client.Close()
	return f(client)
}
