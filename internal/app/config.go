package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write persisted configuration",
	Long: `Read and write hostguard's persisted configuration, stored in the same
database as the baseline. Values survive across scans; last write wins.

Known keys:
  alert_endpoint   HTTPS endpoint alerts are POSTed to`,
	Example: `  # Point alerts at a webhook
  hostguard config set alert_endpoint https://example.org/hooks/hostguard

  # Show the configured endpoint
  hostguard config get alert_endpoint`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		value, ok, err := st.GetConfig(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("config key %q is not set", args[0])
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.SetConfig(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("✓ %s set\n", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	RootCmd.AddCommand(configCmd)
}
