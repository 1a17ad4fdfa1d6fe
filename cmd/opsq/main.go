package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessella/opsq/cmd/opsq/commands"
	"github.com/tessella/opsq/config"
	"github.com/tessella/opsq/logger"
)

var (
	flagVerbose int
	flagJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "opsq",
	Short: "opsq - natural-language operational queries",
	Long: `opsq resolves natural-language questions about stock, purchasing, and
sales into validated SQL queries over the operational database.

Questions may be asked in Chinese or English. When a question is missing a
required condition, opsq asks for it instead of guessing.

Examples:
  opsq ask "查詢 W01 倉庫的庫存"          # Compile a stock query
  opsq ask -i "上月進貨多少"              # Interactive clarification loop
  opsq ask -e "哪些料件缺貨"              # Compile and execute
  opsq catalog show                       # Show the active schema catalog
  opsq catalog validate my-catalog.yaml   # Check a catalog document
  opsq db init                            # Create schema and demo data`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		jsonOutput := flagJSON || cfg.Log.JSON
		verbosity := flagVerbose
		if verbosity == 0 {
			verbosity = cfg.Log.Verbosity
		}
		return logger.Initialize(jsonOutput, logger.VerbosityToLevel(verbosity))
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "Increase diagnostic verbosity (-v, -vv)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.AskCmd)
	rootCmd.AddCommand(commands.CatalogCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
