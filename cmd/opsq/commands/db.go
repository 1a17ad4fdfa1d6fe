package commands

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tessella/opsq/config"
	"github.com/tessella/opsq/db"
	"github.com/tessella/opsq/logger"
	"github.com/tessella/opsq/storage"
)

var dbPath string

// DbCmd groups database operations.
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the operational database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the schema and load demo data",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}

		database, err := db.OpenWithMigrations(path, logger.Logger)
		if err != nil {
			return err
		}
		defer database.Close()

		backend := storage.NewSQLBackend(database)
		if err := backend.SeedDemo(context.Background()); err != nil {
			return err
		}

		pterm.Success.Printf("Database initialized at %s\n", path)
		return nil
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts per operational table",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}

		database, err := db.Open(path, logger.Logger)
		if err != nil {
			return err
		}
		defer database.Close()

		data := pterm.TableData{{"Table", "Rows"}}
		for _, table := range []string{
			"item_master", "warehouse_master", "inv_stock", "po_receipts", "so_shipments",
		} {
			var count int
			if err := database.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
				return err
			}
			data = append(data, []string{table, fmt.Sprint(count)})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return nil
	},
}

func init() {
	DbCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (overrides configuration)")
	DbCmd.AddCommand(dbInitCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return config.GetDatabasePath()
}
