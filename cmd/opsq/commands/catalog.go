package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tessella/opsq/config"
	"github.com/tessella/opsq/nlq/catalog"
)

// CatalogCmd groups schema catalog operations.
var CatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate the schema catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(cfg.Catalog.Path)
		if err != nil {
			printDiagnostics(err)
			return err
		}

		source := cfg.Catalog.Path
		if source == "" {
			source = "(embedded)"
		}
		pterm.DefaultHeader.Printf("Catalog %s — schema %s", source, snap.Version)
		pterm.Println()

		tableData := pterm.TableData{{"Table", "Physical", "Columns"}}
		for name, table := range snap.Tables {
			tableData = append(tableData, []string{name, table.Locator, strings.Join(table.Columns, ", ")})
		}
		pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
		pterm.Println()

		intentData := pterm.TableData{{"Intent", "Primary", "Fields"}}
		for _, intent := range snap.Intents() {
			tmpl := snap.Templates[intent]
			intentData = append(intentData, []string{
				string(intent), tmpl.Table, strings.Join(tmpl.AllFields(), ", "),
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(intentData).Render()
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a catalog document",
	Long: `Parse and consistency-check a catalog document without loading it.

With no argument the configured catalog (or the embedded default) is
checked. All violations are reported with their location in the document.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else if cfg, err := config.Load(); err == nil {
			path = cfg.Catalog.Path
		}

		snap, err := loadSnapshot(path)
		if err != nil {
			pterm.Error.Println("Catalog is invalid")
			printDiagnostics(err)
			return err
		}

		pterm.Success.Printf("Catalog is valid (schema %s, %d tables, %d intents)\n",
			snap.Version, len(snap.Tables), len(snap.Templates))
		return nil
	},
}

func init() {
	CatalogCmd.AddCommand(catalogShowCmd)
	CatalogCmd.AddCommand(catalogValidateCmd)
}

func loadSnapshot(path string) (*catalog.Snapshot, error) {
	if path == "" {
		return catalog.LoadDefault()
	}
	return catalog.LoadFile(path)
}

// openCatalog builds the runtime catalog from configuration, optionally
// watching the source file for changes.
func openCatalog(cfg *config.Config) (*catalog.Catalog, *catalog.Watcher, error) {
	snap, err := loadSnapshot(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}
	cat := catalog.New(snap)

	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		watcher, err := catalog.NewWatcher(cfg.Catalog.Path, cat)
		if err != nil {
			return nil, nil, err
		}
		watcher.Start()
		return cat, watcher, nil
	}
	return cat, nil, nil
}
