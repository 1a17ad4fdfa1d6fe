package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tessella/opsq/config"
	"github.com/tessella/opsq/db"
	"github.com/tessella/opsq/errors"
	"github.com/tessella/opsq/logger"
	"github.com/tessella/opsq/nlq"
	"github.com/tessella/opsq/nlq/extract"
	"github.com/tessella/opsq/nlq/types"
	"github.com/tessella/opsq/storage"
)

var (
	askInteractive bool
	askExecute     bool
	askDBPath      string
)

// AskCmd resolves a natural-language question into a query.
var AskCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Resolve a question into a validated query",
	Long: `Resolve a natural-language question into a validated SQL query.

Without flags the compiled SQL is printed. With --interactive, missing
conditions are asked for on the terminal and the question is re-resolved
with the answers. With --execute, the query runs against the database and
the rows are printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	AskCmd.Flags().BoolVarP(&askInteractive, "interactive", "i", false, "Ask for missing conditions on the terminal")
	AskCmd.Flags().BoolVarP(&askExecute, "execute", "e", false, "Execute the compiled query against the database")
	AskCmd.Flags().StringVar(&askDBPath, "db", "", "Database path (overrides configuration)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cat, watcher, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	if watcher != nil {
		defer watcher.Stop()
	}

	orchestrator := nlq.NewOrchestrator(cat)
	if askExecute {
		path := askDBPath
		if path == "" {
			path = cfg.Database.Path
		}
		database, err := db.OpenWithMigrations(path, logger.Logger)
		if err != nil {
			return err
		}
		defer database.Close()
		orchestrator = orchestrator.WithBackend(storage.NewSQLBackend(database))
	}

	turnContext := map[string]string{}
	for {
		result, err := orchestrator.ResolveAndCompile(ctx, question, turnContext)
		if err != nil {
			printDiagnostics(err)
			return err
		}

		if result.Status == nlq.StatusClarification {
			if !askInteractive {
				printClarifications(result.Analysis.Clarifications)
				return nil
			}
			if err := collectAnswers(result.Analysis.Clarifications, turnContext); err != nil {
				return err
			}
			continue
		}

		printCompiled(result)
		return nil
	}
}

func printClarifications(clarifications []types.ClarificationRequest) {
	pterm.Warning.Println("More information is needed before this question can be compiled:")
	for _, c := range clarifications {
		pterm.Printf("  %s\n", c.Prompt)
		if len(c.Suggestions) > 0 {
			pterm.Printf("    e.g. %s\n", strings.Join(c.Suggestions, ", "))
		}
	}
	pterm.Info.Println("Re-run with --interactive to answer on the terminal.")
}

func collectAnswers(clarifications []types.ClarificationRequest, turnContext map[string]string) error {
	reader := bufio.NewScanner(os.Stdin)
	for _, c := range clarifications {
		pterm.Println()
		pterm.Info.Println(c.Prompt)
		if len(c.Suggestions) > 0 {
			pterm.Printf("  e.g. %s\n", strings.Join(c.Suggestions, ", "))
		}
		pterm.Print("> ")
		if !reader.Scan() {
			return errors.Wrap(errors.ErrInvalidRequest, "input closed before all answers were given")
		}
		answer := strings.TrimSpace(reader.Text())
		if answer == "" {
			return errors.Wrap(errors.ErrInvalidRequest, "empty answer")
		}
		turnContext[string(c.Field)] = normalizeAnswer(c.Field, answer)
	}
	return nil
}

// answerExtractors re-parse clarification answers with the same rules used
// on whole questions, so "主倉庫" and "W01" both normalize to a code.
var answerExtractors = map[types.FieldKind]extract.Extractor{
	types.FieldWarehouse:  extract.NewWarehouseExtractor(),
	types.FieldMaterialID: extract.NewMaterialExtractor(),
	types.FieldCategory:   extract.NewCategoryExtractor(),
	types.FieldTime:       extract.NewTimeExtractor(),
}

var lastNDaysPattern = regexp.MustCompile(`(?i)(?:last|past)\s*([0-9]+)\s*days|最近([0-9]+)天`)

func normalizeAnswer(field types.FieldKind, answer string) string {
	if field == types.FieldTime {
		if m := lastNDaysPattern.FindStringSubmatch(answer); m != nil {
			digits := m[1]
			if digits == "" {
				digits = m[2]
			}
			if n, err := strconv.Atoi(digits); err == nil && n > 0 {
				today := time.Now()
				tv := types.TimeValue{
					Kind:  types.TimeRange,
					Start: today.AddDate(0, 0, -n).Format("2006-01-02"),
					End:   today.Format("2006-01-02"),
				}
				return tv.Encode()
			}
		}
	}
	if ex, ok := answerExtractors[field]; ok {
		if match := ex.Extract(extract.NewInput(answer)); match != nil {
			return match.Value
		}
	}
	return extract.Normalize(answer)
}

func printCompiled(result *nlq.TurnResult) {
	pterm.Success.Printf("Intent: %s\n", result.Analysis.Intent)
	if result.Analysis.Complexity == types.ComplexityComplex {
		pterm.Warning.Println("This question looks analytical; the compiled query covers its simple reading.")
	}
	pterm.Println()
	pterm.Println(result.SQL)
	if len(result.Args) > 0 {
		pterm.Printf("-- args: %v\n", result.Args)
	}

	if result.Rows != nil {
		pterm.Println()
		renderRows(result.Rows)
	}
}

func renderRows(rows *types.ResultSet) {
	if rows.Len() == 0 {
		pterm.Info.Println("No rows matched.")
		return
	}

	data := pterm.TableData{rows.Columns}
	for _, row := range rows.Rows {
		cells := make([]string, len(row))
		for i, value := range row {
			cells[i] = fmt.Sprint(value)
		}
		data = append(data, cells)
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Printf("%d row(s)\n", rows.Len())
}

func printDiagnostics(err error) {
	pterm.Error.Println(err.Error())
	for _, detail := range errors.GetAllDetails(err) {
		pterm.Printf("  detail: %s\n", detail)
	}
	for _, hint := range errors.GetAllHints(err) {
		pterm.Printf("  hint: %s\n", hint)
	}
}
