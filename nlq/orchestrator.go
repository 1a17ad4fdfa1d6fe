// Package nlq is the end-to-end turn handler of the resolution pipeline:
// resolve an utterance, stop for clarification when the analysis is
// incomplete, compile and render otherwise, and optionally execute against
// a configured backend.
package nlq

import (
	"context"

	"github.com/tessella/opsq/errors"
	"github.com/tessella/opsq/logger"
	"github.com/tessella/opsq/nlq/catalog"
	"github.com/tessella/opsq/nlq/compile"
	"github.com/tessella/opsq/nlq/resolve"
	"github.com/tessella/opsq/nlq/types"
)

// Status is the terminal state of one turn.
type Status string

const (
	// StatusClarification means the turn ended awaiting answers; not an
	// error. Re-invoke with the answers merged into priorContext.
	StatusClarification Status = "clarification"
	// StatusCompiled means a query was compiled (and executed, when a
	// backend is configured).
	StatusCompiled Status = "compiled"
	// StatusError means compilation or execution failed.
	StatusError Status = "error"
)

// Turn states, logged as the pipeline advances.
const (
	stateStart              = "START"
	stateExtracted          = "EXTRACTED"
	stateNeedsClarification = "NEEDS_CLARIFICATION"
	stateValidated          = "VALIDATED"
	stateCompiled           = "COMPILED"
	stateExecuting          = "EXECUTING"
	stateDone               = "DONE"
	stateFailed             = "FAILED"
)

// ExecutionBackend runs a rendered query. The pipeline itself never
// executes queries; this is the seam the surrounding service plugs into.
type ExecutionBackend interface {
	Execute(ctx context.Context, query string, args []any) (*types.ResultSet, error)
}

// TurnResult is the outcome of one ResolveAndCompile call.
type TurnResult struct {
	TurnID   string                  `json:"turn_id"`
	Status   Status                  `json:"status"`
	Analysis *types.SemanticAnalysis `json:"analysis"`
	Query    *types.CompiledQuery    `json:"query,omitempty"`
	SQL      string                  `json:"sql,omitempty"`
	Args     []any                   `json:"args,omitempty"`
	Rows     *types.ResultSet        `json:"rows,omitempty"`
	Err      error                   `json:"-"`
}

// Orchestrator wires resolver and compiler over one shared catalog.
type Orchestrator struct {
	resolver *resolve.Resolver
	compiler *compile.Compiler
	backend  ExecutionBackend
}

// NewOrchestrator builds an orchestrator without an execution backend;
// turns stop at the rendered query.
func NewOrchestrator(cat *catalog.Catalog) *Orchestrator {
	return &Orchestrator{
		resolver: resolve.New(cat),
		compiler: compile.New(cat),
	}
}

// WithBackend attaches an execution backend. Compiled turns then carry rows.
func (o *Orchestrator) WithBackend(backend ExecutionBackend) *Orchestrator {
	o.backend = backend
	return o
}

// ResolveAndCompile handles one turn. A clarification outcome is terminal
// for the turn, not an error; compile failure after a clean analysis points
// at catalog misconfiguration and is reported as StatusError.
func (o *Orchestrator) ResolveAndCompile(ctx context.Context, text string, priorContext map[string]string) (*TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "turn cancelled")
	}

	logger.Logger.Debugw("turn started", logger.FieldState, stateStart, logger.FieldQuery, text)

	analysis := o.resolver.Analyze(text, priorContext)
	result := &TurnResult{TurnID: analysis.TurnID, Analysis: analysis}

	if analysis.NeedsClarification {
		result.Status = StatusClarification
		o.logState(result, stateNeedsClarification)
		return result, nil
	}
	o.logState(result, stateExtracted)
	o.logState(result, stateValidated)

	query, err := o.compiler.Compile(analysis)
	if err != nil {
		return o.fail(result, errors.WithHint(err,
			"a validated analysis failed to compile; check the catalog for misconfiguration"))
	}
	result.Query = query
	o.logState(result, stateCompiled)

	sql, args, err := compile.RenderSQLite(query)
	if err != nil {
		return o.fail(result, err)
	}
	result.SQL = sql
	result.Args = args

	if o.backend != nil {
		o.logState(result, stateExecuting)
		rows, err := o.backend.Execute(ctx, sql, args)
		if err != nil {
			return o.fail(result, errors.Wrap(err, "execute query"))
		}
		result.Rows = rows
	}

	result.Status = StatusCompiled
	o.logState(result, stateDone)
	return result, nil
}

func (o *Orchestrator) fail(result *TurnResult, err error) (*TurnResult, error) {
	result.Status = StatusError
	result.Err = err
	o.logState(result, stateFailed)
	logger.Logger.Errorw("turn failed",
		logger.FieldTurnID, result.TurnID,
		logger.FieldError, err,
	)
	return result, err
}

func (o *Orchestrator) logState(result *TurnResult, state string) {
	logger.Logger.Debugw("turn state",
		logger.FieldTurnID, result.TurnID,
		logger.FieldIntent, result.Analysis.Intent,
		logger.FieldState, state,
	)
}
