package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/reelcheck/internal/catalog"
	"github.com/roach88/reelcheck/internal/ir"
	"github.com/roach88/reelcheck/internal/queryir"
	"github.com/roach88/reelcheck/internal/querysql"
)

// Session executes actor queries. *catalog.Session implements it.
type Session interface {
	Actors(ctx context.Context, q queryir.ActorQuery) ([]catalog.Actor, error)
	Close() error
}

// Acquirer opens the session a batch runs on.
type Acquirer func(ctx context.Context) (Session, error)

// FromCatalog adapts a catalog to an Acquirer.
func FromCatalog(c *catalog.Catalog) Acquirer {
	return func(ctx context.Context) (Session, error) {
		sess, err := c.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
	runID  string
	repeat int
}

// WithLogger sets the logger. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRunID fixes the run ID instead of generating a UUID.
func WithRunID(id string) Option {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithRepeat executes each scenario's query n times in total. A scenario
// whose result digest changes between executions fails.
func WithRepeat(n int) Option {
	return func(c *runConfig) {
		if n > 1 {
			c.repeat = n
		}
	}
}

// Run executes scenarios in order on one session and reports every outcome.
//
// The session is acquired before the first scenario and released on every
// exit path. Query and assertion failures are recorded on the scenario's
// Outcome and the batch continues. A failure to acquire the session is
// returned as an error together with a report whose outcomes are all NotRun;
// cancellation of ctx stops the batch the same way, leaving the remaining
// outcomes NotRun.
func Run(ctx context.Context, acquire Acquirer, scenarios []*Scenario, opts ...Option) (report *Report, err error) {
	cfg := &runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		repeat: 1,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}
	logger := cfg.logger.With("run_id", cfg.runID)

	report = &Report{RunID: cfg.runID, Total: len(scenarios)}
	for _, s := range scenarios {
		report.Outcomes = append(report.Outcomes, &Outcome{Name: s.Name, Note: s.Note, Status: StatusNotRun})
	}
	defer report.tally()

	sess, err := acquire(ctx)
	if err != nil {
		logger.Error("failed to acquire session", "error", err)
		return report, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn("failed to release session", "error", cerr)
			err = errors.Join(err, fmt.Errorf("release session: %w", cerr))
		}
	}()

	for i, s := range scenarios {
		if err := ctx.Err(); err != nil {
			logger.Warn("run cancelled", "remaining", len(scenarios)-i)
			return report, err
		}
		runScenario(ctx, sess, s, report.Outcomes[i], cfg.repeat, logger)
	}

	logger.Info("run finished", "total", report.Total)
	return report, nil
}

// runScenario drives one outcome from Running to Passed or Failed.
func runScenario(ctx context.Context, sess Session, s *Scenario, out *Outcome, repeat int, logger *slog.Logger) {
	out.Status = StatusRunning
	start := time.Now()
	defer func() {
		out.Duration = time.Since(start)
		out.finish()
		logger.Info("scenario finished",
			"scenario", s.Name,
			"status", out.Status.String(),
			"count", out.Count,
			"errors", len(out.Errors),
		)
	}()

	q, err := s.ActorQuery()
	if err != nil {
		out.addError(&QueryError{Scenario: s.Name, Stage: StageBuild, Err: err})
		return
	}

	v := queryir.Validate(q)
	out.Warnings = v.Warnings
	for _, w := range v.Warnings {
		logger.Warn("query warning", "scenario", s.Name, "warning", w)
	}
	if err := v.Err(); err != nil {
		out.addError(&QueryError{Scenario: s.Name, Stage: StageValidate, Err: err})
		return
	}

	actors, digest, err := execute(ctx, sess, q)
	if err != nil {
		out.addError(&QueryError{Scenario: s.Name, Stage: StageExecute, Err: err})
		return
	}
	out.Count = len(actors)
	out.Digest = digest
	out.Identities = identitiesOf(actors)

	for _, aerr := range EvaluateAssertions(s, q, actors) {
		out.addError(aerr)
	}

	for run := 2; run <= repeat; run++ {
		again, againDigest, err := execute(ctx, sess, q)
		if err != nil {
			out.addError(&QueryError{Scenario: s.Name, Stage: StageExecute, Err: fmt.Errorf("run %d: %w", run, err)})
			return
		}
		if againDigest != digest {
			out.addError(&AssertionError{
				Type:       AssertStable,
				Expected:   fmt.Sprintf("%d rows with digest %s", len(actors), digest),
				Actual:     fmt.Sprintf("run %d: %d rows with digest %s", run, len(again), againDigest),
				Identities: identitiesOf(again),
			})
			return
		}
	}
}

// execute runs q and fingerprints the result.
func execute(ctx context.Context, sess Session, q queryir.ActorQuery) ([]catalog.Actor, string, error) {
	actors, err := sess.Actors(ctx, q)
	if err != nil {
		return nil, "", err
	}
	rows := make([]ir.ResultRow, len(actors))
	for i, a := range actors {
		rows[i] = ir.ResultRow{ID: a.ID, Identity: a.Identity}
	}
	digest, err := ir.ResultDigest(rows)
	if err != nil {
		return nil, "", err
	}
	return actors, digest, nil
}

// Explanation is the compiled form of a scenario.
type Explanation struct {
	Scenario string   `json:"scenario"`
	Dialect  string   `json:"dialect"`
	SQL      string   `json:"sql"`
	Params   []any    `json:"params"`
	Joins    []string `json:"joins,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Explain compiles a scenario's query for a dialect without touching a
// database. Build and validation failures are returned as *QueryError.
func Explain(s *Scenario, d querysql.Dialect) (*Explanation, error) {
	q, err := s.ActorQuery()
	if err != nil {
		return nil, &QueryError{Scenario: s.Name, Stage: StageBuild, Err: err}
	}
	v := queryir.Validate(q)
	if err := v.Err(); err != nil {
		return nil, &QueryError{Scenario: s.Name, Stage: StageValidate, Err: err}
	}
	sql, params, err := querysql.NewSQLCompiler(d).Compile(q)
	if err != nil {
		return nil, &QueryError{Scenario: s.Name, Stage: StageExecute, Err: err}
	}

	var joins []string
	for _, e := range queryir.RequiredJoins(q) {
		joins = append(joins, string(e))
	}
	return &Explanation{
		Scenario: s.Name,
		Dialect:  d.String(),
		SQL:      sql,
		Params:   params,
		Joins:    joins,
		Warnings: v.Warnings,
	}, nil
}
