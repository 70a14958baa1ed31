// Package flow turns user actions into requests against the sponsorship
// service and settles their results into the session store.
//
// Every action is split in two halves so that callers with a single update
// loop (the TUI) can run the request elsewhere:
//
//	p, err := o.BeginQuery(text) // on the update loop: state -> busy
//	res := p.Run(ctx)            // anywhere: the HTTP call
//	o.Settle(res)                // on the update loop: state -> settled
//
// Upload and SubmitQuery do all three in sequence.
package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/sponsorscout/internal/metrics"
	"github.com/amishk599/sponsorscout/internal/model"
	"github.com/amishk599/sponsorscout/internal/session"
)

// Orchestrator owns the upload and query flows of one session.
type Orchestrator struct {
	store   *session.Store
	service model.JobService
	history model.HistoryStore
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an orchestrator wired with all its dependencies.
func New(
	store *session.Store,
	service model.JobService,
	history model.HistoryStore,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:   store,
		service: service,
		history: history,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Pending is an action that has begun but whose request has not run yet.
type Pending struct {
	Flow model.Flow
	Seq  uint64

	detail  string
	started time.Time
	run     func(ctx context.Context) (session.Transition, error)
}

// Result is the settled outcome of a Pending action.
type Result struct {
	Flow       model.Flow
	Seq        uint64
	Transition session.Transition
	Err        error // nil on success

	detail  string
	started time.Time
}

// Run performs the request. It never touches the store.
func (p Pending) Run(ctx context.Context) Result {
	t, err := p.run(ctx)
	return Result{
		Flow:       p.Flow,
		Seq:        p.Seq,
		Transition: t,
		Err:        err,
		detail:     p.detail,
		started:    p.started,
	}
}

// State returns the current session snapshot.
func (o *Orchestrator) State() session.State {
	return o.store.Snapshot()
}

// SetQueryText records an edit of the query input.
func (o *Orchestrator) SetQueryText(text string) {
	o.store.Apply(session.QueryTextChanged{Text: text})
}

// History returns up to limit settled actions of this session, newest first.
func (o *Orchestrator) History(limit int) ([]model.HistoryEntry, error) {
	return o.history.Recent(limit)
}

// Settle applies r to the store. It returns false when a newer action of the
// same flow has started since r began; such results are dropped.
func (o *Orchestrator) Settle(r Result) bool {
	settledAt := o.now()
	if !o.store.Apply(r.Transition) {
		o.metrics.RecordStale(r.Flow)
		o.logger.Debug("discarding stale result", "flow", r.Flow, "seq", r.Seq)
		return false
	}

	entry := model.HistoryEntry{
		Seq:       r.Seq,
		Flow:      r.Flow,
		Outcome:   model.OutcomeSuccess,
		Detail:    r.detail,
		SettledAt: settledAt,
	}

	switch t := r.Transition.(type) {
	case session.ActionFailed:
		entry.Outcome = model.OutcomeFailure
		entry.Result = t.Message
		o.logger.Warn("action failed",
			"flow", r.Flow,
			"seq", r.Seq,
			"kind", model.Classify(r.Err),
			"error", r.Err,
		)
	case session.UploadSucceeded:
		entry.Result = t.Response.Message
		entry.NumJobs = t.Response.NumJobs
		o.metrics.RecordUploadedJobs(t.Response.NumJobs)
		o.logger.Info("uploaded job listings",
			"file", r.detail,
			"num_jobs", t.Response.NumJobs,
			"message", t.Response.Message,
		)
	case session.QuerySucceeded:
		entry.Result = t.Response.Summary
		entry.NumJobs = len(t.Response.RelevantJobs)
		o.logger.Info("query answered",
			"seq", r.Seq,
			"relevant_jobs", len(t.Response.RelevantJobs),
		)
	}

	o.metrics.RecordSettled(r.Flow, entry.Outcome, settledAt.Sub(r.started))
	if err := o.history.Record(entry); err != nil {
		o.logger.Warn("recording history failed", "seq", r.Seq, "error", err)
	}
	return true
}

func (o *Orchestrator) begun(flow model.Flow, seq uint64, detail string) {
	o.metrics.RecordStarted(flow)
	o.logger.Debug("action started", "flow", flow, "seq", seq, "detail", detail)
}
