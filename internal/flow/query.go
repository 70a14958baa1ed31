package flow

import (
	"context"
	"errors"
	"strings"

	"github.com/amishk599/sponsorscout/internal/model"
	"github.com/amishk599/sponsorscout/internal/session"
)

// QueryFailedMessage is shown for every failed query.
const QueryFailedMessage = "Failed to get response"

var (
	// ErrEmptyQuery is returned for blank query text. Nothing is sent.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrSubmitDisabled is returned when no file is selected or an action is
	// still in flight. Nothing is sent.
	ErrSubmitDisabled = errors.New("submit is disabled until a file is selected and the current action finishes")
)

// BeginQuery marks a query for text as started.
func (o *Orchestrator) BeginQuery(text string) (Pending, error) {
	if strings.TrimSpace(text) == "" {
		return Pending{}, ErrEmptyQuery
	}

	seq, ok := o.store.TryBegin(model.FlowQuery, session.State.CanSubmit)
	if !ok {
		return Pending{}, ErrSubmitDisabled
	}
	o.begun(model.FlowQuery, seq, text)

	service := o.service
	return Pending{
		Flow:    model.FlowQuery,
		Seq:     seq,
		detail:  text,
		started: o.now(),
		run: func(ctx context.Context) (session.Transition, error) {
			resp, err := service.Query(ctx, text)
			if err != nil {
				return session.ActionFailed{Flow: model.FlowQuery, Seq: seq, Message: QueryFailedMessage}, err
			}
			return session.QuerySucceeded{Seq: seq, Response: resp}, nil
		},
	}, nil
}

// SubmitQuery asks the service about the uploaded listings and settles the
// result. ErrEmptyQuery and ErrSubmitDisabled leave the session untouched.
func (o *Orchestrator) SubmitQuery(ctx context.Context, text string) error {
	p, err := o.BeginQuery(text)
	if err != nil {
		return err
	}
	res := p.Run(ctx)
	o.Settle(res)
	return res.Err
}
