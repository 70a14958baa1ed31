package flow

import (
	"context"
	"errors"

	"github.com/amishk599/sponsorscout/internal/model"
	"github.com/amishk599/sponsorscout/internal/session"
)

// UploadFailedMessage is shown for every failed upload.
const UploadFailedMessage = "Failed to upload file"

// ErrUnsupportedFile is returned for a missing or non-CSV file. The session
// is not changed.
var ErrUnsupportedFile = errors.New("only .csv files can be uploaded")

// BeginUpload selects file and marks an upload as started.
func (o *Orchestrator) BeginUpload(file model.FileRef) (Pending, error) {
	if file.IsZero() || !file.IsCSV() {
		return Pending{}, ErrUnsupportedFile
	}

	o.store.Apply(session.FileSelected{File: file})
	seq := o.store.Begin(model.FlowUpload)
	o.begun(model.FlowUpload, seq, file.Name)

	service := o.service
	return Pending{
		Flow:    model.FlowUpload,
		Seq:     seq,
		detail:  file.Name,
		started: o.now(),
		run: func(ctx context.Context) (session.Transition, error) {
			resp, err := service.Upload(ctx, file)
			if err != nil {
				return session.ActionFailed{Flow: model.FlowUpload, Seq: seq, Message: UploadFailedMessage}, err
			}
			return session.UploadSucceeded{Seq: seq, Response: resp}, nil
		},
	}, nil
}

// Upload sends file to the service and settles the result. The returned
// error is the service failure, already reflected in the session.
func (o *Orchestrator) Upload(ctx context.Context, file model.FileRef) error {
	p, err := o.BeginUpload(file)
	if err != nil {
		return err
	}
	res := p.Run(ctx)
	o.Settle(res)
	return res.Err
}
