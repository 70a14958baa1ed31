// Package session owns the client's session state and the transitions that
// change it. Reduce is pure; Store adds sequence numbers and locking.
package session

import "github.com/amishk599/sponsorscout/internal/model"

// State is a snapshot of the session. LastResponse is shared between
// snapshots and must be treated as read-only.
type State struct {
	SelectedFile model.FileRef
	QueryText    string
	LastResponse *model.QueryResponse
	ErrorMessage string
	Busy         bool

	upload flowState
	query  flowState
}

// flowState tracks the most recently started action of one flow.
type flowState struct {
	latest   uint64
	inFlight bool
}

// CanSubmit reports whether a query may be submitted: a file has been
// selected and nothing is in flight.
func (s State) CanSubmit() bool {
	return !s.SelectedFile.IsZero() && !s.Busy
}

// InFlight reports whether the latest action of flow has not settled yet.
func (s State) InFlight(flow model.Flow) bool {
	return s.flow(flow).inFlight
}

// Latest returns the sequence number of the most recently started action of flow.
func (s State) Latest(flow model.Flow) uint64 {
	return s.flow(flow).latest
}

// IsCurrent reports whether a settlement tagged (flow, seq) belongs to the
// action that is still awaited. Results of superseded actions are stale.
func (s State) IsCurrent(flow model.Flow, seq uint64) bool {
	fs := s.flow(flow)
	return fs.inFlight && fs.latest == seq
}

func (s *State) flow(flow model.Flow) *flowState {
	if flow == model.FlowUpload {
		return &s.upload
	}
	return &s.query
}

// Transition is one of the named state changes below.
type Transition interface {
	isTransition()
}

// BeginAction marks the start of action Seq of Flow.
type BeginAction struct {
	Flow model.Flow
	Seq  uint64
}

// UploadSucceeded settles upload Seq with the service acknowledgement.
type UploadSucceeded struct {
	Seq      uint64
	Response model.UploadResponse
}

// QuerySucceeded settles query Seq with its answer.
type QuerySucceeded struct {
	Seq      uint64
	Response model.QueryResponse
}

// ActionFailed settles action Seq of Flow with a user-facing message.
type ActionFailed struct {
	Flow    model.Flow
	Seq     uint64
	Message string
}

// FileSelected records the file chosen for upload.
type FileSelected struct {
	File model.FileRef
}

// QueryTextChanged records an edit of the query input.
type QueryTextChanged struct {
	Text string
}

func (BeginAction) isTransition()      {}
func (UploadSucceeded) isTransition()  {}
func (QuerySucceeded) isTransition()   {}
func (ActionFailed) isTransition()     {}
func (FileSelected) isTransition()     {}
func (QueryTextChanged) isTransition() {}

// Settlement returns the flow and sequence number a settling transition
// refers to. ok is false for transitions that do not settle an action.
func Settlement(t Transition) (flow model.Flow, seq uint64, ok bool) {
	switch t := t.(type) {
	case UploadSucceeded:
		return model.FlowUpload, t.Seq, true
	case QuerySucceeded:
		return model.FlowQuery, t.Seq, true
	case ActionFailed:
		return t.Flow, t.Seq, true
	}
	return "", 0, false
}

// Reduce returns the state that results from applying t to s. It performs no
// I/O. A settlement for an action that is not the latest of its flow leaves s
// unchanged.
func Reduce(s State, t Transition) State {
	if flow, seq, ok := Settlement(t); ok && !s.IsCurrent(flow, seq) {
		return s
	}

	switch t := t.(type) {
	case BeginAction:
		fs := s.flow(t.Flow)
		fs.latest = t.Seq
		fs.inFlight = true
		s.ErrorMessage = ""
	case UploadSucceeded:
		s.upload.inFlight = false
		s.ErrorMessage = ""
	case QuerySucceeded:
		s.query.inFlight = false
		resp := t.Response
		s.LastResponse = &resp
		s.ErrorMessage = ""
	case ActionFailed:
		s.flow(t.Flow).inFlight = false
		s.ErrorMessage = t.Message
	case FileSelected:
		s.SelectedFile = t.File
	case QueryTextChanged:
		s.QueryText = t.Text
	}

	s.Busy = s.upload.inFlight || s.query.inFlight
	return s
}
