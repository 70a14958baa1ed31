package presenter

import (
	"strings"
	"testing"

	"github.com/amishk599/sponsorscout/internal/model"
	"github.com/amishk599/sponsorscout/internal/session"
)

func stateWith(transitions ...session.Transition) session.State {
	var s session.State
	for _, t := range transitions {
		s = session.Reduce(s, t)
	}
	return s
}

func jobs(titles ...string) []model.Job {
	out := make([]model.Job, len(titles))
	for i, title := range titles {
		out[i] = model.Job{JobTitle: title, Company: "Co " + title, Location: "Loc " + title, SponsorshipDetails: "Sp " + title}
	}
	return out
}

func TestBuild_Idle(t *testing.T) {
	v := Build(session.State{})
	if v.Loading || v.Error != "" || v.HasResult || v.CanSubmit || v.SelectedFile != "" {
		t.Errorf("idle view = %+v", v)
	}
	if got := Render(v, Options{}); got != "" {
		t.Errorf("Render(idle) = %q, want empty", got)
	}
	if got := RenderSelectedFile(v); got != "" {
		t.Errorf("RenderSelectedFile(idle) = %q", got)
	}
}

func TestBuild_PreservesJobOrder(t *testing.T) {
	payload := model.QueryResponse{Summary: "ranked", RelevantJobs: jobs("Zeta", "Alpha", "Mu", "Alpha")}
	s := stateWith(
		session.BeginAction{Flow: model.FlowQuery, Seq: 1},
		session.QuerySucceeded{Seq: 1, Response: payload},
	)

	v := Build(s)
	if len(v.Cards) != len(payload.RelevantJobs) {
		t.Fatalf("cards = %d, want %d (no dedup)", len(v.Cards), len(payload.RelevantJobs))
	}
	for i, j := range payload.RelevantJobs {
		c := v.Cards[i]
		if c.Title != j.JobTitle || c.Company != j.Company || c.Location != j.Location || c.Sponsorship != j.SponsorshipDetails {
			t.Errorf("card %d = %+v, want %+v", i, c, j)
		}
	}

	out := Render(v, Options{})
	last := -1
	for _, title := range []string{"Zeta", "Alpha", "Mu"} {
		idx := strings.Index(out[last+1:], title)
		if idx < 0 {
			t.Fatalf("%q missing or out of order in:\n%s", title, out)
		}
		last += 1 + idx
	}
}

func TestRender_ScenarioD_OneCard(t *testing.T) {
	s := stateWith(
		session.FileSelected{File: model.NewFileRef("jobs.csv")},
		session.BeginAction{Flow: model.FlowQuery, Seq: 1},
		session.QuerySucceeded{Seq: 1, Response: model.QueryResponse{
			Summary: "1 match",
			RelevantJobs: []model.Job{
				{JobTitle: "SWE", Company: "Acme", Location: "CA", SponsorshipDetails: "H1B sponsored"},
			},
		}},
	)
	v := Build(s)
	if len(v.Cards) != 1 {
		t.Fatalf("cards = %d, want 1", len(v.Cards))
	}
	want := Card{Title: "SWE", Company: "Acme", Location: "CA", Sponsorship: "H1B sponsored"}
	if v.Cards[0] != want {
		t.Errorf("card = %+v, want %+v", v.Cards[0], want)
	}

	out := Render(v, Options{Width: 80})
	for _, s := range []string{"1 match", "SWE", "Company: Acme", "Location: CA", "Sponsorship: H1B sponsored"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestRender_ErrorBannerWithStaleResults(t *testing.T) {
	s := stateWith(
		session.FileSelected{File: model.NewFileRef("jobs.csv")},
		session.BeginAction{Flow: model.FlowQuery, Seq: 1},
		session.QuerySucceeded{Seq: 1, Response: model.QueryResponse{Summary: "earlier", RelevantJobs: jobs("SWE")}},
		session.BeginAction{Flow: model.FlowQuery, Seq: 2},
		session.ActionFailed{Flow: model.FlowQuery, Seq: 2, Message: "Failed to get response"},
	)
	out := Render(Build(s), Options{})
	if !strings.Contains(out, "Failed to get response") {
		t.Errorf("banner missing:\n%s", out)
	}
	if !strings.Contains(out, "earlier") || !strings.Contains(out, "SWE") {
		t.Errorf("stale results not rendered alongside banner:\n%s", out)
	}
	if strings.Index(out, "Failed to get response") > strings.Index(out, "earlier") {
		t.Error("banner should be drawn above results")
	}
}

func TestRender_Loading(t *testing.T) {
	s := stateWith(session.BeginAction{Flow: model.FlowUpload, Seq: 1})
	v := Build(s)
	if !v.Loading {
		t.Fatal("Loading = false while busy")
	}
	out := Render(v, Options{Spinner: "*"})
	if !strings.Contains(out, "* Loading...") {
		t.Errorf("loading indicator missing:\n%s", out)
	}
}

func TestRenderSelectedFile(t *testing.T) {
	v := Build(stateWith(session.FileSelected{File: model.NewFileRef("/home/me/jobs.csv")}))
	if got := RenderSelectedFile(v); !strings.Contains(got, "Selected file: jobs.csv") {
		t.Errorf("RenderSelectedFile = %q", got)
	}
	if !v.CanSubmit {
		t.Error("CanSubmit = false with a file selected and nothing in flight")
	}
}

func TestBuild_DoesNotMutateState(t *testing.T) {
	resp := model.QueryResponse{Summary: "x", RelevantJobs: jobs("A", "B")}
	s := stateWith(
		session.BeginAction{Flow: model.FlowQuery, Seq: 1},
		session.QuerySucceeded{Seq: 1, Response: resp},
	)
	v := Build(s)
	v.Cards[0].Title = "changed"
	if s.LastResponse.RelevantJobs[0].JobTitle != "A" {
		t.Error("editing the view changed the snapshot")
	}
}
