//go:build cucumber
// +build cucumber

package cucumber

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"insights/internal/agentevent"
	"insights/internal/eventtypes"
	"insights/internal/session"
	"insights/internal/snapshot"
	"insights/internal/transport"
)

var fixedNow = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// aSessionWithEventTypes builds a facade over a recording transport.
func (s *featureState) aSessionWithEventTypes(table *godog.Table) error {
	var types []eventtypes.EventType
	for i, row := range table.Rows {
		if i == 0 || len(row.Cells) < 2 {
			continue
		}
		types = append(types, eventtypes.EventType{
			Name:         row.Cells[0].Value,
			LatestSchema: row.Cells[1].Value,
		})
	}
	s.recorder = &transport.Recorder{}
	facade, err := session.New(transport.NewSession(s.recorder),
		session.WithEventTypes(eventtypes.Static(types)),
		session.WithClock(func() time.Time { return fixedNow }),
	)
	if err != nil {
		return err
	}
	s.facade = facade
	return nil
}

func (s *featureState) threadStartsARun(thread string) error {
	s.facade.HandleEvent(agentevent.RunStarted{Thread: thread})
	return nil
}

func (s *featureState) threadCallsTool(thread, tool string) error {
	s.facade.HandleEvent(agentevent.ToolCallArgumentsDelta{Thread: thread, PartID: tool, ToolName: tool})
	return nil
}

func (s *featureState) threadCompletesTool(thread, tool, sql string) error {
	content := fmt.Sprintf(`{"data":{"sql":%q}}`, sql)
	s.facade.HandleEvent(agentevent.PartCompleted{
		Thread:       thread,
		PartID:       tool,
		PartType:     agentevent.PartToolOutput,
		ToolName:     tool,
		FinalContent: []byte(content),
	})
	return nil
}

func (s *featureState) threadEndsItsStream(thread string) error {
	s.facade.HandleEvent(agentevent.StreamEnded{Thread: thread})
	return nil
}

func (s *featureState) theLoadingMessageIs(thread, want string) error {
	got, ok := s.facade.LoadingMessage(thread)
	if !ok || got != want {
		return fmt.Errorf("expected loading %q for %s, got %q (%v)", want, thread, got, ok)
	}
	return nil
}

func (s *featureState) threadHasNoLoadingMessage(thread string) error {
	if got, ok := s.facade.LoadingMessage(thread); ok {
		return fmt.Errorf("expected no loading message for %s, got %q", thread, got)
	}
	return nil
}

func (s *featureState) theLatestSQLIs(thread, want string) error {
	got, ok := s.facade.LatestArtifact(thread)
	if !ok || got != want {
		return fmt.Errorf("expected SQL %q for %s, got %q (%v)", want, thread, got, ok)
	}
	return nil
}

func (s *featureState) threadHasNoSQL(thread string) error {
	if got, ok := s.facade.LatestArtifact(thread); ok {
		return fmt.Errorf("expected no SQL for %s, got %q", thread, got)
	}
	return nil
}

func (s *featureState) theArtifactVersionIs(want int) error {
	if got := s.facade.ArtifactVersion(); got != want {
		return fmt.Errorf("expected artifact version %d, got %d", want, got)
	}
	return nil
}

func (s *featureState) tabHasTitleAndQuery(tab, title, query string) error {
	catalog, err := s.facade.EventTypes(context.Background())
	if err != nil {
		return err
	}
	threadID := s.facade.ThreadForTab(tab)
	s.facade.SetClientStateSnapshot(threadID, snapshot.Capture(title, query, catalog, s.facade.Now()))
	return nil
}

func (s *featureState) iSendFromTab(message, tab string) error {
	threadID, _ := s.facade.FocusTab(tab)
	s.sendErr = s.facade.Send(context.Background(), threadID, message)
	return nil
}

func (s *featureState) iSendOnThread(message, thread string) error {
	s.sendErr = s.facade.Send(context.Background(), thread, message)
	return nil
}

// sentState returns the client state of the last request on a thread.
func (s *featureState) sentState(threadID string) (snapshot.ClientState, error) {
	requests := s.recorder.Requests()
	for i := len(requests) - 1; i >= 0; i-- {
		if requests[i].ThreadID != threadID {
			continue
		}
		state, ok := requests[i].State.(snapshot.ClientState)
		if !ok {
			return snapshot.ClientState{}, fmt.Errorf("unexpected state type %T", requests[i].State)
		}
		return state, nil
	}
	return snapshot.ClientState{}, fmt.Errorf("no request sent on thread %s", threadID)
}

func (s *featureState) theStateSentFromTab(tab, title, query string) error {
	state, err := s.sentState(s.facade.ThreadForTab(tab))
	if err != nil {
		return err
	}
	if state.TabTitle != title || state.SQLQuery != query || state.CurrentQuery != query {
		return fmt.Errorf("unexpected captured state %+v", state)
	}
	return nil
}

func (s *featureState) theStateSentOnThreadLists(thread, names string) error {
	state, err := s.sentState(thread)
	if err != nil {
		return err
	}
	if got := strings.Join(state.EventTypes, ","); got != names {
		return fmt.Errorf("expected event types %q, got %q", names, got)
	}
	if state.Mode != snapshot.ModePlayground || state.Timestamp != fixedNow.UnixMilli() {
		return fmt.Errorf("unexpected default state %+v", state)
	}
	return nil
}

func (s *featureState) theAgentRejectsSends() error {
	s.recorder.Err = errors.New("agent unavailable")
	return nil
}

func (s *featureState) theSendFails() error {
	if s.sendErr == nil || s.sendErr != s.recorder.Err {
		return fmt.Errorf("expected the agent error, got %v", s.sendErr)
	}
	return nil
}

func (s *featureState) noSendIsInFlight() error {
	if thread, ok := s.facade.Sending(); ok {
		return fmt.Errorf("expected no send in flight, got %s", thread)
	}
	return nil
}

func (s *featureState) threadIsInLifecycle(thread, want string) error {
	if got := s.facade.StatusFor(thread); string(got) != want {
		return fmt.Errorf("expected lifecycle %s, got %s", want, got)
	}
	return nil
}
