//go:build cucumber
// +build cucumber

package cucumber

import (
	"bytes"
	"context"
	"os"

	"github.com/cucumber/godog"

	"insights/internal/session"
	"insights/internal/transport"
)

// featureState holds scenario state for session and CLI features.
type featureState struct {
	recorder *transport.Recorder
	facade   *session.Facade
	sendErr  error

	repoDir    string
	previousWD string
	stdout     bytes.Buffer
	stderr     bytes.Buffer
	exitCode   int
}

// InitializeScenario wires cucumber steps to the feature state.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		state.cleanup()
		return ctx, nil
	})

	ctx.Step(`^a session with event types:$`, state.aSessionWithEventTypes)
	ctx.Step(`^thread "([^"]*)" starts a run$`, state.threadStartsARun)
	ctx.Step(`^thread "([^"]*)" calls tool "([^"]*)"$`, state.threadCallsTool)
	ctx.Step(`^thread "([^"]*)" completes tool "([^"]*)" with SQL "([^"]*)"$`, state.threadCompletesTool)
	ctx.Step(`^thread "([^"]*)" ends its stream$`, state.threadEndsItsStream)
	ctx.Step(`^the loading message for thread "([^"]*)" is "([^"]*)"$`, state.theLoadingMessageIs)
	ctx.Step(`^thread "([^"]*)" has no loading message$`, state.threadHasNoLoadingMessage)
	ctx.Step(`^the latest SQL for thread "([^"]*)" is "([^"]*)"$`, state.theLatestSQLIs)
	ctx.Step(`^thread "([^"]*)" has no SQL$`, state.threadHasNoSQL)
	ctx.Step(`^the artifact version is (\d+)$`, state.theArtifactVersionIs)
	ctx.Step(`^tab "([^"]*)" has title "([^"]*)" and query "([^"]*)"$`, state.tabHasTitleAndQuery)
	ctx.Step(`^I send "([^"]*)" from tab "([^"]*)"$`, state.iSendFromTab)
	ctx.Step(`^I send "([^"]*)" on thread "([^"]*)"$`, state.iSendOnThread)
	ctx.Step(`^the state sent from tab "([^"]*)" has title "([^"]*)" and query "([^"]*)"$`, state.theStateSentFromTab)
	ctx.Step(`^the state sent on thread "([^"]*)" lists event types "([^"]*)"$`, state.theStateSentOnThreadLists)
	ctx.Step(`^the agent rejects sends$`, state.theAgentRejectsSends)
	ctx.Step(`^the send fails$`, state.theSendFails)
	ctx.Step(`^no send is in flight$`, state.noSendIsInFlight)
	ctx.Step(`^thread "([^"]*)" is in lifecycle "([^"]*)"$`, state.threadIsInLifecycle)

	ctx.Step(`^a workspace with an invalid config$`, state.aWorkspaceWithAnInvalidConfig)
	ctx.Step(`^I run "([^"]+)"$`, state.iRunCommand)
	ctx.Step(`^the output lists these commands:$`, state.theOutputListsCommands)
	ctx.Step(`^the exit code is non-zero$`, state.theExitCodeIsNonZero)
	ctx.Step(`^the error output mentions "([^"]*)"$`, state.theErrorOutputMentions)
}

// reset clears buffers and resets state before each scenario.
func (s *featureState) reset() {
	s.recorder = nil
	s.facade = nil
	s.sendErr = nil
	s.repoDir = ""
	s.previousWD = ""
	s.stdout.Reset()
	s.stderr.Reset()
	s.exitCode = 0
}

// cleanup restores the working directory and removes temporary files.
func (s *featureState) cleanup() {
	if s.previousWD != "" {
		_ = os.Chdir(s.previousWD)
	}
	if s.repoDir != "" {
		_ = os.RemoveAll(s.repoDir)
	}
}
