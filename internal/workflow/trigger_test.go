package workflow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/edvin/cronhook/internal/activity"
)

type TriggerCronjobWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *TriggerCronjobWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	registerActivities(s.env)
}

func (s *TriggerCronjobWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func (s *TriggerCronjobWorkflowTestSuite) TestManualTriggerUsesGivenExecutionID() {
	s.env.OnActivity("ExecuteTrigger", mock.Anything, activity.ExecuteTriggerParams{
		CronjobID:   "cj-1",
		ExecutionID: "exec-1",
	}).Return(nil)

	s.env.ExecuteWorkflow(TriggerCronjobWorkflow, "cj-1", "exec-1")
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *TriggerCronjobWorkflowTestSuite) TestScheduledTriggerGeneratesExecutionID() {
	s.env.OnActivity("ExecuteTrigger", mock.Anything, mock.MatchedBy(func(params activity.ExecuteTriggerParams) bool {
		return params.CronjobID == "cj-1" && params.ExecutionID != ""
	})).Return(nil)

	s.env.ExecuteWorkflow(TriggerCronjobWorkflow, "cj-1", "")
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *TriggerCronjobWorkflowTestSuite) TestTriggerFails() {
	s.env.OnActivity("ExecuteTrigger", mock.Anything, mock.Anything).Return(fmt.Errorf("connection refused"))

	s.env.ExecuteWorkflow(TriggerCronjobWorkflow, "cj-1", "exec-1")
	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func TestTriggerCronjobWorkflow(t *testing.T) {
	suite.Run(t, new(TriggerCronjobWorkflowTestSuite))
}
