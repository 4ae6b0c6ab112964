package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/bkup/internal/model"
)

func TestFailuresText(t *testing.T) {
	tests := map[string]struct {
		failures model.Failures
		expText  string
	}{
		"No failures should return an empty text.": {
			expText: "",
		},
		"A single failure should return its message trimmed.": {
			failures: model.Failures{{Message: "\n  boom  \n"}},
			expText:  "boom",
		},
		"Multiple failures should be concatenated in order.": {
			failures: model.Failures{
				{Message: " first\n"},
				{Message: "second\n"},
				{Message: "third "},
			},
			expText: "first\nsecond\nthird",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expText, test.failures.Text())
		})
	}
}

func TestNewTaskResult(t *testing.T) {
	now := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)

	ok := model.NewTaskResult(1, "a", nil, now, now)
	assert.Equal(t, model.TaskStatusDone, ok.Status)

	failed := model.NewTaskResult(2, "b", model.Failures{{Message: "x"}}, now, now)
	assert.Equal(t, model.TaskStatusFailed, failed.Status)
}

func TestRunFailures(t *testing.T) {
	run := model.Run{Tasks: []model.TaskResult{
		{Name: "a", Failures: model.Failures{{Task: "a", Message: "1"}}},
		{Name: "b"},
		{Name: "c", Failures: model.Failures{{Task: "c", Message: "2"}, {Task: "c", Message: "3"}}},
	}}

	fs := run.Failures()
	assert.Len(t, fs, 3)
	assert.Equal(t, "123", fs.Text())
}

func TestCountChecks(t *testing.T) {
	ok, warnings, errors := model.CountChecks([]model.CheckResult{
		{Status: model.CheckStatusOK},
		{Status: model.CheckStatusOK},
		{Status: model.CheckStatusWarning},
		{Status: model.CheckStatusError},
	})
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, warnings)
	assert.Equal(t, 1, errors)
}
