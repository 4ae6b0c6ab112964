package runshow_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/bkup/internal/app/runshow"
	"github.com/slok/bkup/internal/log"
	"github.com/slok/bkup/internal/model"
	"github.com/slok/bkup/internal/storage"
	"github.com/slok/bkup/internal/storage/storagemock"
)

const runID = "01JKQ2Z9X8Y7W6V5T4S3R2Q1P0"

func TestService_Run(t *testing.T) {
	run := &model.Run{ID: runID, Status: model.RunStatusSucceeded}

	tests := map[string]struct {
		mock      func(m *storagemock.MockRunRepository)
		req       runshow.Request
		expResult *model.Run
		expErrIs  error
		expErr    bool
	}{
		"get run by ID": {
			mock: func(m *storagemock.MockRunRepository) {
				m.On("GetRun", mock.Anything, runID).Once().Return(run, nil)
			},
			req:       runshow.Request{ID: runID},
			expResult: run,
		},
		"lowercase IDs should be normalized": {
			mock: func(m *storagemock.MockRunRepository) {
				m.On("GetRun", mock.Anything, runID).Once().Return(run, nil)
			},
			req:       runshow.Request{ID: strings.ToLower(runID)},
			expResult: run,
		},
		"latest should get the newest run": {
			mock: func(m *storagemock.MockRunRepository) {
				m.On("ListRuns", mock.Anything, storage.ListRunsOpts{Limit: 1}).Once().Return([]model.Run{{ID: runID}}, nil)
				m.On("GetRun", mock.Anything, runID).Once().Return(run, nil)
			},
			req:       runshow.Request{ID: runshow.Latest},
			expResult: run,
		},
		"latest without runs should be not found": {
			mock: func(m *storagemock.MockRunRepository) {
				m.On("ListRuns", mock.Anything, storage.ListRunsOpts{Limit: 1}).Once().Return([]model.Run{}, nil)
			},
			req:      runshow.Request{},
			expErr:   true,
			expErrIs: model.ErrNotFound,
		},
		"invalid ID should fail without querying": {
			mock:     func(m *storagemock.MockRunRepository) {},
			req:      runshow.Request{ID: "not-a-run"},
			expErr:   true,
			expErrIs: model.ErrNotValid,
		},
		"missing run should be not found": {
			mock: func(m *storagemock.MockRunRepository) {
				m.On("GetRun", mock.Anything, runID).Once().Return(nil, fmt.Errorf("run: %w", model.ErrNotFound))
			},
			req:      runshow.Request{ID: runID},
			expErr:   true,
			expErrIs: model.ErrNotFound,
		},
		"repository error should propagate": {
			mock: func(m *storagemock.MockRunRepository) {
				m.On("GetRun", mock.Anything, runID).Once().Return(nil, fmt.Errorf("database error"))
			},
			req:    runshow.Request{ID: runID},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			// Setup
			m := &storagemock.MockRunRepository{}
			test.mock(m)

			svc, err := runshow.NewService(runshow.ServiceConfig{Repository: m, Logger: log.Noop})
			require.NoError(err)

			// Execute
			result, err := svc.Run(context.Background(), test.req)

			// Verify
			if test.expErr {
				assert.Error(err)
				if test.expErrIs != nil {
					assert.ErrorIs(err, test.expErrIs)
				}
			} else if assert.NoError(err) {
				assert.Equal(test.expResult, result)
			}

			m.AssertExpectations(t)
		})
	}
}
