package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/config"
	"github.com/tushar-tomar11/whatsapp-chat-analyzer/internal/models"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) RunBatch(ctx context.Context) (*models.Digest, error) {
	args := m.Called(ctx)
	digest, _ := args.Get(0).(*models.Digest)
	return digest, args.Error(1)
}

func TestService_Start(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{name: "daily at nine", schedule: "0 0 9 * * *"},
		{name: "weekly descriptor", schedule: "@weekly"},
		{name: "missing seconds field", schedule: "0 9 * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(&config.Config{AnalysisSchedule: tt.schedule, TimeZone: "UTC"}, &MockRunner{})
			err := service.Start()
			defer service.Stop()

			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, service.NextRun().IsZero())
				return
			}
			require.NoError(t, err)
			assert.True(t, service.NextRun().After(time.Now()))
		})
	}
}

func TestService_RunScheduled(t *testing.T) {
	runner := &MockRunner{}
	runner.On("RunBatch", mock.Anything).Return(&models.Digest{RunID: "run-1"}, nil).Once()
	runner.On("RunBatch", mock.Anything).Return(nil, errors.New("storage offline")).Once()

	service := NewService(&config.Config{AnalysisSchedule: "@daily", TimeZone: "UTC"}, runner)
	service.runScheduled()
	service.runScheduled()

	runner.AssertNumberOfCalls(t, "RunBatch", 2)
}
