package sink_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/ridderiq-client/internal/sink"
	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiq"
)

var errNoResponders = errors.New("nats: no responders available")

// MockConn implements sink.Conn for testing.
type MockConn struct {
	mock.Mock
}

func (m *MockConn) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)

	return args.Error(0)
}

func (m *MockConn) FlushTimeout(timeout time.Duration) error {
	args := m.Called(timeout)

	return args.Error(0)
}

func (m *MockConn) Close() {
	m.Called()
}

// MockLogger records warnings.
type MockLogger struct {
	warnings []string
}

func (l *MockLogger) Debug(string, map[string]interface{}) {}
func (l *MockLogger) Info(string, map[string]interface{})  {}
func (l *MockLogger) Warn(msg string, _ map[string]interface{}) {
	l.warnings = append(l.warnings, msg)
}
func (l *MockLogger) Error(string, map[string]interface{}) {}

func TestNewPublisher_RequiresSubject(t *testing.T) {
	t.Parallel()

	_, err := sink.NewPublisher(&MockConn{}, " ", "batch", nil)
	require.ErrorIs(t, err, sink.ErrSubjectRequired)
}

func TestConnect_RequiresURL(t *testing.T) {
	t.Parallel()

	_, err := sink.Connect("", "ridderiq.outcomes", "batch", nil)
	require.ErrorIs(t, err, sink.ErrURLRequired)
}

func TestPublisher_Handler(t *testing.T) {
	t.Parallel()

	conn := &MockConn{}
	conn.On("Publish", "ridderiq.outcomes", mock.MatchedBy(func(data []byte) bool {
		var message map[string]interface{}
		if err := json.Unmarshal(data, &message); err != nil {
			return false
		}

		outcome, ok := message["outcome"].(map[string]interface{})

		return ok && message["batch"] == "batch-1" && outcome["id"] == "rec-1" && outcome["success"] == true
	})).Return(nil).Once()

	publisher, err := sink.NewPublisher(conn, "ridderiq.outcomes", "batch-1", nil)
	require.NoError(t, err)

	publisher.Handler()(context.Background(), &ridderiq.Outcome{
		ID:      "rec-1",
		Success: true,
		Payload: json.RawMessage(`{"id":1}`),
	})

	conn.AssertExpectations(t)
}

func TestPublisher_HandlerLogsFailures(t *testing.T) {
	t.Parallel()

	conn := &MockConn{}
	conn.On("Publish", mock.Anything, mock.Anything).Return(errNoResponders).Twice()

	logger := &MockLogger{}
	publisher, err := sink.NewPublisher(conn, "ridderiq.outcomes", "batch-1", logger)
	require.NoError(t, err)

	publisher.Handler()(context.Background(), &ridderiq.Outcome{ID: "rec-1"})

	assert.Equal(t, []string{"Failed to publish outcome"}, logger.warnings)
	require.ErrorIs(t, publisher.Publish(&ridderiq.Outcome{}), errNoResponders)
	conn.AssertExpectations(t)
}

func TestPublisher_Close(t *testing.T) {
	t.Parallel()

	conn := &MockConn{}
	conn.On("FlushTimeout", mock.Anything).Return(nil).Once()
	conn.On("Close").Return().Once()

	publisher, err := sink.NewPublisher(conn, "ridderiq.outcomes", "batch-1", nil)
	require.NoError(t, err)
	require.NoError(t, publisher.Close())

	conn.AssertExpectations(t)
}
