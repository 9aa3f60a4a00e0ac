package factory

import (
	"time"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/dependencies/mocks"
	"github.com/mcoot/gamerhub/internal/storage/memory"
	"github.com/mcoot/gamerhub/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App against the API at apiURL with in-memory storage
// and a controllable clock
func NewTestApp(apiURL string) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(store, backend.NewClient(apiURL), mockClock, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
