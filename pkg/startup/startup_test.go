package startup

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDependency struct {
	name      string
	dependsOn []string
	startErrs int
	events    *[]string
}

func (f *fakeDependency) GetName() string     { return f.name }
func (f *fakeDependency) DependsOn() []string { return f.dependsOn }

func (f *fakeDependency) Start(context.Context) error {
	if f.startErrs > 0 {
		f.startErrs--
		return errors.New("start failed")
	}
	*f.events = append(*f.events, "start:"+f.name)
	return nil
}

func (f *fakeDependency) Stop(context.Context) error {
	*f.events = append(*f.events, "stop:"+f.name)
	return nil
}

func newTestStartup(maxAttempts int) *Startup {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewStartup(logger, maxAttempts)
}

func TestStartup_StartsInDependencyOrder(t *testing.T) {
	var events []string
	s := newTestStartup(1)

	// Registered out of order on purpose
	s.AddDependency(&fakeDependency{name: "http", dependsOn: []string{"database", "kafka"}, events: &events})
	s.AddDependency(&fakeDependency{name: "kafka", dependsOn: []string{"database"}, events: &events})
	s.AddDependency(&fakeDependency{name: "database", events: &events})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, []string{"start:database", "start:kafka", "start:http"}, events)
}

func TestStartup_UnknownDependency(t *testing.T) {
	var events []string
	s := newTestStartup(1)
	s.AddDependency(&fakeDependency{name: "http", dependsOn: []string{"missing"}, events: &events})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestStartup_RetriesWithoutRestartingStarted(t *testing.T) {
	var events []string
	s := newTestStartup(3)

	s.AddDependency(&fakeDependency{name: "database", events: &events})
	s.AddDependency(&fakeDependency{name: "kafka", dependsOn: []string{"database"}, startErrs: 1, events: &events})

	require.NoError(t, s.Start(context.Background()))

	// database started once on the first attempt; only kafka retried
	assert.Equal(t, []string{"start:database", "start:kafka"}, events)
}

func TestStartup_ExhaustsAttempts(t *testing.T) {
	var events []string
	s := newTestStartup(2)
	s.AddDependency(&fakeDependency{name: "database", startErrs: 5, events: &events})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestStartup_StopsInReverseOrder(t *testing.T) {
	var events []string
	s := newTestStartup(1)

	s.AddDependency(&fakeDependency{name: "database", events: &events})
	s.AddDependency(&fakeDependency{name: "kafka", dependsOn: []string{"database"}, events: &events})
	s.AddDependency(&fakeDependency{name: "http", dependsOn: []string{"kafka"}, events: &events})

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	assert.Equal(t, []string{
		"start:database", "start:kafka", "start:http",
		"stop:http", "stop:kafka", "stop:database",
	}, events)
}

func TestStartup_StopSkipsUnstarted(t *testing.T) {
	var events []string
	s := newTestStartup(1)

	s.AddDependency(&fakeDependency{name: "database", events: &events})
	s.AddDependency(&fakeDependency{name: "kafka", dependsOn: []string{"database"}, startErrs: 5, events: &events})

	require.Error(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	assert.Equal(t, []string{"start:database", "stop:database"}, events)
}
