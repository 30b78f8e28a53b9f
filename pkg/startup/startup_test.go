package startup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/logging"
)

type recordingDep struct {
	name      string
	dependsOn []string
	events    *[]string
	startErrs int // number of times Start fails before succeeding
	stopErr   error
}

func (d *recordingDep) GetName() string     { return d.name }
func (d *recordingDep) DependsOn() []string { return d.dependsOn }

func (d *recordingDep) Start(ctx context.Context) error {
	if d.startErrs > 0 {
		d.startErrs--
		return errors.New("not ready")
	}
	*d.events = append(*d.events, "start:"+d.name)
	return nil
}

func (d *recordingDep) Stop(ctx context.Context) error {
	*d.events = append(*d.events, "stop:"+d.name)
	return d.stopErr
}

func TestStartupOrder(t *testing.T) {
	var events []string
	s := New(logging.NewNop(), 1)

	// added out of dependency order on purpose
	s.AddDependency(&recordingDep{name: "http", dependsOn: []string{"kafka"}, events: &events})
	s.AddDependency(&recordingDep{name: "kafka", dependsOn: []string{"database"}, events: &events})
	s.AddDependency(&recordingDep{name: "database", events: &events})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, []string{"start:database", "start:kafka", "start:http"}, events)

	t.Run("stop runs in reverse", func(t *testing.T) {
		events = events[:0]
		require.NoError(t, s.Stop(context.Background()))
		assert.Equal(t, []string{"stop:http", "stop:kafka", "stop:database"}, events)
	})
}

func TestStartupRetries(t *testing.T) {
	var events []string
	s := New(logging.NewNop(), 3)

	flaky := &recordingDep{name: "database", events: &events, startErrs: 2}
	s.AddDependency(flaky)

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, []string{"start:database"}, events)
}

func TestStartupGivesUp(t *testing.T) {
	var events []string
	s := New(logging.NewNop(), 2)

	s.AddDependency(&recordingDep{name: "database", events: &events, startErrs: 10})

	err := s.Start(context.Background())
	assert.Error(t, err)
}

func TestStartupUnknownParent(t *testing.T) {
	var events []string
	s := New(logging.NewNop(), 1)

	s.AddDependency(&recordingDep{name: "http", dependsOn: []string{"ghost"}, events: &events})

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestStartupStopCollectsFirstError(t *testing.T) {
	var events []string
	s := New(logging.NewNop(), 1)

	s.AddDependency(&recordingDep{name: "a", events: &events})
	s.AddDependency(&recordingDep{name: "b", events: &events, stopErr: errors.New("close failed")})

	require.NoError(t, s.Start(context.Background()))

	err := s.Stop(context.Background())
	require.Error(t, err)
	// the failing dependency does not prevent the rest from stopping
	assert.Contains(t, events, "stop:a")
}
