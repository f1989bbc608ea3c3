package executor

import (
	"context"
	"errors"
	"io"
)

// MockProcessRunner is a mock implementation of ProcessRunner for testing.
type MockProcessRunner struct {
	// RunFunc allows tests to provide custom behavior
	RunFunc func(ctx context.Context, path string, args []string, stdin io.Reader) (stdout, stderr []byte, err error)

	// ShouldTimeout if true, will block until context is cancelled
	ShouldTimeout bool

	// Calls records the args of every Run call.
	Calls [][]string

	// LastStdin stores the stdin of the last call.
	LastStdin []byte
}

// Run executes the mock behavior.
func (m *MockProcessRunner) Run(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	m.Calls = append(m.Calls, args)
	m.LastStdin = nil
	if stdin != nil {
		m.LastStdin, _ = io.ReadAll(stdin)
	}

	if m.ShouldTimeout {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}

	if m.RunFunc != nil {
		return m.RunFunc(ctx, path, args, stdin)
	}
	return []byte("{}"), nil, nil
}

// newPluginRunner answers the info query with info and every other call with
// resp.
func newPluginRunner(info string, resp string) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
			if len(args) > 0 {
				return []byte(info), nil, nil
			}
			return []byte(resp), nil, nil
		},
	}
}

// newErrorRunner fails every call, writing msg to stderr.
func newErrorRunner(msg string) *MockProcessRunner {
	return &MockProcessRunner{
		RunFunc: func(ctx context.Context, path string, args []string, stdin io.Reader) ([]byte, []byte, error) {
			return nil, []byte(msg), errors.New("exit status 1")
		},
	}
}

