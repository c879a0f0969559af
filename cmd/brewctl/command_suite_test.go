package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/srg/brewlink/internal/testutils"
	"github.com/srg/brewlink/internal/transport"
	"github.com/srg/brewlink/internal/transport/replay"
	"github.com/srg/brewlink/pkg/config"
)

// Test device address for consistent replay transport identification
const TestDeviceAddress = "AA:BB:CC:DD:EE:01"

// CommandTestSuite runs brewctl commands against a replay transport in place
// of a BLE adapter
type CommandTestSuite struct {
	suite.Suite

	// Chunks the next replay transport will serve
	Chunks []replay.Chunk

	// Created receives every transport handed to a command
	Created chan *replay.Transport

	Addresses []string
	Adapters  []string

	orig func(*config.Config, string, *logrus.Logger) (transport.Transport, error)
}

func (s *CommandTestSuite) SetupTest() {
	s.Chunks = nil
	s.Created = make(chan *replay.Transport, 4)
	s.Addresses = nil
	s.Adapters = nil

	s.orig = newTransport
	newTransport = func(cfg *config.Config, address string, logger *logrus.Logger) (transport.Transport, error) {
		s.Addresses = append(s.Addresses, address)
		s.Adapters = append(s.Adapters, cfg.Device.Adapter)
		tr := replay.New(s.Chunks, replay.WithLogger(logger))
		s.Created <- tr
		return tr, nil
	}
}

func (s *CommandTestSuite) TearDownTest() {
	newTransport = s.orig
}

// ExecuteCommand runs brewctl with args, returns stdout, stderr and error
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, string, error) {
	return s.ExecuteCommandContext(context.Background(), args...)
}

// ExecuteCommandContext is ExecuteCommand with a caller-controlled context
func (s *CommandTestSuite) ExecuteCommandContext(ctx context.Context, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// NextTransport waits for the transport a running command created
func (s *CommandTestSuite) NextTransport() *replay.Transport {
	select {
	case tr := <-s.Created:
		return tr
	case <-time.After(2 * time.Second):
		s.FailNow("command did not create a transport")
		return nil
	}
}

// Records turns record strings into one capture chunk each
func (s *CommandTestSuite) Records(records ...string) []replay.Chunk {
	chunks := make([]replay.Chunk, 0, len(records))
	for i, r := range records {
		chunks = append(chunks, replay.Chunk{At: int64(i) * 1000, Data: testutils.Record(r)})
	}
	return chunks
}

// WriteFile writes content to a file in a per-test temp dir and returns its path
func (s *CommandTestSuite) WriteFile(name, content string) string {
	path := filepath.Join(s.T().TempDir(), name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

// AssertText compares output text ignoring surrounding and trailing whitespace
func (s *CommandTestSuite) AssertText(actual, expected string) {
	testutils.NewTextAsserter(s.T()).Assert(actual, expected)
}
