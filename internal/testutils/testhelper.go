package testutils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

// TestHelper bundles a test with a logger whose output is kept for assertions
type TestHelper struct {
	T      *testing.T
	Logger *logrus.Logger
	Logs   *bytes.Buffer
}

// NewTestHelper creates a test helper with a debug logger writing to a buffer
func NewTestHelper(t *testing.T) *TestHelper {
	logs := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(logs)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return &TestHelper{T: t, Logger: logger, Logs: logs}
}

// LoadFixture reads a file relative to the project root (the go.mod directory)
func LoadFixture(relPath string) ([]byte, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(root)
		if parent == root {
			return nil, fmt.Errorf("could not find project root (go.mod not found)")
		}
		root = parent
	}

	full := filepath.Join(root, relPath)
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", full, err)
	}
	return data, nil
}
