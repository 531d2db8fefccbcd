package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tests := []struct {
		name         string
		args         []string
		expectedExit int
	}{
		{
			name:         "Help exits cleanly",
			args:         []string{"debstrap", "--help"},
			expectedExit: 0,
		},
		{
			name:         "Version exits cleanly",
			args:         []string{"debstrap", "version"},
			expectedExit: 0,
		},
		{
			name: "Error with missing recipe",
			args: []string{
				"debstrap", "run", "stable", "TARGET",
				"-c", "nonexistent.yml", "-a", "amd64", "-g",
			},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			for i, arg := range os.Args {
				if arg == "TARGET" {
					os.Args[i] = filepath.Join(t.TempDir(), "rootfs")
				}
			}

			exitCode := run()
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}
