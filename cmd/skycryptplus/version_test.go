package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintVersion(t *testing.T) {
	tests := []struct {
		name          string
		version       string
		build         string
		buildTime     string
		expectContain []string
		expectMissing []string
	}{
		{
			name:          "dev build",
			version:       "dev",
			build:         "unknown",
			buildTime:     "",
			expectContain: []string{"SkyCrypt+ version dev", "Go version:", "OS/Arch:"},
			expectMissing: []string{"(build:"},
		},
		{
			name:          "release build with commit",
			version:       "1.0.5",
			build:         "abc1234",
			buildTime:     "2025-11-22_12:00:00",
			expectContain: []string{"SkyCrypt+ version 1.0.5", "(build: abc1234)", "[2025-11-22_12:00:00]"},
		},
		{
			name:          "release build without buildtime",
			version:       "1.0.6",
			build:         "def5678",
			buildTime:     "",
			expectContain: []string{"SkyCrypt+ version 1.0.6", "(build: def5678)"},
			expectMissing: []string{"["},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origVersion, origBuild, origBuildTime := Version, Build, BuildTime
			t.Cleanup(func() { Version, Build, BuildTime = origVersion, origBuild, origBuildTime })
			Version, Build, BuildTime = tt.version, tt.build, tt.buildTime

			var buf bytes.Buffer
			printVersion(&buf)
			out := buf.String()

			for _, want := range tt.expectContain {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, bad := range tt.expectMissing {
				if strings.Contains(out, bad) {
					t.Errorf("output should not contain %q:\n%s", bad, out)
				}
			}
		})
	}
}
