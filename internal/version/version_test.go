package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name        string
		info        debug.BuildInfo
		version     string
		commit      string
		wantVersion string
		wantCommit  string
	}{
		{
			name: "module version and clean revision",
			info: debug.BuildInfo{
				Main:     debug.Module{Version: "v1.4.0"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}},
			},
			wantVersion: "v1.4.0",
			wantCommit:  "0123456",
		},
		{
			name: "devel build with dirty tree",
			info: debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abcdef0123"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			wantVersion: "",
			wantCommit:  "abcdef0-dirty",
		},
		{
			name: "ldflags win",
			info: debug.BuildInfo{
				Main:     debug.Module{Version: "v9.9.9"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffff"}},
			},
			version:     "v1.0.0",
			commit:      "abc123",
			wantVersion: "v1.0.0",
			wantCommit:  "abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c := fromBuildInfo(&tt.info, tt.version, tt.commit)
			if v != tt.wantVersion || c != tt.wantCommit {
				t.Errorf("fromBuildInfo() = %q, %q; want %q, %q", v, c, tt.wantVersion, tt.wantCommit)
			}
		})
	}
}

func TestFullAndShort(t *testing.T) {
	Version, Commit = "v1.2.3", "abc1234"

	if !strings.HasPrefix(Full(), "v1.2.3 (commit: abc1234, go") {
		t.Errorf("Full() = %q", Full())
	}
	if Short() != "1.2.3" {
		t.Errorf("Short() = %q", Short())
	}
}
