package fs

import (
	"strings"
	"testing"

	"github.com/spotify/snakebite/rpc/hadoop"
)

func TestPermString(t *testing.T) {
	tests := []struct {
		status hadoop.FileStatus
		want   string
	}{
		{status: hadoop.FileStatus{FileType: hadoop.FileTypeDir, Permission: hadoop.FsPermission{Perm: 0o755}}, want: "drwxr-xr-x"},
		{status: hadoop.FileStatus{FileType: hadoop.FileTypeFile, Permission: hadoop.FsPermission{Perm: 0o644}}, want: "-rw-r--r--"},
		{status: hadoop.FileStatus{FileType: hadoop.FileTypeFile, Permission: hadoop.FsPermission{Perm: 0o777}}, want: "-rwxrwxrwx"},
		{status: hadoop.FileStatus{FileType: hadoop.FileTypeFile, Permission: hadoop.FsPermission{Perm: 0}}, want: "----------"},
		{status: hadoop.FileStatus{FileType: hadoop.FileTypeFile, Permission: hadoop.FsPermission{Perm: 0o640}}, want: "-rw-r-----"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := permString(&tt.status); got != tt.want {
				t.Errorf("permString(%o) = %q, want %q", tt.status.Permission.Perm, got, tt.want)
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	file := &hadoop.FileStatus{
		FileType:         hadoop.FileTypeFile,
		Path:             "/data/report.csv",
		Length:           4096,
		Permission:       hadoop.FsPermission{Perm: 0o644},
		Owner:            "alice",
		Group:            "analytics",
		ModificationTime: 1700000000000,
		BlockReplication: 3,
	}

	line := formatStatus(file)
	for _, want := range []string{"-rw-r--r--", "alice", "analytics", "4096", "/data/report.csv"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q does not contain %q", line, want)
		}
	}

	dir := &hadoop.FileStatus{
		FileType:   hadoop.FileTypeDir,
		Path:       "/data",
		Permission: hadoop.FsPermission{Perm: 0o755},
		Owner:      "hdfs",
		Group:      "hdfs",
	}
	if line := formatStatus(dir); !strings.Contains(line, " - ") {
		t.Errorf("directory line %q does not blank out replication", line)
	}
}
