package fs

import (
	"fmt"
	"time"

	"github.com/spotify/snakebite/rpc/client"
	"github.com/spotify/snakebite/rpc/hadoop"
)

// permString renders permission bits the way ls does, e.g. "drwxr-xr-x".
func permString(status *hadoop.FileStatus) string {
	buf := []byte("-rwxrwxrwx")
	if status.IsDir() {
		buf[0] = 'd'
	}
	for i := 0; i < 9; i++ {
		if status.Permission.Perm&(1<<uint(8-i)) == 0 {
			buf[i+1] = '-'
		}
	}
	return string(buf)
}

// formatStatus renders one ls line: permissions, replication, owner, group,
// size, modification time and path.
func formatStatus(status *hadoop.FileStatus) string {
	replication := "-"
	if !status.IsDir() {
		replication = fmt.Sprintf("%d", status.BlockReplication)
	}
	modified := time.UnixMilli(int64(status.ModificationTime)).Format("2006-01-02 15:04")
	return fmt.Sprintf("%s %3s %-8s %-10s %12d %s %s",
		permString(status), replication, status.Owner, status.Group,
		status.Length, modified, status.Path)
}

func printStat(status *hadoop.FileStatus) {
	fmt.Printf("path:         %s\n", status.Path)
	fmt.Printf("type:         %s\n", status.FileType)
	fmt.Printf("permission:   %s (%o)\n", permString(status), status.Permission.Perm)
	fmt.Printf("owner:        %s\n", status.Owner)
	fmt.Printf("group:        %s\n", status.Group)
	fmt.Printf("length:       %d\n", status.Length)
	fmt.Printf("modified:     %s\n", time.UnixMilli(int64(status.ModificationTime)).Format(time.RFC3339))
	fmt.Printf("accessed:     %s\n", time.UnixMilli(int64(status.AccessTime)).Format(time.RFC3339))
	if !status.IsDir() {
		fmt.Printf("replication:  %d\n", status.BlockReplication)
		fmt.Printf("block size:   %d\n", status.BlockSize)
	}
}

func printDf(info *client.FsInfo) {
	fmt.Printf("%-24s %16s %16s %16s %18s\n",
		"Filesystem", "Size", "Used", "Available", "Under replicated")
	fmt.Printf("%-24s %16d %16d %16d %18d\n",
		info.Filesystem, info.Stats.Capacity, info.Stats.Used,
		info.Stats.Remaining, info.Stats.UnderReplicated)
}

func printServerDefaults(defaults *hadoop.FsServerDefaults) {
	fmt.Printf("block size:            %d\n", defaults.BlockSize)
	fmt.Printf("bytes per checksum:    %d\n", defaults.BytesPerChecksum)
	fmt.Printf("write packet size:     %d\n", defaults.WritePacketSize)
	fmt.Printf("replication:           %d\n", defaults.Replication)
	fmt.Printf("file buffer size:      %d\n", defaults.FileBufferSize)
	fmt.Printf("encrypt data transfer: %v\n", defaults.EncryptDataTransfer)
	fmt.Printf("trash interval:        %d\n", defaults.TrashInterval)
}
