package client

import (
	"context"
	"fmt"
	gopath "path"

	"github.com/spotify/snakebite/rpc/hadoop"
)

// PathResult reports the outcome of one path within a multi-path operation.
type PathResult struct {
	Path   string
	Result bool
}

// DiskUsage is one line of du output.
type DiskUsage struct {
	Path   string
	Length uint64
}

// PathSummary pairs a path with its content summary (the count report).
type PathSummary struct {
	Path    string
	Summary *hadoop.ContentSummary
}

// --------------------------------------------------------------------------
// Listing
// --------------------------------------------------------------------------

// Ls lists the given paths. A file path yields its own status, a directory
// path yields its entries; with recurse the listing descends into
// subdirectories depth-first. Entry paths are absolute.
func (c *Client) Ls(ctx context.Context, recurse bool, paths ...string) ([]*hadoop.FileStatus, error) {
	var out []*hadoop.FileStatus
	for _, path := range paths {
		status, err := c.fileInfo(ctx, path)
		if err != nil {
			return nil, err
		}
		if status == nil {
			return nil, fmt.Errorf("ls: `%s': No such file or directory", path)
		}
		if !status.IsDir() {
			status.Path = path
			out = append(out, status)
			continue
		}
		if err := c.listTree(ctx, path, recurse, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// listTree appends the entries of one directory, recursing when asked.
func (c *Client) listTree(ctx context.Context, dir string, recurse bool, out *[]*hadoop.FileStatus) error {
	entries, err := c.listDir(ctx, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		*out = append(*out, entry)
		if recurse && entry.IsDir() {
			if err := c.listTree(ctx, entry.Path, recurse, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// listDir fetches every page of one directory listing. The server caps page
// size (dfs.ls.limit), so the client resumes each page after the last
// component of the previous one. Entry paths are rewritten to be absolute.
func (c *Client) listDir(ctx context.Context, dir string) ([]*hadoop.FileStatus, error) {
	var entries []*hadoop.FileStatus
	startAfter := []byte{}
	for {
		req := &hadoop.GetListingRequest{Src: dir, StartAfter: startAfter}
		payload, err := c.invoke(ctx, "getListing", req)
		if err != nil {
			return nil, err
		}
		listing, err := hadoop.UnmarshalGetListingResponse(payload)
		if err != nil {
			return nil, err
		}
		if listing == nil {
			return nil, fmt.Errorf("ls: `%s': No such file or directory", dir)
		}
		if len(listing.Entries) == 0 {
			return entries, nil
		}

		last := listing.Entries[len(listing.Entries)-1].Path
		for _, entry := range listing.Entries {
			entry.Path = gopath.Join(dir, entry.Path)
			entries = append(entries, entry)
		}
		if listing.RemainingEntries == 0 {
			return entries, nil
		}
		startAfter = []byte(last)
	}
}

// --------------------------------------------------------------------------
// Tree modification
// --------------------------------------------------------------------------

// Mkdir creates the given directories. Without createParent an existing
// path is an error, matching mkdir(1); with it the call degrades to
// mkdir -p semantics and missing ancestors are created too.
func (c *Client) Mkdir(ctx context.Context, createParent bool, mode uint32, paths ...string) ([]PathResult, error) {
	var results []PathResult
	for _, path := range paths {
		if !createParent {
			status, err := c.fileInfo(ctx, path)
			if err != nil {
				return results, err
			}
			if status != nil {
				return results, fmt.Errorf("mkdir: `%s': File exists", path)
			}
		}
		req := &hadoop.MkdirsRequest{
			Src:          path,
			Masked:       hadoop.FsPermission{Perm: mode},
			CreateParent: createParent,
		}
		payload, err := c.invoke(ctx, "mkdirs", req)
		if err != nil {
			return results, err
		}
		ok, err := hadoop.UnmarshalMkdirsResponse(payload)
		if err != nil {
			return results, err
		}
		results = append(results, PathResult{Path: path, Result: ok})
	}
	return results, nil
}

// Remove deletes the given paths. Directories require recursive, matching
// rm(1). Unless the configuration says to skip it, paths are moved into the
// caller's trash directory instead of being deleted outright.
func (c *Client) Remove(ctx context.Context, recursive bool, paths ...string) ([]PathResult, error) {
	var results []PathResult
	for _, path := range paths {
		status, err := c.fileInfo(ctx, path)
		if err != nil {
			return results, err
		}
		if status == nil {
			return results, fmt.Errorf("rm: `%s': No such file or directory", path)
		}
		if status.IsDir() && !recursive {
			return results, fmt.Errorf("rm: `%s': Is a directory", path)
		}

		if !c.config.SkipTrash {
			ok, err := c.moveToTrash(ctx, path)
			if err != nil {
				return results, err
			}
			results = append(results, PathResult{Path: path, Result: ok})
			continue
		}

		payload, err := c.invoke(ctx, "delete", &hadoop.DeleteRequest{Src: path, Recursive: recursive})
		if err != nil {
			return results, err
		}
		ok, err := hadoop.UnmarshalDeleteResponse(payload)
		if err != nil {
			return results, err
		}
		results = append(results, PathResult{Path: path, Result: ok})
	}
	return results, nil
}

// moveToTrash renames a path into /user/<user>/.Trash/Current, preserving
// its absolute path below the trash root so restores are unambiguous.
func (c *Client) moveToTrash(ctx context.Context, path string) (bool, error) {
	trashRoot := fmt.Sprintf("/user/%s/.Trash/Current", c.config.User())
	target := trashRoot + path

	req := &hadoop.MkdirsRequest{
		Src:          gopath.Dir(target),
		Masked:       hadoop.FsPermission{Perm: 0o700},
		CreateParent: true,
	}
	payload, err := c.invoke(ctx, "mkdirs", req)
	if err != nil {
		return false, err
	}
	if ok, err := hadoop.UnmarshalMkdirsResponse(payload); err != nil || !ok {
		if err == nil {
			err = fmt.Errorf("rm: `%s': could not create trash directory %s", path, gopath.Dir(target))
		}
		return false, err
	}

	payload, err = c.invoke(ctx, "rename", &hadoop.RenameRequest{Src: path, Dst: target})
	if err != nil {
		return false, err
	}
	ok, err := hadoop.UnmarshalRenameResponse(payload)
	if err != nil {
		return false, err
	}
	if ok {
		logger.Infof("moved %s to trash at %s", path, target)
	}
	return ok, nil
}

// Rmdir removes the given directories, which must be empty.
func (c *Client) Rmdir(ctx context.Context, paths ...string) ([]PathResult, error) {
	var results []PathResult
	for _, path := range paths {
		status, err := c.fileInfo(ctx, path)
		if err != nil {
			return results, err
		}
		if status == nil {
			return results, fmt.Errorf("rmdir: `%s': No such file or directory", path)
		}
		if !status.IsDir() {
			return results, fmt.Errorf("rmdir: `%s': Not a directory", path)
		}
		entries, err := c.listDir(ctx, path)
		if err != nil {
			return results, err
		}
		if len(entries) > 0 {
			return results, fmt.Errorf("rmdir: `%s': Directory is not empty", path)
		}

		payload, err := c.invoke(ctx, "delete", &hadoop.DeleteRequest{Src: path, Recursive: true})
		if err != nil {
			return results, err
		}
		ok, err := hadoop.UnmarshalDeleteResponse(payload)
		if err != nil {
			return results, err
		}
		results = append(results, PathResult{Path: path, Result: ok})
	}
	return results, nil
}

// Rename moves the given paths to dst. With multiple sources dst must be an
// existing directory, which the NameNode enforces.
func (c *Client) Rename(ctx context.Context, dst string, paths ...string) ([]PathResult, error) {
	var results []PathResult
	for _, path := range paths {
		payload, err := c.invoke(ctx, "rename", &hadoop.RenameRequest{Src: path, Dst: dst})
		if err != nil {
			return results, err
		}
		ok, err := hadoop.UnmarshalRenameResponse(payload)
		if err != nil {
			return results, err
		}
		if !ok {
			return results, fmt.Errorf("mv: `%s': could not rename to `%s'", path, dst)
		}
		results = append(results, PathResult{Path: path, Result: ok})
	}
	return results, nil
}

// --------------------------------------------------------------------------
// Attribute changes
// --------------------------------------------------------------------------

// Chmod sets the permission bits on the given paths, descending into
// directories when recurse is set.
func (c *Client) Chmod(ctx context.Context, mode uint32, recurse bool, paths ...string) ([]PathResult, error) {
	return c.eachNode(ctx, "chmod", recurse, paths, func(path string, status *hadoop.FileStatus) (bool, error) {
		req := &hadoop.SetPermissionRequest{Src: path, Permission: hadoop.FsPermission{Perm: mode}}
		if _, err := c.invoke(ctx, "setPermission", req); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Chown sets owner and/or group on the given paths; an empty owner or group
// leaves that side untouched (chgrp is Chown with an empty owner).
func (c *Client) Chown(ctx context.Context, owner, group string, recurse bool, paths ...string) ([]PathResult, error) {
	return c.eachNode(ctx, "chown", recurse, paths, func(path string, status *hadoop.FileStatus) (bool, error) {
		req := &hadoop.SetOwnerRequest{Src: path, Username: owner, Group: group}
		if _, err := c.invoke(ctx, "setOwner", req); err != nil {
			return false, err
		}
		return true, nil
	})
}

// SetReplication sets the target replication factor on the given paths.
// Directories carry no replication factor; they only count with recurse,
// where the files below them are changed and the directory itself reports
// false, matching hadoop fs -setrep.
func (c *Client) SetReplication(ctx context.Context, replication uint32, recurse bool, paths ...string) ([]PathResult, error) {
	return c.eachNode(ctx, "setrep", recurse, paths, func(path string, status *hadoop.FileStatus) (bool, error) {
		if status.IsDir() {
			return false, nil
		}
		req := &hadoop.SetReplicationRequest{Src: path, Replication: replication}
		payload, err := c.invoke(ctx, "setReplication", req)
		if err != nil {
			return false, err
		}
		return hadoop.UnmarshalSetReplicationResponse(payload)
	})
}

// eachNode applies fn to every given path, and with recurse to every node
// below the directories among them. The op name only feeds error messages.
func (c *Client) eachNode(ctx context.Context, op string, recurse bool, paths []string,
	fn func(path string, status *hadoop.FileStatus) (bool, error)) ([]PathResult, error) {

	var results []PathResult
	var apply func(path string, status *hadoop.FileStatus) error
	apply = func(path string, status *hadoop.FileStatus) error {
		ok, err := fn(path, status)
		if err != nil {
			return err
		}
		results = append(results, PathResult{Path: path, Result: ok})
		if recurse && status.IsDir() {
			entries, err := c.listDir(ctx, path)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				if err := apply(entry.Path, entry); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, path := range paths {
		status, err := c.fileInfo(ctx, path)
		if err != nil {
			return results, err
		}
		if status == nil {
			return results, fmt.Errorf("%s: `%s': No such file or directory", op, path)
		}
		if err := apply(path, status); err != nil {
			return results, err
		}
	}
	return results, nil
}

// --------------------------------------------------------------------------
// Usage reports
// --------------------------------------------------------------------------

// Du reports space consumed below the given paths. Directory arguments are
// expanded to one line per child unless summarize is set, matching du -s.
func (c *Client) Du(ctx context.Context, summarize bool, paths ...string) ([]DiskUsage, error) {
	var out []DiskUsage
	for _, path := range paths {
		status, err := c.fileInfo(ctx, path)
		if err != nil {
			return nil, err
		}
		if status == nil {
			return nil, fmt.Errorf("du: `%s': No such file or directory", path)
		}

		targets := []string{path}
		if status.IsDir() && !summarize {
			entries, err := c.listDir(ctx, path)
			if err != nil {
				return nil, err
			}
			targets = targets[:0]
			for _, entry := range entries {
				targets = append(targets, entry.Path)
			}
		}

		for _, target := range targets {
			summary, err := c.contentSummary(ctx, target)
			if err != nil {
				return nil, err
			}
			out = append(out, DiskUsage{Path: target, Length: summary.Length})
		}
	}
	return out, nil
}

// Count reports the content summary of each given path.
func (c *Client) Count(ctx context.Context, paths ...string) ([]PathSummary, error) {
	var out []PathSummary
	for _, path := range paths {
		summary, err := c.contentSummary(ctx, path)
		if err != nil {
			return nil, err
		}
		out = append(out, PathSummary{Path: path, Summary: summary})
	}
	return out, nil
}

func (c *Client) contentSummary(ctx context.Context, path string) (*hadoop.ContentSummary, error) {
	payload, err := c.invoke(ctx, "getContentSummary", &hadoop.GetContentSummaryRequest{Path: path})
	if err != nil {
		return nil, err
	}
	return hadoop.UnmarshalGetContentSummaryResponse(payload)
}

// --------------------------------------------------------------------------
// File creation
// --------------------------------------------------------------------------

// Touchz creates zero-length files. An existing zero-length file is
// truncated in place, an existing non-empty file or directory is an error,
// and the parent directory must already exist. Replication and block size
// fall back to the server defaults when zero.
func (c *Client) Touchz(ctx context.Context, replication uint32, blockSize uint64, paths ...string) ([]PathResult, error) {
	if replication == 0 || blockSize == 0 {
		defaults, err := c.ServerDefaults(ctx)
		if err != nil {
			return nil, err
		}
		if replication == 0 {
			replication = defaults.Replication
		}
		if blockSize == 0 {
			blockSize = defaults.BlockSize
		}
	}

	var results []PathResult
	for _, path := range paths {
		status, err := c.fileInfo(ctx, path)
		if err != nil {
			return results, err
		}
		flag := hadoop.CreateFlagCreate
		switch {
		case status == nil:
			parent, err := c.fileInfo(ctx, gopath.Dir(path))
			if err != nil {
				return results, err
			}
			if parent == nil {
				return results, fmt.Errorf("touchz: `%s': No such file or directory", gopath.Dir(path))
			}
		case status.IsDir():
			return results, fmt.Errorf("touchz: `%s': Is a directory", path)
		case status.Length != 0:
			return results, fmt.Errorf("touchz: `%s': Not a zero-length file", path)
		default:
			flag |= hadoop.CreateFlagOverwrite
		}

		create := &hadoop.CreateRequest{
			Src:         path,
			Masked:      hadoop.FsPermission{Perm: 0o644},
			ClientName:  clientName,
			CreateFlag:  flag,
			Replication: replication,
			BlockSize:   blockSize,
		}
		if _, err := c.invoke(ctx, "create", create); err != nil {
			return results, err
		}

		payload, err := c.invoke(ctx, "complete", &hadoop.CompleteRequest{Src: path, ClientName: clientName})
		if err != nil {
			return results, err
		}
		ok, err := hadoop.UnmarshalCompleteResponse(payload)
		if err != nil {
			return results, err
		}
		results = append(results, PathResult{Path: path, Result: ok})
	}
	return results, nil
}
