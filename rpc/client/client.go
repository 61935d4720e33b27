package client

import (
	"context"
	"fmt"

	"github.com/spotify/snakebite/rpc/common"
	"github.com/spotify/snakebite/rpc/hadoop"
	"github.com/spotify/snakebite/rpc/resolver"
	"github.com/spotify/snakebite/rpc/transport"
)

var logger = common.Logger("client")

// clientName identifies this client in create/complete requests.
const clientName = "snakebite"

// marshaler is implemented by every request message in rpc/hadoop.
type marshaler interface {
	Marshal() []byte
}

// Client exposes the NameNode filesystem operations as typed methods. Each
// method is a thin mapping from typed arguments to a ClientProtocol method
// name and request payload; all transport concerns live in the resolver
// below it.
//
// Methods taking multiple paths process them independently in the order
// given and stop at the first failure.
type Client struct {
	resolver *resolver.Resolver
	config   common.ClientConfig
}

// New creates a client for the configured NameNodes. The connector is
// injectable for tests; production passes transport.NewTCPConnector().
func New(config common.ClientConfig, connector transport.Connector) (*Client, error) {
	if len(config.Endpoints) == 0 {
		return nil, fmt.Errorf("no namenode endpoints configured")
	}
	return &Client{
		resolver: resolver.New(config, connector),
		config:   config,
	}, nil
}

// Close releases the active connection.
func (c *Client) Close() error {
	return c.resolver.Close()
}

// invoke sends one ClientProtocol call through the resolver and returns
// the raw success payload.
func (c *Client) invoke(ctx context.Context, method string, req marshaler) ([]byte, error) {
	payload, err := c.resolver.Invoke(ctx, method, req.Marshal())
	if err != nil {
		logger.Debugf("%s failed: %v", method, err)
		return nil, err
	}
	return payload, nil
}

// --------------------------------------------------------------------------
// Single-path operations
// --------------------------------------------------------------------------

// Stat returns the file status of one path.
func (c *Client) Stat(ctx context.Context, path string) (*hadoop.FileStatus, error) {
	status, err := c.fileInfo(ctx, path)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, fmt.Errorf("stat: `%s': No such file or directory", path)
	}
	status.Path = path
	return status, nil
}

// FsInfo is the df report, including the filesystem the client talks to.
type FsInfo struct {
	Filesystem string
	Stats      hadoop.FsStats
}

// Df returns filesystem-wide capacity information.
func (c *Client) Df(ctx context.Context) (*FsInfo, error) {
	payload, err := c.invoke(ctx, "getFsStats", &hadoop.GetFsStatusRequest{})
	if err != nil {
		return nil, err
	}
	stats, err := hadoop.UnmarshalGetFsStatsResponse(payload)
	if err != nil {
		return nil, err
	}
	return &FsInfo{
		Filesystem: "hdfs://" + c.config.Endpoints[0].Addr(),
		Stats:      *stats,
	}, nil
}

// ServerDefaults returns the server-side defaults for new files.
func (c *Client) ServerDefaults(ctx context.Context) (*hadoop.FsServerDefaults, error) {
	payload, err := c.invoke(ctx, "getServerDefaults", &hadoop.GetServerDefaultsRequest{})
	if err != nil {
		return nil, err
	}
	return hadoop.UnmarshalGetServerDefaultsResponse(payload)
}

// Test checks predicates against one path. Absent paths yield false when
// only existence is asked for, an error otherwise. The directory and
// zero-length predicates are AND'ed.
func (c *Client) Test(ctx context.Context, path string, exists, directory, zeroLength bool) (bool, error) {
	status, err := c.fileInfo(ctx, path)
	if err != nil {
		return false, err
	}
	if status == nil {
		if exists {
			return false, nil
		}
		return false, fmt.Errorf("test: `%s': No such file or directory", path)
	}
	if directory && !status.IsDir() {
		return false, nil
	}
	if zeroLength && status.Length != 0 {
		return false, nil
	}
	return true, nil
}

// fileInfo returns the status of a path, or nil when it does not exist.
func (c *Client) fileInfo(ctx context.Context, path string) (*hadoop.FileStatus, error) {
	payload, err := c.invoke(ctx, "getFileInfo", &hadoop.GetFileInfoRequest{Src: path})
	if err != nil {
		return nil, err
	}
	return hadoop.UnmarshalGetFileInfoResponse(payload)
}
