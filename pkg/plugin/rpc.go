package plugin

import (
	"errors"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// ClusterPluginRPC implements the go-plugin Plugin interface for cluster plugins.
type ClusterPluginRPC struct {
	plugin.Plugin
	Impl ClusterPlugin
}

// Server returns an RPC server for this plugin.
func (p *ClusterPluginRPC) Server(*plugin.MuxBroker) (any, error) {
	return &ClusterPluginRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *ClusterPluginRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &ClusterPluginRPCClient{client: c}, nil
}

// ClusterPluginRPCServer is the RPC server implementation for cluster plugins.
type ClusterPluginRPCServer struct {
	Impl ClusterPlugin
}

// Cluster implements the RPC method for clustering.
func (s *ClusterPluginRPCServer) Cluster(req ClusterRequest, resp *ClusterResponse) error {
	*resp = handle(s.Impl, req)
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *ClusterPluginRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// ClusterPluginRPCClient is the RPC client implementation for cluster plugins.
type ClusterPluginRPCClient struct {
	client *rpc.Client
}

// Cluster calls the remote Cluster method.
func (c *ClusterPluginRPCClient) Cluster(samples []RGBColour, count int) ([]RGBColour, bool, error) {
	var resp ClusterResponse
	if err := c.client.Call("Plugin.Cluster", ClusterRequest{Samples: samples, Count: count}, &resp); err != nil {
		return nil, false, err
	}
	return resp.Result()
}

// Metadata calls the remote GetMetadata method.
func (c *ClusterPluginRPCClient) Metadata() (PluginInfo, error) {
	var info PluginInfo
	err := c.client.Call("Plugin.GetMetadata", new(any), &info)
	return info, err
}

// GetMetadata implements ClusterPlugin, returning empty metadata on failure.
func (c *ClusterPluginRPCClient) GetMetadata() PluginInfo {
	info, _ := c.Metadata()
	return info
}

// Result unpacks a response into the ClusterPlugin return values.
func (r ClusterResponse) Result() ([]RGBColour, bool, error) {
	if r.Error != "" {
		return nil, false, errors.New(r.Error)
	}
	if !r.OK {
		return nil, false, nil
	}
	return r.Colours, true, nil
}

// handle runs impl and packs the outcome into a response, so plugin errors
// travel as data rather than transport failures.
func handle(impl ClusterPlugin, req ClusterRequest) ClusterResponse {
	colours, ok, err := impl.Cluster(req.Samples, req.Count)
	if err != nil {
		return ClusterResponse{Error: err.Error()}
	}
	if !ok {
		return ClusterResponse{}
	}
	return ClusterResponse{Colours: colours, OK: true}
}
