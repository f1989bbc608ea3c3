// Package executor runs external clustering plugins, over go-plugin RPC or
// JSON on stdio, behind the colour.Clusterer interface.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/security"
	"github.com/jmylchreest/swatch/pkg/plugin"
)

const (
	// DetectTimeout bounds the plugin info query.
	DetectTimeout = 5 * time.Second

	// DefaultTimeout bounds a single json-stdio cluster call.
	DefaultTimeout = 30 * time.Second
)

// Options configures an Executor.
type Options struct {
	// Logger receives plugin diagnostics. Defaults to a null logger.
	Logger hclog.Logger

	// Runner runs json-stdio plugins and the info query.
	Runner ProcessRunner

	// PluginDir, when set, is the only directory plugins may be loaded from.
	PluginDir string

	// Timeout bounds each json-stdio call. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Executor adapts a plugin binary to colour.Clusterer.
type Executor struct {
	path         string
	info         plugin.PluginInfo
	protocolType plugin.PluginType
	runner       ProcessRunner
	logger       hclog.Logger
	timeout      time.Duration

	mu        sync.Mutex
	client    *goplugin.Client
	rpcClient *plugin.ClusterPluginRPCClient
}

// New creates an Executor for the plugin at path, detecting its protocol by
// querying the plugin info.
func New(ctx context.Context, path string, opts Options) (*Executor, error) {
	if opts.PluginDir != "" {
		if err := security.ValidatePluginPath(path, opts.PluginDir); err != nil {
			return nil, err
		}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Runner == nil {
		opts.Runner = NewRealProcessRunner()
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	e := &Executor{
		path:    path,
		runner:  opts.Runner,
		logger:  opts.Logger.Named("plugin"),
		timeout: opts.Timeout,
	}
	if err := e.detect(ctx); err != nil {
		return nil, err
	}

	e.logger.Debug("loaded cluster plugin", "path", path, "name", e.info.Name, "protocol", e.protocolType)
	return e, nil
}

// detect queries the plugin info and picks the protocol.
func (e *Executor) detect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DetectTimeout)
	defer cancel()

	stdout, stderr, err := e.runner.Run(ctx, e.path, []string{plugin.InfoFlag}, nil)
	if err != nil {
		return fmt.Errorf("failed to query plugin %s: %w%s", e.path, err, stderrSuffix(stderr))
	}

	if err := json.Unmarshal(stdout, &e.info); err != nil {
		return fmt.Errorf("failed to parse plugin info: %w", err)
	}

	// Plugins that omit the protocol version predate the check.
	if e.info.ProtocolVersion != "" {
		if err := plugin.CheckCompatible(e.info.ProtocolVersion); err != nil {
			return err
		}
	}

	switch plugin.PluginType(e.info.PluginProtocol) {
	case plugin.PluginTypeGoPlugin:
		e.protocolType = plugin.PluginTypeGoPlugin
	case plugin.PluginTypeJSON, "":
		// Empty defaults to json-stdio.
		e.protocolType = plugin.PluginTypeJSON
	default:
		return fmt.Errorf("unknown plugin_protocol: %s", e.info.PluginProtocol)
	}
	return nil
}

// Info returns the plugin metadata reported during detection.
func (e *Executor) Info() plugin.PluginInfo {
	return e.info
}

// Protocol returns the detected plugin protocol.
func (e *Executor) Protocol() plugin.PluginType {
	return e.protocolType
}

// Cluster implements colour.Clusterer.
func (e *Executor) Cluster(samples []colour.RGB, count int) (*colour.Palette, error) {
	in := make([]plugin.RGBColour, len(samples))
	for i, s := range samples {
		in[i] = plugin.RGBColour{R: s.R, G: s.G, B: s.B}
	}

	var (
		out []plugin.RGBColour
		ok  bool
		err error
	)
	switch e.protocolType {
	case plugin.PluginTypeGoPlugin:
		out, ok, err = e.clusterGoPlugin(in, count)
	default:
		out, ok, err = e.clusterJSON(in, count)
	}
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", e.info.Name, err)
	}
	if !ok {
		return nil, nil
	}

	colours := make([]colour.RGB, len(out))
	for i, c := range out {
		colours[i] = colour.RGB{R: c.R, G: c.G, B: c.B}
	}
	return colour.NewPalette(colours), nil
}

// Close cleans up any resources held by the executor.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		e.client.Kill()
		e.client = nil
		e.rpcClient = nil
	}
	return nil
}

// --- Go-Plugin RPC implementation ---

func (e *Executor) clusterGoPlugin(samples []plugin.RGBColour, count int) ([]plugin.RGBColour, bool, error) {
	client, err := e.getRPCClient()
	if err != nil {
		return nil, false, err
	}
	return client.Cluster(samples, count)
}

// getRPCClient starts the plugin process on first use and keeps it running
// until Close.
func (e *Executor) getRPCClient() (*plugin.ClusterPluginRPCClient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rpcClient != nil && e.client != nil && !e.client.Exited() {
		return e.rpcClient, nil
	}
	if e.client != nil {
		e.client.Kill()
	}

	e.client = goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: plugin.Handshake,
		Plugins: map[string]goplugin.Plugin{
			plugin.PluginName: &plugin.ClusterPluginRPC{},
		},
		Cmd:              exec.Command(e.path), // #nosec G204 - plugin path is chosen by the operator
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
		Logger:           e.logger,
	})

	rpcClient, err := e.client.Client()
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(plugin.PluginName)
	if err != nil {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("failed to dispense plugin: %w", err)
	}

	client, ok := raw.(*plugin.ClusterPluginRPCClient)
	if !ok {
		e.client.Kill()
		e.client = nil
		return nil, fmt.Errorf("plugin returned unexpected client type %T", raw)
	}
	e.rpcClient = client
	return client, nil
}

// --- JSON-stdio implementation ---

func (e *Executor) clusterJSON(samples []plugin.RGBColour, count int) ([]plugin.RGBColour, bool, error) {
	req, err := json.Marshal(plugin.ClusterRequest{Samples: samples, Count: count})
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	stdout, stderr, err := e.runner.Run(ctx, e.path, nil, bytes.NewReader(req))
	if err != nil {
		return nil, false, fmt.Errorf("plugin execution failed: %w%s", err, stderrSuffix(stderr))
	}
	if len(stderr) > 0 {
		e.logger.Debug("plugin stderr", "output", strings.TrimSpace(string(stderr)))
	}

	var resp plugin.ClusterResponse
	if err := json.Unmarshal(stdout, &resp); err != nil {
		return nil, false, fmt.Errorf("failed to parse plugin response: %w", err)
	}
	return resp.Result()
}

func stderrSuffix(stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return ""
	}
	return ": " + msg
}

// nopCloser pairs built-in clusterers with a no-op Close.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ClustererFor resolves alg to a Clusterer. Plugin algorithms start an
// Executor; the returned closer must be closed when extraction is done.
func ClustererFor(ctx context.Context, alg colour.Algorithm, opts Options) (colour.Clusterer, io.Closer, error) {
	if path, ok := alg.IsPlugin(); ok {
		e, err := New(ctx, path, opts)
		if err != nil {
			return nil, nil, err
		}
		return e, e, nil
	}

	c, err := colour.NewClusterer(alg)
	if err != nil {
		return nil, nil, err
	}
	return c, nopCloser{}, nil
}
