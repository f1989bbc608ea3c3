package plugin

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/hashicorp/go-plugin"
)

// Serve runs impl as a plugin binary. It answers InfoFlag, serves one JSON
// request over stdio for json-stdio plugins, and otherwise hands control to
// go-plugin.
func Serve(impl ClusterPlugin) {
	handled, err := ServeStdio(impl, os.Args[1:], os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if handled {
		return
	}

	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &ClusterPluginRPC{Impl: impl},
		},
	})
}

// ServeStdio handles the stdio parts of the plugin protocol. It reports
// whether the invocation was fully handled.
func ServeStdio(impl ClusterPlugin, args []string, in io.Reader, out io.Writer) (bool, error) {
	info := impl.GetMetadata()
	if info.ProtocolVersion == "" {
		info.ProtocolVersion = ProtocolVersion
	}

	if slices.Contains(args, InfoFlag) {
		return true, json.NewEncoder(out).Encode(info)
	}

	if PluginType(info.PluginProtocol) != PluginTypeJSON {
		return false, nil
	}

	var req ClusterRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return true, fmt.Errorf("failed to decode cluster request: %w", err)
	}
	return true, json.NewEncoder(out).Encode(handle(impl, req))
}
