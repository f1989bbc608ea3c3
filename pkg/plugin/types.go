package plugin

// PluginInfo contains metadata about a plugin.
type PluginInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	PluginProtocol  string `json:"plugin_protocol"` // "json-stdio" or "go-plugin"
}

// RGBColour represents an RGB color.
type RGBColour struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ClusterRequest asks a plugin to reduce Samples to Count colours.
type ClusterRequest struct {
	Samples []RGBColour `json:"samples"`
	Count   int         `json:"count"`
}

// ClusterResponse carries a plugin's answer. OK is false when the samples
// cannot be partitioned into the requested number of colours.
type ClusterResponse struct {
	Colours []RGBColour `json:"colours,omitempty"`
	OK      bool        `json:"ok"`
	Error   string      `json:"error,omitempty"`
}
