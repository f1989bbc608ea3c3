package plugin

// ClusterPlugin is the interface clustering plugins implement.
type ClusterPlugin interface {
	// Cluster reduces samples to exactly count colours, dominant first.
	// It returns ok=false when that is impossible, for example when the
	// samples hold fewer distinct colours than count.
	Cluster(samples []RGBColour, count int) (colours []RGBColour, ok bool, err error)

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo
}
