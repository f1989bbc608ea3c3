// Command swatch-plugin-kmeans serves the built-in k-means clusterer as an
// external plugin. It doubles as a reference for plugin authors:
//
//	swatch palette -a plugin:/usr/lib/swatch/swatch-plugin-kmeans photo.jpg
package main

import (
	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/version"
	"github.com/jmylchreest/swatch/pkg/plugin"
)

// kmeansPlugin adapts colour.KMeans to plugin.ClusterPlugin.
type kmeansPlugin struct {
	kmeans *colour.KMeans
}

func (p *kmeansPlugin) Cluster(samples []plugin.RGBColour, count int) ([]plugin.RGBColour, bool, error) {
	in := make([]colour.RGB, len(samples))
	for i, s := range samples {
		in[i] = colour.RGB{R: s.R, G: s.G, B: s.B}
	}

	palette, err := p.kmeans.Cluster(in, count)
	if err != nil || palette == nil {
		return nil, false, err
	}

	out := make([]plugin.RGBColour, palette.Len())
	for i, c := range palette.Colors {
		out[i] = plugin.RGBColour{R: c.R, G: c.G, B: c.B}
	}
	return out, true, nil
}

func (p *kmeansPlugin) GetMetadata() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:           "kmeans",
		Version:        version.Version,
		Description:    "k-means++ clustering with content-derived seeding",
		PluginProtocol: string(plugin.PluginTypeGoPlugin),
	}
}

func main() {
	plugin.Serve(&kmeansPlugin{kmeans: colour.NewKMeans()})
}
