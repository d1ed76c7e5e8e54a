// Package network builds a metabolic network from pathway-prediction
// corpuses: chemicals as nodes, predicted reactions as directed
// substrate-to-product edges.
package network

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"

	"iondetect/pkg/corpus"
)

// Node is one chemical in the network.
type Node struct {
	Chemical string `json:"chemical"`
}

// Edge is one predicted transformation.
type Edge struct {
	Substrate string `json:"substrate"`
	Product   string `json:"product"`
	Projector string `json:"projector"`
}

// Network is the assembled metabolism graph.
type Network struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Builder assembles a Network from prediction-corpus files. When
// SkipInvalidInputs is set, unreadable corpus files are logged and
// ignored; otherwise the first bad file aborts the build.
type Builder struct {
	SkipInvalidInputs bool
}

// Build reads every corpus file and loads its predictions into one
// network. Nodes and edges are deduplicated; output ordering is
// deterministic (sorted) so repeated builds serialize identically.
func (b *Builder) Build(corpusPaths []string) (*Network, error) {
	if len(corpusPaths) == 0 {
		return nil, fmt.Errorf("no corpus files supplied")
	}

	var corpuses []*corpus.PredictionCorpus
	for _, path := range corpusPaths {
		c, err := corpus.ReadPredictionCorpus(path)
		if err != nil {
			if b.SkipInvalidInputs {
				log.Printf("skipping unreadable corpus %s: %v", path, err)
				continue
			}
			return nil, err
		}
		corpuses = append(corpuses, c)
	}
	if len(corpuses) == 0 {
		return nil, fmt.Errorf("no readable corpus files among %d inputs", len(corpusPaths))
	}

	nodeSet := make(map[string]bool)
	edgeSet := make(map[Edge]bool)
	for _, c := range corpuses {
		for _, p := range c.Predictions {
			for _, s := range p.Substrates {
				nodeSet[s] = true
			}
			for _, prod := range p.Products {
				nodeSet[prod] = true
			}
			for _, s := range p.Substrates {
				for _, prod := range p.Products {
					edgeSet[Edge{Substrate: s, Product: prod, Projector: p.Projector}] = true
				}
			}
		}
	}

	net := &Network{}
	for chem := range nodeSet {
		net.Nodes = append(net.Nodes, Node{Chemical: chem})
	}
	sort.Slice(net.Nodes, func(i, j int) bool { return net.Nodes[i].Chemical < net.Nodes[j].Chemical })

	for e := range edgeSet {
		net.Edges = append(net.Edges, e)
	}
	sort.Slice(net.Edges, func(i, j int) bool {
		a, b := net.Edges[i], net.Edges[j]
		if a.Substrate != b.Substrate {
			return a.Substrate < b.Substrate
		}
		if a.Product != b.Product {
			return a.Product < b.Product
		}
		return a.Projector < b.Projector
	})

	return net, nil
}

// WriteJSONFile serializes the network to path.
func (n *Network) WriteJSONFile(path string) error {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write network: %w", err)
	}
	return nil
}
