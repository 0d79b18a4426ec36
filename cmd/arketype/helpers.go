package main

import (
	"fmt"

	"arketype/internal/graph"
	"arketype/internal/spectral"
)

// defaultGraphDir is where the partitioned graph tree lives relative to the
// working directory.
const defaultGraphDir = "data/graph"

// loadGraph reads the whole graph tree. Per-record problems surface as
// warnings inside the store; only an unreadable tree is an error here.
func loadGraph(dir string) (*graph.Graph, *graph.Store, error) {
	store := graph.NewStore(dir)
	g, _, err := store.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load graph from %s: %w", dir, err)
	}
	return g, store, nil
}

// loadRegistry returns the embedded axis catalog, or the catalog at path
// when one is given.
func loadRegistry(path string) (*spectral.Registry, error) {
	if path == "" {
		return spectral.DefaultRegistry(), nil
	}
	return spectral.LoadRegistry(path)
}
