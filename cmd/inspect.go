package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disiqueira/gotree/v3"
	"github.com/spf13/cobra"

	"github.com/shadekit/matforge/internal/shadegraph"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [material.db]",
	Short: "Print the node graph of a material database as a tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := shadegraph.OpenSQLiteGraph(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = g.Close() }()

		types, err := g.NodeTypes()
		if err != nil {
			return err
		}
		conns, err := g.Connections()
		if err != nil {
			return err
		}

		root := gotree.New(filepath.Base(args[0]))

		nodes := gotree.New("nodes")
		for _, id := range sortedNodeIDs(types) {
			label := fmt.Sprintf("%s (%s)", shortType(types[id]), id[:8])
			item := nodes.Add(label)
			for _, portID := range []string{
				shadegraph.PortPath, shadegraph.PortColorspace, shadegraph.PortInputType,
			} {
				if v, ok := g.Default(id, portID); ok {
					item.Add(fmt.Sprintf("%s = %v", portID, v))
				}
			}
		}
		root.AddTree(nodes)

		edges := gotree.New("connections")
		for _, c := range conns {
			edges.Add(fmt.Sprintf("%s.%s -> %s.%s",
				shortType(types[c.SrcNode]), c.SrcPort,
				shortType(types[c.DstNode]), c.DstPort))
		}
		root.AddTree(edges)

		fmt.Print(root.Print())
		return nil
	},
}

// shortType reduces a dotted asset ID to its last segment.
func shortType(typeID string) string {
	if typeID == "" {
		return "unknown"
	}
	parts := strings.Split(typeID, ".")
	return parts[len(parts)-1]
}

func sortedNodeIDs(types map[string]string) []string {
	out := make([]string, 0, len(types))
	for id := range types {
		out = append(out, id)
	}
	// Sort by type, then ID, so samplers of one chain stay adjacent.
	sort.Slice(out, func(i, j int) bool {
		if types[out[i]] != types[out[j]] {
			return types[out[i]] < types[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
