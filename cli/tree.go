package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/urfave/cli/v2"
	"go.viam.com/utils"

	"go.viam.com/cullcore/collision"
)

// levelStats summarizes the nodes found at one depth of a tree.
type levelStats struct {
	depth     int
	nodes     int
	leafSizes stats.Float64Data
}

// treeLevels groups the nodes of tree by depth, root first.
func treeLevels(tree *collision.Tree) []*levelStats {
	var levels []*levelStats
	tree.Walk(func(node *collision.Tree, depth int) {
		for len(levels) <= depth {
			levels = append(levels, &levelStats{depth: len(levels)})
		}
		level := levels[depth]
		level.nodes++
		if node.IsLeaf() {
			level.leafSizes = append(level.leafSizes, float64(node.End()-node.Start()))
		}
	})
	return levels
}

// leafSummary formats the mean and median leaf size, or "-" for a level with no leaves.
func leafSummary(sizes stats.Float64Data) (string, string) {
	mean, err := stats.Mean(sizes)
	if err != nil {
		return "-", "-"
	}
	median, err := stats.Median(sizes)
	if err != nil {
		return "-", "-"
	}
	return fmt.Sprintf("%.2f", mean), fmt.Sprintf("%.1f", median)
}

// renderTreeTable lays out one row per tree level and a footer with the totals.
func renderTreeTable(tree *collision.Tree) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Depth", "Nodes", "Leaves", "Mean leaf", "Median leaf"})

	var nodes int
	var allLeaves stats.Float64Data
	for _, level := range treeLevels(tree) {
		mean, median := leafSummary(level.leafSizes)
		t.AppendRow(table.Row{level.depth, level.nodes, len(level.leafSizes), mean, median})
		nodes += level.nodes
		allLeaves = append(allLeaves, level.leafSizes...)
	}
	mean, median := leafSummary(allLeaves)
	t.AppendFooter(table.Row{"Total", nodes, len(allLeaves), mean, median})
	return t.Render()
}

// TreeAction builds a collision tree over a PLY mesh and prints its shape.
func TreeAction(c *cli.Context) error {
	client, err := newCullClient(c)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(client.logger.Sync)
	return client.treeAction()
}

func (cc *cullClient) treeAction() error {
	meshes, err := cc.meshArgs(1)
	if err != nil {
		return err
	}
	mesh := meshes[0]
	tree := cc.manager.GetTree(mesh)

	printf(cc.c.App.Writer, "%s: %d triangles, %s bounds, at most %d per leaf",
		mesh.Label(), mesh.TriangleCount(), tree.Type(), tree.MaxTrisPerLeaf())
	if mesh.TriangleCount() == 0 {
		warningf(cc.c.App.Writer, "mesh %q has no triangles", mesh.Label())
	}
	printf(cc.c.App.Writer, "%s", renderTreeTable(tree))
	if bounds := tree.Bounds(); bounds != nil {
		printf(cc.c.App.Writer, "root bounds: %v", bounds)
	}
	return nil
}
