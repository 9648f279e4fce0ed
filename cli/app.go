// Package cli contains the cullcore command line: building collision trees for PLY meshes and running
// pick and collision queries against them.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

// Flags.
const (
	generalFlagConfig   = "config"
	generalFlagDebug    = "debug"
	generalFlagBound    = "bound"
	generalFlagLeafSize = "leaf-size"

	pickFlagOrigin    = "origin"
	pickFlagDirection = "direction"

	collideFlagOffset = "offset"

	closestFlagPoint = "point"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "cullcore",
		Usage:           "build collision trees over triangle meshes and query them",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:    generalFlagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  generalFlagBound,
				Usage: "bounding volume type for tree nodes: aabb, sphere or obb",
			},
			&cli.IntFlag{
				Name:  generalFlagLeafSize,
				Usage: "maximum number of triangles held by a leaf",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "tree",
				Usage:     "build a collision tree and print statistics per level",
				ArgsUsage: "<mesh.ply>",
				Action:    TreeAction,
			},
			{
				Name:      "pick",
				Usage:     "find the triangles of a mesh hit by a ray",
				ArgsUsage: "<mesh.ply>",
				Flags: []cli.Flag{
					&cli.Float64SliceFlag{
						Name:     pickFlagOrigin,
						Required: true,
						Usage:    "ray origin as x,y,z",
					},
					&cli.Float64SliceFlag{
						Name:     pickFlagDirection,
						Required: true,
						Usage:    "ray direction as x,y,z",
					},
				},
				Action: PickAction,
			},
			{
				Name:      "collide",
				Usage:     "find the touching triangles of two meshes",
				ArgsUsage: "<a.ply> <b.ply>",
				Flags: []cli.Flag{
					&cli.Float64SliceFlag{
						Name:  collideFlagOffset,
						Usage: "translation applied to the second mesh as x,y,z",
					},
				},
				Action: CollideAction,
			},
			{
				Name:      "closest",
				Usage:     "find the triangle of a mesh nearest to a point",
				ArgsUsage: "<mesh.ply>",
				Flags: []cli.Flag{
					&cli.Float64SliceFlag{
						Name:     closestFlagPoint,
						Required: true,
						Usage:    "query point as x,y,z",
					},
				},
				Action: ClosestAction,
			},
		},
		Writer:    out,
		ErrWriter: errOut,
	}
}
