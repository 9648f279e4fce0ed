package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/utils"

	"go.viam.com/cullcore/collision"
	"go.viam.com/cullcore/spatialmath"
)

// PickAction casts a ray at a PLY mesh and prints the triangles it hits.
func PickAction(c *cli.Context) error {
	client, err := newCullClient(c)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(client.logger.Sync)
	return client.pickAction()
}

func (cc *cullClient) pickAction() error {
	meshes, err := cc.meshArgs(1)
	if err != nil {
		return err
	}
	origin, err := cc.vectorFlag(pickFlagOrigin)
	if err != nil {
		return err
	}
	direction, err := cc.vectorFlag(pickFlagDirection)
	if err != nil {
		return err
	}
	ray := spatialmath.NewRay(origin, direction)
	if direction.Norm2() == 0 || !ray.IsValid() {
		return errors.Errorf("invalid ray direction %v", direction)
	}

	mesh := meshes[0]
	hits := collision.FindTrianglePick(cc.manager, mesh, ray)
	cc.logger.Infow("pick query", "mesh", mesh.Label(), "ray", ray.String(), "hits", len(hits))

	w := cc.c.App.Writer
	record := cc.manager.GetTree(mesh).WorldBounds().IntersectsRayWhere(ray)
	if record.Len() == 0 {
		printf(w, "ray misses the bounds of %s", mesh.Label())
	} else {
		for i, pt := range record.Points {
			printf(w, "bounds hit %d at %v, distance %.4f", i, pt, record.Distances[i])
		}
	}
	if len(hits) == 0 {
		printf(w, "no triangles hit")
		return nil
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Triangle", "Distance", "Point"})
	for _, idx := range hits {
		tri := mesh.WorldTriangle(idx)
		dist, ok := ray.IntersectsTriangle(tri[0], tri[1], tri[2])
		if !ok {
			t.AppendRow(table.Row{idx, "-", "-"})
			continue
		}
		t.AppendRow(table.Row{idx, dist, ray.PointAt(dist)})
	}
	printf(w, "%d triangle(s) hit", len(hits))
	printf(w, "%s", t.Render())
	return nil
}

// CollideAction finds every pair of touching triangles between two PLY meshes, with the second one
// moved by --offset.
func CollideAction(c *cli.Context) error {
	client, err := newCullClient(c)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(client.logger.Sync)
	return client.collideAction()
}

func (cc *cullClient) collideAction() error {
	meshes, err := cc.meshArgs(2)
	if err != nil {
		return err
	}
	offset, err := cc.vectorFlag(collideFlagOffset)
	if err != nil {
		return err
	}
	a, b := meshes[0], meshes[1]
	b.SetWorldTransform(spatialmath.NewTranslationTransform(offset))

	data := collision.FindTriangleCollision(cc.manager, a, b)
	w := cc.c.App.Writer
	if data == nil {
		cc.logger.Infow("collision query", "source", a.Label(), "target", b.Label(), "pairs", 0)
		printf(w, "%s and %s do not touch", a.Label(), b.Label())
		return nil
	}
	cc.logger.Infow("collision query", "source", a.Label(), "target", b.Label(), "pairs", len(data.SourceTris))

	t := table.NewWriter()
	t.AppendHeader(table.Row{a.Label(), b.Label()})
	for i := range data.SourceTris {
		t.AppendRow(table.Row{data.SourceTris[i], data.TargetTris[i]})
	}
	printf(w, "%d touching triangle pair(s)", len(data.SourceTris))
	printf(w, "%s", t.Render())
	return nil
}

// ClosestAction prints the triangle of a PLY mesh nearest to --point.
func ClosestAction(c *cli.Context) error {
	client, err := newCullClient(c)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(client.logger.Sync)
	return client.closestAction()
}

func (cc *cullClient) closestAction() error {
	meshes, err := cc.meshArgs(1)
	if err != nil {
		return err
	}
	point, err := cc.vectorFlag(closestFlagPoint)
	if err != nil {
		return err
	}

	mesh := meshes[0]
	idx, closest, ok := collision.FindClosestTriangle(cc.manager, mesh, point)
	cc.logger.Infow("closest query", "mesh", mesh.Label(), "point", point, "found", ok)
	if !ok {
		warningf(cc.c.App.Writer, "mesh %q has no triangles", mesh.Label())
		return nil
	}
	printf(cc.c.App.Writer, "closest triangle %d at %v, distance %.4f", idx, closest, closest.Distance(point))
	return nil
}
