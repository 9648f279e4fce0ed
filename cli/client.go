package cli

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/cullcore/collision"
	"go.viam.com/cullcore/config"
	"go.viam.com/cullcore/logging"
	"go.viam.com/cullcore/spatialmath"
)

// cullClient holds the settings, logger and tree cache shared by a single command invocation.
type cullClient struct {
	c       *cli.Context
	conf    *config.Config
	logger  logging.Logger
	manager *collision.Manager
}

// newCullClient reads the config named by --config, or the defaults, and applies the global flag
// overrides on top.
func newCullClient(c *cli.Context) (*cullClient, error) {
	logger := logging.NewBlankLogger("cullcore")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	logger.SetLevel(logging.INFO)

	conf := config.Default()
	source := "defaults"
	if path := c.Path(generalFlagConfig); path != "" {
		read, err := config.Read(path, logger)
		if err != nil {
			return nil, err
		}
		conf = *read
		source = path
	}
	if c.IsSet(generalFlagBound) {
		conf.BoundType = c.String(generalFlagBound)
	}
	if c.IsSet(generalFlagLeafSize) {
		conf.MaxTrisPerLeaf = c.Int(generalFlagLeafSize)
	}
	if err := conf.Validate(source); err != nil {
		return nil, err
	}

	if c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.DEBUG)
	} else {
		logger.SetLevel(conf.Level())
	}
	logger.Debugw("using config", "source", source, "config", conf.String())

	opts, err := conf.ManagerOptions()
	if err != nil {
		return nil, err
	}
	return &cullClient{
		c:       c,
		conf:    &conf,
		logger:  logger,
		manager: collision.NewManager(opts, logger.Sublogger("collision")),
	}, nil
}

// meshArgs loads the n PLY files given as positional arguments.
func (cc *cullClient) meshArgs(n int) ([]*spatialmath.Mesh, error) {
	args := cc.c.Args().Slice()
	if len(args) != n {
		return nil, errors.Errorf("expected %d mesh file argument(s), got %d", n, len(args))
	}
	meshes := make([]*spatialmath.Mesh, 0, n)
	for _, path := range args {
		mesh, err := spatialmath.NewMeshFromPLYFile(path)
		if err != nil {
			return nil, err
		}
		cc.logger.Debugw("loaded mesh", "path", path, "triangles", mesh.TriangleCount())
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// vectorFlag returns the x,y,z value of a float slice flag. An unset optional flag is the zero vector.
func (cc *cullClient) vectorFlag(name string) (r3.Vector, error) {
	vals := cc.c.Float64Slice(name)
	if len(vals) == 0 && !cc.c.IsSet(name) {
		return r3.Vector{}, nil
	}
	if len(vals) != 3 {
		return r3.Vector{}, errors.Errorf("--%s needs three comma separated values, got %d", name, len(vals))
	}
	return r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}
