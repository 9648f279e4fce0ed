package spatialmath

import (
	"github.com/pkg/errors"
)

func newIndexOutOfRangeError(what string, index int) error {
	return errors.Errorf("%s index %d out of range [0,2]", what, index)
}

func newBadMeshError(reason string) error {
	return errors.Errorf("invalid mesh: %s", reason)
}

func newMeshIndexError(index, vertexCount int) error {
	return errors.Errorf("mesh index %d references missing vertex (have %d vertices)", index, vertexCount)
}
