package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/cullcore/logging"
)

// Read reads a config from the given file, expanding environment variables such as ${LEAF_SIZE}
// first.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config file %q", filePath)
	}

	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies where, if applicable, the file the
// reader originated from. Keys that are absent keep their defaults; unknown keys are logged and
// ignored. The result is validated.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	var attributes map[string]interface{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config from json")
	}

	conf := Default()
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &conf, Metadata: &md})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrapf(err, "failed to process Config %q", originalPath)
	}
	if len(md.Unused) > 0 {
		logger.Warnw("ignoring unknown config keys", "path", originalPath, "keys", md.Unused)
	}

	if err := conf.Validate(originalPath); err != nil {
		return nil, err
	}
	return &conf, nil
}
