package config

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/jsphweid/midiscore/constants"
	"github.com/jsphweid/midiscore/file"
	"github.com/jsphweid/midiscore/track"
	"github.com/pkg/errors"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	// Program is the General MIDI program (0-based) every track plays.
	Program int `yaml:"program"`

	// Velocity of every note-on, 1..127.
	Velocity int `yaml:"velocity"`

	// OutputDir receives renders when no destination is given.
	OutputDir string `yaml:"output_dir"`

	// Listen is the address of the HTTP server.
	Listen string `yaml:"listen"`

	// RepairJSON runs lenient repair over piece files before parsing.
	RepairJSON bool `yaml:"repair_json"`

	S3 S3 `yaml:"s3"`
}

type S3 struct {
	Region string `yaml:"region"`

	// Endpoint overrides the AWS endpoint, e.g. a local MinIO.
	Endpoint string `yaml:"endpoint,omitempty"`
}

func Default() *Config {
	return &Config{
		Program:   constants.DefaultProgram,
		Velocity:  constants.DefaultVelocity,
		OutputDir: constants.GetOutputDir(),
		Listen:    constants.GetListenAddr(),
		S3: S3{
			Region: constants.GetAWSRegion(),
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path gives the
// defaults. Environment variables win over the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(ErrInvalid, "failed to parse %s: %v", path, err)
	}

	if v := os.Getenv(constants.OutputPathEnv); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv(constants.ListenAddrEnv); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv(constants.AWSRegionEnv); v != "" {
		cfg.S3.Region = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Program < 0 || c.Program > 127 {
		return errors.Wrapf(ErrInvalid, "program %d is not within 0..127", c.Program)
	}
	if c.Velocity < 1 || c.Velocity > 127 {
		return errors.Wrapf(ErrInvalid, "velocity %d is not within 1..127", c.Velocity)
	}
	if c.OutputDir == "" {
		return errors.Wrap(ErrInvalid, "output_dir is empty")
	}
	return nil
}

func (c *Config) Instrument() track.Instrument {
	return track.Instrument{Program: uint8(c.Program), Velocity: uint8(c.Velocity)}
}

func (c *Config) S3Config() file.S3Config {
	return file.S3Config{Region: c.S3.Region, Endpoint: c.S3.Endpoint}
}
