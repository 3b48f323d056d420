// Package config loads and validates the JSON run configuration shared by
// the train and test commands. Out-of-range values are rejected at load time
// rather than surfacing later as collective desynchronization.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

type Config struct {
	// Model selection.
	Arch                 string  `json:"arch"`
	InChannels           int     `json:"in_channels"`
	Classes              int     `json:"classes"`
	SyncBN               bool    `json:"sync_bn"`
	BNMomentum           float64 `json:"bn_momentum"`
	BackboneOutputStride int     `json:"backbone_output_stride"`
	AuxOutputStride      int     `json:"aux_output_stride"`
	Seed                 int64   `json:"seed"`

	// Data.
	Split       string `json:"split"`
	DataRoot    string `json:"data_root"`
	TrainList   string `json:"train_list"`
	ValList     string `json:"val_list"`
	TestList    string `json:"test_list"`
	IgnoreLabel int32  `json:"ignore_label"`

	// Training geometry.
	TrainH     int `json:"train_h"`
	TrainW     int `json:"train_w"`
	ZoomFactor int `json:"zoom_factor"`

	// Augmentation ranges, consumed by the data loader.
	ScaleMin  float64 `json:"scale_min"`
	ScaleMax  float64 `json:"scale_max"`
	RotateMin float64 `json:"rotate_min"`
	RotateMax float64 `json:"rotate_max"`

	// Optimization.
	Epochs      int     `json:"epochs"`
	BatchSize   int     `json:"batch_size"`
	BaseLR      float64 `json:"base_lr"`
	Power       float64 `json:"power"`
	Momentum    float64 `json:"momentum"`
	WeightDecay float64 `json:"weight_decay"`
	AuxWeight   float64 `json:"aux_weight"`

	// Mixed precision. LossScale 0 selects dynamic scaling; a positive
	// value fixes the scale.
	MixedPrecision bool    `json:"mixed_precision"`
	LossScale      float64 `json:"loss_scale"`
	GrowthInterval int     `json:"growth_interval"`

	// Topology. Rank is the device slot this process claims when joining the
	// coordinator; it becomes the process's rank in the group.
	WorldSize          int    `json:"world_size"`
	Rank               int    `json:"rank"`
	DistURL            string `json:"dist_url"`
	InitTimeoutSeconds int    `json:"init_timeout_seconds"`

	// Evaluation.
	EvalEvery    int       `json:"eval_every"`
	BaseSize     int       `json:"base_size"`
	TestH        int       `json:"test_h"`
	TestW        int       `json:"test_w"`
	Scales       []float64 `json:"scales"`
	OverlapRatio float64   `json:"overlap_ratio"`

	// Artifacts.
	SavePath   string `json:"save_path"`
	ResumePath string `json:"resume_path"`
	ResultDir  string `json:"result_dir"`
	ColorsPath string `json:"colors_path"`
	NamesPath  string `json:"names_path"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %v", path)
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %v", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %v", path)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Arch:         "linear",
		InChannels:   3,
		Classes:      2,
		BNMomentum:   0.1,
		Split:        "train",
		IgnoreLabel:  255,
		TrainH:       473,
		TrainW:       473,
		ZoomFactor:   8,
		ScaleMin:     0.5,
		ScaleMax:     2.0,
		Epochs:       1,
		BatchSize:    1,
		BaseLR:       0.01,
		Power:        0.9,
		Momentum:     0.9,
		WeightDecay:  0.0001,
		AuxWeight:    0.4,
		WorldSize:    1,
		BaseSize:     512,
		TestH:        473,
		TestW:        473,
		Scales:       []float64{1.0},
		OverlapRatio: 1.0 / 3.0,
	}
}

func (c *Config) Validate() error {
	switch c.Split {
	case "train", "val", "test":
	default:
		return errors.Errorf("split must be one of train, val, test; got %q", c.Split)
	}
	if c.Classes <= 1 {
		return errors.Errorf("classes must be at least 2, got %v", c.Classes)
	}
	if c.InChannels <= 0 {
		return errors.Errorf("in_channels must be positive, got %v", c.InChannels)
	}
	switch c.ZoomFactor {
	case 1, 2, 4, 8:
	default:
		return errors.Errorf("zoom_factor must be one of 1, 2, 4, 8; got %v", c.ZoomFactor)
	}
	if c.TrainH <= 0 || c.TrainW <= 0 {
		return errors.Errorf("train crop %vx%v must be positive", c.TrainH, c.TrainW)
	}
	if c.Epochs <= 0 {
		return errors.Errorf("epochs must be positive, got %v", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return errors.Errorf("batch_size must be positive, got %v", c.BatchSize)
	}
	if c.BaseLR <= 0 {
		return errors.Errorf("base_lr must be positive, got %v", c.BaseLR)
	}
	if c.Power <= 0 {
		return errors.Errorf("power must be positive, got %v", c.Power)
	}
	if c.ScaleMin > c.ScaleMax {
		return errors.Errorf("scale_min %v exceeds scale_max %v", c.ScaleMin, c.ScaleMax)
	}
	if c.RotateMin > c.RotateMax {
		return errors.Errorf("rotate_min %v exceeds rotate_max %v", c.RotateMin, c.RotateMax)
	}
	if c.WorldSize <= 0 {
		return errors.Errorf("world_size must be positive, got %v", c.WorldSize)
	}
	if c.Rank < 0 || c.Rank >= c.WorldSize {
		return errors.Errorf("rank %v outside [0, %v)", c.Rank, c.WorldSize)
	}
	if c.WorldSize > 1 && c.DistURL == "" {
		return errors.New("dist_url is required when world_size > 1")
	}
	if c.LossScale < 0 {
		return errors.Errorf("loss_scale must be non-negative, got %v", c.LossScale)
	}
	if len(c.Scales) == 0 {
		return errors.New("scales must not be empty")
	}
	for _, s := range c.Scales {
		if s <= 0 {
			return errors.Errorf("scales must be positive, got %v", s)
		}
	}
	if c.OverlapRatio < 0 || c.OverlapRatio >= 1 {
		return errors.Errorf("overlap_ratio must lie in [0, 1), got %v", c.OverlapRatio)
	}
	if c.BaseSize <= 0 || c.TestH <= 0 || c.TestW <= 0 {
		return errors.Errorf("evaluation sizes must be positive: base %v, crop %vx%v", c.BaseSize, c.TestH, c.TestW)
	}
	return nil
}

// TotalIterations is the scheduler horizon: iterations per epoch on this
// rank's shard times the epoch budget.
func (c *Config) TotalIterations(samplesPerRank int) int {
	perEpoch := (samplesPerRank + c.BatchSize - 1) / c.BatchSize
	return perEpoch * c.Epochs
}
