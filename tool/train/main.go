package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/JohnSon-zh-12345/pyconvsegnet/amp"
	"github.com/JohnSon-zh-12345/pyconvsegnet/comm"
	"github.com/JohnSon-zh-12345/pyconvsegnet/config"
	"github.com/JohnSon-zh-12345/pyconvsegnet/dataset"
	"github.com/JohnSon-zh-12345/pyconvsegnet/eval"
	"github.com/JohnSon-zh-12345/pyconvsegnet/model"
	"github.com/JohnSon-zh-12345/pyconvsegnet/train"
)

func buildCommunicator(ctx context.Context, cfg *config.Config) (comm.Communicator, error) {
	if cfg.WorldSize == 1 {
		return comm.NewSingle(), nil
	}
	timeout := time.Duration(cfg.InitTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return comm.Join(ctx, cfg.DistURL, cfg.WorldSize, cfg.Rank, timeout)
}

func buildScaler(c comm.Communicator, cfg *config.Config) (*amp.LossScaler, error) {
	opts := amp.ScalerOptions{GrowthInterval: cfg.GrowthInterval}
	if !cfg.MixedPrecision {
		opts.Static = true
		opts.InitScale = 1
	} else if cfg.LossScale > 0 {
		opts.Static = true
		opts.InitScale = cfg.LossScale
	}
	return amp.NewLossScaler(c, opts)
}

func main() {
	configPath := flag.String("config", "config/train.json", "path to the run configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	c, err := buildCommunicator(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to join collective group: %v", err)
	}
	defer c.Close()
	log.Printf("joined collective group as rank %d of %d", c.Rank(), c.WorldSize())

	// The backbone emits predictions at 1/8 input resolution; the zoom
	// factor recovers part of it, so the effective stride is 8/zoom.
	outStride := 8 / cfg.ZoomFactor
	auxStride := cfg.AuxOutputStride
	if auxStride == 0 && cfg.AuxWeight > 0 {
		auxStride = 2 * max(outStride, 1)
	}
	extractor, err := model.New(model.Options{
		Arch:         cfg.Arch,
		InChannels:   cfg.InChannels,
		Classes:      cfg.Classes,
		SyncBN:       cfg.SyncBN,
		BNMomentum:   cfg.BNMomentum,
		OutputStride: outStride,
		AuxStride:    auxStride,
		Seed:         cfg.Seed,
	}, c)
	if err != nil {
		log.Fatalf("failed to build model: %v", err)
	}

	ds, err := dataset.NewListDataset(cfg.DataRoot, cfg.TrainList)
	if err != nil {
		log.Fatalf("failed to open training data: %v", err)
	}
	// Every rank runs the largest shard's step count per epoch, so the
	// schedule length comes from that shard, not the local one.
	maxShard := ds.Len()/c.WorldSize() + ds.Len()%c.WorldSize()
	sched := train.NewPolyScheduler(cfg.BaseLR, cfg.Power, cfg.TotalIterations(maxShard))

	scaler, err := buildScaler(c, cfg)
	if err != nil {
		log.Fatalf("failed to build loss scaler: %v", err)
	}

	trainer, err := train.NewTrainer(c, extractor, sched, scaler, train.Options{
		Epochs:        cfg.Epochs,
		BatchSize:     cfg.BatchSize,
		AuxWeight:     cfg.AuxWeight,
		IgnoreLabel:   cfg.IgnoreLabel,
		Momentum:      cfg.Momentum,
		WeightDecay:   cfg.WeightDecay,
		EvalEvery:     cfg.EvalEvery,
		CheckpointDir: cfg.SavePath,
		ResumePath:    cfg.ResumePath,
	})
	if err != nil {
		log.Fatalf("failed to build trainer: %v", err)
	}

	if cfg.ValList != "" && cfg.EvalEvery > 0 {
		valDs, err := dataset.NewListDataset(cfg.DataRoot, cfg.ValList)
		if err != nil {
			log.Fatalf("failed to open validation data: %v", err)
		}
		evaluator, err := eval.NewEvaluator(eval.Options{
			BaseSize:     cfg.BaseSize,
			CropH:        cfg.TestH,
			CropW:        cfg.TestW,
			Scales:       []float64{1.0},
			OverlapRatio: cfg.OverlapRatio,
			IgnoreLabel:  cfg.IgnoreLabel,
		}, extractor, c)
		if err != nil {
			log.Fatalf("failed to build evaluator: %v", err)
		}
		trainer.SetValidator(evaluator, valDs)
	}

	if err := trainer.Run(ctx, ds); err != nil {
		log.Fatalf("training failed on rank %d: %v", c.Rank(), err)
	}
	log.Printf("rank %d finished %d epochs (best mIoU %.4f)", c.Rank(), cfg.Epochs, trainer.BestMIoU())
}
