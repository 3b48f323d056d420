package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/JohnSon-zh-12345/pyconvsegnet/comm"
	"github.com/JohnSon-zh-12345/pyconvsegnet/config"
	"github.com/JohnSon-zh-12345/pyconvsegnet/dataset"
	"github.com/JohnSon-zh-12345/pyconvsegnet/eval"
	"github.com/JohnSon-zh-12345/pyconvsegnet/metrics"
	"github.com/JohnSon-zh-12345/pyconvsegnet/model"
	"github.com/JohnSon-zh-12345/pyconvsegnet/train"
	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/pkg/errors"
)

// result bundles one prediction for transport to rank 0.
type result struct {
	name string
	pred *utils.LabelMap
}

func encodeResults(results []result) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, int32(len(results))); err != nil {
		return nil, err
	}
	for _, r := range results {
		if err := binary.Write(buf, binary.LittleEndian, int32(len(r.name))); err != nil {
			return nil, err
		}
		buf.WriteString(r.name)
		predBytes, err := utils.SerializeLabelMap(r.pred)
		if err != nil {
			return nil, err
		}
		if err := binary.Write(buf, binary.LittleEndian, int32(len(predBytes))); err != nil {
			return nil, err
		}
		buf.Write(predBytes)
	}
	return buf.Bytes(), nil
}

func decodeResults(payload []byte) ([]result, error) {
	buf := bytes.NewReader(payload)
	var n int32
	if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	results := make([]result, 0, n)
	for i := int32(0); i < n; i++ {
		var nameLen int32
		if err := binary.Read(buf, binary.LittleEndian, &nameLen); err != nil {
			return nil, err
		}
		name := make([]byte, nameLen)
		if _, err := buf.Read(name); err != nil {
			return nil, err
		}
		var predLen int32
		if err := binary.Read(buf, binary.LittleEndian, &predLen); err != nil {
			return nil, err
		}
		predBytes := make([]byte, predLen)
		if _, err := buf.Read(predBytes); err != nil {
			return nil, err
		}
		pred, err := utils.DeserializeLabelMap(predBytes)
		if err != nil {
			return nil, err
		}
		results = append(results, result{name: string(name), pred: pred})
	}
	return results, nil
}

// writeGray writes the class-index map as an 8-bit grayscale PNG.
func writeGray(path string, pred *utils.LabelMap) error {
	img := image.NewGray(image.Rect(0, 0, pred.W, pred.H))
	for y := 0; y < pred.H; y++ {
		for x := 0; x < pred.W; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(pred.At(y, x))})
		}
	}
	return writePNG(path, img)
}

func writeColor(path string, pred *utils.LabelMap, palette [][3]uint8) error {
	img := image.NewRGBA(image.Rect(0, 0, pred.W, pred.H))
	for y := 0; y < pred.H; y++ {
		for x := 0; x < pred.W; x++ {
			var c [3]uint8
			if id := int(pred.At(y, x)); id >= 0 && id < len(palette) {
				c = palette[id]
			}
			img.SetRGBA(x, y, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}
	return writePNG(path, img)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %v", path)
	}
	defer f.Close()
	return png.Encode(f, img)
}

// loadPalette reads one "R G B" line per class.
func loadPalette(path string) ([][3]uint8, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open colors file %v", path)
	}
	defer f.Close()
	var palette [][3]uint8
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			continue
		}
		var rgb [3]uint8
		for i, field := range fields {
			v, err := strconv.Atoi(field)
			if err != nil || v < 0 || v > 255 {
				return nil, errors.Errorf("invalid color component %q in %v", field, path)
			}
			rgb[i] = uint8(v)
		}
		palette = append(palette, rgb)
	}
	return palette, scanner.Err()
}

func loadNames(path string, classes int) []string {
	names := make([]string, classes)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	if path == "" {
		return names
	}
	f, err := os.Open(path)
	if err != nil {
		log.Printf("could not open names file %v: %v", path, err)
		return names
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for i := 0; i < classes && scanner.Scan(); i++ {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names[i] = name
		}
	}
	return names
}

func main() {
	configPath := flag.String("config", "config/test.json", "path to the run configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	var c comm.Communicator
	if cfg.WorldSize == 1 {
		c = comm.NewSingle()
	} else {
		timeout := time.Duration(cfg.InitTimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		c, err = comm.Join(ctx, cfg.DistURL, cfg.WorldSize, cfg.Rank, timeout)
		if err != nil {
			log.Fatalf("failed to join collective group: %v", err)
		}
	}
	defer c.Close()

	extractor, err := model.New(model.Options{
		Arch:         cfg.Arch,
		InChannels:   cfg.InChannels,
		Classes:      cfg.Classes,
		SyncBN:       cfg.SyncBN,
		BNMomentum:   cfg.BNMomentum,
		OutputStride: 8 / cfg.ZoomFactor,
		Seed:         cfg.Seed,
	}, c)
	if err != nil {
		log.Fatalf("failed to build model: %v", err)
	}

	ckptPath := cfg.ResumePath
	if ckptPath == "" {
		ckptPath = filepath.Join(cfg.SavePath, "train_epoch_best.json")
	}
	ckpt, err := train.LoadCheckpoint(ckptPath)
	if err != nil {
		log.Fatalf("failed to load checkpoint: %v", err)
	}
	if err := ckpt.RestoreParams(extractor.Parameters()); err != nil {
		log.Fatalf("checkpoint does not match model: %v", err)
	}
	log.Printf("restored checkpoint %v (epoch %d)", ckptPath, ckpt.Epoch)

	listPath := cfg.TestList
	if cfg.Split == "val" {
		listPath = cfg.ValList
	}
	ds, err := dataset.NewListDataset(cfg.DataRoot, listPath)
	if err != nil {
		log.Fatalf("failed to open %v data: %v", cfg.Split, err)
	}

	evaluator, err := eval.NewEvaluator(eval.Options{
		BaseSize:     cfg.BaseSize,
		CropH:        cfg.TestH,
		CropW:        cfg.TestW,
		Scales:       cfg.Scales,
		OverlapRatio: cfg.OverlapRatio,
		IgnoreLabel:  cfg.IgnoreLabel,
	}, extractor, c)
	if err != nil {
		log.Fatalf("failed to build evaluator: %v", err)
	}

	cm := metrics.NewConfusionMatrix(cfg.Classes)
	labeled := false
	lo, hi := dataset.Shard(ds.Len(), c.WorldSize(), c.Rank())
	results := make([]result, 0, hi-lo)
	for i := lo; i < hi; i++ {
		img, label, err := ds.Sample(i)
		if err != nil {
			log.Fatalf("failed to load sample %v: %v", i, err)
		}
		pred, err := evaluator.Predict(ctx, img)
		if err != nil {
			log.Fatalf("failed to score sample %v: %v", i, err)
		}
		results = append(results, result{name: ds.Name(i), pred: pred})
		if label != nil {
			labeled = true
			if err := cm.Update(pred.Data, label.Data, cfg.IgnoreLabel); err != nil {
				log.Fatalf("failed to update metrics for sample %v: %v", i, err)
			}
		}
	}
	log.Printf("rank %d scored %d images", c.Rank(), hi-lo)

	// Only rank 0 touches the filesystem; everyone else ships results over.
	payload, err := encodeResults(results)
	if err != nil {
		log.Fatalf("failed to encode results: %v", err)
	}
	gathered, err := c.Gather(ctx, payload)
	if err != nil {
		log.Fatalf("failed to gather results: %v", err)
	}
	if c.Rank() == 0 && cfg.ResultDir != "" {
		grayDir := filepath.Join(cfg.ResultDir, "gray")
		colorDir := filepath.Join(cfg.ResultDir, "color")
		if err := os.MkdirAll(grayDir, 0o755); err != nil {
			log.Fatalf("failed to create result directory: %v", err)
		}
		var palette [][3]uint8
		if cfg.ColorsPath != "" {
			if palette, err = loadPalette(cfg.ColorsPath); err != nil {
				log.Fatalf("failed to load palette: %v", err)
			}
			if err := os.MkdirAll(colorDir, 0o755); err != nil {
				log.Fatalf("failed to create result directory: %v", err)
			}
		}
		written := 0
		for _, p := range gathered {
			decoded, err := decodeResults(p)
			if err != nil {
				log.Fatalf("failed to decode gathered results: %v", err)
			}
			for _, r := range decoded {
				if err := writeGray(filepath.Join(grayDir, r.name+".png"), r.pred); err != nil {
					log.Fatalf("failed to write prediction for %v: %v", r.name, err)
				}
				if palette != nil {
					if err := writeColor(filepath.Join(colorDir, r.name+".png"), r.pred, palette); err != nil {
						log.Fatalf("failed to write color map for %v: %v", r.name, err)
					}
				}
				written++
			}
		}
		log.Printf("wrote %d prediction maps to %v", written, cfg.ResultDir)
	}

	// labeled is rank-local; the mix of labeled and unlabeled list lines may
	// land entirely on other shards, so the decision to merge is collective.
	merged, haveLabels, err := evaluator.MergeLabeledConfusion(ctx, cm, labeled)
	if err != nil {
		log.Fatalf("failed to merge metrics: %v", err)
	}
	if haveLabels {
		if c.Rank() == 0 {
			names := loadNames(cfg.NamesPath, cfg.Classes)
			ious, valid := merged.IoU()
			for i, iou := range ious {
				if valid[i] {
					log.Printf("class %v (%v): IoU %.4f", i, names[i], iou)
				} else {
					log.Printf("class %v (%v): no pixels", i, names[i])
				}
			}
			log.Printf("mIoU %.4f | pixel accuracy %.4f", merged.MeanIoU(), merged.PixelAccuracy())
		}
	}
}
