// Package dataset feeds images and per-pixel labels to the training and
// evaluation pipelines. Images and labels are stored pre-decoded in the
// binary tensor framing from the utils package; a plain-text list file pairs
// them up, one "image_path label_path" line per sample.
package dataset

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/pkg/errors"
)

type Dataset interface {
	Len() int
	// Sample returns the image and its label map. The label may be nil for
	// inference-only splits.
	Sample(i int) (*utils.Tensor, *utils.LabelMap, error)
	// Name returns a stable identifier for sample i, used to name result files.
	Name(i int) string
}

// ListDataset resolves samples lazily from a list file. Paths in the list are
// taken relative to root unless absolute.
type ListDataset struct {
	root    string
	entries []listEntry
}

type listEntry struct {
	image string
	label string
}

func NewListDataset(root, listPath string) (*ListDataset, error) {
	f, err := os.Open(listPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open list file %v", listPath)
	}
	defer f.Close()

	var entries []listEntry
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch len(fields) {
		case 1:
			entries = append(entries, listEntry{image: fields[0]})
		case 2:
			entries = append(entries, listEntry{image: fields[0], label: fields[1]})
		default:
			return nil, errors.Errorf("malformed line %v in %v: want \"image [label]\", got %v fields", line, listPath, len(fields))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read list file %v", listPath)
	}
	if len(entries) == 0 {
		return nil, errors.Errorf("list file %v is empty", listPath)
	}
	return &ListDataset{root: root, entries: entries}, nil
}

func (d *ListDataset) Len() int { return len(d.entries) }

func (d *ListDataset) Name(i int) string {
	base := filepath.Base(d.entries[i].image)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (d *ListDataset) Sample(i int) (*utils.Tensor, *utils.LabelMap, error) {
	e := d.entries[i]
	raw, err := os.ReadFile(d.resolve(e.image))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read image %v", e.image)
	}
	img, err := utils.DeserializeTensor(raw)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to decode image %v", e.image)
	}
	if e.label == "" {
		return img, nil, nil
	}
	raw, err = os.ReadFile(d.resolve(e.label))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read label %v", e.label)
	}
	label, err := utils.DeserializeLabelMap(raw)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to decode label %v", e.label)
	}
	if label.H != img.H || label.W != img.W {
		return nil, nil, errors.Errorf("label %v is %vx%v but image is %vx%v", e.label, label.H, label.W, img.H, img.W)
	}
	return img, label, nil
}

func (d *ListDataset) resolve(p string) string {
	if filepath.IsAbs(p) || d.root == "" {
		return p
	}
	return filepath.Join(d.root, p)
}

// Shard returns the contiguous index range [lo, hi) that rank owns when the
// dataset is split evenly across worldSize ranks.
func Shard(n, worldSize, rank int) (int, int) {
	bounds := utils.SplitRange(n, worldSize)
	return bounds[rank][0], bounds[rank][1]
}

// MemDataset keeps samples in memory. Used by tests and synthetic runs.
type MemDataset struct {
	Images []*utils.Tensor
	Labels []*utils.LabelMap
	Names  []string
}

func (d *MemDataset) Len() int { return len(d.Images) }

func (d *MemDataset) Sample(i int) (*utils.Tensor, *utils.LabelMap, error) {
	var label *utils.LabelMap
	if d.Labels != nil {
		label = d.Labels[i]
	}
	return d.Images[i], label, nil
}

func (d *MemDataset) Name(i int) string {
	if d.Names != nil {
		return d.Names[i]
	}
	return "sample"
}
