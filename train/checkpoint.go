package train

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/JohnSon-zh-12345/pyconvsegnet/amp"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

type matrixState struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// Checkpoint is the JSON snapshot written at epoch boundaries. Only rank 0
// writes it; every rank can restore from it because the ranks hold replicated
// parameters.
type Checkpoint struct {
	Epoch      int           `json:"epoch"`
	GlobalIter int           `json:"global_iter"`
	BestMIoU   float64       `json:"best_miou"`
	Params     []matrixState `json:"params"`
	Velocity   []matrixState `json:"velocity,omitempty"`
	Scaler     *amp.State    `json:"scaler,omitempty"`
}

func encodeMatrices(ms []*mat.Dense) []matrixState {
	out := make([]matrixState, len(ms))
	for i, m := range ms {
		r, c := m.Dims()
		data := make([]float64, 0, r*c)
		for y := 0; y < r; y++ {
			data = append(data, m.RawRowView(y)...)
		}
		out[i] = matrixState{Rows: r, Cols: c, Data: data}
	}
	return out
}

func decodeInto(states []matrixState, dst []*mat.Dense) error {
	if len(states) != len(dst) {
		return errors.Errorf("checkpoint holds %v matrices, model expects %v", len(states), len(dst))
	}
	for i, st := range states {
		r, c := dst[i].Dims()
		if st.Rows != r || st.Cols != c {
			return errors.Errorf("matrix %v is %vx%v in checkpoint but %vx%v in model", i, st.Rows, st.Cols, r, c)
		}
		if len(st.Data) != r*c {
			return errors.Errorf("matrix %v has %v values for %vx%v", i, len(st.Data), r, c)
		}
		dst[i].Copy(mat.NewDense(r, c, st.Data))
	}
	return nil
}

// SaveCheckpoint writes the snapshot atomically: a temp file in the target
// directory, then a rename.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	data, err := json.MarshalIndent(ckpt, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode checkpoint")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create checkpoint directory %v", dir)
	}
	tmp, err := os.CreateTemp(dir, ".ckpt-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp checkpoint")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write checkpoint")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to close checkpoint")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to move checkpoint to %v", path)
	}
	return nil
}

// RestoreParams loads the checkpointed parameters into a live parameter list.
func (c *Checkpoint) RestoreParams(params []*mat.Dense) error {
	return decodeInto(c.Params, params)
}

func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read checkpoint %v", path)
	}
	var ckpt Checkpoint
	if err := json.Unmarshal(data, &ckpt); err != nil {
		return nil, errors.Wrapf(err, "failed to decode checkpoint %v", path)
	}
	return &ckpt, nil
}
