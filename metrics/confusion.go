package metrics

import (
	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ConfusionMatrix accumulates per-pixel classification counts indexed by
// [true class][predicted class]. Accumulation is elementwise addition, so the
// order in which images or batches are folded in never changes the result.
type ConfusionMatrix struct {
	NumClasses int
	Counts     []int64 // row-major [true*NumClasses + predicted]
}

func NewConfusionMatrix(numClasses int) *ConfusionMatrix {
	return &ConfusionMatrix{
		NumClasses: numClasses,
		Counts:     make([]int64, numClasses*numClasses),
	}
}

func (cm *ConfusionMatrix) Reset() {
	for i := range cm.Counts {
		cm.Counts[i] = 0
	}
}

// Update folds one image's predictions into the matrix. Pixels whose true
// label equals ignoreLabel are excluded; out-of-range labels are skipped.
func (cm *ConfusionMatrix) Update(predicted, truth []int32, ignoreLabel int32) error {
	if len(predicted) != len(truth) {
		return errors.Errorf("prediction has %v pixels but labels have %v", len(predicted), len(truth))
	}
	n := int32(cm.NumClasses)
	for i, t := range truth {
		if t == ignoreLabel {
			continue
		}
		p := predicted[i]
		if t < 0 || t >= n || p < 0 || p >= n {
			continue
		}
		cm.Counts[int(t)*cm.NumClasses+int(p)]++
	}
	return nil
}

// Merge adds another matrix into this one; commutative and associative.
func (cm *ConfusionMatrix) Merge(other *ConfusionMatrix) error {
	if other.NumClasses != cm.NumClasses {
		return errors.Errorf("cannot merge confusion matrix over %v classes into one over %v", other.NumClasses, cm.NumClasses)
	}
	for i, c := range other.Counts {
		cm.Counts[i] += c
	}
	return nil
}

// IoU returns the per-class intersection over union and a mask of which
// classes have nonzero union (classes absent from both truth and prediction
// carry no signal and are excluded from the mean).
func (cm *ConfusionMatrix) IoU() ([]float64, []bool) {
	n := cm.NumClasses
	iou := make([]float64, n)
	valid := make([]bool, n)
	for c := 0; c < n; c++ {
		intersection := cm.Counts[c*n+c]
		var rowSum, colSum int64
		for j := 0; j < n; j++ {
			rowSum += cm.Counts[c*n+j]
			colSum += cm.Counts[j*n+c]
		}
		union := rowSum + colSum - intersection
		if union > 0 {
			iou[c] = float64(intersection) / float64(union)
			valid[c] = true
		}
	}
	return iou, valid
}

// MeanIoU averages IoU over classes with nonzero union.
func (cm *ConfusionMatrix) MeanIoU() float64 {
	iou, valid := cm.IoU()
	sum, count := 0.0, 0
	for c, ok := range valid {
		if ok {
			sum += iou[c]
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// PixelAccuracy is trace over total valid pixels.
func (cm *ConfusionMatrix) PixelAccuracy() float64 {
	n := cm.NumClasses
	var trace, total int64
	for c := 0; c < n; c++ {
		trace += cm.Counts[c*n+c]
	}
	for _, v := range cm.Counts {
		total += v
	}
	if total == 0 {
		return 0
	}
	return float64(trace) / float64(total)
}

// Serialize encodes the matrix as a dense gonum matrix for transport to
// rank 0 at the end of an evaluation pass.
func (cm *ConfusionMatrix) Serialize() ([]byte, error) {
	data := make([]float64, len(cm.Counts))
	for i, c := range cm.Counts {
		data[i] = float64(c)
	}
	return utils.SerializeMatrix(mat.NewDense(cm.NumClasses, cm.NumClasses, data))
}

func Deserialize(payload []byte) (*ConfusionMatrix, error) {
	m, err := utils.DeserializeMatrix(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode confusion matrix")
	}
	rows, cols := m.Dims()
	if rows != cols {
		return nil, errors.Errorf("confusion matrix must be square, got %vx%v", rows, cols)
	}
	cm := NewConfusionMatrix(rows)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			cm.Counts[i*rows+j] = int64(m.At(i, j))
		}
	}
	return cm, nil
}
