package dataset

import (
	"os"
	"path/filepath"
	"testing"

	utils "github.com/JohnSon-zh-12345/pyconvsegnet/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T, dir, name string, img *utils.Tensor, label *utils.LabelMap) (string, string) {
	imgBytes, err := utils.SerializeTensor(img)
	require.NoError(t, err)
	imgPath := name + ".img"
	require.NoError(t, os.WriteFile(filepath.Join(dir, imgPath), imgBytes, 0o644))

	if label == nil {
		return imgPath, ""
	}
	labelBytes, err := utils.SerializeLabelMap(label)
	require.NoError(t, err)
	labelPath := name + ".lbl"
	require.NoError(t, os.WriteFile(filepath.Join(dir, labelPath), labelBytes, 0o644))
	return imgPath, labelPath
}

func TestListDatasetLoadsSamples(t *testing.T) {
	dir := t.TempDir()
	img := utils.NewTensor(2, 3, 3)
	img.Set(1, 2, 2, 4.5)
	label := utils.NewLabelMap(3, 3)
	label.Set(1, 1, 7)
	imgPath, labelPath := writeSample(t, dir, "a", img, label)

	listPath := filepath.Join(dir, "train.txt")
	require.NoError(t, os.WriteFile(listPath, []byte(
		"# comment\n"+imgPath+" "+labelPath+"\n\n"), 0o644))

	ds, err := NewListDataset(dir, listPath)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, "a", ds.Name(0))

	gotImg, gotLabel, err := ds.Sample(0)
	require.NoError(t, err)
	assert.Equal(t, 4.5, gotImg.At(1, 2, 2))
	require.NotNil(t, gotLabel)
	assert.Equal(t, int32(7), gotLabel.At(1, 1))
}

func TestListDatasetUnlabeledSplit(t *testing.T) {
	dir := t.TempDir()
	img := utils.NewTensor(1, 2, 2)
	imgPath, _ := writeSample(t, dir, "b", img, nil)

	listPath := filepath.Join(dir, "test.txt")
	require.NoError(t, os.WriteFile(listPath, []byte(imgPath+"\n"), 0o644))

	ds, err := NewListDataset(dir, listPath)
	require.NoError(t, err)
	_, label, err := ds.Sample(0)
	require.NoError(t, err)
	assert.Nil(t, label)
}

func TestListDatasetRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(listPath, []byte("a b c\n"), 0o644))
	_, err := NewListDataset(dir, listPath)
	assert.Error(t, err)
}

func TestListDatasetRejectsEmptyList(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(listPath, []byte("\n# nothing\n"), 0o644))
	_, err := NewListDataset(dir, listPath)
	assert.Error(t, err)
}

func TestListDatasetMissingImageFile(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "list.txt")
	require.NoError(t, os.WriteFile(listPath, []byte("absent.img\n"), 0o644))

	ds, err := NewListDataset(dir, listPath)
	require.NoError(t, err)
	_, _, err = ds.Sample(0)
	assert.Error(t, err)
}

func TestListDatasetRejectsSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	img := utils.NewTensor(1, 2, 2)
	label := utils.NewLabelMap(3, 3)
	imgPath, labelPath := writeSample(t, dir, "c", img, label)

	listPath := filepath.Join(dir, "list.txt")
	require.NoError(t, os.WriteFile(listPath, []byte(imgPath+" "+labelPath+"\n"), 0o644))

	ds, err := NewListDataset(dir, listPath)
	require.NoError(t, err)
	_, _, err = ds.Sample(0)
	assert.Error(t, err)
}

func TestShardDisjointAndComplete(t *testing.T) {
	covered := make([]bool, 10)
	for rank := 0; rank < 3; rank++ {
		lo, hi := Shard(10, 3, rank)
		for i := lo; i < hi; i++ {
			assert.False(t, covered[i])
			covered[i] = true
		}
	}
	for i, c := range covered {
		assert.True(t, c, "index %d not covered", i)
	}
}

func TestMemDatasetDefaults(t *testing.T) {
	ds := &MemDataset{Images: []*utils.Tensor{utils.NewTensor(1, 1, 1)}}
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, "sample", ds.Name(0))
	_, label, err := ds.Sample(0)
	require.NoError(t, err)
	assert.Nil(t, label)
}
