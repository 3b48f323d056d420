package utils

import (
	"bytes"
	"encoding/binary"

	"gonum.org/v1/gonum/mat"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SerializeMatrix encodes a dense matrix as little-endian bytes:
// int32 rows, int32 cols, then row-major float64 data.
func SerializeMatrix(m *mat.Dense) ([]byte, error) {
	raw := m.RawMatrix()
	buf := new(bytes.Buffer)

	err := binary.Write(buf, binary.LittleEndian, int32(raw.Rows))
	if err != nil {
		return nil, err
	}
	err = binary.Write(buf, binary.LittleEndian, int32(raw.Cols))
	if err != nil {
		return nil, err
	}

	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		err := binary.Write(buf, binary.LittleEndian, row)
		if err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func DeserializeMatrix(data []byte) (*mat.Dense, error) {
	buf := bytes.NewReader(data)

	var rows, cols int32
	err := binary.Read(buf, binary.LittleEndian, &rows)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "error when reading nRow: %v", err)
	}
	err = binary.Read(buf, binary.LittleEndian, &cols)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "error when reading nCol: %v", err)
	}
	if rows <= 0 || cols <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid matrix dimensions %vx%v", rows, cols)
	}

	matrixData := make([]float64, rows*cols)
	err = binary.Read(buf, binary.LittleEndian, matrixData)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "error when reading matrix data: %v", err)
	}

	return mat.NewDense(int(rows), int(cols), matrixData), nil
}

func SumMatrix(a *mat.Dense, b *mat.Dense) (*mat.Dense, error) {
	rA, cA := a.Dims()
	rB, cB := b.Dims()
	if rA != rB || cA != cB {
		return nil, status.Errorf(codes.InvalidArgument, "matrices do not have the same dimension")
	}
	result := mat.NewDense(rA, cA, nil)
	result.Add(a, b)
	return result, nil
}

func MaxMatrix(a *mat.Dense, b *mat.Dense) (*mat.Dense, error) {
	rA, cA := a.Dims()
	rB, cB := b.Dims()
	if rA != rB || cA != cB {
		return nil, status.Errorf(codes.InvalidArgument, "matrices do not have the same dimension")
	}
	result := mat.NewDense(rA, cA, nil)
	for i := 0; i < rA; i++ {
		for j := 0; j < cA; j++ {
			maxVal := max(a.At(i, j), b.At(i, j))
			result.Set(i, j, maxVal)
		}
	}
	return result, nil
}

// SplitRange partitions n items into numChunks contiguous [start, end) ranges;
// the last range absorbs any remainder. Used to shard a sample list across
// workers so every rank sees a disjoint slice of the dataset.
func SplitRange(n int, numChunks int) [][2]int {
	perChunk := n / numChunks
	ranges := make([][2]int, numChunks)
	for i := 0; i < numChunks; i++ {
		start := i * perChunk
		end := (i + 1) * perChunk
		if i == numChunks-1 {
			end = n
		}
		ranges[i] = [2]int{start, end}
	}
	return ranges
}

func ArgMax(slice []float64) int {
	maxIdx := 0
	maxVal := slice[0]

	for i, val := range slice {
		if val > maxVal {
			maxVal = val
			maxIdx = i
		}
	}
	return maxIdx
}
