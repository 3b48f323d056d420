package utils

import (
	"bytes"
	"encoding/binary"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Tensor is a dense CHW image or score volume.
type Tensor struct {
	C, H, W int
	Data    []float64
}

func NewTensor(c, h, w int) *Tensor {
	return &Tensor{C: c, H: h, W: w, Data: make([]float64, c*h*w)}
}

func (t *Tensor) At(c, y, x int) float64 {
	return t.Data[(c*t.H+y)*t.W+x]
}

func (t *Tensor) Set(c, y, x int, v float64) {
	t.Data[(c*t.H+y)*t.W+x] = v
}

func (t *Tensor) Clone() *Tensor {
	out := NewTensor(t.C, t.H, t.W)
	copy(out.Data, t.Data)
	return out
}

// Channel returns the backing slice for one channel plane.
func (t *Tensor) Channel(c int) []float64 {
	return t.Data[c*t.H*t.W : (c+1)*t.H*t.W]
}

// BilinearResize resizes to h x w with align-corners sampling, matching the
// interpolation used for prediction upscaling at training and test time.
func BilinearResize(t *Tensor, h, w int) *Tensor {
	if h == t.H && w == t.W {
		return t.Clone()
	}
	out := NewTensor(t.C, h, w)
	yScale := 0.0
	if h > 1 {
		yScale = float64(t.H-1) / float64(h-1)
	}
	xScale := 0.0
	if w > 1 {
		xScale = float64(t.W-1) / float64(w-1)
	}
	for y := 0; y < h; y++ {
		sy := float64(y) * yScale
		y0 := int(math.Floor(sy))
		y1 := min(y0+1, t.H-1)
		fy := sy - float64(y0)
		for x := 0; x < w; x++ {
			sx := float64(x) * xScale
			x0 := int(math.Floor(sx))
			x1 := min(x0+1, t.W-1)
			fx := sx - float64(x0)
			for c := 0; c < t.C; c++ {
				top := t.At(c, y0, x0)*(1-fx) + t.At(c, y0, x1)*fx
				bot := t.At(c, y1, x0)*(1-fx) + t.At(c, y1, x1)*fx
				out.Set(c, y, x, top*(1-fy)+bot*fy)
			}
		}
	}
	return out
}

// PadTo pads t symmetrically with the per-channel fill values until it is at
// least h x w, returning the padded tensor and the top/left offsets of the
// original content. Returns t unchanged when no padding is needed.
func PadTo(t *Tensor, h, w int, fill []float64) (*Tensor, int, int) {
	if t.H >= h && t.W >= w {
		return t, 0, 0
	}
	ph := max(t.H, h)
	pw := max(t.W, w)
	top := (ph - t.H) / 2
	left := (pw - t.W) / 2
	out := NewTensor(t.C, ph, pw)
	for c := 0; c < t.C; c++ {
		f := 0.0
		if c < len(fill) {
			f = fill[c]
		}
		plane := out.Channel(c)
		for i := range plane {
			plane[i] = f
		}
		for y := 0; y < t.H; y++ {
			for x := 0; x < t.W; x++ {
				out.Set(c, top+y, left+x, t.At(c, y, x))
			}
		}
	}
	return out, top, left
}

// Crop copies the h x w window of t anchored at (y0, x0).
func Crop(t *Tensor, y0, x0, h, w int) *Tensor {
	out := NewTensor(t.C, h, w)
	for c := 0; c < t.C; c++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Set(c, y, x, t.At(c, y0+y, x0+x))
			}
		}
	}
	return out
}

// LabelMap holds per-pixel class ids for one image.
type LabelMap struct {
	H, W int
	Data []int32
}

func NewLabelMap(h, w int) *LabelMap {
	return &LabelMap{H: h, W: w, Data: make([]int32, h*w)}
}

func (l *LabelMap) At(y, x int) int32 {
	return l.Data[y*l.W+x]
}

func (l *LabelMap) Set(y, x int, v int32) {
	l.Data[y*l.W+x] = v
}

// SerializeTensor encodes a tensor as little-endian bytes: int32 C, H, W then
// the raw float64 data. Same framing as SerializeMatrix, one extra dimension.
func SerializeTensor(t *Tensor) ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, d := range []int32{int32(t.C), int32(t.H), int32(t.W)} {
		if err := binary.Write(buf, binary.LittleEndian, d); err != nil {
			return nil, err
		}
	}
	if err := binary.Write(buf, binary.LittleEndian, t.Data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DeserializeTensor(data []byte) (*Tensor, error) {
	buf := bytes.NewReader(data)
	var c, h, w int32
	for _, d := range []*int32{&c, &h, &w} {
		if err := binary.Read(buf, binary.LittleEndian, d); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "error when reading tensor dims: %v", err)
		}
	}
	if c <= 0 || h <= 0 || w <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid tensor dimensions %vx%vx%v", c, h, w)
	}
	t := NewTensor(int(c), int(h), int(w))
	if err := binary.Read(buf, binary.LittleEndian, t.Data); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "error when reading tensor data: %v", err)
	}
	return t, nil
}

// SerializeLabelMap encodes a label map as little-endian bytes: int32 H, W
// then the raw int32 class ids.
func SerializeLabelMap(l *LabelMap) ([]byte, error) {
	buf := new(bytes.Buffer)
	for _, d := range []int32{int32(l.H), int32(l.W)} {
		if err := binary.Write(buf, binary.LittleEndian, d); err != nil {
			return nil, err
		}
	}
	if err := binary.Write(buf, binary.LittleEndian, l.Data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DeserializeLabelMap(data []byte) (*LabelMap, error) {
	buf := bytes.NewReader(data)
	var h, w int32
	for _, d := range []*int32{&h, &w} {
		if err := binary.Read(buf, binary.LittleEndian, d); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "error when reading label dims: %v", err)
		}
	}
	if h <= 0 || w <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid label dimensions %vx%v", h, w)
	}
	l := NewLabelMap(int(h), int(w))
	if err := binary.Read(buf, binary.LittleEndian, l.Data); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "error when reading label data: %v", err)
	}
	return l, nil
}
