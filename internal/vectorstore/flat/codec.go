package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"researcher/internal/vectorstore"
)

var magic = [4]byte{'R', 'F', 'L', 'T'}

const (
	formatVersion = 1
	maxDimension  = 1 << 16
)

type header struct {
	Magic   [4]byte
	Version uint32
	Metric  uint32
	Dim     uint32
	Count   uint64
}

var metricCodes = map[vectorstore.Metric]uint32{vectorstore.MetricL2: 0, vectorstore.MetricCosine: 1}

// WriteTo encodes the index as a fixed header followed by little-endian
// float32 rows in insertion order.
func (x *Index) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	h := header{Magic: magic, Version: formatVersion, Metric: metricCodes[x.metric], Dim: uint32(x.dim), Count: uint64(x.Len())}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return 0, err
	}
	if err := binary.Write(bw, binary.LittleEndian, x.data); err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return int64(binary.Size(h) + 4*len(x.data)), nil
}

// Decode reads an index written by WriteTo.
func Decode(r io.Reader) (*Index, error) {
	br := bufio.NewReader(r)
	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read index header: %w", err)
	}
	if h.Magic != magic {
		return nil, errors.New("not a flat index file")
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("unsupported index format version %d", h.Version)
	}
	if h.Dim == 0 || h.Dim > maxDimension {
		return nil, fmt.Errorf("invalid index dimension %d", h.Dim)
	}
	var metric vectorstore.Metric
	for m, code := range metricCodes {
		if code == h.Metric {
			metric = m
		}
	}
	if metric == "" {
		return nil, fmt.Errorf("unknown metric code %d", h.Metric)
	}
	x, err := New(int(h.Dim), metric)
	if err != nil {
		return nil, err
	}
	x.data = make([]float32, 0, int(h.Dim))
	row := make([]float32, h.Dim)
	for i := uint64(0); i < h.Count; i++ {
		if err := binary.Read(br, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("read vector %d of %d: %w", i, h.Count, err)
		}
		x.data = append(x.data, row...)
	}
	return x, nil
}
