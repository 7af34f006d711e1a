package iqsource

import (
	"io"
	"os"
	"time"

	"github.com/tsl-sdr/gochannelizer/internal/result"
)

// FileSource replays raw interleaved samples from a file, the one
// "device" this module actually drives: every ReadInto advances
// monotonically through the file and reports an elapsed-time StartTime
// derived from bytesPerSecond, so downstream buffers carry a sensible
// synthetic capture clock even though there is no real radio attached.
type FileSource struct {
	f               *os.File
	bytesPerSecond  float64
	bytesRead       int64
}

// NewFileSource opens path for raw sample replay. bytesPerSecond is
// sampleRateHz * bytesPerSample(sampleType), used only to derive each
// read's StartTime.
func NewFileSource(path string, bytesPerSecond float64) (*FileSource, error) {
	if bytesPerSecond <= 0 {
		return nil, result.New("iqsource", result.InvalidArgument, "bytesPerSecond must be positive")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, result.Newf("iqsource", result.NotFound, "open %s: %v", path, err)
	}
	return &FileSource{f: f, bytesPerSecond: bytesPerSecond}, nil
}

// ReadInto implements IQSource.
func (s *FileSource) ReadInto(buf []byte) (int, time.Duration, error) {
	n, err := io.ReadFull(s.f, buf)
	startTime := time.Duration(float64(s.bytesRead) / s.bytesPerSecond * float64(time.Second))
	s.bytesRead += int64(n)

	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, startTime, err
}

// Close implements IQSource.
func (s *FileSource) Close() error {
	return s.f.Close()
}
