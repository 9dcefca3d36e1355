package media

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"fortio.org/safecast"
)

// WAV is the only audio container format.
const WAV = "wav"

const (
	wavePCM   = 1
	waveIMA   = 0x11
	riffMagic = "RIFF"
	waveMagic = "WAVE"
)

var errNotWAV = errors.New("not a RIFF/WAVE file")

// Waveform is an immutable sound. The bytes and the parsed header are each
// materialized at most once.
type Waveform struct {
	path string

	dataOnce sync.Once
	data     []byte
	dataErr  error

	headerOnce sync.Once
	header     waveHeader
	headerErr  error
}

type waveHeader struct {
	format     uint16
	channels   uint16
	rate       uint32
	blockAlign uint16
	bits       uint16
	// samplesPerBlock is only set for ADPCM.
	samplesPerBlock uint16
	dataSize        uint32
	// factSamples is the per-channel sample count of the optional fact chunk.
	factSamples uint32
}

// NewWaveform wraps encoded WAV bytes.
func NewWaveform(data []byte) *Waveform {
	w := &Waveform{data: data}
	w.dataOnce.Do(func() {})
	return w
}

// LoadWaveform refers to a WAV file, read on first access.
func LoadWaveform(path string) *Waveform {
	return &Waveform{path: path}
}

// NewPCMWaveform encodes mono 16-bit samples as a WAV file.
func NewPCMWaveform(rate int, samples []int16) (*Waveform, error) {
	r, err := safecast.Conv[uint32](rate)
	if err != nil {
		return nil, fmt.Errorf("sample rate %d: %w", rate, err)
	}
	size, err := safecast.Conv[uint32](len(samples) * 2)
	if err != nil {
		return nil, fmt.Errorf("%d samples: %w", len(samples), err)
	}
	var buf bytes.Buffer
	buf.WriteString(riffMagic)
	_ = binary.Write(&buf, binary.LittleEndian, 36+size)
	buf.WriteString(waveMagic)
	buf.WriteString("fmt ")
	for _, v := range []any{uint32(16), uint16(wavePCM), uint16(1), r, r * 2, uint16(2), uint16(16)} {
		_ = binary.Write(&buf, binary.LittleEndian, v)
	}
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, size)
	_ = binary.Write(&buf, binary.LittleEndian, samples)
	return NewWaveform(buf.Bytes()), nil
}

// Bytes returns the encoded sound. The slice must not be modified.
func (w *Waveform) Bytes() ([]byte, error) {
	w.dataOnce.Do(func() {
		w.data, w.dataErr = os.ReadFile(w.path)
	})
	return w.data, w.dataErr
}

// Format is always WAV.
func (w *Waveform) Format() string { return WAV }

// Extension is ".wav".
func (w *Waveform) Extension() string { return "." + WAV }

// Digest is the hex MD5 of the encoded bytes.
func (w *Waveform) Digest() (string, error) {
	data, err := w.Bytes()
	if err != nil {
		return "", err
	}
	return digest(data), nil
}

// Rate returns the sample rate in Hz.
func (w *Waveform) Rate() (int, error) {
	h, err := w.readHeader()
	if err != nil {
		return 0, err
	}
	return int(h.rate), nil
}

// SampleCount returns the number of samples per channel.
func (w *Waveform) SampleCount() (int, error) {
	h, err := w.readHeader()
	if err != nil {
		return 0, err
	}
	if h.factSamples > 0 {
		return int(h.factSamples), nil
	}
	if h.blockAlign == 0 {
		return 0, fmt.Errorf("wav header has zero block align")
	}
	blocks := int(h.dataSize) / int(h.blockAlign)
	if h.format == waveIMA && h.samplesPerBlock > 0 {
		return blocks * int(h.samplesPerBlock), nil
	}
	return blocks, nil
}

// Duration is SampleCount divided by Rate.
func (w *Waveform) Duration() (time.Duration, error) {
	n, err := w.SampleCount()
	if err != nil {
		return 0, err
	}
	rate, err := w.Rate()
	if err != nil || rate == 0 {
		return 0, err
	}
	return time.Duration(n) * time.Second / time.Duration(rate), nil
}

func (w *Waveform) String() string {
	if w.path != "" {
		return fmt.Sprintf("Waveform(%s)", w.path)
	}
	return "Waveform"
}

// readHeader walks the RIFF chunks up to the data chunk. Sample data is never
// decoded.
func (w *Waveform) readHeader() (waveHeader, error) {
	w.headerOnce.Do(func() {
		data, err := w.Bytes()
		if err != nil {
			w.headerErr = err
			return
		}
		w.header, w.headerErr = parseWaveHeader(data)
	})
	return w.header, w.headerErr
}

func parseWaveHeader(data []byte) (waveHeader, error) {
	var h waveHeader
	if len(data) < 12 || string(data[0:4]) != riffMagic || string(data[8:12]) != waveMagic {
		return h, errNotWAV
	}
	le := binary.LittleEndian
	var sawFmt bool
	for pos := 12; pos+8 <= len(data); {
		id := string(data[pos : pos+4])
		size := int(le.Uint32(data[pos+4 : pos+8]))
		body := data[pos+8 : min(len(data), pos+8+size)]
		switch id {
		case "fmt ":
			if len(body) < 16 {
				return h, fmt.Errorf("wav fmt chunk too short (%d bytes)", len(body))
			}
			h.format = le.Uint16(body[0:2])
			h.channels = le.Uint16(body[2:4])
			h.rate = le.Uint32(body[4:8])
			h.blockAlign = le.Uint16(body[12:14])
			h.bits = le.Uint16(body[14:16])
			if h.format == waveIMA && len(body) >= 20 {
				h.samplesPerBlock = le.Uint16(body[18:20])
			}
			sawFmt = true
		case "fact":
			if len(body) >= 4 {
				h.factSamples = le.Uint32(body[0:4])
			}
		case "data":
			if !sawFmt {
				return h, fmt.Errorf("wav data chunk before fmt chunk")
			}
			h.dataSize = uint32(len(body))
			return h, nil
		}
		// Chunks are word aligned.
		pos += 8 + size + size%2
	}
	return h, fmt.Errorf("wav has no data chunk")
}
