package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	wavHeaderSize = 44
	formatPCM     = 1
)

var (
	// ErrNotWAV is returned when the data does not start with a RIFF/WAVE header.
	ErrNotWAV = errors.New("not a WAV file")
	// ErrUnsupportedFormat is returned for WAV files that are not plain integer PCM.
	ErrUnsupportedFormat = errors.New("unsupported WAV format")
)

// wavHeader is the canonical 44-byte header written by EncodeWAV.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32
}

// IsWAV reports whether data starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// DecodeWAV parses a PCM WAV file. Chunks other than "fmt " and "data" are
// skipped. A data chunk whose declared size overruns the file (as written by
// encoders streaming to a pipe) is clamped to what is present.
func DecodeWAV(data []byte) (*Buffer, error) {
	if !IsWAV(data) {
		return nil, ErrNotWAV
	}

	var (
		format   Format
		haveFmt  bool
		pcm      []byte
		haveData bool
	)

	pos := 12
	for pos+8 <= len(data) && !haveData {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(data) {
				return nil, fmt.Errorf("invalid WAV file: short fmt chunk")
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			if audioFormat != formatPCM {
				return nil, fmt.Errorf("%w: audio format %d", ErrUnsupportedFormat, audioFormat)
			}
			format = Format{
				Channels:      int(binary.LittleEndian.Uint16(data[body+2 : body+4])),
				SampleRate:    int(binary.LittleEndian.Uint32(data[body+4 : body+8])),
				BitsPerSample: int(binary.LittleEndian.Uint16(data[body+14 : body+16])),
			}
			if err := format.validate(); err != nil {
				return nil, err
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("invalid WAV file: data chunk before fmt chunk")
			}
			end := body + size
			if end > len(data) {
				end = len(data)
			}
			pcm = data[body:end]
			haveData = true
		}

		// Chunks are word aligned.
		pos = body + size + size%2
	}

	if !haveFmt {
		return nil, fmt.Errorf("invalid WAV file: missing fmt chunk")
	}
	if !haveData {
		return nil, fmt.Errorf("invalid WAV file: missing data chunk")
	}

	frameSize := format.FrameSize()
	whole := len(pcm) - len(pcm)%frameSize

	return &Buffer{Format: format, Data: pcm[:whole]}, nil
}

// EncodeWAV serializes a buffer as a canonical 44-byte-header PCM WAV file.
func EncodeWAV(buf *Buffer) ([]byte, error) {
	if err := buf.Format.validate(); err != nil {
		return nil, err
	}

	f := buf.Format
	dataSize := uint32(len(buf.Data))
	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   formatPCM,
		NumChannels:   uint16(f.Channels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(f.SampleRate * f.FrameSize()),
		BlockAlign:    uint16(f.FrameSize()),
		BitsPerSample: uint16(f.BitsPerSample),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	out := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+len(buf.Data)))
	if err := binary.Write(out, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}
	out.Write(buf.Data)

	return out.Bytes(), nil
}
