package audio

import (
	"bytes"
	"encoding/binary"
	"time"
)

const (
	SampleRate    = 16000
	bitsPerSample = 16
	channels      = 1
)

// SilentWAV returns a mono 16 kHz PCM WAV file of silence lasting d.
func SilentWAV(d time.Duration) []byte {
	samples := int(d.Seconds() * SampleRate)
	dataSize := uint32(samples * channels * bitsPerSample / 8)
	blockAlign := uint16(channels * bitsPerSample / 8)
	byteRate := uint32(SampleRate) * uint32(blockAlign)

	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, byteRate)
	_ = binary.Write(&buf, binary.LittleEndian, blockAlign)
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}
