package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// TargetSampleRate is the sample rate the recognizer expects.
const TargetSampleRate = 16000

// ErrUnsupportedFormat is returned when an uploaded blob cannot be decoded.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Normalize converts an uploaded audio blob into mono 16-bit little-endian PCM
// at TargetSampleRate.
//
// Blobs whose declared content type is empty, a raw-PCM marker, or the
// octet-stream fallback are passed through unchanged; the caller is trusted to
// have produced correctly formatted samples. Everything else must be a WAV
// container, which is decoded, mixed down to mono, resampled and re-quantized.
func Normalize(data []byte, contentType string) ([]byte, error) {
	if isRawPCM(contentType) {
		return data, nil
	}

	channels, sampleRate, err := DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	mono := MixMono(channels)
	resampled := ResampleLinear(mono, sampleRate, TargetSampleRate)
	return PCM16Bytes(resampled), nil
}

func isRawPCM(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return ct == "" ||
		strings.Contains(ct, "pcm") ||
		strings.Contains(ct, "audio/raw") ||
		ct == "application/octet-stream"
}

// MixMono averages all channels sample-by-sample. A single channel is returned
// as-is.
func MixMono(channels [][]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	if len(channels) == 1 {
		return channels[0]
	}

	length := len(channels[0])
	mixed := make([]float64, length)
	for _, ch := range channels {
		for i := 0; i < length && i < len(ch); i++ {
			mixed[i] += ch[i]
		}
	}
	for i := range mixed {
		mixed[i] /= float64(len(channels))
	}
	return mixed
}

// ResampleLinear converts samples from sourceRate to targetRate using linear
// interpolation between the two nearest input samples. Identity when the rates
// already match. Not band-limited; acceptable for speech input.
func ResampleLinear(data []float64, sourceRate, targetRate int) []float64 {
	if len(data) == 0 || sourceRate == targetRate {
		return data
	}

	ratio := float64(sourceRate) / float64(targetRate)
	newLength := int(math.Round(float64(len(data)) / ratio))
	if newLength < 1 {
		newLength = 1
	}

	out := make([]float64, newLength)
	for i := range out {
		pos := float64(i) * ratio
		lower := int(math.Floor(pos))
		upper := lower + 1
		if upper > len(data)-1 {
			upper = len(data) - 1
		}
		if lower > len(data)-1 {
			lower = len(data) - 1
		}
		weight := pos - float64(lower)
		out[i] = data[lower]*(1-weight) + data[upper]*weight
	}
	return out
}

// PCM16Bytes converts float samples in [-1, 1] to signed 16-bit little-endian
// bytes. Samples are clamped first; negative values scale by 32768 and
// non-negative by 32767 so that -1.0 maps to -32768 and 1.0 to 32767 without
// overflowing int16.
func PCM16Bytes(samples []float64) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}

		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// DecodeWAV parses a RIFF/WAVE container into per-channel float samples in
// [-1, 1] plus the container's native sample rate. PCM (8/16/24/32 bit) and
// IEEE float32 data are supported.
func DecodeWAV(data []byte) ([][]float64, int, error) {
	if len(data) < 12 {
		return nil, 0, fmt.Errorf("data too short for a RIFF header: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, errors.New("missing RIFF/WAVE header")
	}

	var (
		audioFormat   uint16
		numChannels   int
		sampleRate    int
		bitsPerSample int
		pcm           []byte
		haveFmt       bool
	)

	// Walk chunks; encoders commonly insert LIST/fact chunks before data.
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, 0, fmt.Errorf("fmt chunk too short: %d bytes", chunkSize)
			}
			fmtBody := data[body : body+chunkSize]
			audioFormat = binary.LittleEndian.Uint16(fmtBody[0:2])
			numChannels = int(binary.LittleEndian.Uint16(fmtBody[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtBody[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(fmtBody[14:16]))
			haveFmt = true
		case "data":
			pcm = data[body : body+chunkSize]
		}

		// Chunks are word-aligned.
		if chunkSize%2 == 1 {
			chunkSize++
		}
		offset = body + chunkSize
	}

	if !haveFmt {
		return nil, 0, errors.New("missing fmt chunk")
	}
	if pcm == nil {
		return nil, 0, errors.New("missing data chunk")
	}
	if numChannels < 1 || sampleRate <= 0 {
		return nil, 0, fmt.Errorf("invalid fmt chunk: channels=%d rate=%d", numChannels, sampleRate)
	}

	samples, err := decodeSamples(pcm, audioFormat, numChannels, bitsPerSample)
	if err != nil {
		return nil, 0, err
	}
	return samples, sampleRate, nil
}

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

func decodeSamples(pcm []byte, format uint16, channels, bits int) ([][]float64, error) {
	bytesPerSample := bits / 8
	if bytesPerSample == 0 {
		return nil, fmt.Errorf("invalid bits per sample: %d", bits)
	}
	frameSize := bytesPerSample * channels
	frames := len(pcm) / frameSize

	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	reader := bytes.NewReader(pcm)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			v, err := readSample(reader, format, bits)
			if err != nil {
				return nil, err
			}
			out[ch][i] = v
		}
	}
	return out, nil
}

func readSample(r *bytes.Reader, format uint16, bits int) (float64, error) {
	switch {
	case format == wavFormatPCM && bits == 8:
		// 8-bit WAV is unsigned.
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		return (float64(b) - 128) / 128, nil
	case format == wavFormatPCM && bits == 16:
		var v int16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return float64(v) / 32768, nil
	case format == wavFormatPCM && bits == 24:
		var raw [3]byte
		if _, err := r.Read(raw[:]); err != nil {
			return 0, err
		}
		v := int32(raw[0]) | int32(raw[1])<<8 | int32(raw[2])<<16
		if v&0x800000 != 0 {
			v |= ^int32(0xffffff)
		}
		return float64(v) / 8388608, nil
	case format == wavFormatPCM && bits == 32:
		var v int32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return float64(v) / 2147483648, nil
	case format == wavFormatFloat && bits == 32:
		var v float32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, err
		}
		return float64(v), nil
	default:
		return 0, fmt.Errorf("unsupported sample encoding: format=%d bits=%d", format, bits)
	}
}

// Float64sToWAV encodes interleaved float samples as a 16-bit PCM WAV blob.
// Used by tests and tooling that need a valid container.
func Float64sToWAV(samples []float64, sampleRate, channels int) []byte {
	interleaved := PCM16Bytes(samples)
	dataSize := uint32(len(interleaved))

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(interleaved)))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(wavFormatPCM))
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	buf.Write(interleaved)
	return buf.Bytes()
}
