package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestResampleLinearIdentity(t *testing.T) {
	data := []float64{0.1, -0.2, 0.3, -0.4}

	out := ResampleLinear(data, 16000, 16000)
	if len(out) != len(data) {
		t.Fatalf("expected %d samples, got %d", len(data), len(out))
	}
	for i := range data {
		if out[i] != data[i] {
			t.Errorf("sample %d changed: %v -> %v", i, data[i], out[i])
		}
	}
}

func TestResampleLinearDownsamples(t *testing.T) {
	// 0.1s at 44.1kHz should become 0.1s at 16kHz.
	data := make([]float64, 4410)
	out := ResampleLinear(data, 44100, 16000)
	if len(out) != 1600 {
		t.Fatalf("expected 1600 samples, got %d", len(out))
	}
}

func TestResampleLinearInterpolates(t *testing.T) {
	// Doubling the rate should place midpoints between neighbors.
	data := []float64{0, 1}
	out := ResampleLinear(data, 1, 2)
	if len(out) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(out))
	}
	if math.Abs(out[1]-0.5) > 1e-9 {
		t.Errorf("expected interpolated midpoint 0.5, got %v", out[1])
	}
}

func TestPCM16BytesBoundaries(t *testing.T) {
	out := PCM16Bytes([]float64{1.0, -1.0, 0, 2.0, -2.0})

	cases := []struct {
		index int
		want  int16
	}{
		{0, 32767},
		{1, -32768},
		{2, 0},
		{3, 32767},  // clamped
		{4, -32768}, // clamped
	}
	for _, tc := range cases {
		got := int16(binary.LittleEndian.Uint16(out[tc.index*2:]))
		if got != tc.want {
			t.Errorf("sample %d: expected %d, got %d", tc.index, tc.want, got)
		}
	}
}

func TestMixMonoAverages(t *testing.T) {
	channels := [][]float64{
		{1.0, 0.0, -1.0},
		{0.0, 1.0, -1.0},
	}
	mono := MixMono(channels)
	want := []float64{0.5, 0.5, -1.0}
	for i := range want {
		if math.Abs(mono[i]-want[i]) > 1e-9 {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], mono[i])
		}
	}
}

func TestNormalizeRawPassthrough(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04}

	for _, ct := range []string{"", "audio/pcm", "audio/raw", "application/octet-stream"} {
		out, err := Normalize(raw, ct)
		if err != nil {
			t.Fatalf("content type %q: unexpected error: %v", ct, err)
		}
		if string(out) != string(raw) {
			t.Errorf("content type %q: passthrough modified data", ct)
		}
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("definitely not a wav file"), "audio/webm")
	if err == nil {
		t.Fatal("expected an error for undecodable input")
	}
}

func TestNormalizeStereoWAVEndToEnd(t *testing.T) {
	// 0.1s of 44.1kHz stereo silence must become exactly 1600 mono samples
	// of 16kHz silence.
	interleaved := make([]float64, 4410*2)
	blob := Float64sToWAV(interleaved, 44100, 2)

	out, err := Normalize(blob, "audio/wav")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(out) != 1600*2 {
		t.Fatalf("expected 3200 bytes (1600 samples), got %d", len(out))
	}
	for i := 0; i < len(out); i += 2 {
		if v := int16(binary.LittleEndian.Uint16(out[i:])); v != 0 {
			t.Fatalf("sample %d not silent: %d", i/2, v)
		}
	}
}

func TestDecodeWAVRoundTrip(t *testing.T) {
	samples := []float64{0, 0.25, -0.25, 0.5}
	blob := Float64sToWAV(samples, 16000, 1)

	channels, rate, err := DecodeWAV(blob)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if rate != 16000 {
		t.Errorf("expected rate 16000, got %d", rate)
	}
	if len(channels) != 1 {
		t.Fatalf("expected 1 channel, got %d", len(channels))
	}
	for i, want := range samples {
		if math.Abs(channels[0][i]-want) > 1e-3 {
			t.Errorf("sample %d: expected ~%v, got %v", i, want, channels[0][i])
		}
	}
}
