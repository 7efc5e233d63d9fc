package audio

// FrameSize is the maximum protocol frame payload: 1280 bytes, roughly 40 ms
// of 16 kHz 16-bit mono PCM.
const FrameSize = 1280

// Frames slices a PCM byte buffer into consecutive chunks of at most size
// bytes. The last frame may be shorter; concatenating the frames reproduces
// the input exactly. Frames share the input's backing array.
func Frames(buf []byte, size int) [][]byte {
	if size <= 0 {
		size = FrameSize
	}
	if len(buf) == 0 {
		return nil
	}

	frames := make([][]byte, 0, (len(buf)+size-1)/size)
	for offset := 0; offset < len(buf); offset += size {
		end := offset + size
		if end > len(buf) {
			end = len(buf)
		}
		frames = append(frames, buf[offset:end])
	}
	return frames
}
