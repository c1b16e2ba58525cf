package audio

import (
	"encoding/binary"
	"io"
)

// wavHeader writes a RIFF/PCM16 header for dataSize bytes of samples.
func wavHeader(w io.Writer, sampleRate, channels, dataSize int) error {
	var hdr [44]byte
	copy(hdr[0:], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:], uint32(dataSize+36))
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(hdr[20:], 1)  // PCM
	binary.LittleEndian.PutUint16(hdr[22:], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:], uint32(sampleRate*channels*2))
	binary.LittleEndian.PutUint16(hdr[32:], uint16(channels*2))
	binary.LittleEndian.PutUint16(hdr[34:], 16) // bits per sample
	copy(hdr[36:], "data")
	binary.LittleEndian.PutUint32(hdr[40:], uint32(dataSize))
	_, err := w.Write(hdr[:])
	return err
}

// ExportWAV renders a source offline for a duration and writes it as a
// mono 16-bit WAV. The caller is responsible for having already
// scheduled whatever should sound during the bounce.
func ExportWAV(w io.Writer, src Source, sampleRate int, seconds float64) error {
	total := int(seconds * float64(sampleRate))
	if err := wavHeader(w, sampleRate, 1, total*2); err != nil {
		return err
	}

	const chunk = 4096
	buf := make([]float64, chunk)
	pcm := make([]byte, chunk*2)
	for written := 0; written < total; {
		n := total - written
		if n > chunk {
			n = chunk
		}
		src.Render(buf[:n])
		for i, v := range buf[:n] {
			if v > 1.0 {
				v = 1.0
			} else if v < -1.0 {
				v = -1.0
			}
			binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(v*32767)))
		}
		if _, err := w.Write(pcm[:n*2]); err != nil {
			return err
		}
		written += n
	}
	return nil
}
