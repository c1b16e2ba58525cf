package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// constSource emits a fixed value so PCM conversion is checkable.
type constSource struct{ v float64 }

func (c constSource) Render(buf []float64) {
	for i := range buf {
		buf[i] = c.v
	}
}

func TestPCMStreamConversion(t *testing.T) {
	s := &pcmStream{src: constSource{v: 0.5}}
	p := make([]byte, 64)
	n, err := s.Read(p)
	if err != nil {
		t.Fatal(err)
	}
	if n != 64 {
		t.Fatalf("read %d bytes, want 64", n)
	}
	full := float64(0.5)
	want := int16(full * 32767)
	for i := 0; i < n; i += 2 {
		got := int16(binary.LittleEndian.Uint16(p[i:]))
		if got != want {
			t.Fatalf("sample %d = %d, want %d", i/2, got, want)
		}
	}
}

func TestPCMStreamClamps(t *testing.T) {
	s := &pcmStream{src: constSource{v: 2.0}}
	p := make([]byte, 8)
	if _, err := s.Read(p); err != nil {
		t.Fatal(err)
	}
	if got := int16(binary.LittleEndian.Uint16(p)); got != 32767 {
		t.Errorf("over-full-scale sample = %d, want 32767", got)
	}
}

func TestExportWAVHeaderAndSize(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportWAV(&buf, constSource{v: 0}, 8000, 0.5); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	if len(b) != 44+4000*2 {
		t.Fatalf("file size %d, want %d", len(b), 44+4000*2)
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(b[24:]); rate != 8000 {
		t.Errorf("sample rate %d, want 8000", rate)
	}
	if size := binary.LittleEndian.Uint32(b[40:]); size != 4000*2 {
		t.Errorf("data size %d, want %d", size, 4000*2)
	}
}
