package datacard

import (
	"bytes"
	"image"
	"testing"
)

func FuzzDecode(f *testing.F) {
	valid := makePatterned(16, 16)
	if err := Encode(valid, []byte("seed payload"), true); err == nil {
		f.Add(valid.Pix, uint8(16))
	}
	f.Add([]byte("GJV1\xff\xff\xff\xff"), uint8(2))
	f.Add([]byte{}, uint8(0))

	f.Fuzz(func(t *testing.T, pix []byte, width uint8) {
		w := 1 + int(width)%32
		h := 1 + len(pix)/(4*w)
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		copy(img.Pix, pix)

		res, err := Decode(img)
		if err != nil && (res.Payload != nil || res.Encrypted()) {
			t.Fatalf("failed decode returned %+v", res)
		}
		if err == nil && len(res.Payload) > Capacity(w, h) {
			t.Fatalf("payload of %d bytes exceeds capacity %d", len(res.Payload), Capacity(w, h))
		}
	})
}

func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte("hello"), false)
	f.Add([]byte{0, 1, 2, 3}, true)

	f.Fuzz(func(t *testing.T, payload []byte, encrypted bool) {
		if len(payload) == 0 {
			return
		}
		img := makePatterned(64, 64)
		before := clonePix(img)
		err := Encode(img, payload, encrypted)
		if err != nil {
			if !bytes.Equal(img.Pix, before) {
				t.Fatal("failed Encode modified the buffer")
			}
			return
		}
		res, err := Decode(img)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if !bytes.Equal(res.Payload, payload) || res.Encrypted() != encrypted {
			t.Fatalf("round trip mismatch")
		}
	})
}
