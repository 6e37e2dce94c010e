package datacard

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"sync"
	"testing"
	"testing/quick"

	kerrors "github.com/selfcheck/datacard/internal/errors"
)

// makePatterned returns a w×h image whose every pixel is distinct and
// half transparent, so untouched pixels are easy to tell apart.
func makePatterned(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 128})
		}
	}
	return img
}

func clonePix(img *image.NRGBA) []byte {
	return append([]byte(nil), img.Pix...)
}

func TestHelloScenario(t *testing.T) {
	img := makePatterned(64, 64)
	before := clonePix(img)

	if err := Encode(img, []byte("hello"), false); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := append([]byte("GJV1"), 5, 0, 0, 0)
	want = append(want, "hello"...)
	if len(want) != 13 {
		t.Fatalf("test container has %d bytes, want 13", len(want))
	}

	row := 64 - DataRows
	if row != 56 {
		t.Fatalf("reserved region starts at row %d, want 56", row)
	}

	// Container bytes fill R, G, B of pixels 0-4 of row 56.
	var got []byte
	for x := 0; x < 5; x++ {
		c := img.NRGBAAt(x, row)
		got = append(got, c.R, c.G, c.B)
		if c.A != 0xff {
			t.Errorf("pixel %d alpha = %d, want 255", x, c.A)
		}
	}
	if !bytes.Equal(got[:13], want) {
		t.Errorf("container bytes = %v, want %v", got[:13], want)
	}

	// The last written pixel only received an R byte.
	orig := color.NRGBA{R: 4, G: uint8(row), B: uint8(4 ^ row), A: 128}
	if c := img.NRGBAAt(4, row); c.G != orig.G || c.B != orig.B {
		t.Errorf("pixel 4 G,B = %d,%d, want %d,%d", c.G, c.B, orig.G, orig.B)
	}

	// Pixel 5 keeps color and opacity.
	if got, want := img.NRGBAAt(5, row), (color.NRGBA{R: 5, G: uint8(row), B: uint8(5 ^ row), A: 128}); got != want {
		t.Errorf("pixel 5 = %v, want untouched %v", got, want)
	}

	// Nothing above the reserved region changed.
	cut := img.PixOffset(0, row)
	if !bytes.Equal(img.Pix[:cut], before[:cut]) {
		t.Error("pixels above the reserved region were modified")
	}
	// Nothing after pixel 4 changed.
	tail := img.PixOffset(5, row)
	if !bytes.Equal(img.Pix[tail:], before[tail:]) {
		t.Error("pixels after the container were modified")
	}

	res, err := Decode(img)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if string(res.Payload) != "hello" {
		t.Errorf("payload = %q, want %q", res.Payload, "hello")
	}
	if res.Encrypted() {
		t.Error("expected plain card")
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		img     func() *image.NRGBA
		payload int
	}{
		{"single byte", func() *image.NRGBA { return makePatterned(64, 64) }, 1},
		{"pixel aligned", func() *image.NRGBA { return makePatterned(64, 64) }, 30},
		{"one row", func() *image.NRGBA { return makePatterned(32, 32) }, 32*3 - 11},
		{"short image", func() *image.NRGBA { return makePatterned(16, 3) }, 100},
		{"one pixel wide", func() *image.NRGBA { return makePatterned(1, 20) }, 10},
		{"sub image", func() *image.NRGBA {
			return makePatterned(80, 80).SubImage(image.Rect(10, 5, 60, 40)).(*image.NRGBA)
		}, 500},
	}

	rng := rand.New(rand.NewSource(1))
	for _, tt := range tests {
		for _, encrypted := range []bool{false, true} {
			t.Run(tt.name, func(t *testing.T) {
				img := tt.img()
				payload := make([]byte, tt.payload)
				rng.Read(payload)

				if err := Encode(img, payload, encrypted); err != nil {
					t.Fatalf("Encode failed: %v", err)
				}
				res, err := Decode(img)
				if err != nil {
					t.Fatalf("Decode failed: %v", err)
				}
				if !bytes.Equal(res.Payload, payload) {
					t.Errorf("payload mismatch: got %d bytes, want %d", len(res.Payload), len(payload))
				}
				if res.Encrypted() != encrypted {
					t.Errorf("Encrypted() = %t, want %t", res.Encrypted(), encrypted)
				}
			})
		}
	}
}

func TestRoundTripProperty(t *testing.T) {
	check := func(payload []byte, encrypted bool) bool {
		img := makePatterned(64, 64)
		err := Encode(img, payload, encrypted)
		if len(payload) == 0 {
			return errors.Is(err, kerrors.ErrInvalidLength)
		}
		if err != nil {
			return false
		}
		res, err := Decode(img)
		return err == nil && bytes.Equal(res.Payload, payload) && res.Encrypted() == encrypted
	}
	if err := quick.Check(check, &quick.Config{MaxCount: 300, Rand: rand.New(rand.NewSource(7))}); err != nil {
		t.Error(err)
	}
}

func TestEncodeCapacityBoundary(t *testing.T) {
	for _, v := range []Version{VersionPlain, VersionEncrypted} {
		t.Run(v.String(), func(t *testing.T) {
			limit := DefaultFormat.Capacity(64, 64) - ContainerSize(len(DefaultFormat.Magic(v)), 0)
			if got := DefaultFormat.MaxPayload(64, 64, v); got != limit {
				t.Fatalf("MaxPayload = %d, want %d", got, limit)
			}

			img := makePatterned(64, 64)
			if err := DefaultFormat.Encode(img, bytes.Repeat([]byte{0xAB}, limit), v); err != nil {
				t.Fatalf("exact fit failed: %v", err)
			}
			res, err := DefaultFormat.Decode(img)
			if err != nil || len(res.Payload) != limit {
				t.Fatalf("Decode exact fit: %d bytes, err %v", len(res.Payload), err)
			}

			img = makePatterned(64, 64)
			before := clonePix(img)
			err = DefaultFormat.Encode(img, bytes.Repeat([]byte{0xAB}, limit+1), v)
			if !errors.Is(err, kerrors.ErrPayloadTooLarge) {
				t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
			}
			if !bytes.Equal(img.Pix, before) {
				t.Error("failed Encode modified the buffer")
			}
		})
	}
}

func TestEncodeEmptyPayload(t *testing.T) {
	for _, payload := range [][]byte{nil, {}} {
		img := makePatterned(16, 16)
		before := clonePix(img)

		err := Encode(img, payload, false)
		if !errors.Is(err, kerrors.ErrInvalidLength) {
			t.Fatalf("expected ErrInvalidLength, got %v", err)
		}
		if !bytes.Equal(img.Pix, before) {
			t.Error("rejected empty payload modified the buffer")
		}
		if _, err := Decode(img); !errors.Is(err, kerrors.ErrInvalidMagic) {
			t.Errorf("expected no card after a rejected Encode, got %v", err)
		}
	}
}

func TestEncodeTooLargeLeavesBufferUnmodified(t *testing.T) {
	img := makePatterned(10, 10)
	before := clonePix(img)

	err := Encode(img, make([]byte, 10_000), true)
	if !errors.Is(err, kerrors.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
	if !bytes.Equal(img.Pix, before) {
		t.Error("buffer changed after a rejected Encode")
	}
}

func TestVersionTieBreak(t *testing.T) {
	// The plain marker is a byte prefix of the encrypted marker.
	f := Format{Rows: 4, Plain: []byte("GJ"), Encrypted: []byte("GJX9")}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	img := makePatterned(32, 32)
	if err := f.Encode(img, []byte("ciphertext"), VersionEncrypted); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	res, err := f.Decode(img)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !res.Encrypted() {
		t.Fatal("encrypted card was read as plain")
	}
	if string(res.Payload) != "ciphertext" {
		t.Errorf("payload = %q", res.Payload)
	}

	img = makePatterned(32, 32)
	if err := f.Encode(img, []byte("plaintext"), VersionPlain); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	res, err = f.Decode(img)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if res.Encrypted() || string(res.Payload) != "plaintext" {
		t.Errorf("plain card decoded as %v %q", res.Version, res.Payload)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		header   string
		version  Version
		magicLen int
		ok       bool
	}{
		{"GJCARD2\x01\x00\x00\x00", VersionEncrypted, 7, true},
		{"GJV1\x01\x00\x00\x00xxx", VersionPlain, 4, true},
		{"GJV2", VersionUnknown, 0, false},
		{"", VersionUnknown, 0, false},
		{"GJCARD", VersionUnknown, 0, false},
	}
	for _, tt := range tests {
		v, n, ok := DefaultFormat.Detect([]byte(tt.header))
		if v != tt.version || n != tt.magicLen || ok != tt.ok {
			t.Errorf("Detect(%q) = %v, %d, %t; want %v, %d, %t", tt.header, v, n, ok, tt.version, tt.magicLen, tt.ok)
		}
	}
}

func TestDecodeGarbage(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		w, h := 1+rng.Intn(40), 1+rng.Intn(40)
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		rng.Read(img.Pix)

		res, err := Decode(img)
		if err == nil {
			t.Fatalf("random %dx%d image decoded as a card", w, h)
		}
		if res.Payload != nil || res.Encrypted() {
			t.Fatalf("failed decode returned %+v", res)
		}
		if !errors.Is(err, kerrors.ErrInvalidMagic) &&
			!errors.Is(err, kerrors.ErrInvalidLength) &&
			!errors.Is(err, kerrors.ErrTruncated) {
			t.Fatalf("unexpected error kind: %v", err)
		}
	}
}

// writeHeader stores a raw marker and length at the start of the region.
func writeHeader(img *image.NRGBA, magic string, length uint32) {
	data := append([]byte(magic), byte(length), byte(length>>8), byte(length>>16), byte(length>>24))
	r, err := DefaultFormat.region(img)
	if err != nil {
		panic(err)
	}
	r.write(data)
}

func TestDecodeInvalidLength(t *testing.T) {
	tests := []struct {
		name   string
		length uint32
	}{
		{"zero", 0},
		{"past image bound", 64*64*3 + 1},
		{"max uint32", 0xffffffff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := makePatterned(64, 64)
			writeHeader(img, MagicPlain, tt.length)

			res, err := Decode(img)
			if !errors.Is(err, kerrors.ErrInvalidLength) {
				t.Fatalf("expected ErrInvalidLength, got %v", err)
			}
			if res.Payload != nil || res.Encrypted() {
				t.Errorf("failed decode returned %+v", res)
			}
		})
	}
}

func TestDecodeTruncated(t *testing.T) {
	t.Run("payload", func(t *testing.T) {
		// Within the whole-image bound but past the reserved region.
		img := makePatterned(64, 64)
		writeHeader(img, MagicEncrypted, 2000)

		res, err := Decode(img)
		if !errors.Is(err, kerrors.ErrTruncated) {
			t.Fatalf("expected ErrTruncated, got %v", err)
		}
		if res.Payload != nil || res.Encrypted() {
			t.Errorf("failed decode returned %+v", res)
		}
	})

	t.Run("header", func(t *testing.T) {
		f := Format{Rows: 1, Plain: []byte("ABC"), Encrypted: []byte("XYZW")}
		img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
		copy(img.Pix, []byte{'A', 'B', 'C', 0xff, 1, 0, 0, 0xff})

		if _, err := f.Decode(img); !errors.Is(err, kerrors.ErrTruncated) {
			t.Fatalf("expected ErrTruncated, got %v", err)
		}
	})
}

func TestPeek(t *testing.T) {
	img := makePatterned(40, 40)
	if err := Encode(img, make([]byte, 77), true); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	h, err := DefaultFormat.Peek(img)
	if err != nil {
		t.Fatalf("Peek failed: %v", err)
	}
	if h.Version != VersionEncrypted || h.MagicLen != len(MagicEncrypted) || h.Length != 77 {
		t.Errorf("Peek = %+v", h)
	}
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		w, h int
		want int
	}{
		{64, 64, 1536},
		{100, 8, 2400},
		{100, 3, 900},
		{0, 64, 0},
		{64, 0, 0},
		{-1, 10, 0},
	}
	for _, tt := range tests {
		if got := Capacity(tt.w, tt.h); got != tt.want {
			t.Errorf("Capacity(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}

	if got := DefaultFormat.MaxPayload(1, 1, VersionEncrypted); got != 0 {
		t.Errorf("MaxPayload on 1x1 = %d, want 0", got)
	}
	if got := ContainerSize(4, 5); got != 13 {
		t.Errorf("ContainerSize(4, 5) = %d, want 13", got)
	}
}

func TestFormatValidate(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{"default", DefaultFormat, false},
		{"plain prefix of encrypted", Format{Rows: 1, Plain: []byte("A"), Encrypted: []byte("AB")}, false},
		{"encrypted prefix of plain", Format{Rows: 1, Plain: []byte("AB"), Encrypted: []byte("A")}, true},
		{"equal markers", Format{Rows: 1, Plain: []byte("AB"), Encrypted: []byte("AB")}, true},
		{"empty marker", Format{Rows: 1, Plain: nil, Encrypted: []byte("AB")}, true},
		{"no rows", Format{Rows: 0, Plain: []byte("A"), Encrypted: []byte("B")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, kerrors.ErrInvalidFormat) {
				t.Errorf("expected ErrInvalidFormat, got %v", err)
			}
		})
	}
}

func TestUnusableImages(t *testing.T) {
	if err := Encode(nil, []byte("x"), false); !errors.Is(err, kerrors.ErrCarrierTooSmall) {
		t.Errorf("Encode(nil) error = %v", err)
	}
	if _, err := Decode(nil); !errors.Is(err, kerrors.ErrCarrierTooSmall) {
		t.Errorf("Decode(nil) error = %v", err)
	}

	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	if _, err := Decode(empty); !errors.Is(err, kerrors.ErrCarrierTooSmall) {
		t.Errorf("Decode(empty) error = %v", err)
	}

	short := &image.NRGBA{Pix: make([]byte, 8), Stride: 40, Rect: image.Rect(0, 0, 10, 10)}
	if _, err := Decode(short); !errors.Is(err, kerrors.ErrCarrierTooSmall) {
		t.Errorf("Decode(short) error = %v", err)
	}
}

func TestEncodeUnknownVersion(t *testing.T) {
	img := makePatterned(16, 16)
	before := clonePix(img)
	if err := DefaultFormat.Encode(img, []byte("x"), VersionUnknown); !errors.Is(err, kerrors.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	if !bytes.Equal(img.Pix, before) {
		t.Error("buffer changed")
	}
}

func TestConcurrentDistinctBuffers(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img := makePatterned(48, 48)
			payload := bytes.Repeat([]byte{byte(i)}, 10+i)
			if err := Encode(img, payload, i%2 == 0); err != nil {
				errs <- err
				return
			}
			res, err := Decode(img)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(res.Payload, payload) {
				errs <- errors.New("payload mismatch")
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
