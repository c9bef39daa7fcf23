package lin

import "testing"

func TestProtectedID(t *testing.T) {
	testCases := []struct {
		id       uint8
		expected uint8
	}{
		{0x00, 0x80},
		{0x10, 0x50},
		{0x3C, 0x3C},
		{0x3D, 0x7D},
		{0x3F, 0xBF},
	}

	for _, tc := range testCases {
		if got := ProtectedID(tc.id); got != tc.expected {
			t.Errorf("ProtectedID(0x%02X): expected 0x%02X, got 0x%02X", tc.id, tc.expected, got)
		}
	}
}

func TestParsePID(t *testing.T) {
	for id := uint8(0); id <= MaxID; id++ {
		got, err := ParsePID(ProtectedID(id))
		if err != nil || got != id {
			t.Fatalf("ParsePID round trip failed for 0x%02X: got 0x%02X, err %v", id, got, err)
		}
	}
	if _, err := ParsePID(0x3D); err != ErrParity {
		t.Errorf("Expected ErrParity, got %v", err)
	}
}

func TestChecksum(t *testing.T) {
	data := []byte{0x55, 0x93, 0xE5}

	// LIN 2.x specification example
	if got := Checksum(Enhanced, 0x4A, data); got != 0xE6 {
		t.Errorf("Expected enhanced checksum 0xE6, got 0x%02X", got)
	}
	// 0x55+0x93 = 0xE8, +0xE5 = 0x1CD -> 0xCE, inverted 0x31
	if got := Checksum(Classic, 0x4A, data); got != 0x31 {
		t.Errorf("Expected classic checksum 0x31, got 0x%02X", got)
	}
}

func TestDiagnosticFramesUseClassic(t *testing.T) {
	data := []byte{0x01, 0x02}
	if FrameChecksum(Enhanced, MasterRequestID, data) != Checksum(Classic, 0, data) {
		t.Error("Master request frame should use the classic checksum")
	}
}

func TestNewFrame(t *testing.T) {
	f, err := NewFrame(Enhanced, 0x0A, []byte{0x11, 0x22})
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	if err := f.Verify(Enhanced); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
	f.Data[0] ^= 0xFF
	if err := f.Verify(Enhanced); err != ErrChecksum {
		t.Errorf("Expected ErrChecksum, got %v", err)
	}

	if _, err := NewFrame(Classic, 0x40, []byte{1}); err != ErrInvalidID {
		t.Errorf("Expected ErrInvalidID, got %v", err)
	}
	if _, err := NewFrame(Classic, 0x01, make([]byte, 9)); err != ErrInvalidLength {
		t.Errorf("Expected ErrInvalidLength, got %v", err)
	}
}
