package codec

import (
	"reflect"
	"testing"
)

func TestPointRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		id     uint32
		vector []float32
	}{
		{"typical", 42, []float32{0.1, -0.2, 0.3, 1.5}},
		{"single dim", 7, []float32{3.14}},
		{"zero vector", 9, []float32{0, 0, 0}},
		{"empty vector", 0, []float32{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := EncodePoint(tc.id, tc.vector)
			gotID, gotVector, err := DecodePoint(data)
			if err != nil {
				t.Fatalf("DecodePoint: %v", err)
			}
			if gotID != tc.id {
				t.Errorf("id = %d, want %d", gotID, tc.id)
			}
			if len(gotVector) != len(tc.vector) {
				t.Fatalf("vector len = %d, want %d", len(gotVector), len(tc.vector))
			}
			for i := range tc.vector {
				if gotVector[i] != tc.vector[i] {
					t.Errorf("vector[%d] = %v, want %v", i, gotVector[i], tc.vector[i])
				}
			}
		})
	}
}

func TestDecodePointTruncated(t *testing.T) {
	if _, _, err := DecodePoint([]byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatal("expected error decoding truncated point, got nil")
	}
}

func TestDecodePointBadMagic(t *testing.T) {
	data := EncodePoint(1, []float32{1, 2})
	data[0] = 0xFF
	if _, _, err := DecodePoint(data); err == nil {
		t.Fatal("expected error decoding point with bad magic, got nil")
	}
}

func TestDecodePointLengthMismatch(t *testing.T) {
	data := EncodePoint(1, []float32{1, 2, 3})
	truncated := data[:len(data)-4]
	if _, _, err := DecodePoint(truncated); err == nil {
		t.Fatal("expected error decoding point with truncated payload, got nil")
	}
}

func TestLayerNodeRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		id        uint32
		level     int
		neighbors map[uint32]float32
	}{
		{"typical", 3, 1, map[uint32]float32{1: 0.5, 2: 0.25, 9: 1.75}},
		{"no neighbors", 5, 0, map[uint32]float32{}},
		{"single neighbor", 11, 4, map[uint32]float32{100: 0.001}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := EncodeLayerNode(tc.id, tc.level, tc.neighbors)
			gotID, gotLevel, gotNeighbors, err := DecodeLayerNode(data)
			if err != nil {
				t.Fatalf("DecodeLayerNode: %v", err)
			}
			if gotID != tc.id {
				t.Errorf("id = %d, want %d", gotID, tc.id)
			}
			if gotLevel != tc.level {
				t.Errorf("level = %d, want %d", gotLevel, tc.level)
			}
			if !reflect.DeepEqual(gotNeighbors, tc.neighbors) {
				t.Errorf("neighbors = %v, want %v", gotNeighbors, tc.neighbors)
			}
		})
	}
}

func TestDecodeLayerNodeBadMagic(t *testing.T) {
	data := EncodeLayerNode(1, 0, map[uint32]float32{2: 0.1})
	data[0] = 0xAB
	if _, _, _, err := DecodeLayerNode(data); err == nil {
		t.Fatal("expected error decoding layer node with bad magic, got nil")
	}
}

func TestDecodeLayerNodeCountMismatch(t *testing.T) {
	data := EncodeLayerNode(1, 2, map[uint32]float32{2: 0.1, 3: 0.2})
	truncated := data[:len(data)-8]
	if _, _, _, err := DecodeLayerNode(truncated); err == nil {
		t.Fatal("expected error decoding layer node with truncated payload, got nil")
	}
}

func TestDecodePointChecksumMismatch(t *testing.T) {
	data := EncodePoint(1, []float32{1, 2, 3})
	data[len(data)-1] ^= 0xFF
	if _, _, err := DecodePoint(data); err == nil {
		t.Fatal("expected error decoding point with corrupted checksum, got nil")
	}
}

func TestDecodeLayerNodeChecksumMismatch(t *testing.T) {
	data := EncodeLayerNode(1, 0, map[uint32]float32{2: 0.1})
	data[len(data)-1] ^= 0xFF
	if _, _, _, err := DecodeLayerNode(data); err == nil {
		t.Fatal("expected error decoding layer node with corrupted checksum, got nil")
	}
}
