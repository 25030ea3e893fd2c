package math3d

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want Vec3
	}{
		{"x cross y", V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)},
		{"y cross z", V3(0, 1, 0), V3(0, 0, 1), V3(1, 0, 0)},
		{"up cross back", Up(), V3(0, 0, -1), V3(-1, 0, 0)},
		{"parallel", V3(2, 0, 0), V3(5, 0, 0), Zero3()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Cross(tc.b); !got.ApproxEqual(tc.want, 1e-12) {
				t.Errorf("%v × %v = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestVec3Normalize(t *testing.T) {
	v := V3(3, 4, 12).Normalize()
	if math.Abs(v.Len()-1) > 1e-12 {
		t.Errorf("normalized length = %f, want 1", v.Len())
	}
	if z := Zero3().Normalize(); z != Zero3() {
		t.Errorf("zero vector normalized to %v, want zero", z)
	}
}

func TestVec3Reflect(t *testing.T) {
	d := V3(1, -1, 0)
	n := V3(0, 1, 0)
	if got := d.Reflect(n); !got.ApproxEqual(V3(1, 1, 0), 1e-12) {
		t.Errorf("Reflect = %v, want (1, 1, 0)", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !V3(1, 2, 3).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if V3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN vector reported finite")
	}
	if V3(0, math.Inf(-1), 0).IsFinite() {
		t.Error("Inf vector reported finite")
	}
}

func TestFromRows(t *testing.T) {
	m := FromRows(
		V4(1, 2, 3, 4),
		V4(5, 6, 7, 8),
		V4(9, 10, 11, 12),
		V4(13, 14, 15, 16),
	)

	if m[12] != 4 || m[3] != 13 || m[9] != 7 {
		t.Errorf("FromRows placed elements incorrectly: %v", m)
	}
	if r := m.Row(2); r != V4(9, 10, 11, 12) {
		t.Errorf("Row(2) = %v, want (9, 10, 11, 12)", r)
	}
}

func TestMat4MulVec4(t *testing.T) {
	rot := FromRows(
		V4(0, -1, 0, 0),
		V4(1, 0, 0, 0),
		V4(0, 0, 1, 0),
		V4(0, 0, 0, 1),
	)
	shift := FromRows(
		V4(1, 0, 0, 0),
		V4(0, 1, 0, 0),
		V4(0, 0, 1, 0),
		V4(2, 3, 4, 1),
	)

	tests := []struct {
		name string
		m    Mat4
		v    Vec4
		want Vec4
	}{
		{"first column", FromRows(V4(1, 2, 3, 4), V4(5, 6, 7, 8), V4(9, 10, 11, 12), V4(13, 14, 15, 16)), V4(1, 0, 0, 0), V4(1, 5, 9, 13)},
		{"quarter turn", rot, V4(1, 0, 0, 0), V4(0, 1, 0, 0)},
		{"bottom row only feeds w", shift, V4(1, 1, 1, 1), V4(1, 1, 1, 10)},
		{"dot product", FromRows(V4(1, 2, 3, 4), V4(0, 0, 0, 0), V4(0, 0, 0, 0), V4(0, 0, 0, 0)), V4(4, 3, 2, 1), V4(20, 0, 0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.m.MulVec4(tc.v); got != tc.want {
				t.Errorf("MulVec4(%v) = %v, want %v", tc.v, got, tc.want)
			}
		})
	}
}
