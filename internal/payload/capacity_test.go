package payload

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestMaxDataLength(t *testing.T) {
	tests := []struct {
		level string
		want  int
	}{
		{"L", 2953},
		{"M", 2331},
		{"Q", 1663},
		{"H", 1273},
		{"X", 1273}, // неизвестный уровень — консервативный предел H
		{"", 1273},
	}
	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxDataLength(tt.level))
		})
	}
}

func TestValidateBoundary(t *testing.T) {
	for _, level := range []string{"L", "M", "Q", "H"} {
		t.Run("level "+level, func(t *testing.T) {
			max := MaxDataLength(level)

			assert.True(t, Validate(strings.Repeat("a", max), level))
			assert.False(t, Validate(strings.Repeat("a", max+1), level))
		})
	}
}

func TestMakeSafeTruncates(t *testing.T) {
	for _, level := range []string{"L", "M", "Q", "H"} {
		t.Run("level "+level, func(t *testing.T) {
			max := MaxDataLength(level)
			oversized := strings.Repeat("a", max+1)

			safe := MakeSafe(oversized, level)
			assert.Len(t, safe, max)
			assert.True(t, strings.HasSuffix(safe, "..."))
			assert.True(t, IsTruncated(safe))
		})
	}
}

func TestMakeSafeKeepsValidData(t *testing.T) {
	data := "WIFI:T:WPA;S:HomeNet;P:secret123;H:false;;"
	assert.Equal(t, data, MakeSafe(data, "H"))
	for _, level := range []string{"L", "M", "Q", "H"} {
		assert.True(t, Validate(data, level))
	}
}

// MakeSafe идемпотентна: повторное применение ничего не меняет.
func TestMakeSafeIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("MakeSafe(MakeSafe(x)) == MakeSafe(x)", prop.ForAll(
		func(data string, level string) bool {
			once := MakeSafe(data, level)
			return MakeSafe(once, level) == once
		},
		gen.AlphaString(),
		gen.OneConstOf("L", "M", "Q", "H", "unknown"),
	))

	properties.Property("result always fits the ceiling", prop.ForAll(
		func(n int, level string) bool {
			data := strings.Repeat("x", n)
			return len(MakeSafe(data, level)) <= MaxDataLength(level)
		},
		gen.IntRange(0, 4000),
		gen.OneConstOf("L", "M", "Q", "H"),
	))

	properties.TestingRun(t)
}
