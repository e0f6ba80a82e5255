// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWindowCount(t *testing.T) {
	t.Parallel()

	want := map[Mode]int{
		ModeSingle: 1,
		ModePIP:    2,
		ModePBP:    2,
		ModeTriple: 3,
		ModeQuad:   4,
	}
	for m, n := range want {
		assert.Equal(t, n, m.WindowCount(), m.String())
	}
	assert.Zero(t, Mode(0).WindowCount())
	assert.Zero(t, Mode(6).WindowCount())
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"1", ModeSingle, false},
		{"5", ModeQuad, false},
		{" PBP ", ModePBP, false},
		{"triple", ModeTriple, false},
		{"0", 0, true},
		{"6", 0, true},
		{"grid", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInputsResolveDefaultsToWindowNumber(t *testing.T) {
	t.Parallel()

	in := Inputs{1: 3, 3: 9}
	assert.Equal(t, 3, in.Resolve(1))
	assert.Equal(t, 2, in.Resolve(2))
	assert.Equal(t, 3, in.Resolve(3), "out of range input falls back")
	assert.Equal(t, 4, in.Resolve(4))
}

func TestInputsVisible(t *testing.T) {
	t.Parallel()

	in := Inputs{1: 2, 2: 2, 3: 4, 4: 1}
	assert.Equal(t, []int{2}, in.Visible(ModePIP))
	assert.Equal(t, []int{2, 4}, in.Visible(ModeTriple))
	assert.Equal(t, []int{2, 4, 1}, in.Visible(ModeQuad))
	assert.Equal(t, []int{1}, Inputs{}.Visible(ModeSingle))
}

func TestInputsComplete(t *testing.T) {
	t.Parallel()

	in := Inputs{1: 1, 2: 2}
	assert.True(t, in.Complete(ModePBP))
	assert.False(t, in.Complete(ModeTriple))
}

func TestSetSplitValidates(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	require.NoError(t, s.SetSplit(ModeQuad, Split{SubMode: 3, Aspect: AspectOriginal}))
	assert.Equal(t, Split{SubMode: 3, Aspect: AspectOriginal}, s.Quad)

	require.Error(t, s.SetSplit(ModePBP, Split{SubMode: 3, Aspect: AspectFullScreen}))
	require.Error(t, s.SetSplit(ModeTriple, Split{SubMode: 1, Aspect: 7}))
	require.ErrorIs(t, s.SetSplit(ModePIP, Split{SubMode: 1, Aspect: AspectFullScreen}), ErrInvalidMode)
}

func TestComputePBPSubModeTwo(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.PBP.SubMode = 2
	l := Compute(ModePBP, s, Inputs{1: 3, 2: 1})

	require.Len(t, l.Windows, 2)
	assert.Equal(t, 2, l.SubMode)
	assert.InDelta(t, 75.0, l.Windows[0].Rect.W, 0.001)
	assert.InDelta(t, 25.0, l.Windows[1].Rect.W, 0.001)
	assert.Less(t, l.Windows[0].Rect.X, l.Windows[1].Rect.X)
	assert.Equal(t, 3, l.Windows[0].Input)
	assert.Equal(t, 1, l.Windows[1].Input)
}

func TestComputeQuadSubModes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		subMode int
		large   int
	}{
		{"grid", 1, 0},
		{"main left", 2, 1},
		{"main right", 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := DefaultSettings()
			s.Quad.SubMode = tt.subMode
			l := Compute(ModeQuad, s, nil)
			require.Len(t, l.Windows, 4)
			for _, w := range l.Windows {
				switch {
				case tt.large == 0:
					assert.InDelta(t, 50.0, w.Rect.W, 0.001)
				case w.Number == tt.large:
					assert.InDelta(t, 75.0, w.Rect.W, 0.001)
				default:
					assert.InDelta(t, 25.0, w.Rect.W, 0.001)
				}
				assert.Equal(t, w.Number, w.Input)
			}
		})
	}
}

func TestComputePIPOverlay(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.PIP = PIP{Position: PIPLeftBottom, Size: PIPLarge}
	l := Compute(ModePIP, s, Inputs{1: 1, 2: 4})

	require.Len(t, l.Windows, 2)
	main, overlay := l.Windows[0], l.Windows[1]
	assert.False(t, main.Overlay)
	assert.True(t, overlay.Overlay)
	assert.Equal(t, Rect{0, 0, 100, 100}, main.Rect)
	assert.InDelta(t, 30.0, overlay.Rect.W, 0.001)
	assert.InDelta(t, OverlayMargin, overlay.Rect.X, 0.001)
	assert.InDelta(t, 100-30-OverlayMargin, overlay.Rect.Y, 0.001)
	assert.Equal(t, 4, overlay.Input)
}

func TestComputeInvalidModeFallsBackToSingle(t *testing.T) {
	t.Parallel()

	l := Compute(Mode(9), DefaultSettings(), nil)
	assert.Equal(t, ModeSingle, l.Mode)
	assert.Len(t, l.Windows, 1)
}

func TestComputeProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		m := Mode(rapid.IntRange(1, 5).Draw(t, "mode"))
		s := Settings{
			PIP: PIP{
				Position: PIPPosition(rapid.IntRange(1, 4).Draw(t, "position")),
				Size:     PIPSize(rapid.IntRange(1, 3).Draw(t, "size")),
			},
			PBP:    Split{SubMode: rapid.IntRange(1, 2).Draw(t, "pbp"), Aspect: AspectFullScreen},
			Triple: Split{SubMode: rapid.IntRange(1, 2).Draw(t, "triple"), Aspect: AspectFullScreen},
			Quad:   Split{SubMode: rapid.IntRange(1, 3).Draw(t, "quad"), Aspect: AspectFullScreen},
		}
		in := Inputs{}
		for n := 1; n <= MaxWindows; n++ {
			if rapid.Bool().Draw(t, "assigned") {
				in[n] = rapid.IntRange(1, MaxInputs).Draw(t, "input")
			}
		}

		l := Compute(m, s, in)
		if len(l.Windows) != m.WindowCount() {
			t.Fatalf("%s: got %d windows, want %d", m, len(l.Windows), m.WindowCount())
		}
		for i, w := range l.Windows {
			if w.Number != i+1 {
				t.Fatalf("window %d out of order", w.Number)
			}
			if w.Input != in.Resolve(w.Number) {
				t.Fatalf("window %d input %d, want %d", w.Number, w.Input, in.Resolve(w.Number))
			}
			r := w.Rect
			if r.X < 0 || r.Y < 0 || r.X+r.W > 100.0001 || r.Y+r.H > 100.0001 {
				t.Fatalf("window %d escapes frame: %+v", w.Number, r)
			}
		}
	})
}
