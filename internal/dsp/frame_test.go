package dsp

import "testing"

func TestFramesCoversWholeSignal(t *testing.T) {
	signal := make([]float64, 1000)
	for i := range signal {
		signal[i] = float64(i)
	}

	frames, grid, err := Frames(signal, 256, 128, true)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if grid.Count != len(frames) {
		t.Errorf("grid.Count = %d, len(frames) = %d", grid.Count, len(frames))
	}
	lastStart := (grid.Count - 1) * 128
	if lastStart+256 < len(signal) {
		t.Errorf("last frame at %d doesn't reach end of %d-sample signal", lastStart, len(signal))
	}
}

func TestFramesRejectsNonPositiveSizes(t *testing.T) {
	signal := make([]float64, 100)
	if _, _, err := Frames(signal, 0, 10, true); err == nil {
		t.Fatal("expected error for frameSize=0")
	}
	if _, _, err := Frames(signal, 10, 0, true); err == nil {
		t.Fatal("expected error for hopSize=0")
	}
}

func TestFramesRejectsShortSignalWithoutPadding(t *testing.T) {
	signal := make([]float64, 10)
	if _, _, err := Frames(signal, 256, 128, false); err == nil {
		t.Fatal("expected error for signal shorter than frame size with pad-last disabled")
	}
}

func TestFramesExactFrameSizeYieldsOneFrame(t *testing.T) {
	signal := make([]float64, 256)
	frames, grid, err := Frames(signal, 256, 128, false)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if grid.Count != 1 || len(frames) != 1 {
		t.Errorf("expected exactly 1 frame, got %d", grid.Count)
	}
}

func TestFramesPadsTail(t *testing.T) {
	signal := []float64{1, 2, 3, 4, 5}
	frames, _, err := Frames(signal, 4, 4, true)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	last := frames[len(frames)-1]
	if last[0] != 5 || last[1] != 0 {
		t.Errorf("expected tail frame to start with remaining sample then zero-pad, got %v", last)
	}
}
