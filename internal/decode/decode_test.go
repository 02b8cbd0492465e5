package decode

import (
	"context"
	"testing"
)

func TestSupportedFormatsListsExpectedExtensions(t *testing.T) {
	want := map[string]bool{".wav": true, ".mp3": true, ".flac": true, ".ogg": true, ".m4a": true}
	for _, ext := range SupportedFormats() {
		if !want[ext] {
			t.Errorf("unexpected extension %q", ext)
		}
		delete(want, ext)
	}
	if len(want) != 0 {
		t.Errorf("missing extensions: %v", want)
	}
}

func TestDecodeRejectsUnsupportedExtension(t *testing.T) {
	d := &FFmpegDecoder{ffmpegPath: "ffmpeg", ffprobePath: "ffprobe"}
	_, _, err := d.Decode(context.Background(), "song.txt", 1, 44100)
	if err == nil {
		t.Fatal("expected an error for unsupported extension")
	}
}

func TestDecodeRejectsMissingFile(t *testing.T) {
	d := &FFmpegDecoder{ffmpegPath: "ffmpeg", ffprobePath: "ffprobe"}
	_, _, err := d.Decode(context.Background(), "/nonexistent/path/does-not-exist.wav", 1, 44100)
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
