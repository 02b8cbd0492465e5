// Package decode is the external decoder collaborator spec.md §7 refers
// to: it shells out to ffmpeg/ffprobe the same way the daemon's
// FFmpegDecoder does, but returns decoded PCM as float64 samples in
// [-1, 1] ready for internal/audioprep, instead of streaming bytes to a
// playback Output sink.
package decode

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnsupportedFormat is raised before invoking ffmpeg when the file
	// extension is not one supportedFormats() lists.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrResourceMissing is raised when the input file does not exist.
	ErrResourceMissing = errors.New("resource missing")
	// ErrDecodeFailure wraps any ffmpeg/ffprobe failure.
	ErrDecodeFailure = errors.New("decode failure")
)

// SupportedFormats lists the extensions spec.md §6's supportedFormats()
// enumerates.
func SupportedFormats() []string {
	return []string{".wav", ".mp3", ".flac", ".ogg", ".m4a"}
}

func isSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range SupportedFormats() {
		if f == ext {
			return true
		}
	}
	return false
}

// Metadata mirrors the daemon's FileMetadata, adding Channels/SampleRate
// so callers can drive internal/audioprep.Prepare directly.
type Metadata struct {
	Title      string
	Artist     string
	Album      string
	Duration   time.Duration
	Channels   int
	SampleRate int
}

// FFmpegDecoder decodes files via an external ffmpeg/ffprobe pair,
// grounded on internal/audio.FFmpegDecoder.
type FFmpegDecoder struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegDecoder locates ffmpeg/ffprobe in PATH.
func NewFFmpegDecoder() (*FFmpegDecoder, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg not found in PATH: %v", ErrDecodeFailure, err)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe not found in PATH: %v", ErrDecodeFailure, err)
	}
	return &FFmpegDecoder{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}, nil
}

// Decode reads the whole file into memory as mono or multi-channel
// float64 PCM at the requested sample rate, returning the interleaved
// samples and the channel count.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string, channels, sampleRate int) ([]float64, int, error) {
	if !isSupported(path) {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrResourceMissing, path)
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}

	args := []string{
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-",
	}

	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}

	raw := stdout.Bytes()
	samples := make([]float64, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
		samples[i] = float64(v) / math.MaxInt16
	}
	return samples, channels, nil
}

// Duration returns the file's duration via ffprobe.
func (d *FFmpegDecoder) Duration(path string) (time.Duration, error) {
	args := []string{"-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path}
	cmd := exec.Command(d.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe: %v", ErrDecodeFailure, err)
	}
	durationSec, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse duration: %v", ErrDecodeFailure, err)
	}
	return time.Duration(durationSec * float64(time.Second)), nil
}

// Metadata extracts tags, duration, channel count, and sample rate via
// ffprobe.
func (d *FFmpegDecoder) Metadata(path string) (*Metadata, error) {
	args := []string{"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path}
	cmd := exec.Command(d.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe: %v", ErrDecodeFailure, err)
	}

	var probeResult struct {
		Format struct {
			Duration string            `json:"duration"`
			Tags     map[string]string `json:"tags"`
		} `json:"format"`
		Streams []struct {
			CodecType  string `json:"codec_type"`
			Channels   int    `json:"channels"`
			SampleRate string `json:"sample_rate"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &probeResult); err != nil {
		return nil, fmt.Errorf("%w: parse ffprobe output: %v", ErrDecodeFailure, err)
	}

	meta := &Metadata{}
	for key, value := range probeResult.Format.Tags {
		switch strings.ToLower(key) {
		case "title":
			meta.Title = value
		case "artist":
			meta.Artist = value
		case "album":
			meta.Album = value
		case "album_artist":
			if meta.Artist == "" {
				meta.Artist = value
			}
		}
	}
	if probeResult.Format.Duration != "" {
		if durationSec, err := strconv.ParseFloat(probeResult.Format.Duration, 64); err == nil {
			meta.Duration = time.Duration(durationSec * float64(time.Second))
		}
	}
	for _, s := range probeResult.Streams {
		if s.CodecType == "audio" {
			meta.Channels = s.Channels
			if rate, err := strconv.Atoi(s.SampleRate); err == nil {
				meta.SampleRate = rate
			}
			break
		}
	}
	if meta.Title == "" {
		base := filepath.Base(path)
		meta.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return meta, nil
}

// Close releases decoder resources; the external-process decoder holds
// none.
func (d *FFmpegDecoder) Close() error {
	return nil
}
