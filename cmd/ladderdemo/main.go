// Command ladderdemo renders a filter-sweep demo of the ladder filters to
// a WAV file.
//
// Usage:
//
//	ladderdemo [flags]
//
// Examples:
//
//	ladderdemo -out sweep.wav
//	ladderdemo -family nonlinear -resonance 0.9 -seconds 6
//	ladderdemo -family zdf -mode hp24 -drive 0.7 -oversample 4
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-ladder/dsp/ladder"
)

const (
	bitDepth     = 16
	sawFreqHz    = 110.0
	sweepStartHz = 150.0
	sweepEndHz   = 9000.0

	envSweepStart = 30.0
	envSweepEnd   = 120.0
)

func main() {
	out := flag.String("out", "ladderdemo.wav", "output WAV path")
	rate := flag.Int("rate", 48000, "sample rate in Hz")
	seconds := flag.Float64("seconds", 4, "rendered duration")
	family := flag.String("family", "zdf", "filter family: zdf or nonlinear")
	mode := flag.String("mode", "lp24", "response mode (zdf: lp24 bp12 hp24; nonlinear: lp24 hp24 bp24 lp18 bp18 hp6)")
	resonance := flag.Float64("resonance", 0.7, "resonance in [0, 1]")
	drive := flag.Float64("drive", 0.3, "drive in [0, 1]")
	oversample := flag.Int("oversample", 1, "oversampling factor for the zdf family (1, 2, 4, 8)")
	flag.Parse()

	if err := run(*out, *rate, *seconds, *family, *mode, *resonance, *drive, *oversample); err != nil {
		fmt.Fprintf(os.Stderr, "ladderdemo: %v\n", err)
		os.Exit(1)
	}
}

func run(outPath string, rate int, seconds float64, family, mode string, resonance, drive float64, oversample int) error {
	if rate <= 0 {
		return fmt.Errorf("sample rate must be positive: %d", rate)
	}

	if seconds <= 0 {
		return fmt.Errorf("duration must be positive: %f", seconds)
	}

	n := int(seconds * float64(rate))
	saw := renderSawtooth(sawFreqHz, float64(rate), n)

	var (
		samples []float64
		err     error
	)

	switch family {
	case "zdf":
		samples, err = renderZDF(saw, float64(rate), mode, resonance, drive, oversample)
	case "nonlinear":
		samples, err = renderNonlinear(saw, float64(rate), mode, resonance, drive)
	default:
		err = fmt.Errorf("unknown family %q", family)
	}

	if err != nil {
		return err
	}

	if err := writeWAV(outPath, rate, samples); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %d samples at %d Hz (%s/%s)\n", outPath, len(samples), rate, family, mode)

	return nil
}

// renderSawtooth generates a naive sawtooth oscillator; the ladder's
// lowpass response doubles as its anti-alias filter for demo purposes.
func renderSawtooth(freqHz, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	phase := 0.0
	step := freqHz / sampleRate

	for i := range out {
		out[i] = 2*phase - 1
		phase += step

		if phase >= 1 {
			phase -= 1
		}
	}

	return out
}

func renderZDF(in []float64, sampleRate float64, mode string, resonance, drive float64, oversample int) ([]float64, error) {
	m, err := parseZDFMode(mode)
	if err != nil {
		return nil, err
	}

	f, err := ladder.NewZDF(sampleRate,
		ladder.WithMode(m),
		ladder.WithResonance(resonance),
		ladder.WithDrive(drive),
		ladder.WithOversampling(oversample),
	)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(in))
	for i, x := range in {
		f.SetCutoffHz(sweepCutoff(i, len(in)))
		out[i] = f.ProcessSample(x)
	}

	return out, nil
}

func renderNonlinear(in []float64, sampleRate float64, mode string, resonance, drive float64) ([]float64, error) {
	m, err := parseNonlinearMode(mode)
	if err != nil {
		return nil, err
	}

	f, err := ladder.NewNonlinear(sampleRate,
		ladder.WithNonlinearMode(m),
		ladder.WithDrive(drive),
	)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(in))
	for i, x := range in {
		pos := float64(i) / float64(len(in))
		env := envSweepStart + (envSweepEnd-envSweepStart)*pos
		out[i] = f.ProcessSample(x, env, resonance, 0)
	}

	return out, nil
}

// sweepCutoff maps the render position to an exponential cutoff sweep.
func sweepCutoff(i, n int) float64 {
	pos := float64(i) / float64(n)
	return sweepStartHz * math.Pow(sweepEndHz/sweepStartHz, pos)
}

func parseZDFMode(s string) (ladder.Mode, error) {
	switch s {
	case "lp24":
		return ladder.ModeLP24, nil
	case "bp12":
		return ladder.ModeBP12, nil
	case "hp24":
		return ladder.ModeHP24, nil
	default:
		return 0, fmt.Errorf("unknown zdf mode %q", s)
	}
}

func parseNonlinearMode(s string) (ladder.NonlinearMode, error) {
	switch s {
	case "lp24":
		return ladder.NonlinearLP24, nil
	case "hp24":
		return ladder.NonlinearHP24, nil
	case "bp24":
		return ladder.NonlinearBP24, nil
	case "lp18":
		return ladder.NonlinearLP18, nil
	case "bp18":
		return ladder.NonlinearBP18, nil
	case "hp6":
		return ladder.NonlinearHP6, nil
	default:
		return 0, fmt.Errorf("unknown nonlinear mode %q", s)
	}
}

// writeWAV normalizes samples to 16-bit PCM and writes a mono WAV file.
func writeWAV(path string, rate int, samples []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer file.Close()

	peak := 0.0
	for _, v := range samples {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}

	scale := 1.0
	if peak > 0 {
		scale = 0.95 / peak
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		SourceBitDepth: bitDepth,
		Data:           make([]int, len(samples)),
	}

	const fullScale = 1 << (bitDepth - 1)
	for i, v := range samples {
		buf.Data[i] = int(math.Round(v * scale * (fullScale - 1)))
	}

	enc := wav.NewEncoder(file, rate, bitDepth, 1, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}

	return nil
}
