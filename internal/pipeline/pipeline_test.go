package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/himbeles/texturize/internal/highpass"
	"github.com/himbeles/texturize/internal/imageio"
	"github.com/himbeles/texturize/internal/ir"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func writeImage(t *testing.T, path string, img *ir.Image) {
	t.Helper()
	if err := imageio.Save(path, img); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func uniform(w, h int, mode ir.Mode, v byte) *ir.Image {
	img := ir.New(w, h, mode, ir.KindUint8)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestRunUniform(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writeImage(t, in, uniform(64, 48, ir.ModeRGB, 128))

	res, err := Run(Options{InputPath: in, OutputPath: out, CutoffDistance: highpass.DefaultCutoffDistance})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := res.ShapeString(); got != "(48, 64, 3)" {
		t.Errorf("ShapeString = %q", got)
	}
	if res.Mode != "RGB" || res.OutputPath != out {
		t.Errorf("unexpected result %+v", res)
	}

	got, err := imageio.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Pix, uniform(64, 48, ir.ModeRGB, 128).Pix) {
		t.Error("uniform image changed")
	}
}

func TestRunGrayShape(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tif")
	out := filepath.Join(dir, "out.tif")
	writeImage(t, in, uniform(5, 3, ir.ModeL, 7))

	res, err := Run(Options{InputPath: in, OutputPath: out, CutoffDistance: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff([]int{3, 5}, res.Shape()); diff != "" {
		t.Errorf("shape (-want +got):\n%s", diff)
	}
	if got := res.ShapeString(); got != "(3, 5)" {
		t.Errorf("ShapeString = %q", got)
	}
}

func TestRunBrightPixel16(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")

	src := ir.New(64, 64, ir.ModeL, ir.KindUint16)
	src.SetSample(32*64+32, 65535)
	writeImage(t, in, src)

	res, err := Run(Options{InputPath: in, OutputPath: out, CutoffDistance: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Mode != "I;16" {
		t.Errorf("mode = %s, want I;16", res.Mode)
	}

	got, err := imageio.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != ir.KindUint16 {
		t.Fatalf("kind = %v", got.Kind)
	}
	if peak := got.Sample(32*64 + 32); peak < 65000 {
		t.Errorf("peak = %d, want >= 65000", peak)
	}
	if halo := got.Sample(32*64 + 34); halo != 0 {
		t.Errorf("halo = %d, want clipped to 0", halo)
	}
}

func TestRunPreservesICC(t *testing.T) {
	icc := bytes.Repeat([]byte{0xAB, 0xCD}, 3000)
	for _, name := range []string{"in.png", "in.jpg"} {
		dir := t.TempDir()
		in := filepath.Join(dir, name)
		out := filepath.Join(dir, "out"+filepath.Ext(name))

		src := uniform(16, 16, ir.ModeRGB, 90)
		src.ICC = icc
		writeImage(t, in, src)

		res, err := Run(Options{InputPath: in, OutputPath: out, CutoffDistance: 3})
		if err != nil {
			t.Fatalf("%s: Run: %v", name, err)
		}
		if res.ICCBytes != len(icc) {
			t.Errorf("%s: result ICC = %d bytes", name, res.ICCBytes)
		}
		got, err := imageio.Load(out)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got.ICC, icc) {
			t.Errorf("%s: ICC not preserved", name)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	src := ir.New(40, 30, ir.ModeRGBA, ir.KindUint8)
	for i := range src.Pix {
		src.Pix[i] = byte(i * 31)
	}
	writeImage(t, in, src)

	var outputs [][]byte
	for _, name := range []string{"a.png", "b.png"} {
		out := filepath.Join(dir, name)
		if _, err := Run(Options{InputPath: in, OutputPath: out, CutoffDistance: 4}); err != nil {
			t.Fatalf("Run: %v", err)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, data)
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Error("two runs produced different files")
	}
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")

	_, err := Run(Options{InputPath: filepath.Join(dir, "absent.png"), OutputPath: out, CutoffDistance: 50})
	var le *imageio.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *imageio.LoadError", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output created despite load failure")
	}
}

func TestRunUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeImage(t, in, uniform(4, 4, ir.ModeL, 10))

	out := filepath.Join(dir, "no", "such", "dir", "out.png")
	_, err := Run(Options{InputPath: in, OutputPath: out, CutoffDistance: 50})
	var se *imageio.SaveError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *imageio.SaveError", err)
	}
	if se.Path != out {
		t.Errorf("SaveError.Path = %q", se.Path)
	}
}

func TestProcessComputeError(t *testing.T) {
	bad := &ir.Image{Width: 2, Height: 2, Mode: ir.ModeL, Kind: ir.KindUint8, Pix: []byte{1, 2, 3}}
	_, err := Process(bad, 1)
	var ce *highpass.ComputeError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *highpass.ComputeError", err)
	}
}
