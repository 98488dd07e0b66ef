package model

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros/zorros"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"
)

/*
snapshot is the memorized form of a deterministic model.
It is a refit recipe, not the fitted state: it keeps the training matrix and
parameters, so the file grows with the dataset, and restoring refits the model
on the same data with the same parameters
*/
type snapshot struct {
	Kind       string
	Params     Params
	Rows, Cols int
	X, Y       []float64
}

type memorable interface {
	snapshot() (*snapshot, error)
}

/*
Encode writes memorized model into the stream
*/
func Encode(wr io.Writer, m Model) error {
	mm, ok := m.(memorable)
	if !ok {
		return zorros.Errorf("model %v can't be memorized", m.Kind())
	}
	s, err := mm.snapshot()
	if err != nil {
		return err
	}
	if err = gob.NewEncoder(wr).Encode(s); err != nil {
		return zorros.Wrapf(err, "failed to encode model: %v", err.Error())
	}
	return nil
}

/*
Decode reads memorized model from the stream and refits it
*/
func Decode(rd io.Reader) (Model, error) {
	s := &snapshot{}
	if err := gob.NewDecoder(rd).Decode(s); err != nil {
		return nil, zorros.Wrapf(err, "failed to decode model: %v", err.Error())
	}
	k, err := ParseKind(s.Kind)
	if err != nil {
		return nil, err
	}
	if s.Rows*s.Cols != len(s.X) || s.Rows != len(s.Y) || s.Rows == 0 {
		return nil, xerrors.Errorf("memorized %dx%d matrix with %d values and %d labels: %w", s.Rows, s.Cols, len(s.X), len(s.Y), ErrShape)
	}
	m, err := k.New(s.Params)
	if err != nil {
		return nil, err
	}
	if err = m.Fit(mat.NewDense(s.Rows, s.Cols, s.X), s.Y); err != nil {
		return nil, err
	}
	return m, nil
}

/*
Memorize writes model into the file, the file is xz compressed if its name has .xz extension.
Missing directories are created. Existing file is replaced only when the model is completely written.
*/
func Memorize(path string, m Model) (err error) {
	part := partial(path)
	var out iokit.Output = iokit.File(part)
	if compressed(path) {
		out = iokit.Lzma2(out)
	}
	wh, err := out.Create()
	if err != nil {
		return zorros.Wrapf(err, "failed to create model file: %v", err.Error())
	}
	defer wh.End()
	if err = Encode(wh, m); err != nil {
		return
	}
	if err = wh.Commit(); err != nil {
		return zorros.Trace(err)
	}
	if err = os.Rename(part, path); err != nil {
		_ = os.Remove(part)
		return zorros.Wrapf(err, "failed to commit model file: %v", err.Error())
	}
	return
}

/*
LuckyMemorize memorizes model and panics on error
*/
func LuckyMemorize(path string, m Model) {
	if err := Memorize(path, m); err != nil {
		panic(zorros.Panic(err))
	}
}

/*
Restore reads model memorized into the file, compressed or not
*/
func Restore(path string) (Model, error) {
	f, err := iokit.File(path).Open()
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open model: %v", err.Error())
	}
	defer f.Close()
	rd := iokit.Decompress(f)
	defer rd.Close()
	return Decode(rd)
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".xz")
}

// the model is written next to its target and renamed on success
func partial(path string) string {
	dir, file := filepath.Split(path)
	return filepath.Join(dir, "."+file+".part")
}
