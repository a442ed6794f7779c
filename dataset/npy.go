package dataset

import (
	"os"

	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// SaveNPY writes X (N×2) and y as a single N×3 array of (x1, x2, label) rows.
func SaveNPY(path string, X mat.Matrix, y mat.Vector) error {
	const op = "dataset.SaveNPY"

	rows, cols := X.Dims()
	if cols != 2 {
		return sberrors.NewDimensionError(op, 2, cols, 1)
	}
	if y.Len() != rows {
		return sberrors.NewDimensionError(op, rows, y.Len(), 0)
	}

	table := mat.NewDense(rows, 3, nil)
	table.Slice(0, rows, 0, 2).(*mat.Dense).Copy(X)
	table.SetCol(2, mat.Col(nil, 0, y))

	return writeNPY(path, table)
}

// LoadNPY reads a file written by SaveNPY.
func LoadNPY(path string) (*mat.Dense, *mat.VecDense, error) {
	const op = "dataset.LoadNPY"

	table, err := readNPY(path)
	if err != nil {
		return nil, nil, err
	}
	rows, cols := table.Dims()
	if cols != 3 {
		return nil, nil, sberrors.NewDimensionError(op, 3, cols, 1)
	}

	X := mat.DenseCopyOf(table.Slice(0, rows, 0, 2))
	y := mat.NewVecDense(rows, mat.Col(nil, 2, table))
	return X, y, nil
}

// SaveVectorNPY writes values as an N×1 array, for learning curves and
// margin distributions.
func SaveVectorNPY(path string, values []float64) error {
	if len(values) == 0 {
		return sberrors.NewModelError("dataset.SaveVectorNPY", "empty data", sberrors.ErrEmptyData)
	}
	return writeNPY(path, mat.NewDense(len(values), 1, values))
}

func writeNPY(path string, m *mat.Dense) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return sberrors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = sberrors.Wrapf(cerr, "failed to close %s", path)
		}
	}()

	if err := npyio.Write(f, m); err != nil {
		return sberrors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

func readNPY(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sberrors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, sberrors.Wrapf(err, "failed to read npy header of %s", path)
	}
	m := &mat.Dense{}
	if err := r.Read(m); err != nil {
		return nil, sberrors.Wrapf(err, "failed to read %s", path)
	}
	return m, nil
}
