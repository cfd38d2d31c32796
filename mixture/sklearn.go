package mixture

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/metrics"
	"github.com/YuminosukeSato/igmn/pkg/errors"
	"github.com/YuminosukeSato/igmn/pkg/log"
)

// scikit-learn 互換メソッド
//
// X の各行が一つのサンプル。y が nil でない場合は [x, y] を連結した
// 長さ D のベクトルとして学習し、予測では y に当たる末尾の次元を Recall する

// joinedWidth は X と y を連結した幅を検証する
func (m *IGMN) joinedWidth(op string, X, y mat.Matrix) (int, error) {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if y != nil {
		yRows, yCols := y.Dims()
		if yRows != rows {
			return 0, errors.NewDimensionError(op, rows, yRows, 0)
		}
		cols += yCols
	}
	if cols != m.dimension {
		return 0, errors.NewDimensionError(op, m.dimension, cols, 1)
	}
	return rows, nil
}

// PartialFit はミニバッチの各行を順に Learn する
// classes は分類器との互換のために受け取るが使用しない
func (m *IGMN) PartialFit(X, y mat.Matrix, classes []int) (err error) {
	defer errors.Recover(&err, "IGMN.PartialFit")

	rows, err := m.joinedWidth("IGMN.PartialFit", X, y)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.partialFit(X, y, rows)
}

func (m *IGMN) partialFit(X, y mat.Matrix, rows int) error {
	_, xCols := X.Dims()
	return m.trainRows("IGMN.PartialFit", log.OperationPartialFit, rows, func(i int, dst *mat.VecDense) {
		for j := 0; j < xCols; j++ {
			dst.SetVec(j, X.At(i, j))
		}
		for j := xCols; j < m.dimension; j++ {
			dst.SetVec(j, y.At(i, j-xCols))
		}
	})
}

// Fit はモデルをリセットしてから X (と y) を学習する
func (m *IGMN) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "IGMN.Fit")

	rows, err := m.joinedWidth("IGMN.Fit", X, y)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.resetLocked()
	return m.partialFit(X, y, rows)
}

// Predict は X の各行を観測済みの先頭次元として、残りの次元を Recall する
// 戻り値は rows × (D - X の列数) の行列
func (m *IGMN) Predict(X mat.Matrix) (pred mat.Matrix, err error) {
	defer errors.Recover(&err, "IGMN.Predict")

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError("IGMN.Predict", "empty data", errors.ErrEmptyData)
	}

	if cols >= m.dimension {
		return nil, errors.NewDimensionError("IGMN.Predict", m.dimension-1, cols, 1)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := mat.NewDense(rows, m.dimension-cols, nil)
	row := mat.NewVecDense(cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row.SetVec(j, X.At(i, j))
		}
		est, err := m.recall("IGMN.Predict", row)
		if err != nil {
			return nil, err
		}
		out.SetRow(i, est.RawVector().Data)
	}
	return out, nil
}

// Score は Predict(X) と y の決定係数 R² を返す
func (m *IGMN) Score(X, y mat.Matrix) (score float64, err error) {
	defer errors.Recover(&err, "IGMN.Score")

	if y == nil {
		return 0, errors.NewValueError("IGMN.Score", "targets are required")
	}
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, pred)
}
