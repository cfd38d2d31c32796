// Package metrics はモデル評価用の指標を提供する
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/pkg/errors"
)

// checkShapes は yTrue と yPred の形状が一致し空でないことを確認する
func checkShapes(op string, yTrue, yPred mat.Matrix) (int, int, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, 0, errors.NewValueError(op, "empty matrix")
	}
	if rTrue != rPred {
		return 0, 0, errors.NewDimensionError(op, rTrue, rPred, 0)
	}
	if cTrue != cPred {
		return 0, 0, errors.NewDimensionError(op, cTrue, cPred, 1)
	}
	return rTrue, cTrue, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
// 複数列の場合は列ごとの MSE の単純平均を返す
func MSE(yTrue, yPred mat.Matrix) (float64, error) {
	rows, cols, err := checkShapes("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			diff := yTrue.At(i, j) - yPred.At(i, j)
			sum += diff * diff
		}
	}

	return sum / float64(rows*cols), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred mat.Matrix) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// R2Score は決定係数（R²）を計算する
// 複数列の場合は列ごとの R² の単純平均を返す（scikit-learn の uniform_average）
// 分散のない列は予測が完全なら 1、そうでなければ 0 とする
func R2Score(yTrue, yPred mat.Matrix) (float64, error) {
	rows, cols, err := checkShapes("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var total float64
	for j := 0; j < cols; j++ {
		// 列の平均
		var mean float64
		for i := 0; i < rows; i++ {
			mean += yTrue.At(i, j)
		}
		mean /= float64(rows)

		// 全変動（TSS）と残差変動（RSS）
		var tss, rss float64
		for i := 0; i < rows; i++ {
			t := yTrue.At(i, j)
			p := yPred.At(i, j)
			tss += (t - mean) * (t - mean)
			rss += (t - p) * (t - p)
		}

		switch {
		case tss != 0:
			total += 1 - rss/tss
		case rss == 0:
			total++
		}
	}

	return total / float64(cols), nil
}
