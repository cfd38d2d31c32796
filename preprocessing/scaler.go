// Package preprocessing は学習前の特徴量変換を提供する
package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/core/model"
	"github.com/YuminosukeSato/igmn/pkg/errors"
)

// MinMaxScaler はscikit-learn互換の最小最大スケーラー
// 各特徴量を [FeatureMin, FeatureMax] の範囲に線形変換する
//
// IGMN の dataRange（各次元の取り得る幅）を観測データから求める用途にも使う
type MinMaxScaler struct {
	model.BaseEstimator

	// DataMin は各特徴量の観測最小値
	DataMin []float64

	// DataMax は各特徴量の観測最大値
	DataMax []float64

	// NFeatures は特徴量の数
	NFeatures int

	// FeatureMin, FeatureMax は変換後の範囲 (デフォルト: 0, 1)
	FeatureMin float64
	FeatureMax float64
}

// NewMinMaxScaler は変換後の範囲を指定して MinMaxScaler を作成する
//
// 使用例:
//
//	scaler := preprocessing.NewMinMaxScaler(0, 1)
//	err := scaler.Fit(X)
//	igmn, err := mixture.NewIGMN(scaler.DataRange())
func NewMinMaxScaler(featureMin, featureMax float64) (*MinMaxScaler, error) {
	if !(featureMin < featureMax) {
		return nil, errors.NewValidationError("featureRange", "min must be smaller than max", [2]float64{featureMin, featureMax})
	}
	return &MinMaxScaler{FeatureMin: featureMin, FeatureMax: featureMax}, nil
}

// NewMinMaxScalerDefault は [0, 1] に変換する MinMaxScaler を作成する
func NewMinMaxScalerDefault() *MinMaxScaler {
	return &MinMaxScaler{FeatureMin: 0, FeatureMax: 1}
}

// Fit は訓練データから各特徴量の最小値と最大値を計算する
// 以前の統計情報は破棄される
func (s *MinMaxScaler) Fit(X mat.Matrix) error {
	s.ResetState()
	s.DataMin = nil
	s.DataMax = nil
	s.NFeatures = 0
	return s.PartialFit(X)
}

// PartialFit はミニバッチで最小値と最大値を更新する
// バッチ全体を検証してから統計を更新するため、エラー時の状態は呼び出し前と同じ
func (s *MinMaxScaler) PartialFit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if s.IsFitted() && c != s.NFeatures {
		return errors.NewDimensionError("MinMaxScaler.PartialFit", s.NFeatures, c, 1)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if !errors.IsFinite(X.At(i, j)) {
				return errors.NewValueError("MinMaxScaler.Fit", "input contains NaN or Inf")
			}
		}
	}

	if !s.IsFitted() {
		s.NFeatures = c
		s.DataMin = make([]float64, c)
		s.DataMax = make([]float64, c)
		for j := 0; j < c; j++ {
			s.DataMin[j] = X.At(0, j)
			s.DataMax[j] = X.At(0, j)
		}
	}

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			s.DataMin[j] = min(s.DataMin[j], v)
			s.DataMax[j] = max(s.DataMax[j], v)
		}
	}

	s.SetFitted()
	return nil
}

// ConstantFeatures は観測値がまだ一度も変化していない特徴量の添字を返す
func (s *MinMaxScaler) ConstantFeatures() []int {
	var out []int
	for j := 0; j < s.NFeatures; j++ {
		if s.DataMax[j] == s.DataMin[j] {
			out = append(out, j)
		}
	}
	return out
}

// DataRange は各特徴量の幅 (max - min) を返す
// 幅が 0 の特徴量は 1 とする（初期共分散を正則に保つため）
func (s *MinMaxScaler) DataRange() []float64 {
	span := make([]float64, s.NFeatures)
	for j := range span {
		span[j] = s.span(j)
	}
	return span
}

func (s *MinMaxScaler) span(j int) float64 {
	d := s.DataMax[j] - s.DataMin[j]
	if d == 0 {
		return 1
	}
	return d
}

// Transform は学習済みの範囲を使ってデータを変換する
func (s *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.checkFitted("MinMaxScaler.Transform", X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	width := s.FeatureMax - s.FeatureMin
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v-s.DataMin[j])/s.span(j)*width + s.FeatureMin
	}, X)
	return result, nil
}

// InverseTransform は Transform の逆変換を行う
func (s *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.checkFitted("MinMaxScaler.InverseTransform", X); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	width := s.FeatureMax - s.FeatureMin
	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		return (v-s.FeatureMin)/width*s.span(j) + s.DataMin[j]
	}, X)
	return result, nil
}

// FitTransform は Fit と Transform を続けて実行する
func (s *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *MinMaxScaler) checkFitted(op string, X mat.Matrix) error {
	if !s.IsFitted() {
		return errors.NewValueError(op, "scaler is not fitted, call Fit first")
	}
	if _, c := X.Dims(); c != s.NFeatures {
		return errors.NewDimensionError(op, s.NFeatures, c, 1)
	}
	return nil
}
