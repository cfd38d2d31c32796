package model

import "gonum.org/v1/gonum/mat"

// IncrementalEstimator はオンライン学習（逐次学習）可能なモデルのインターフェース
// scikit-learnのpartial_fit APIと互換性を持つ
type IncrementalEstimator interface {
	Fitter

	// PartialFit はミニバッチでモデルを逐次的に学習させる
	// y が nil でない場合は X の右側に連結した結合ベクトルとして学習する
	// classes は分類器の場合に全クラスラベルを指定（最初の呼び出し時のみ必須）
	PartialFit(X, y mat.Matrix, classes []int) error

	// NIterations は実行された学習ステップ数を返す
	NIterations() int

	// IsFitted はモデルが一度でも学習したかを返す
	IsFitted() bool
}
