package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを初期化してから訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データ（行がサンプル）に対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer はモデルの評価指標を計算するインターフェース
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Learner は一度に一つの観測ベクトルから学習するモデルのインターフェース
type Learner interface {
	// Learn は観測 x でモデルを更新する
	Learn(x mat.Vector) error

	// Train はデータセットの各行を順に Learn する
	Train(X mat.Matrix) error

	// Reset は学習した状態をすべて破棄する（ハイパーパラメータは保持）
	Reset()
}

// Recaller は部分的な観測から残りの次元を推定するモデルのインターフェース
type Recaller interface {
	// Recall は先頭 len(x) 次元を観測として残りの次元を推定する
	Recall(x mat.Vector) (*mat.VecDense, error)

	// Classify は Recall の結果を one-hot ベクトルに変換する
	Classify(x mat.Vector) (*mat.VecDense, error)
}

// Classifier はラベルを予測するモデルのインターフェース
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// PredictProba は各クラスの確率推定を返す
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}
