package model

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが一度も観測を受け取っていない状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが少なくとも一つの観測を学習した状態
	Fitted
)

// BaseEstimator は全てのモデルの基底となる構造体
// 排他制御は埋め込み先のモデルが行う
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// ResetState はモデルを初期状態に戻す
func (e *BaseEstimator) ResetState() {
	e.state = NotFitted
}
