package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/igmn/pkg/errors"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     mat.Matrix
		yPred     mat.Matrix
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5}),
			yPred:     mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5}),
			want:      0.0,
			tolerance: 1e-10,
		},
		{
			name:      "simple case",
			yTrue:     mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
			yPred:     mat.NewDense(4, 1, []float64{1.5, 2.5, 2.5, 3.5}),
			want:      0.25,
			tolerance: 1e-10,
		},
		{
			name:      "two outputs",
			yTrue:     mat.NewDense(2, 2, []float64{1, 10, 2, 20}),
			yPred:     mat.NewDense(2, 2, []float64{1, 12, 2, 18}),
			want:      2.0, // (0 + 4 + 0 + 4) / 4
			tolerance: 1e-10,
		},
		{
			name:    "row mismatch",
			yTrue:   mat.NewDense(3, 1, []float64{1, 2, 3}),
			yPred:   mat.NewDense(2, 1, []float64{1, 2}),
			wantErr: true,
		},
		{
			name:    "column mismatch",
			yTrue:   mat.NewDense(2, 1, []float64{1, 2}),
			yPred:   mat.NewDense(2, 2, []float64{1, 2, 3, 4}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)

			if (err != nil) != tt.wantErr {
				t.Errorf("MSE() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("MSE() = %v, want %v (tolerance: %v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestMSEDimensionErrorType(t *testing.T) {
	_, err := MSE(mat.NewDense(3, 1, nil), mat.NewDense(2, 1, nil))

	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %T: %v", err, err)
	}
	if dimErr.Expected != 3 || dimErr.Got != 2 {
		t.Errorf("DimensionError = %+v", dimErr)
	}
}

func TestRMSE(t *testing.T) {
	got, err := RMSE(
		mat.NewDense(3, 1, []float64{10, 20, 30}),
		mat.NewDense(3, 1, []float64{12, 18, 33}),
	)
	if err != nil {
		t.Fatalf("RMSE() error = %v", err)
	}
	want := math.Sqrt(17.0 / 3.0)
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("RMSE() = %v, want %v", got, want)
	}
}

func TestR2Score(t *testing.T) {
	tests := []struct {
		name  string
		yTrue mat.Matrix
		yPred mat.Matrix
		want  float64
	}{
		{
			name:  "perfect prediction",
			yTrue: mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
			yPred: mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
			want:  1.0,
		},
		{
			name:  "mean prediction",
			yTrue: mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
			yPred: mat.NewDense(4, 1, []float64{2.5, 2.5, 2.5, 2.5}),
			want:  0.0,
		},
		{
			name:  "simple case",
			yTrue: mat.NewDense(3, 1, []float64{3, -0.5, 2}),
			yPred: mat.NewDense(3, 1, []float64{2.5, 0.0, 2}),
			// tss = 6.5, rss = 0.5
			want: 1 - 0.5/6.5,
		},
		{
			name:  "uniform average over outputs",
			yTrue: mat.NewDense(4, 2, []float64{1, 1, 2, 2, 3, 3, 4, 4}),
			yPred: mat.NewDense(4, 2, []float64{1, 2.5, 2, 2.5, 3, 2.5, 4, 2.5}),
			want:  0.5,
		},
		{
			name:  "constant target predicted exactly",
			yTrue: mat.NewDense(3, 1, []float64{7, 7, 7}),
			yPred: mat.NewDense(3, 1, []float64{7, 7, 7}),
			want:  1.0,
		},
		{
			name:  "constant target predicted badly",
			yTrue: mat.NewDense(3, 1, []float64{7, 7, 7}),
			yPred: mat.NewDense(3, 1, []float64{6, 7, 8}),
			want:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := R2Score(tt.yTrue, tt.yPred)
			if err != nil {
				t.Fatalf("R2Score() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("R2Score() = %v, want %v", got, tt.want)
			}
		})
	}
}
