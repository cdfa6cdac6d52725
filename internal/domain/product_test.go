package domain

import (
	"errors"
	"math"
	"testing"
)

func TestProductRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		mrp     *float64
		wantErr bool
	}{
		{"absent", nil, false},
		{"zero", FloatPtr(0), false},
		{"positive", FloatPtr(1450), false},
		{"negative", FloatPtr(-5), true},
		{"NaN", FloatPtr(math.NaN()), true},
		{"infinite", FloatPtr(math.Inf(1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ProductRecord{MRP: tt.mrp, Issues: IssuesOK}.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("Validate() error = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}
