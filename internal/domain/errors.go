package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnknownCategory is returned when a category was not seen when the bundle was fit
	ErrUnknownCategory = errors.New("category not present in fitted encoding")

	// ErrModelInput is returned when a feature vector does not match the fitted predictor
	ErrModelInput = errors.New("feature vector does not match fitted predictor")

	// ErrModelUnavailable is returned when the remote model server cannot be reached
	ErrModelUnavailable = errors.New("model server request failed")

	// ErrBundleNotFound is returned when no fitted bundle exists for a version
	ErrBundleNotFound = errors.New("fitted bundle not found")

	// ErrInvalidBundle is returned when a stored bundle fails validation
	ErrInvalidBundle = errors.New("fitted bundle is invalid")

	// ErrDatasetUnavailable is returned when the product dataset cannot be read
	ErrDatasetUnavailable = errors.New("product dataset unavailable")

	// ErrEmptyDataset is returned when fitting is attempted without records
	ErrEmptyDataset = errors.New("dataset has no records")
)

// UnknownCategoryError reports a category absent from the fitted encoding
type UnknownCategoryError struct {
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownCategory, e.Category)
}

func (e *UnknownCategoryError) Unwrap() error {
	return ErrUnknownCategory
}

// ModelInputError reports a feature vector rejected by the predictor.
// RecordID is filled in by the caller that knows which record produced the vector.
type ModelInputError struct {
	RecordID string
	Reason   string
}

func (e *ModelInputError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("%s: %s", ErrModelInput, e.Reason)
	}
	return fmt.Sprintf("%s: record %s: %s", ErrModelInput, e.RecordID, e.Reason)
}

func (e *ModelInputError) Unwrap() error {
	return ErrModelInput
}
