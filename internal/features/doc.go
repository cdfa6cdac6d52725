// Package features turns raw product records into the fixed classifier input.
//
// The same code runs when a bundle is fit and when records are served, so the
// binning boundaries and category codes seen by the classifier never drift.
// Weight and expiry parsing are best effort: malformed values degrade to
// 0 grams and -1 months instead of failing. Category encoding and binning are
// strict and only use parameters fit once and loaded from the bundle.
package features
