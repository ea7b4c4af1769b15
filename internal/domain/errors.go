package domain

import "errors"

var (
	// ErrReferenceTableInvalid is returned when the additive reference table cannot be loaded
	ErrReferenceTableInvalid = errors.New("invalid additive reference table")

	// ErrProductNotFound is returned when a barcode is unknown to Open Food Facts
	ErrProductNotFound = errors.New("product not found in Open Food Facts")

	// ErrProductAPIFailure is returned when the Open Food Facts request fails
	ErrProductAPIFailure = errors.New("Open Food Facts API request failed")

	// ErrNoIngredientsText is returned when a resolved product has no ingredients to analyze
	ErrNoIngredientsText = errors.New("product has no ingredients text")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrAdditiveNotFound is returned when a reference lookup has no match
	ErrAdditiveNotFound = errors.New("additive not found in reference table")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
