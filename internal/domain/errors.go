package domain

import "errors"

var (
	// ErrMedicineNotFound is returned when a name cannot be resolved in the
	// drug-record database
	ErrMedicineNotFound = errors.New("medicine not found in drug database")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnsupportedImageType is returned for uploads that are not PNG or JPEG
	ErrUnsupportedImageType = errors.New("unsupported image type")

	// ErrVisionAPIFailure is returned when the vision collaborator call fails
	ErrVisionAPIFailure = errors.New("vision API request failed")

	// ErrFDAAPIFailure is returned when the drug-record collaborator call fails
	ErrFDAAPIFailure = errors.New("openFDA API request failed")

	// ErrGenerationFailure is returned when the text-generation collaborator call fails
	ErrGenerationFailure = errors.New("text generation request failed")

	// ErrMalformedUpstream is returned when a collaborator response fails
	// shape validation; the flow fails closed instead of defaulting fields
	ErrMalformedUpstream = errors.New("malformed upstream response")

	// ErrStaleRequest is returned when a collaborator response arrives for an
	// action whose request token has already been invalidated
	ErrStaleRequest = errors.New("request superseded by a newer action")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
