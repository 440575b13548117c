package colour

import "errors"

var (
	// ErrInvalidTolerance is returned when a clustering tolerance is negative or NaN.
	ErrInvalidTolerance = errors.New("tolerance must be a non-negative number")

	// ErrInvalidAlphaThreshold is returned when an alpha threshold lies outside [0,1].
	ErrInvalidAlphaThreshold = errors.New("alpha threshold must be within [0,1]")

	// ErrPaletteSize is returned when a host palette does not hold exactly PaletteSize colours.
	ErrPaletteSize = errors.New("palette must contain exactly 128 colours")

	// ErrSizeMismatch is returned when a pixel buffer does not match its declared dimensions.
	ErrSizeMismatch = errors.New("pixel count does not match image dimensions")

	// ErrNilPalette is returned when encoding is attempted without a palette.
	ErrNilPalette = errors.New("palette cannot be nil")
)
