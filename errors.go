package stegmark

import (
	"github.com/yyyoichi/stegmark/bitmap"
	"github.com/yyyoichi/stegmark/carrier"
	"github.com/yyyoichi/stegmark/ecc"
)

var (
	ErrCapacityExceeded  = carrier.ErrCapacityExceeded
	ErrShapeMismatch     = bitmap.ErrShapeMismatch
	ErrInvalidRedundancy = ecc.ErrInvalidRedundancy
	ErrUndecodableBlock  = ecc.ErrUndecodableBlock
	ErrInvalidCover      = carrier.ErrInvalidCover
)
