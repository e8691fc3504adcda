package tilebridge

import "errors"

// ErrInvalidTileRequest classifies every way a tile URL can fail to parse:
// too few segments, non-integer coordinates, or out-of-range values. Callers
// test for it with errors.Is.
var ErrInvalidTileRequest = errors.New("invalid tile request")
