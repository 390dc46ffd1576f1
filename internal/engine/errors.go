package engine

import "errors"

// ErrOutOfBounds is returned by ChangeAction when the given layer or
// coordinate does not exist in the layout.
var ErrOutOfBounds = errors.New("engine: coordinate or layer out of bounds")
