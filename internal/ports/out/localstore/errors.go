package localstore

import "errors"

var ErrNotFound = errors.New("local store record not found")
