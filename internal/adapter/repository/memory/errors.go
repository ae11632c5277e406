package memory

import "errors"

var errDuplicateID = errors.New("plan id already exists")
