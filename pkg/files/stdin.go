// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	stdinLock sync.Mutex
	stdinRead bool
)

// ReadStdin returns standard input. Only the first call succeeds since
// stdin cannot be rewound.
func ReadStdin() ([]byte, error) {
	stdinLock.Lock()
	defer stdinLock.Unlock()

	if stdinRead {
		return nil, fmt.Errorf("Standard input has already been read, was '-' given more than once?")
	}
	stdinRead = true
	return io.ReadAll(os.Stdin)
}
