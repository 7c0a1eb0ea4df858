// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package version

// Version is overridden at build time:
// -ldflags "-X carvel.dev/tempita/pkg/version.Version=$VERSION"
var Version = "0.1.0"
