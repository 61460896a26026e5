// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package version

// Version is set at compile time via -ldflags and records the version of the
// platform operator this binary was built from.
var Version = "binary was not built properly"
