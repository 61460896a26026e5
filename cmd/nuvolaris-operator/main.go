// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/nuvolaris/nuvolaris-operator/cmd/nuvolaris-operator/app"
)

func main() {
	ctx := signals.SetupSignalHandler()
	if err := app.NewCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
