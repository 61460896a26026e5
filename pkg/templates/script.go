// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package templates

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed scripts
var scriptsFS embed.FS

// RenderScript renders a named pod-side shell script with the given data.
// The scripts are executed through the adapter's RunScript primitive.
func RenderScript(name string, data any) (string, error) {
	content, err := scriptsFS.ReadFile("scripts/" + name)
	if err != nil {
		return "", fmt.Errorf("reading script %q: %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("parsing script %q: %w", name, err)
	}

	var rendered strings.Builder
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", fmt.Errorf("rendering script %q: %w", name, err)
	}

	return rendered.String(), nil
}
