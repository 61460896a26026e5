// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package templates embeds the chart catalog and renders it into manifest
// object lists with a component parameter dictionary.
package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	helmchart "helm.sh/helm/v3/pkg/chart"
	helmloader "helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/engine"
	"helm.sh/helm/v3/pkg/releaseutil"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"
)

//go:embed all:charts
var chartsFS embed.FS

const notesFileSuffix = "NOTES.txt"

// Renderer renders embedded charts into manifest lists.
type Renderer struct {
	engine       *engine.Engine
	capabilities *chartutil.Capabilities
	namespace    string
}

// NewRenderer returns a Renderer targeting the given namespace.
func NewRenderer(namespace string) *Renderer {
	return &Renderer{
		engine:       &engine.Engine{},
		capabilities: chartutil.DefaultCapabilities,
		namespace:    namespace,
	}
}

// RenderedChart holds the manifests of one rendered chart in install order.
type RenderedChart struct {
	ChartName string
	Manifests []releaseutil.Manifest
}

// Render renders the named embedded chart with the given values.
func (r *Renderer) Render(chartName string, values any) (*RenderedChart, error) {
	chart, err := loadEmbeddedChart(path.Join("charts", chartName))
	if err != nil {
		return nil, fmt.Errorf("loading chart %q: %w", chartName, err)
	}

	parsedValues, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("parsing values for chart %q: %w", chartName, err)
	}
	chartValues, err := chartutil.ReadValues(parsedValues)
	if err != nil {
		return nil, fmt.Errorf("reading values for chart %q: %w", chartName, err)
	}

	options := chartutil.ReleaseOptions{
		Name:      chartName,
		Namespace: r.namespace,
		Revision:  1,
		IsInstall: true,
	}
	renderValues, err := chartutil.ToRenderValues(chart, chartValues, options, r.capabilities)
	if err != nil {
		return nil, err
	}

	files, err := r.engine.Render(chart, renderValues)
	if err != nil {
		return nil, err
	}

	for name := range files {
		if strings.HasSuffix(name, notesFileSuffix) || strings.HasPrefix(path.Base(name), "_") {
			delete(files, name)
		}
	}

	_, manifests, err := releaseutil.SortManifests(files, chartutil.DefaultVersionSet, releaseutil.InstallOrder)
	if err != nil {
		return nil, fmt.Errorf("sorting manifests of chart %q: %w", chartName, err)
	}

	return &RenderedChart{ChartName: chartName, Manifests: manifests}, nil
}

// RenderObjects renders the named chart and decodes the result into objects,
// preserving install order.
func (r *Renderer) RenderObjects(chartName string, values any) ([]client.Object, error) {
	rendered, err := r.Render(chartName, values)
	if err != nil {
		return nil, err
	}
	return rendered.Objects()
}

// Objects decodes the rendered manifests into unstructured objects.
func (c *RenderedChart) Objects() ([]client.Object, error) {
	var objs []client.Object

	for _, manifest := range c.Manifests {
		for _, document := range strings.Split(manifest.Content, "\n---\n") {
			if strings.TrimSpace(document) == "" {
				continue
			}

			obj := &unstructured.Unstructured{}
			if err := yaml.Unmarshal([]byte(document), obj); err != nil {
				return nil, fmt.Errorf("decoding manifest %q: %w", manifest.Name, err)
			}
			if obj.GetKind() == "" {
				continue
			}
			objs = append(objs, obj)
		}
	}

	return objs, nil
}

// Manifest aggregates all rendered manifests into one multi-document YAML.
func (c *RenderedChart) Manifest() []byte {
	b := bytes.NewBuffer(nil)
	for _, mf := range c.Manifests {
		b.WriteString("\n---\n# Source: " + mf.Name + "\n")
		b.WriteString(mf.Content)
	}
	return b.Bytes()
}

// loadEmbeddedChart walks the embedded chart directory into helm's loader.
func loadEmbeddedChart(chartPath string) (*helmchart.Chart, error) {
	var files []*helmloader.BufferedFile

	if err := fs.WalkDir(chartsFS, chartPath, func(filePath string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if dirEntry.IsDir() {
			return nil
		}

		normalizedPath := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(filePath, chartPath), "/"))
		if normalizedPath == "" {
			return nil
		}

		data, err := chartsFS.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", normalizedPath, err)
		}
		files = append(files, &helmloader.BufferedFile{Name: normalizedPath, Data: data})
		return nil
	}); err != nil {
		return nil, err
	}

	return helmloader.LoadFiles(files)
}
