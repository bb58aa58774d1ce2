// Package raster holds the pixel-level collaborators of the pipeline.
//
// It covers four jobs that sit around the layered-document steps:
//
//   - [Resize] and [OutputSize] scale a source image so its longer side
//     matches the configured maximum dimension.
//   - [Baseline] wraps a resized image in a single-layer document.
//   - [Flatten] composites a document's visible layers into one image, and
//     [WritePNG] stores it with alpha.
//   - [Icons] renders the app icon size tables.
//
// All resampling uses github.com/disintegration/imaging. Text layers are drawn
// with github.com/fogleman/gg using the embedded font from pkg/fonts.
package raster
