// Package document models editable layered image documents.
//
// A [Document] holds an ordered stack of layers. Each layer is a [Node]: a
// [Group] that owns child layers, a [Text] layer with editable content, or a
// [Pixel] layer carrying raster data. The set of node types is closed; code
// that needs per-kind behavior switches on the concrete type:
//
//	switch n := node.(type) {
//	case *document.Group:
//	    // n.Children
//	case *document.Text:
//	    // n.Content
//	case *document.Pixel:
//	    // n.Image()
//	}
//
// # Stacking Order
//
// Layers[0] is the topmost layer. Inserting at the top therefore means
// prepending, and flattening composites from the last layer up to the first.
// Group children follow the same convention.
//
// # Encoding
//
// Documents persist as JSON with the extension [Ext] (see [Encode] and
// [Decode]). Pixel data is stored as PNG inside the JSON payload, so a
// document round-trips without loss of alpha.
package document
