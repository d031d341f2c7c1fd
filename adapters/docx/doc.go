// Package docxrender writes the meeting minutes as a Word document.
//
// MinitDocx maps a docgen.MinitDocument onto a small document tree
// (paragraphs, runs, tables and inline PNG images) and Document.Pack writes
// that tree as an OOXML package. Only the parts Word needs are emitted:
// content types, relationships, the main document, default styles and media.
package docxrender
