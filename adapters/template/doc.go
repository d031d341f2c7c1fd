// Package doctemplate renders the one page report (OPR) as self-contained A4
// HTML using embedded pongo2 templates.
//
// OprRenderer implements docgen.OprRenderer. Variants select the output
// shape: VariantStandalone is a plain HTML document (also the input for PDF
// and PNG conversion), VariantPrint adds print CSS and opens the print dialog
// once loaded, and VariantFragment emits only the style block and body markup
// for embedding in another page.
//
// Every text value is escaped by pongo2 autoescaping. Only the font stack
// and the generated gallery grid rules, both produced by docgen, are written
// unescaped.
package doctemplate
