// Package docpdf converts rendered HTML into PDF and PNG.
//
// ChromiumEngine drives a shared headless Chromium through chromedp for both
// print-to-PDF and element screenshots. WKHTMLTOPDFEngine shells out to
// wkhtmltopdf for PDF only. Renderer gates either engine behind Enabled and
// an HTML size limit and satisfies the docgen conversion interfaces.
package docpdf
