// Package pdfcanvas draws the meeting minutes as a PDF.
//
// MinitPDF lays the minutes out on an A4 page in millimetres and issues draw
// calls against a Canvas. FpdfCanvas backs the canvas with gofpdf; Recorder
// keeps the calls in memory so layouts can be asserted without parsing PDF.
package pdfcanvas
