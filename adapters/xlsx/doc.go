// Package docxlsx writes the meeting attendance register as an XLSX
// workbook: a signing sheet listing every attendee and a follow-up sheet
// with the action owner of each numbered section.
package docxlsx
