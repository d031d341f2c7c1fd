package command

import (
	"time"

	"github.com/goliatone/go-docgen/docgen"
	"github.com/goliatone/go-errors"
)

// GenerateMinit renders meeting minutes in one format.
type GenerateMinit struct {
	Request docgen.MinitRequest
	Format  docgen.Format
	// UseProfile fills blanks from the current settings profile.
	UseProfile bool
	Result     *docgen.Artifact
}

func (GenerateMinit) Type() string { return "docgen:minit:generate" }

func (msg GenerateMinit) Validate() error {
	switch msg.Format {
	case docgen.FormatDOCX, docgen.FormatPDF, docgen.FormatXLSX:
		return nil
	case "":
		return errors.New("format is required", errors.CategoryValidation).
			WithTextCode("FORMAT_REQUIRED")
	default:
		return errors.New("unsupported minit format "+string(msg.Format), errors.CategoryValidation).
			WithTextCode("FORMAT_UNSUPPORTED")
	}
}

// GenerateOpr renders a program report. Print selects the HTML variant that
// opens the print dialog.
type GenerateOpr struct {
	Data       docgen.OprData
	Format     docgen.Format
	Print      bool
	Fragment   bool
	UseProfile bool
	Result     *docgen.Artifact
}

func (GenerateOpr) Type() string { return "docgen:opr:generate" }

func (msg GenerateOpr) Validate() error {
	switch msg.Format {
	case docgen.FormatHTML, docgen.FormatPDF, docgen.FormatPNG, docgen.FormatJSON:
	case "":
		return errors.New("format is required", errors.CategoryValidation).
			WithTextCode("FORMAT_REQUIRED")
	default:
		return errors.New("unsupported opr format "+string(msg.Format), errors.CategoryValidation).
			WithTextCode("FORMAT_UNSUPPORTED")
	}
	if msg.Print && msg.Format != docgen.FormatHTML {
		return errors.New("print is only available for html", errors.CategoryValidation).
			WithTextCode("PRINT_REQUIRES_HTML")
	}
	if msg.Fragment && (msg.Format != docgen.FormatHTML || msg.Print) {
		return errors.New("fragment is only available for plain html", errors.CategoryValidation).
			WithTextCode("FRAGMENT_REQUIRES_HTML")
	}
	return nil
}

// CleanupArtifacts removes stored artifacts created before Now minus the
// handler's retention.
type CleanupArtifacts struct {
	Now    time.Time
	Result *int
}

func (CleanupArtifacts) Type() string { return "docgen:artifacts:cleanup" }

func (CleanupArtifacts) Validate() error { return nil }
