package docgen

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// User facing validation messages.
const (
	MsgBilanganRequired = "Sila masukkan bilangan mesyuarat"
	MsgPanitiaRequired  = "Sila masukkan nama panitia"
	MsgTarikhInvalid    = "Tarikh tidak sah (format YYYY-MM-DD)"
	MsgProgramRequired  = "Sila masukkan nama program"
	MsgPhotosRequired   = "Sila tambah sekurang-kurangnya 1 gambar untuk OPR"
	MsgPhotosTooMany    = "Maksimum 8 gambar untuk OPR"
	MsgImageUnsupported = "Penjanaan imej tidak disokong pada peranti ini. Sila gunakan PDF"
)

var isoDateRule = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := ParseISODate(s); !ok {
		return errors.New(MsgTarikhInvalid)
	}
	return nil
})

// ValidateMinit checks a meeting record before rendering.
func ValidateMinit(data MinitData) error {
	err := validation.ValidateStruct(&data,
		validation.Field(&data.Bilangan, validation.By(requiredText(MsgBilanganRequired))),
		validation.Field(&data.Panitia, validation.By(requiredText(MsgPanitiaRequired))),
		validation.Field(&data.Tarikh, isoDateRule),
	)
	return toValidationError(err, []string{"bilangan", "panitia", "tarikh"})
}

// ValidateOpr checks a report before rendering. Exports that produce a
// printable page require 1..8 photos; previews do not.
func ValidateOpr(data OprData, requirePhotos bool) error {
	rules := []*validation.FieldRules{
		validation.Field(&data.NamaProgram, validation.By(requiredText(MsgProgramRequired))),
		validation.Field(&data.Tarikh, isoDateRule),
	}
	if requirePhotos {
		rules = append(rules, validation.Field(&data.GambarBase64, validation.By(photoCountRule)))
	}
	err := validation.ValidateStruct(&data, rules...)
	return toValidationError(err, []string{"gambarBase64", "namaProgram", "tarikh"})
}

func requiredText(msg string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

func photoCountRule(value any) error {
	photos, _ := value.([]string)
	n := countNonEmpty(photos)
	if n < 1 {
		return errors.New(MsgPhotosRequired)
	}
	if n > MaxOprPhotos {
		return errors.New(MsgPhotosTooMany)
	}
	return nil
}

// toValidationError flattens ozzo errors; priority decides which message
// leads.
func toValidationError(err error, priority []string) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return NewError(KindInternal, "validation failed", err)
	}
	fields := make(map[string]string, len(errs))
	keys := make([]string, 0, len(errs))
	for field, fieldErr := range errs {
		fields[field] = fieldErr.Error()
		keys = append(keys, field)
	}
	sort.Strings(keys)

	msg := ""
	for _, field := range priority {
		if m, ok := fields[field]; ok {
			msg = m
			break
		}
	}
	if msg == "" {
		msg = fields[keys[0]]
	}
	return &ValidationError{Fields: fields, Msg: msg}
}

func countNonEmpty(values []string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
