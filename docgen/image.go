package docgen

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Upload limits enforced by upload collaborators.
const (
	MaxPhotoBytes = 5 * 1024 * 1024
	MaxLogoBytes  = 500 * 1024
)

// UploadKind distinguishes the size budget of an upload.
type UploadKind string

const (
	UploadPhoto     UploadKind = "photo"
	UploadLogo      UploadKind = "logo"
	UploadSignature UploadKind = "signature"
)

// AcceptedImageTypes lists the MIME types uploads may carry.
var AcceptedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/heic",
	"image/heif",
}

// CheckUpload validates the type and size of an uploaded image.
func CheckUpload(contentType string, size int64, kind UploadKind) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "image/jpg" {
		ct = "image/jpeg"
	}
	accepted := false
	for _, allowed := range AcceptedImageTypes {
		if ct == allowed {
			accepted = true
			break
		}
	}
	if !accepted {
		return NewError(KindValidation, "Jenis fail tidak disokong. Sila guna JPG, PNG, WEBP atau HEIC", nil)
	}
	limit := int64(MaxLogoBytes)
	msg := "Saiz fail melebihi 500KB"
	if kind == UploadPhoto {
		limit = MaxPhotoBytes
		msg = "Saiz gambar melebihi 5MB"
	}
	if size > limit {
		return NewError(KindValidation, msg, nil)
	}
	return nil
}

// ImageSource is a decoded data URI payload.
type ImageSource struct {
	MIME string
	Data []byte
}

// ParseDataURI accepts "data:image/png;base64,..." or bare base64.
func ParseDataURI(src string) (ImageSource, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return ImageSource{}, NewError(KindImageDecode, "image is empty", nil)
	}
	mime := ""
	payload := src
	if strings.HasPrefix(src, "data:") {
		comma := strings.IndexByte(src, ',')
		if comma < 0 {
			return ImageSource{}, NewError(KindImageDecode, "malformed data URI", nil)
		}
		header := src[len("data:"):comma]
		payload = src[comma+1:]
		if !strings.HasSuffix(header, ";base64") {
			return ImageSource{}, NewError(KindImageDecode, "data URI is not base64", nil)
		}
		mime = strings.TrimSuffix(header, ";base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return ImageSource{}, NewError(KindImageDecode, "invalid base64 image", err)
		}
	}
	if len(data) == 0 {
		return ImageSource{}, NewError(KindImageDecode, "image is empty", nil)
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if sniffed := http.DetectContentType(head); strings.HasPrefix(sniffed, "image/") {
		mime = sniffed
	}
	return ImageSource{MIME: mime, Data: data}, nil
}

// DecodeImage decodes a data URI into an image, honoring EXIF orientation.
func DecodeImage(src string) (image.Image, error) {
	source, err := ParseDataURI(src)
	if err != nil {
		return nil, err
	}
	var img image.Image
	switch {
	case strings.Contains(source.MIME, "webp"):
		img, err = webp.Decode(bytes.NewReader(source.Data))
	case strings.Contains(source.MIME, "heic"), strings.Contains(source.MIME, "heif"):
		return nil, NewError(KindImageDecode, fmt.Sprintf("unsupported image type %s", source.MIME), nil)
	default:
		img, err = imaging.Decode(bytes.NewReader(source.Data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, NewError(KindImageDecode, "decode image", err)
	}
	return img, nil
}

// EncodedImage is an image re-encoded for embedding.
type EncodedImage struct {
	Data   []byte
	Width  int
	Height int
}

// Aspect returns width/height.
func (e EncodedImage) Aspect() float64 {
	if e.Height == 0 {
		return 1
	}
	return float64(e.Width) / float64(e.Height)
}

// PreparePNG decodes src, shrinks it to fit maxW x maxH and re-encodes it as
// PNG on a white background. Document writers embed PNG only.
func PreparePNG(src string, maxW, maxH int) (EncodedImage, error) {
	img, err := DecodeImage(src)
	if err != nil {
		return EncodedImage{}, err
	}
	if maxW > 0 && maxH > 0 {
		img = imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	}
	bounds := img.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	canvas = imaging.Overlay(canvas, img, image.Pt(0, 0), 1)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return EncodedImage{}, NewError(KindImageDecode, "encode png", err)
	}
	return EncodedImage{Data: buf.Bytes(), Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// PreparePhoto fits a gallery photo to a w x h pixel slot and returns a JPEG
// data URI. FitCover crops to fill; FitContain letterboxes on white.
func PreparePhoto(src string, w, h int, mode FitMode) (string, error) {
	img, err := DecodeImage(src)
	if err != nil {
		return "", err
	}
	if w <= 0 || h <= 0 {
		return "", NewError(KindValidation, "photo slot size must be positive", nil)
	}
	var out image.Image
	switch mode {
	case FitContain:
		fitted := imaging.Fit(img, w, h, imaging.Lanczos)
		bg := imaging.New(w, h, color.White)
		out = imaging.PasteCenter(bg, fitted)
	default:
		out = imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", NewError(KindImageDecode, "encode jpeg", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
