package service

import (
	"errors"
	"net/url"
	"strings"

	"github.com/parisxmas/OxiDB/qrform/internal/qrcode"
)

var ErrInvalidURL = errors.New("invalid url")

type QRCodeService struct {
	enc        *qrcode.Encoder
	opts       qrcode.Options
	defaultURL string
}

// NewQRCodeService renders codes with opts. An empty request URL falls
// back to baseURL + "/form.html".
func NewQRCodeService(enc *qrcode.Encoder, opts qrcode.Options, baseURL string) *QRCodeService {
	return &QRCodeService{
		enc:        enc,
		opts:       opts,
		defaultURL: strings.TrimRight(baseURL, "/") + "/form.html",
	}
}

type QRCodeResult struct {
	QRCode string `json:"qrCode"`
	URL    string `json:"url"`
}

func (s *QRCodeService) FormURL() string { return s.defaultURL }

func (s *QRCodeService) Generate(target string) (*QRCodeResult, error) {
	if target == "" {
		target = s.defaultURL
	}
	if _, err := url.Parse(target); err != nil {
		return nil, ErrInvalidURL
	}
	uri, err := s.enc.DataURI(target, s.opts)
	if err != nil {
		return nil, err
	}
	return &QRCodeResult{QRCode: uri, URL: target}, nil
}
