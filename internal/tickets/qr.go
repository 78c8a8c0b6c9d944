// Package tickets builds the QR codes printed on registration passes.
package tickets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

// Size is the edge length of generated QR images in pixels.
const Size = 256

var ErrEmptyPayload = errors.New("qr payload is empty")

// Payload is the string scanned at the venue door: the registration id
// followed by base64("<id>-<reference>").
func Payload(registrationID, reference string) string {
	token := base64.StdEncoding.EncodeToString([]byte(registrationID + "-" + reference))
	return registrationID + ":" + token
}

// DetailsPath is the in-app link stored on a fresh registration so the
// participant page can render its own pass.
func DetailsPath(registrationID, eventID string, sessionID *string) string {
	session := ""
	if sessionID != nil {
		session = *sessionID
	}
	return "/registrations?qr_details=" + url.QueryEscape(registrationID+":"+eventID+":"+session)
}

// ObjectPath is where a pass image is stored on the media CDN.
func ObjectPath(registrationID string) string {
	return "qrcodes/" + registrationID + ".png"
}

// PNG renders payload as a Size x Size PNG.
func PNG(payload string) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, Size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
