// Package label renders sterilization package labels. Each label carries a
// QR code whose payload identifies the sterilizer cycle and package so that
// chairside staff can scan an instrument pouch and verify it against the
// cycle record before opening it.
package label

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// Label stock geometry. Standard thermal pouch labels are 58mm wide and
// 28mm tall; the QR occupies the label height minus a 2mm margin on each
// side, leaving the right portion for human-readable text.
const (
	WidthMM  = 58
	HeightMM = 28
	MarginMM = 2

	// DefaultDPI matches common thermal label printers.
	DefaultDPI = 203
)

const (
	payloadMagic   = "STZ"
	payloadVersion = "v1"
	dateLayout     = "2006-01-02"
)

// Payload is the decoded content of a package label QR code.
type Payload struct {
	CycleID   uuid.UUID
	PackageID uuid.UUID
	ExpiresAt time.Time
}

// Encode serializes the payload to its wire form:
//
//	STZ|v1|<cycle-uuid>|<package-uuid>|<expiry YYYY-MM-DD>
func Encode(cycleID, packageID uuid.UUID, expiresAt time.Time) string {
	return strings.Join([]string{
		payloadMagic,
		payloadVersion,
		cycleID.String(),
		packageID.String(),
		expiresAt.Format(dateLayout),
	}, "|")
}

// Parse decodes a scanned QR payload. It rejects payloads that are not
// version v1 or that carry malformed identifiers or dates.
func Parse(s string) (Payload, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 5 {
		return Payload{}, fmt.Errorf("label payload has %d fields, want 5", len(parts))
	}
	if parts[0] != payloadMagic {
		return Payload{}, fmt.Errorf("unrecognized label payload prefix %q", parts[0])
	}
	if parts[1] != payloadVersion {
		return Payload{}, fmt.Errorf("unsupported label payload version %q", parts[1])
	}

	cycleID, err := uuid.Parse(parts[2])
	if err != nil {
		return Payload{}, fmt.Errorf("parsing cycle id: %w", err)
	}
	packageID, err := uuid.Parse(parts[3])
	if err != nil {
		return Payload{}, fmt.Errorf("parsing package id: %w", err)
	}
	expiresAt, err := time.Parse(dateLayout, parts[4])
	if err != nil {
		return Payload{}, fmt.Errorf("parsing expiry date: %w", err)
	}

	return Payload{
		CycleID:   cycleID,
		PackageID: packageID,
		ExpiresAt: expiresAt,
	}, nil
}

// QRSizePx returns the QR code edge length in pixels for the given printer
// resolution. The QR is sized to the label height minus the top and bottom
// margins.
func QRSizePx(dpi int) int {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	const mmPerInch = 25.4
	return int(float64(HeightMM-2*MarginMM) / mmPerInch * float64(dpi))
}

// RenderPNG renders the QR code for a package label as a PNG image at the
// given printer resolution.
func RenderPNG(cycleID, packageID uuid.UUID, expiresAt time.Time, dpi int) ([]byte, error) {
	payload := Encode(cycleID, packageID, expiresAt)
	png, err := qrcode.Encode(payload, qrcode.Medium, QRSizePx(dpi))
	if err != nil {
		return nil, fmt.Errorf("encoding label QR: %w", err)
	}
	return png, nil
}
