package pipeline

import (
	"encoding/json"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/content"
)

// BarcodeRecord is the host-facing description of one detected barcode.
type BarcodeRecord struct {
	CornerPoints []barcode.Point `json:"cornerPoints" yaml:"cornerPoints"`
	DisplayValue string          `json:"displayValue,omitempty" yaml:"displayValue,omitempty"`
	RawValue     string          `json:"rawValue,omitempty" yaml:"rawValue,omitempty"`
	Content      ContentRecord   `json:"content" yaml:"content"`
	Format       int             `json:"format" yaml:"format"`
}

// ContentRecord is the typed payload of a record. A nil Data marks an empty
// payload, serialized as {}.
type ContentRecord struct {
	Type content.Type
	Data any
}

// IsEmpty reports whether the record carries no payload.
func (c ContentRecord) IsEmpty() bool { return c.Data == nil }

type contentWire struct {
	Type int `json:"type" yaml:"type"`
	Data any `json:"data" yaml:"data"`
}

func (c ContentRecord) MarshalJSON() ([]byte, error) {
	if c.IsEmpty() {
		return []byte("{}"), nil
	}
	return json.Marshal(contentWire{Type: int(c.Type), Data: c.Data})
}

func (c ContentRecord) MarshalYAML() (interface{}, error) {
	if c.IsEmpty() {
		return map[string]any{}, nil
	}
	return contentWire{Type: int(c.Type), Data: c.Data}, nil
}

// Payload shapes of ContentRecord.Data, one per structured content type.

type NameData struct {
	FormattedName string `json:"formattedName,omitempty" yaml:"formattedName,omitempty"`
	FirstName     string `json:"firstName,omitempty" yaml:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty" yaml:"lastName,omitempty"`
	MiddleName    string `json:"middleName,omitempty" yaml:"middleName,omitempty"`
	Prefix        string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix        string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Pronunciation string `json:"pronunciation,omitempty" yaml:"pronunciation,omitempty"`
}

type AddressData struct {
	AddressLines []string `json:"addressLines" yaml:"addressLines"`
	Type         int      `json:"type" yaml:"type"`
}

type EmailData struct {
	Address string `json:"address" yaml:"address"`
	Subject string `json:"subject" yaml:"subject"`
	Body    string `json:"body" yaml:"body"`
	Type    int    `json:"type" yaml:"type"`
}

type PhoneData struct {
	Number string `json:"number" yaml:"number"`
	Type   int    `json:"type" yaml:"type"`
}

type ContactInfoData struct {
	Name         NameData      `json:"name" yaml:"name"`
	Organization string        `json:"organization,omitempty" yaml:"organization,omitempty"`
	Title        string        `json:"title,omitempty" yaml:"title,omitempty"`
	Phones       []PhoneData   `json:"phones" yaml:"phones"`
	Emails       []EmailData   `json:"emails" yaml:"emails"`
	Addresses    []AddressData `json:"addresses" yaml:"addresses"`
	URLs         []string      `json:"urls" yaml:"urls"`
}

type SMSData struct {
	Message     string `json:"message" yaml:"message"`
	PhoneNumber string `json:"phoneNumber" yaml:"phoneNumber"`
}

type URLData struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

type WiFiData struct {
	EncryptionType int    `json:"encryptionType" yaml:"encryptionType"`
	Password       string `json:"password" yaml:"password"`
	SSID           string `json:"ssid" yaml:"ssid"`
}

type GeoPointData struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

type CalendarEventData struct {
	Summary     string `json:"summary" yaml:"summary"`
	Description string `json:"description" yaml:"description"`
	Location    string `json:"location" yaml:"location"`
	Organizer   string `json:"organizer" yaml:"organizer"`
	Status      string `json:"status" yaml:"status"`
	Start       string `json:"start" yaml:"start"`
	End         string `json:"end" yaml:"end"`
}

type DriversLicenseData struct {
	AddressCity    string `json:"addressCity" yaml:"addressCity"`
	AddressState   string `json:"addressState" yaml:"addressState"`
	AddressStreet  string `json:"addressStreet" yaml:"addressStreet"`
	AddressZip     string `json:"addressZip" yaml:"addressZip"`
	BirthDate      string `json:"birthDate" yaml:"birthDate"`
	DocumentType   string `json:"documentType" yaml:"documentType"`
	ExpiryDate     string `json:"expiryDate" yaml:"expiryDate"`
	FirstName      string `json:"firstName" yaml:"firstName"`
	Gender         string `json:"gender" yaml:"gender"`
	IssueDate      string `json:"issueDate" yaml:"issueDate"`
	IssuingCountry string `json:"issuingCountry" yaml:"issuingCountry"`
	LastName       string `json:"lastName" yaml:"lastName"`
	LicenseNumber  string `json:"licenseNumber" yaml:"licenseNumber"`
	MiddleName     string `json:"middleName" yaml:"middleName"`
}

// Result is the outcome of processing one frame. On failure Err is set and
// Records is nil; on success Records is non-nil, possibly empty.
type Result struct {
	Records []BarcodeRecord
	Err     error
}

// Value returns the records, or nil when the frame failed.
func (r Result) Value() []BarcodeRecord {
	if r.Err != nil {
		return nil
	}
	return r.Records
}

// OK reports whether the frame was processed.
func (r Result) OK() bool { return r.Err == nil }

// FrameResult is the per-frame report the CLI and server hosts emit.
type FrameResult struct {
	Source     string          `json:"source,omitempty" yaml:"source,omitempty"`
	Width      int             `json:"width" yaml:"width"`
	Height     int             `json:"height" yaml:"height"`
	Records    []BarcodeRecord `json:"records" yaml:"records"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	Processing struct {
		TotalNs int64 `json:"total_ns" yaml:"total_ns"`
	} `json:"processing" yaml:"processing"`
}
