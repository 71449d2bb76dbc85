package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// foreignPayload satisfies content.Payload through embedding but is not one
// of the known variants.
type foreignPayload struct{ content.Text }

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		name    string
		payload content.Payload
		want    ContentRecord
	}{
		{"unknown", content.Text{Kind: content.TypeUnknown, Value: "??"}, ContentRecord{Type: content.TypeUnknown, Data: "??"}},
		{"text", content.Text{Kind: content.TypeText, Value: "hi"}, ContentRecord{Type: content.TypeText, Data: "hi"}},
		{"isbn", content.Text{Kind: content.TypeISBN, Value: "9783161484100"}, ContentRecord{Type: content.TypeISBN, Data: "9783161484100"}},
		{"email", content.Email{Address: "a@b.c", Subject: "s", Body: "b", Kind: content.AddressWork},
			ContentRecord{Type: content.TypeEmail, Data: EmailData{Address: "a@b.c", Subject: "s", Body: "b", Type: 1}}},
		{"phone", content.Phone{Number: "123", Kind: content.PhoneMobile}, ContentRecord{Type: content.TypePhone, Data: PhoneData{Number: "123", Type: 4}}},
		{"sms", content.SMS{PhoneNumber: "123", Message: "m"}, ContentRecord{Type: content.TypeSMS, Data: SMSData{Message: "m", PhoneNumber: "123"}}},
		{"url", content.URL{Title: "t", URL: "https://x"}, ContentRecord{Type: content.TypeURL, Data: URLData{Title: "t", URL: "https://x"}}},
		{"wifi", content.WiFi{SSID: "s", Password: "p", EncryptionType: content.EncryptionWEP},
			ContentRecord{Type: content.TypeWiFi, Data: WiFiData{EncryptionType: 3, Password: "p", SSID: "s"}}},
		{"geo", content.GeoPoint{Lat: 1.5, Lng: -2}, ContentRecord{Type: content.TypeGeoCoordinates, Data: GeoPointData{Lat: 1.5, Lng: -2}}},
		{"calendar", content.CalendarEvent{Summary: "x", Start: "2026-01-01T00:00:00Z"},
			ContentRecord{Type: content.TypeCalendarEvent, Data: CalendarEventData{Summary: "x", Start: "2026-01-01T00:00:00Z"}}},
		{"license", content.DriversLicense{FirstName: "A", LastName: "B", LicenseNumber: "L1"},
			ContentRecord{Type: content.TypeDriversLicense, Data: DriversLicenseData{FirstName: "A", LastName: "B", LicenseNumber: "L1"}}},
		{"product", content.Product{Value: "4006381333931"}, ContentRecord{}},
		{"text kind outside the text family", content.Text{Kind: content.TypeURL, Value: "x"}, ContentRecord{}},
		{"foreign variant", foreignPayload{content.Text{Kind: content.TypeText, Value: "x"}}, ContentRecord{}},
		{"missing payload", nil, ContentRecord{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(barcode.Detection{Format: barcode.FormatQR, Content: tt.payload})
			assert.Equal(t, tt.want, got.Content)
		})
	}
}

func TestNormalizeContactInfo(t *testing.T) {
	c := content.ContactInfo{
		Name:         content.PersonName{FormattedName: "Jane Doe", First: "Jane", Last: "Doe"},
		Organization: "Acme",
		Phones:       []content.Phone{{Number: "1", Kind: content.PhoneWork}},
		Addresses:    []content.Address{{AddressLines: []string{"Main St"}, Type: content.AddressHome}},
	}
	got := Normalize(barcode.Detection{Content: c}).Content
	require.Equal(t, content.TypeContactInfo, got.Type)
	data, ok := got.Data.(ContactInfoData)
	require.True(t, ok)
	assert.Equal(t, NameData{FormattedName: "Jane Doe", FirstName: "Jane", LastName: "Doe"}, data.Name)
	assert.Equal(t, []PhoneData{{Number: "1", Type: 1}}, data.Phones)
	assert.Equal(t, []AddressData{{AddressLines: []string{"Main St"}, Type: 2}}, data.Addresses)
	assert.NotNil(t, data.Emails)
	assert.NotNil(t, data.URLs)

	// the record does not alias the detection's slices
	c.Addresses[0].AddressLines[0] = "changed"
	assert.Equal(t, "Main St", data.Addresses[0].AddressLines[0])
}

func TestNormalizeRecordJSON(t *testing.T) {
	d := barcode.Detection{
		Format:       barcode.FormatEAN13,
		RawValue:     "4006381333931",
		DisplayValue: "4006381333931",
		Content:      content.Product{Value: "4006381333931"},
	}
	b, err := json.Marshal(Normalize(d))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"cornerPoints": [],
		"displayValue": "4006381333931",
		"rawValue": "4006381333931",
		"content": {},
		"format": 32
	}`, string(b))
}

func TestNormalizeURLRecordJSON(t *testing.T) {
	d := barcode.Detection{
		Format:       barcode.FormatQR,
		RawValue:     "https://example.com",
		DisplayValue: "https://example.com",
		CornerPoints: []barcode.Point{{X: 1, Y: 2}},
		Content:      content.URL{URL: "https://example.com"},
	}
	b, err := json.Marshal(Normalize(d))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"cornerPoints": [{"x": 1, "y": 2}],
		"displayValue": "https://example.com",
		"rawValue": "https://example.com",
		"content": {"type": 8, "data": {"title": "", "url": "https://example.com"}},
		"format": 256
	}`, string(b))
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	got := NormalizeAll([]barcode.Detection{textDetection("1"), textDetection("2"), textDetection("3")})
	require.Len(t, got, 3)
	for i, want := range []string{"1", "2", "3"} {
		assert.Equal(t, want, got[i].RawValue)
	}
	assert.NotNil(t, NormalizeAll(nil))
}
