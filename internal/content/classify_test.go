package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		sym    Symbology
		want   Payload
	}{
		{"empty", "", SymbologyOther, Text{Kind: TypeUnknown}},
		{"invalid utf8", "\xff\xfe", SymbologyOther, Text{Kind: TypeUnknown, Value: "\xff\xfe"}},
		{"plain text", "hello world", SymbologyOther, Text{Kind: TypeText, Value: "hello world"}},
		{"digits outside retail", "4006381333931", SymbologyOther, Text{Kind: TypeText, Value: "4006381333931"}},
		{"product", "4006381333931", SymbologyRetail, Product{Value: "4006381333931"}},
		{"isbn", "9783161484100", SymbologyRetail, Text{Kind: TypeISBN, Value: "9783161484100"}},
		{"url", "https://example.com/a?b=c", SymbologyOther, URL{URL: "https://example.com/a?b=c"}},
		{"url upper scheme", "HTTP://EXAMPLE.COM", SymbologyOther, URL{URL: "HTTP://EXAMPLE.COM"}},
		{"bookmark", "MEBKM:TITLE:Example;URL:http\\://example.com;;", SymbologyOther, URL{Title: "Example", URL: "http://example.com"}},
		{"urlto titled", "URLTO:Example:example.com", SymbologyOther, URL{Title: "Example", URL: "example.com"}},
		{"urlto untitled", "URLTO:http://example.com", SymbologyOther, URL{URL: "http://example.com"}},
		{"tel", "tel:+49301234567", SymbologyOther, Phone{Number: "+49301234567"}},
		{"smsto", "SMSTO:+15551234:see you", SymbologyOther, SMS{PhoneNumber: "+15551234", Message: "see you"}},
		{"sms uri", "sms:+15551234?body=hi%20there", SymbologyOther, SMS{PhoneNumber: "+15551234", Message: "hi there"}},
		{"mailto", "mailto:someone@example.com?subject=Hi&body=Yo", SymbologyOther, Email{Address: "someone@example.com", Subject: "Hi", Body: "Yo"}},
		{"matmsg", "MATMSG:TO:a@b.c;SUB:Subject;BODY:Text;;", SymbologyOther, Email{Address: "a@b.c", Subject: "Subject", Body: "Text"}},
		{"geo", "geo:52.52,13.405", SymbologyOther, GeoPoint{Lat: 52.52, Lng: 13.405}},
		{"geo with query", "geo:-33.86,151.2?z=12", SymbologyOther, GeoPoint{Lat: -33.86, Lng: 151.2}},
		{"geo out of range", "geo:123,0", SymbologyOther, Text{Kind: TypeText, Value: "geo:123,0"}},
		{"geo malformed", "geo:north", SymbologyOther, Text{Kind: TypeText, Value: "geo:north"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.raw, tt.sym)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Type(), got.Type())
		})
	}
}

func TestClassifyWiFi(t *testing.T) {
	tests := []struct {
		raw  string
		want WiFi
	}{
		{"WIFI:S:home;T:WPA;P:secret;;", WiFi{SSID: "home", Password: "secret", EncryptionType: EncryptionWPA}},
		{"WIFI:T:WEP;S:old;P:abc;;", WiFi{SSID: "old", Password: "abc", EncryptionType: EncryptionWEP}},
		{"WIFI:S:cafe;;", WiFi{SSID: "cafe", EncryptionType: EncryptionOpen}},
		{"wifi:S:semi\\;colon;T:nopass;;", WiFi{SSID: "semi;colon", EncryptionType: EncryptionOpen}},
	}
	for _, tt := range tests {
		got := Classify(tt.raw, SymbologyOther)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestClassifyMeCard(t *testing.T) {
	got := Classify("MECARD:N:Doe,Jane;TEL:+1555;EMAIL:jane@example.com;ORG:Acme;URL:https\\://acme.test;;", SymbologyOther)
	c, ok := got.(ContactInfo)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", c.Name.FormattedName)
	assert.Equal(t, "Jane", c.Name.First)
	assert.Equal(t, "Doe", c.Name.Last)
	assert.Equal(t, "Acme", c.Organization)
	assert.Equal(t, []Phone{{Number: "+1555"}}, c.Phones)
	assert.Equal(t, []Email{{Address: "jane@example.com"}}, c.Emails)
	assert.Equal(t, []string{"https://acme.test"}, c.URLs)
}

func TestClassifyVCard(t *testing.T) {
	raw := "BEGIN:VCARD\r\nVERSION:3.0\r\nN:Doe;John;Q;Dr.;Jr.\r\nORG:Acme;Labs\r\nTITLE:Engineer\r\n" +
		"TEL;TYPE=CELL:+1555\r\nTEL;WORK:+1666\r\nEMAIL;TYPE=HOME:john@example.com\r\n" +
		"ADR;TYPE=WORK:;;1 Main St;Springfield;;12345;USA\r\nURL:https://john.example\r\nEND:VCARD"
	got := Classify(raw, SymbologyOther)
	c, ok := got.(ContactInfo)
	require.True(t, ok)
	assert.Equal(t, TypeContactInfo, c.Type())
	assert.Equal(t, "Dr. John Q Doe Jr.", c.Name.FormattedName)
	assert.Equal(t, "Acme Labs", c.Organization)
	assert.Equal(t, "Engineer", c.Title)
	assert.Equal(t, []Phone{{Number: "+1555", Kind: PhoneMobile}, {Number: "+1666", Kind: PhoneWork}}, c.Phones)
	assert.Equal(t, []Email{{Address: "john@example.com", Kind: AddressHome}}, c.Emails)
	require.Len(t, c.Addresses, 1)
	assert.Equal(t, AddressWork, c.Addresses[0].Type)
	assert.Equal(t, []string{"1 Main St", "Springfield", "12345", "USA"}, c.Addresses[0].AddressLines)
	assert.Equal(t, []string{"https://john.example"}, c.URLs)
}

func TestClassifyVCardFormattedNameWins(t *testing.T) {
	got := Classify("BEGIN:VCARD\nFN:Johnny\\, the Great\nN:Doe;John\nEND:VCARD", SymbologyOther)
	c := got.(ContactInfo)
	assert.Equal(t, "Johnny, the Great", c.Name.FormattedName)
	assert.Equal(t, "John", c.Name.First)
}

func TestClassifyCalendarEvent(t *testing.T) {
	raw := "BEGIN:VEVENT\nSUMMARY:Launch\nDESCRIPTION:Line one\\nLine two\nLOCATION:Berlin\n" +
		"ORGANIZER:mailto:lead@example.com\nSTATUS:CONFIRMED\nDTSTART:20260105T090000Z\nDTEND:20260105\nEND:VEVENT"
	got := Classify(raw, SymbologyOther)
	ev, ok := got.(CalendarEvent)
	require.True(t, ok)
	assert.Equal(t, CalendarEvent{
		Summary:     "Launch",
		Description: "Line one\nLine two",
		Location:    "Berlin",
		Organizer:   "lead@example.com",
		Status:      "CONFIRMED",
		Start:       "2026-01-05T09:00:00Z",
		End:         "2026-01-05T00:00:00Z",
	}, ev)
}

func TestCalendarTimeKeepsUnknownLayouts(t *testing.T) {
	assert.Equal(t, "next tuesday", calendarTime(" next tuesday "))
}

func TestClassifyDriversLicense(t *testing.T) {
	raw := "@\n\x1e\rANSI 636014040002DL00410278ZC03190008DLDAQD1234567\n" +
		"DCSDOE\nDACJOHN\nDADQUINCY\nDBD01012020\nDBB01011990\nDBA01012030\nDBC1\n" +
		"DAG123 MAIN ST\nDAISACRAMENTO\nDAJCA\nDAK958140000\nDCGUSA\n"
	got := Classify(raw, SymbologyPDF417)
	dl, ok := got.(DriversLicense)
	require.True(t, ok)
	assert.Equal(t, DriversLicense{
		DocumentType:   "DL",
		FirstName:      "JOHN",
		MiddleName:     "QUINCY",
		LastName:       "DOE",
		Gender:         "M",
		AddressStreet:  "123 MAIN ST",
		AddressCity:    "SACRAMENTO",
		AddressState:   "CA",
		AddressZip:     "958140000",
		LicenseNumber:  "D1234567",
		IssueDate:      "01012020",
		ExpiryDate:     "01012030",
		BirthDate:      "01011990",
		IssuingCountry: "USA",
	}, dl)
}

func TestClassifyAAMVAOnlyOnPDF417(t *testing.T) {
	raw := "@\nANSI 636014040002DL00410278ZC03190008DLDAQD1234562\nDCSDOE\n"
	for _, sym := range []Symbology{SymbologyOther, SymbologyRetail} {
		got := Classify(raw, sym)
		assert.Equal(t, TypeText, got.Type(), "symbology %d", sym)
		assert.Equal(t, Text{Kind: TypeText, Value: raw}, got)
	}
	assert.Equal(t, TypeDriversLicense, Classify(raw, SymbologyPDF417).Type())
}

func TestClassifyLegacyDriversLicenseNames(t *testing.T) {
	raw := "@\nANSI 6360000102DL00390187DLDAQ99\nDABSMITH\nDCTANNA,MARIE\nDBC2\n"
	dl := Classify(raw, SymbologyPDF417).(DriversLicense)
	assert.Equal(t, "SMITH", dl.LastName)
	assert.Equal(t, "ANNA", dl.FirstName)
	assert.Equal(t, "MARIE", dl.MiddleName)
	assert.Equal(t, "F", dl.Gender)
	assert.Equal(t, "99", dl.LicenseNumber)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "url", TypeURL.String())
	assert.Equal(t, "driversLicense", TypeDriversLicense.String())
	assert.Equal(t, "invalid", Type(99).String())
}
