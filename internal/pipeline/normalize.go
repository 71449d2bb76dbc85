package pipeline

import (
	"github.com/MeKo-Tech/framescan/internal/barcode"
	"github.com/MeKo-Tech/framescan/internal/content"
)

// Normalize converts an engine detection into its host-facing record.
// It never fails: a payload it does not recognise yields empty content.
func Normalize(d barcode.Detection) BarcodeRecord {
	points := make([]barcode.Point, len(d.CornerPoints))
	copy(points, d.CornerPoints)
	return BarcodeRecord{
		CornerPoints: points,
		DisplayValue: d.DisplayValue,
		RawValue:     d.RawValue,
		Content:      normalizeContent(d.Content),
		Format:       d.Format.Code(),
	}
}

// NormalizeAll normalizes detections preserving their order.
func NormalizeAll(ds []barcode.Detection) []BarcodeRecord {
	out := make([]BarcodeRecord, 0, len(ds))
	for _, d := range ds {
		out = append(out, Normalize(d))
	}
	return out
}

func normalizeContent(p content.Payload) ContentRecord {
	switch v := p.(type) {
	case content.Text:
		switch v.Kind {
		case content.TypeUnknown, content.TypeText, content.TypeISBN:
			return ContentRecord{Type: v.Kind, Data: v.Value}
		default:
			return ContentRecord{}
		}
	case content.ContactInfo:
		return ContentRecord{Type: content.TypeContactInfo, Data: contactData(v)}
	case content.Email:
		return ContentRecord{Type: content.TypeEmail, Data: emailData(v)}
	case content.Phone:
		return ContentRecord{Type: content.TypePhone, Data: phoneData(v)}
	case content.SMS:
		return ContentRecord{Type: content.TypeSMS, Data: SMSData{Message: v.Message, PhoneNumber: v.PhoneNumber}}
	case content.URL:
		return ContentRecord{Type: content.TypeURL, Data: URLData{Title: v.Title, URL: v.URL}}
	case content.WiFi:
		return ContentRecord{Type: content.TypeWiFi, Data: WiFiData{EncryptionType: v.EncryptionType, Password: v.Password, SSID: v.SSID}}
	case content.GeoPoint:
		return ContentRecord{Type: content.TypeGeoCoordinates, Data: GeoPointData{Lat: v.Lat, Lng: v.Lng}}
	case content.CalendarEvent:
		return ContentRecord{Type: content.TypeCalendarEvent, Data: CalendarEventData{
			Summary:     v.Summary,
			Description: v.Description,
			Location:    v.Location,
			Organizer:   v.Organizer,
			Status:      v.Status,
			Start:       v.Start,
			End:         v.End,
		}}
	case content.DriversLicense:
		return ContentRecord{Type: content.TypeDriversLicense, Data: DriversLicenseData{
			AddressCity:    v.AddressCity,
			AddressState:   v.AddressState,
			AddressStreet:  v.AddressStreet,
			AddressZip:     v.AddressZip,
			BirthDate:      v.BirthDate,
			DocumentType:   v.DocumentType,
			ExpiryDate:     v.ExpiryDate,
			FirstName:      v.FirstName,
			Gender:         v.Gender,
			IssueDate:      v.IssueDate,
			IssuingCountry: v.IssuingCountry,
			LastName:       v.LastName,
			LicenseNumber:  v.LicenseNumber,
			MiddleName:     v.MiddleName,
		}}
	case content.Product:
		// products have no normalized payload
		return ContentRecord{}
	default:
		return ContentRecord{}
	}
}

func contactData(c content.ContactInfo) ContactInfoData {
	out := ContactInfoData{
		Name: NameData{
			FormattedName: c.Name.FormattedName,
			FirstName:     c.Name.First,
			LastName:      c.Name.Last,
			MiddleName:    c.Name.Middle,
			Prefix:        c.Name.Prefix,
			Suffix:        c.Name.Suffix,
			Pronunciation: c.Name.Pronunciation,
		},
		Organization: c.Organization,
		Title:        c.Title,
		Phones:       make([]PhoneData, 0, len(c.Phones)),
		Emails:       make([]EmailData, 0, len(c.Emails)),
		Addresses:    make([]AddressData, 0, len(c.Addresses)),
		URLs:         make([]string, 0, len(c.URLs)),
	}
	for _, p := range c.Phones {
		out.Phones = append(out.Phones, phoneData(p))
	}
	for _, e := range c.Emails {
		out.Emails = append(out.Emails, emailData(e))
	}
	for _, a := range c.Addresses {
		lines := make([]string, len(a.AddressLines))
		copy(lines, a.AddressLines)
		out.Addresses = append(out.Addresses, AddressData{AddressLines: lines, Type: a.Type})
	}
	out.URLs = append(out.URLs, c.URLs...)
	return out
}

func emailData(e content.Email) EmailData {
	return EmailData{Address: e.Address, Subject: e.Subject, Body: e.Body, Type: e.Kind}
}

func phoneData(p content.Phone) PhoneData {
	return PhoneData{Number: p.Number, Type: p.Kind}
}
