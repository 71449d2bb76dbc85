// Package content models the typed payload carried by a decoded barcode and
// classifies raw barcode text into one of those payloads.
package content

// Type tags the kind of payload a barcode carries. Values are the integer
// codes exchanged with the host.
type Type int

const (
	TypeUnknown        Type = 0
	TypeContactInfo    Type = 1
	TypeEmail          Type = 2
	TypeISBN           Type = 3
	TypePhone          Type = 4
	TypeProduct        Type = 5
	TypeSMS            Type = 6
	TypeText           Type = 7
	TypeURL            Type = 8
	TypeWiFi           Type = 9
	TypeGeoCoordinates Type = 10
	TypeCalendarEvent  Type = 11
	TypeDriversLicense Type = 12
)

func (t Type) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeContactInfo:
		return "contactInfo"
	case TypeEmail:
		return "email"
	case TypeISBN:
		return "isbn"
	case TypePhone:
		return "phone"
	case TypeProduct:
		return "product"
	case TypeSMS:
		return "sms"
	case TypeText:
		return "text"
	case TypeURL:
		return "url"
	case TypeWiFi:
		return "wifi"
	case TypeGeoCoordinates:
		return "geoCoordinates"
	case TypeCalendarEvent:
		return "calendarEvent"
	case TypeDriversLicense:
		return "driversLicense"
	default:
		return "invalid"
	}
}

// Symbology is the symbology family Classify needs to tell apart payloads
// that look alike.
type Symbology int

const (
	SymbologyOther Symbology = iota
	// SymbologyRetail covers EAN and UPC, which carry a GTIN.
	SymbologyRetail
	SymbologyPDF417
)

// Payload is the sealed sum of every payload shape. Only types in this
// package implement it.
type Payload interface {
	Type() Type
	isPayload()
}

// Text carries the raw string for unknown, plain text and ISBN payloads.
type Text struct {
	Kind  Type
	Value string
}

// PersonName is a structured contact name.
type PersonName struct {
	FormattedName string `json:"formattedName,omitempty" yaml:"formattedName,omitempty"`
	First         string `json:"first,omitempty" yaml:"first,omitempty"`
	Last          string `json:"last,omitempty" yaml:"last,omitempty"`
	Middle        string `json:"middle,omitempty" yaml:"middle,omitempty"`
	Prefix        string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix        string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Pronunciation string `json:"pronunciation,omitempty" yaml:"pronunciation,omitempty"`
}

// Address kinds shared by contact addresses and e-mail addresses.
const (
	AddressUnknown = 0
	AddressWork    = 1
	AddressHome    = 2
)

// Phone kinds.
const (
	PhoneUnknown = 0
	PhoneWork    = 1
	PhoneHome    = 2
	PhoneFax     = 3
	PhoneMobile  = 4
)

// Wi-Fi encryption kinds.
const (
	EncryptionOpen = 1
	EncryptionWPA  = 2
	EncryptionWEP  = 3
)

// Address is a postal address split into display lines.
type Address struct {
	AddressLines []string `json:"addressLines" yaml:"addressLines"`
	Type         int      `json:"type" yaml:"type"`
}

// ContactInfo is a vCard or MECARD contact.
type ContactInfo struct {
	Name         PersonName
	Organization string
	Title        string
	Phones       []Phone
	Emails       []Email
	Addresses    []Address
	URLs         []string
}

// Email is a mail address with optional prefilled subject and body.
type Email struct {
	Address string `json:"address" yaml:"address"`
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Body    string `json:"body,omitempty" yaml:"body,omitempty"`
	Kind    int    `json:"type" yaml:"type"`
}

// Phone is a telephone number.
type Phone struct {
	Number string `json:"number" yaml:"number"`
	Kind   int    `json:"type" yaml:"type"`
}

// SMS is a prefilled text message.
type SMS struct {
	PhoneNumber string
	Message     string
}

// URL is a bookmark.
type URL struct {
	Title string
	URL   string
}

// WiFi holds network credentials.
type WiFi struct {
	SSID           string
	Password       string
	EncryptionType int
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// CalendarEvent is a single iCalendar VEVENT. Start and End are RFC 3339
// when the source value could be parsed, otherwise the source value verbatim.
type CalendarEvent struct {
	Summary     string
	Description string
	Location    string
	Organizer   string
	Status      string
	Start       string
	End         string
}

// DriversLicense holds the AAMVA data elements of an identity card.
type DriversLicense struct {
	DocumentType   string
	FirstName      string
	MiddleName     string
	LastName       string
	Gender         string
	AddressStreet  string
	AddressCity    string
	AddressState   string
	AddressZip     string
	LicenseNumber  string
	IssueDate      string
	ExpiryDate     string
	BirthDate      string
	IssuingCountry string
}

// Product is a retail GTIN that is not an ISBN.
type Product struct {
	Value string
}

func (p Text) Type() Type         { return p.Kind }
func (ContactInfo) Type() Type    { return TypeContactInfo }
func (Email) Type() Type          { return TypeEmail }
func (Phone) Type() Type          { return TypePhone }
func (SMS) Type() Type            { return TypeSMS }
func (URL) Type() Type            { return TypeURL }
func (WiFi) Type() Type           { return TypeWiFi }
func (GeoPoint) Type() Type       { return TypeGeoCoordinates }
func (CalendarEvent) Type() Type  { return TypeCalendarEvent }
func (DriversLicense) Type() Type { return TypeDriversLicense }
func (Product) Type() Type        { return TypeProduct }
func (Text) isPayload()           {}
func (ContactInfo) isPayload()    {}
func (Email) isPayload()          {}
func (Phone) isPayload()          {}
func (SMS) isPayload()            {}
func (URL) isPayload()            {}
func (WiFi) isPayload()           {}
func (GeoPoint) isPayload()       {}
func (CalendarEvent) isPayload()  {}
func (DriversLicense) isPayload() {}
func (Product) isPayload()        {}
