package content

import (
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Classify inspects decoded barcode text and returns the typed payload it
// encodes. sym is the family of the symbology the text was read from: GTIN
// digits only mean ISBN or product on retail symbologies, and an AAMVA
// header only means a driver's license on PDF417.
// Classify never fails: text that matches no structured scheme is Text.
func Classify(raw string, sym Symbology) Payload {
	if raw == "" || !utf8.ValidString(raw) {
		return Text{Kind: TypeUnknown, Value: raw}
	}
	s := strings.TrimSpace(raw)

	switch {
	case hasPrefixFold(s, "WIFI:"):
		return parseWiFi(s[len("WIFI:"):])
	case hasPrefixFold(s, "BEGIN:VCARD"):
		return parseVCard(s)
	case hasPrefixFold(s, "MECARD:"):
		return parseMeCard(s[len("MECARD:"):])
	case hasPrefixFold(s, "MATMSG:"):
		return parseMatMsg(s[len("MATMSG:"):])
	case hasPrefixFold(s, "mailto:"):
		return parseMailto(s[len("mailto:"):])
	case hasPrefixFold(s, "tel:"):
		return Phone{Number: s[len("tel:"):], Kind: PhoneUnknown}
	case hasPrefixFold(s, "SMSTO:"):
		return parseSMSTo(s[len("SMSTO:"):])
	case hasPrefixFold(s, "sms:"):
		return parseSMSURI(s[len("sms:"):])
	case hasPrefixFold(s, "geo:"):
		if p, ok := parseGeo(s[len("geo:"):]); ok {
			return p
		}
		return Text{Kind: TypeText, Value: raw}
	case hasPrefixFold(s, "BEGIN:VEVENT"), hasPrefixFold(s, "BEGIN:VCALENDAR"):
		return parseVEvent(s)
	case sym == SymbologyPDF417 && isAAMVA(s):
		return parseAAMVA(s)
	case hasPrefixFold(s, "MEBKM:"):
		return parseMeBookmark(s[len("MEBKM:"):])
	case hasPrefixFold(s, "URLTO:"):
		return parseURLTo(s[len("URLTO:"):])
	case hasPrefixFold(s, "http://"), hasPrefixFold(s, "https://"):
		return URL{URL: s}
	}

	if sym == SymbologyRetail && isDigits(s) {
		if len(s) == 13 && (strings.HasPrefix(s, "978") || strings.HasPrefix(s, "979")) {
			return Text{Kind: TypeISBN, Value: raw}
		}
		return Product{Value: s}
	}
	return Text{Kind: TypeText, Value: raw}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// field is one KEY:value pair of a MECARD-style body.
type field struct {
	key   string
	value string
}

// splitFields splits a MECARD-style body ("K:v;K:v;;") into fields,
// honouring backslash escapes of ';', ':', ',' and '\'.
func splitFields(body string) []field {
	var (
		out    []field
		cur    strings.Builder
		key    string
		hasKey bool
	)
	flush := func() {
		if hasKey {
			out = append(out, field{key: strings.ToUpper(key), value: cur.String()})
		}
		cur.Reset()
		key, hasKey = "", false
	}
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			cur.WriteByte(body[i])
		case c == ':' && !hasKey:
			key, hasKey = cur.String(), true
			cur.Reset()
		case c == ';':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}

func parseWiFi(body string) Payload {
	w := WiFi{EncryptionType: EncryptionOpen}
	for _, f := range splitFields(body) {
		switch f.key {
		case "S":
			w.SSID = f.value
		case "P":
			w.Password = f.value
		case "T":
			w.EncryptionType = encryptionType(f.value)
		}
	}
	return w
}

func encryptionType(t string) int {
	switch strings.ToUpper(strings.TrimSpace(t)) {
	case "WEP":
		return EncryptionWEP
	case "WPA", "WPA2", "WPA3", "SAE", "WPA2-EAP":
		return EncryptionWPA
	default:
		return EncryptionOpen
	}
}

func parseMeCard(body string) Payload {
	var c ContactInfo
	for _, f := range splitFields(body) {
		switch f.key {
		case "N":
			last, first, found := strings.Cut(f.value, ",")
			if found {
				c.Name.Last, c.Name.First = strings.TrimSpace(last), strings.TrimSpace(first)
				c.Name.FormattedName = strings.TrimSpace(c.Name.First + " " + c.Name.Last)
			} else {
				c.Name.FormattedName = f.value
			}
		case "SOUND":
			c.Name.Pronunciation = f.value
		case "TEL", "TEL-AV":
			c.Phones = append(c.Phones, Phone{Number: f.value, Kind: PhoneUnknown})
		case "EMAIL":
			c.Emails = append(c.Emails, Email{Address: f.value, Kind: AddressUnknown})
		case "ADR":
			c.Addresses = append(c.Addresses, Address{AddressLines: []string{f.value}, Type: AddressUnknown})
		case "URL":
			c.URLs = append(c.URLs, f.value)
		case "ORG":
			c.Organization = f.value
		}
	}
	return c
}

// contentLine is one unfolded line of a vCard or iCalendar object.
type contentLine struct {
	name   string
	params map[string]string
	value  string
}

// contentLines unfolds continuation lines and splits NAME;PARAM=x:VALUE.
func contentLines(s string) []contentLine {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n ", "")
	s = strings.ReplaceAll(s, "\n\t", "")

	var out []contentLine
	for _, line := range strings.Split(s, "\n") {
		head, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		parts := strings.Split(head, ";")
		cl := contentLine{name: strings.ToUpper(strings.TrimSpace(parts[0])), params: map[string]string{}, value: value}
		for _, p := range parts[1:] {
			k, v, found := strings.Cut(p, "=")
			if !found {
				// vCard 2.1 bare parameters such as TEL;WORK:
				cl.params["TYPE"] = strings.ToUpper(strings.TrimSpace(cl.params["TYPE"] + "," + k))
				continue
			}
			cl.params[strings.ToUpper(k)] = strings.ToUpper(v)
		}
		out = append(out, cl)
	}
	return out
}

func unescapeText(v string) string {
	r := strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)
	return r.Replace(v)
}

func parseVCard(s string) Payload {
	var c ContactInfo
	for _, l := range contentLines(s) {
		switch l.name {
		case "FN":
			c.Name.FormattedName = unescapeText(l.value)
		case "N":
			parts := strings.Split(l.value, ";")
			get := func(i int) string {
				if i < len(parts) {
					return unescapeText(parts[i])
				}
				return ""
			}
			c.Name.Last, c.Name.First, c.Name.Middle = get(0), get(1), get(2)
			c.Name.Prefix, c.Name.Suffix = get(3), get(4)
		case "ORG":
			c.Organization = unescapeText(strings.ReplaceAll(l.value, ";", " "))
		case "TITLE":
			c.Title = unescapeText(l.value)
		case "TEL":
			c.Phones = append(c.Phones, Phone{Number: strings.TrimPrefix(l.value, "tel:"), Kind: phoneKind(l.params["TYPE"])})
		case "EMAIL":
			c.Emails = append(c.Emails, Email{Address: l.value, Kind: addressKind(l.params["TYPE"])})
		case "ADR":
			var lines []string
			for _, p := range strings.Split(l.value, ";") {
				if p = strings.TrimSpace(unescapeText(p)); p != "" {
					lines = append(lines, p)
				}
			}
			c.Addresses = append(c.Addresses, Address{AddressLines: lines, Type: addressKind(l.params["TYPE"])})
		case "URL":
			c.URLs = append(c.URLs, l.value)
		}
	}
	if c.Name.FormattedName == "" {
		c.Name.FormattedName = strings.TrimSpace(strings.Join([]string{c.Name.Prefix, c.Name.First, c.Name.Middle, c.Name.Last, c.Name.Suffix}, " "))
		c.Name.FormattedName = strings.Join(strings.Fields(c.Name.FormattedName), " ")
	}
	return c
}

func phoneKind(types string) int {
	switch {
	case strings.Contains(types, "FAX"):
		return PhoneFax
	case strings.Contains(types, "CELL"), strings.Contains(types, "MOBILE"):
		return PhoneMobile
	case strings.Contains(types, "WORK"):
		return PhoneWork
	case strings.Contains(types, "HOME"):
		return PhoneHome
	default:
		return PhoneUnknown
	}
}

func addressKind(types string) int {
	switch {
	case strings.Contains(types, "WORK"):
		return AddressWork
	case strings.Contains(types, "HOME"):
		return AddressHome
	default:
		return AddressUnknown
	}
}

func parseMatMsg(body string) Payload {
	var e Email
	for _, f := range splitFields(body) {
		switch f.key {
		case "TO":
			e.Address = f.value
		case "SUB":
			e.Subject = f.value
		case "BODY":
			e.Body = f.value
		}
	}
	return e
}

func parseMailto(rest string) Payload {
	addr, query, _ := strings.Cut(rest, "?")
	e := Email{Address: addr}
	if unescaped, err := url.PathUnescape(addr); err == nil {
		e.Address = unescaped
	}
	if q, err := url.ParseQuery(query); err == nil {
		e.Subject = q.Get("subject")
		e.Body = q.Get("body")
	}
	return e
}

func parseSMSTo(rest string) Payload {
	number, message, _ := strings.Cut(rest, ":")
	return SMS{PhoneNumber: number, Message: message}
}

func parseSMSURI(rest string) Payload {
	number, query, _ := strings.Cut(rest, "?")
	sms := SMS{PhoneNumber: number}
	if q, err := url.ParseQuery(query); err == nil {
		sms.Message = q.Get("body")
	}
	return sms
}

func parseGeo(rest string) (GeoPoint, bool) {
	coords, _, _ := strings.Cut(rest, "?")
	parts := strings.Split(coords, ",")
	if len(parts) < 2 {
		return GeoPoint{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return GeoPoint{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: lat, Lng: lng}, true
}

func parseVEvent(s string) Payload {
	var ev CalendarEvent
	for _, l := range contentLines(s) {
		switch l.name {
		case "SUMMARY":
			ev.Summary = unescapeText(l.value)
		case "DESCRIPTION":
			ev.Description = unescapeText(l.value)
		case "LOCATION":
			ev.Location = unescapeText(l.value)
		case "ORGANIZER":
			ev.Organizer = strings.TrimPrefix(strings.TrimPrefix(l.value, "mailto:"), "MAILTO:")
		case "STATUS":
			ev.Status = l.value
		case "DTSTART":
			ev.Start = calendarTime(l.value)
		case "DTEND":
			ev.End = calendarTime(l.value)
		}
	}
	return ev
}

var calendarLayouts = []string{"20060102T150405Z", "20060102T150405", "20060102"}

func calendarTime(v string) string {
	v = strings.TrimSpace(v)
	for _, layout := range calendarLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(time.RFC3339)
		}
	}
	return v
}

func parseMeBookmark(body string) Payload {
	var u URL
	for _, f := range splitFields(body) {
		switch f.key {
		case "TITLE":
			u.Title = f.value
		case "URL":
			u.URL = f.value
		}
	}
	return u
}

// parseURLTo handles "URLTO:title:url"; the title may be empty.
func parseURLTo(rest string) Payload {
	title, link, found := strings.Cut(rest, ":")
	if !found {
		return URL{URL: rest}
	}
	if hasPrefixFold(link, "//") {
		// no title: "URLTO:http://..." was split at the scheme
		return URL{URL: rest}
	}
	return URL{Title: title, URL: link}
}
