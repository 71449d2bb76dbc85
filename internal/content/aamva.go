package content

import "strings"

// isAAMVA reports whether s carries the AAMVA compliance indicator and file type
// found at the start of North American driver's license PDF417 symbols.
func isAAMVA(s string) bool {
	if !strings.HasPrefix(s, "@") {
		return false
	}
	head := s
	if len(head) > 32 {
		head = head[:32]
	}
	return strings.Contains(head, "ANSI ") || strings.Contains(head, "AAMVA")
}

// parseAAMVA extracts the data elements of the first subfile. Each element is
// a three letter identifier followed by its value, one element per line.
func parseAAMVA(s string) Payload {
	dl := DriversLicense{}
	s = strings.ReplaceAll(s, "\r", "\n")
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "ANSI ") || strings.Contains(line, "AAMVA") {
			if dl.DocumentType == "" {
				dl.DocumentType = headerDocumentType(line)
			}
			// the first element often trails the header after the subfile designator
			if i := strings.LastIndex(line, "DLDAQ"); i >= 0 {
				line = line[i+2:]
			} else if i := strings.LastIndex(line, "IDDAQ"); i >= 0 {
				line = line[i+2:]
			} else {
				continue
			}
		}
		if len(line) > 5 && (strings.HasPrefix(line, "DL") || strings.HasPrefix(line, "ID")) && line[2] == 'D' {
			if dl.DocumentType == "" {
				dl.DocumentType = line[:2]
			}
			line = line[2:]
		}
		if len(line) < 4 || line[0] != 'D' {
			continue
		}
		setElement(&dl, line[:3], strings.TrimSpace(line[3:]))
	}
	return dl
}

func headerDocumentType(header string) string {
	switch {
	case strings.Contains(header, "DL"):
		return "DL"
	case strings.Contains(header, "ID"):
		return "ID"
	default:
		return ""
	}
}

func setElement(dl *DriversLicense, code, value string) {
	switch code {
	case "DCS", "DAB":
		dl.LastName = value
	case "DAC", "DCT":
		if code == "DCT" {
			// pre-2009 cards put all given names in DCT
			first, middle, _ := strings.Cut(value, ",")
			if dl.FirstName == "" {
				dl.FirstName = strings.TrimSpace(first)
			}
			if dl.MiddleName == "" {
				dl.MiddleName = strings.TrimSpace(middle)
			}
			return
		}
		dl.FirstName = value
	case "DAD":
		dl.MiddleName = value
	case "DBC":
		dl.Gender = gender(value)
	case "DAG":
		dl.AddressStreet = value
	case "DAI":
		dl.AddressCity = value
	case "DAJ":
		dl.AddressState = value
	case "DAK":
		dl.AddressZip = value
	case "DAQ":
		dl.LicenseNumber = value
	case "DBD":
		dl.IssueDate = value
	case "DBA":
		dl.ExpiryDate = value
	case "DBB":
		dl.BirthDate = value
	case "DCG":
		dl.IssuingCountry = value
	}
}

func gender(v string) string {
	switch strings.ToUpper(v) {
	case "1", "M":
		return "M"
	case "2", "F":
		return "F"
	default:
		return v
	}
}
