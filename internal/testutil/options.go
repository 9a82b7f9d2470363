package testutil

// registrarData holds one registrar row and its optional count row.
type registrarData struct {
	id       any
	name     string
	rdapURL  string
	category string
	domains  any
	noCount  bool
}

func defaultRegistrar(id int, name, rdapURL string) registrarData {
	return registrarData{id: id, name: name, rdapURL: rdapURL}
}

// RegistrarOption configures a registrar row.
type RegistrarOption func(*registrarData)

// Category sets the List sheet category cell.
func Category(c string) RegistrarOption {
	return func(r *registrarData) { r.category = c }
}

// Domains sets the Domain count sheet value.
func Domains(n int64) RegistrarOption {
	return func(r *registrarData) { r.domains = n }
}

// RawDomains writes count as-is, for malformed values such as "abc".
func RawDomains(count string) RegistrarOption {
	return func(r *registrarData) { r.domains = count }
}

// RawID writes the IANA id cell as-is, e.g. "3.0" or "".
func RawID(id string) RegistrarOption {
	return func(r *registrarData) { r.id = id }
}

// NoCount leaves the registrar out of the Domain count sheet.
func NoCount() RegistrarOption {
	return func(r *registrarData) { r.noCount = true }
}
