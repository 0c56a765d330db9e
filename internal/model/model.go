package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutputLanguage selects the script the service answers in.
type OutputLanguage string

const (
	LanguageEnglish    OutputLanguage = "ENGLISH"
	LanguageBoth       OutputLanguage = "BOTH"
	LanguageLocalRoman OutputLanguage = "LOCAL_ROMAN"
	LanguageLocal      OutputLanguage = "LOCAL"
)

// ParseOutputLanguage accepts any casing of the four known languages.
func ParseOutputLanguage(s string) (OutputLanguage, error) {
	switch l := OutputLanguage(strings.ToUpper(strings.TrimSpace(s))); l {
	case LanguageEnglish, LanguageBoth, LanguageLocalRoman, LanguageLocal:
		return l, nil
	case "":
		return LanguageEnglish, nil
	}
	return "", fmt.Errorf("unknown output language %q", s)
}

// AddressRequest is the input to GetAddressInfo. Callers build it once and
// pass it by value; nothing downstream modifies it.
type AddressRequest struct {
	Address1           string         `json:"Address1,omitempty" yaml:"address1"`
	Address2           string         `json:"Address2,omitempty" yaml:"address2"`
	Address3           string         `json:"Address3,omitempty" yaml:"address3"`
	Address4           string         `json:"Address4,omitempty" yaml:"address4"`
	Address5           string         `json:"Address5,omitempty" yaml:"address5"`
	Locality           string         `json:"Locality,omitempty" yaml:"locality"`
	AdministrativeArea string         `json:"AdministrativeArea,omitempty" yaml:"administrative_area"`
	PostalCode         string         `json:"PostalCode,omitempty" yaml:"postal_code"`
	Country            string         `json:"Country,omitempty" yaml:"country"`
	OutputLanguage     OutputLanguage `json:"OutputLanguage,omitempty" yaml:"output_language"`
	LicenseKey         string         `json:"-" yaml:"-"`
	IsLive             bool           `json:"-" yaml:"-"`
	TimeoutSeconds     int            `json:"-" yaml:"timeout_seconds"`
}

// Language returns the requested output language, ENGLISH when unset.
func (r AddressRequest) Language() OutputLanguage {
	if r.OutputLanguage == "" {
		return LanguageEnglish
	}
	return r.OutputLanguage
}

// Fields returns the named wire parameters in service order, license key last.
func (r AddressRequest) Fields() []Field {
	return []Field{
		{"Address1", r.Address1},
		{"Address2", r.Address2},
		{"Address3", r.Address3},
		{"Address4", r.Address4},
		{"Address5", r.Address5},
		{"Locality", r.Locality},
		{"AdministrativeArea", r.AdministrativeArea},
		{"PostalCode", r.PostalCode},
		{"Country", r.Country},
		{"OutputLanguage", string(r.Language())},
		{"LicenseKey", r.LicenseKey},
	}
}

// Field is one named GetAddressInfo parameter.
type Field struct {
	Name  string
	Value string
}

// String renders the request with the license key masked.
func (r AddressRequest) String() string {
	key := ""
	if r.LicenseKey != "" {
		key = "****"
	}
	return fmt.Sprintf("AddressRequest: Address1=%s, Address2=%s, Address3=%s, Address4=%s, Address5=%s, "+
		"Locality=%s, AdministrativeArea=%s, PostalCode=%s, Country=%s, OutputLanguage=%s, "+
		"LicenseKey=%s, IsLive=%t, TimeoutSeconds=%d",
		r.Address1, r.Address2, r.Address3, r.Address4, r.Address5,
		r.Locality, r.AdministrativeArea, r.PostalCode, r.Country, r.Language(),
		key, r.IsLive, r.TimeoutSeconds)
}

// InformationComponent annotates one parsed element of the address.
type InformationComponent struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

func (c InformationComponent) String() string {
	return fmt.Sprintf("InformationComponent: Name=%s, Value=%s", c.Name, c.Value)
}

// Error is a service-reported error. TypeCode "3" asks the caller to try the
// other mirror.
type Error struct {
	Type     string `json:"Type"`
	TypeCode string `json:"TypeCode"`
	Desc     string `json:"Desc"`
	DescCode string `json:"DescCode"`
}

// Retryable reports whether the error is the service's failover signal.
func (e *Error) Retryable() bool {
	return e != nil && e.TypeCode == "3"
}

func (e Error) String() string {
	return fmt.Sprintf("Error: Type=%s, TypeCode=%s, Desc=%s, DescCode=%s", e.Type, e.TypeCode, e.Desc, e.DescCode)
}

// AddressInfo is the validated and corrected address.
type AddressInfo struct {
	Status                string                 `json:"Status"`
	ResolutionLevel       string                 `json:"ResolutionLevel"`
	Address1              string                 `json:"Address1"`
	Address2              string                 `json:"Address2"`
	Address3              string                 `json:"Address3"`
	Address4              string                 `json:"Address4"`
	Address5              string                 `json:"Address5"`
	Address6              string                 `json:"Address6"`
	Address7              string                 `json:"Address7"`
	Address8              string                 `json:"Address8"`
	Locality              string                 `json:"Locality"`
	AdministrativeArea    string                 `json:"AdministrativeArea"`
	PostalCode            string                 `json:"PostalCode"`
	Country               string                 `json:"Country"`
	CountryISO2           string                 `json:"CountryISO2"`
	CountryISO3           string                 `json:"CountryISO3"`
	InformationComponents []InformationComponent `json:"InformationComponents"`
}

// UnmarshalJSON leaves InformationComponents empty, never nil, when the key is
// missing or null.
func (a *AddressInfo) UnmarshalJSON(data []byte) error {
	type plain AddressInfo
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.InformationComponents == nil {
		p.InformationComponents = []InformationComponent{}
	}
	*a = AddressInfo(p)
	return nil
}

func (a AddressInfo) String() string {
	comps := make([]string, len(a.InformationComponents))
	for i, c := range a.InformationComponents {
		comps[i] = c.String()
	}
	return fmt.Sprintf("AddressInfo: Status=%s, ResolutionLevel=%s, "+
		"Address1=%s, Address2=%s, Address3=%s, Address4=%s, Address5=%s, Address6=%s, Address7=%s, Address8=%s, "+
		"Locality=%s, AdministrativeArea=%s, PostalCode=%s, Country=%s, CountryISO2=%s, CountryISO3=%s, "+
		"InformationComponents=[%s]",
		a.Status, a.ResolutionLevel,
		a.Address1, a.Address2, a.Address3, a.Address4, a.Address5, a.Address6, a.Address7, a.Address8,
		a.Locality, a.AdministrativeArea, a.PostalCode, a.Country, a.CountryISO2, a.CountryISO3,
		strings.Join(comps, ", "))
}

// AddressInfoResponse normally carries exactly one of AddressInfo or Error,
// but the service does not guarantee it.
type AddressInfoResponse struct {
	AddressInfo *AddressInfo `json:"AddressInfo,omitempty"`
	Error       *Error       `json:"Error,omitempty"`

	// ErrorSent is set when the payload had an Error element at all, even a
	// null or empty one that leaves Error nil.
	ErrorSent bool `json:"-"`
}

// UnmarshalJSON reads a null or empty Error object as no Error, recording its
// presence in ErrorSent.
func (r *AddressInfoResponse) UnmarshalJSON(data []byte) error {
	var p struct {
		AddressInfo *AddressInfo    `json:"AddressInfo"`
		Error       json.RawMessage `json:"Error"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	out := AddressInfoResponse{AddressInfo: p.AddressInfo, ErrorSent: len(p.Error) > 0}
	if out.ErrorSent && string(p.Error) != "null" {
		var e Error
		if err := json.Unmarshal(p.Error, &e); err != nil {
			return err
		}
		if e != (Error{}) {
			out.Error = &e
		}
	}
	*r = out
	return nil
}

func (r AddressInfoResponse) String() string {
	info, e := "None", "None"
	if r.AddressInfo != nil {
		info = r.AddressInfo.String()
	}
	if r.Error != nil {
		e = r.Error.String()
	}
	return fmt.Sprintf("AddressInfoResponse: AddressInfo=%s, Error=%s", info, e)
}
