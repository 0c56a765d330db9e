package avi

import "github.com/akl7777777/avi-intl/internal/model"

// soapResult is the GetAddressInfoResult element as it arrives. Any element
// may be missing or marked xsi:nil; normalize turns it into the same shape the
// REST transport produces.
type soapResult struct {
	AddressInfo *soapAddressInfo `xml:"AddressInfo"`
	Error       *soapError       `xml:"Error"`
}

type soapAddressInfo struct {
	Nil                string `xml:"http://www.w3.org/2001/XMLSchema-instance nil,attr"`
	Status             string `xml:"Status"`
	ResolutionLevel    string `xml:"ResolutionLevel"`
	Address1           string `xml:"Address1"`
	Address2           string `xml:"Address2"`
	Address3           string `xml:"Address3"`
	Address4           string `xml:"Address4"`
	Address5           string `xml:"Address5"`
	Address6           string `xml:"Address6"`
	Address7           string `xml:"Address7"`
	Address8           string `xml:"Address8"`
	Locality           string `xml:"Locality"`
	AdministrativeArea string `xml:"AdministrativeArea"`
	PostalCode         string `xml:"PostalCode"`
	Country            string `xml:"Country"`
	CountryISO2        string `xml:"CountryISO2"`
	CountryISO3        string `xml:"CountryISO3"`
	// One InformationComponent element or many decode into the same slice.
	InformationComponents []soapComponent `xml:"InformationComponents>InformationComponent"`
}

type soapComponent struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

type soapError struct {
	Nil      string `xml:"http://www.w3.org/2001/XMLSchema-instance nil,attr"`
	Type     string `xml:"Type"`
	TypeCode string `xml:"TypeCode"`
	Desc     string `xml:"Desc"`
	DescCode string `xml:"DescCode"`
}

func isNil(attr string) bool {
	return attr == "true" || attr == "1"
}

func (e *soapError) absent() bool {
	return e == nil || isNil(e.Nil) || (e.Type == "" && e.TypeCode == "" && e.Desc == "" && e.DescCode == "")
}

func (r *soapResult) normalize() *model.AddressInfoResponse {
	out := &model.AddressInfoResponse{ErrorSent: r.Error != nil}
	if a := r.AddressInfo; a != nil && !isNil(a.Nil) {
		comps := make([]model.InformationComponent, 0, len(a.InformationComponents))
		for _, c := range a.InformationComponents {
			comps = append(comps, model.InformationComponent{Name: c.Name, Value: c.Value})
		}
		out.AddressInfo = &model.AddressInfo{
			Status:                a.Status,
			ResolutionLevel:       a.ResolutionLevel,
			Address1:              a.Address1,
			Address2:              a.Address2,
			Address3:              a.Address3,
			Address4:              a.Address4,
			Address5:              a.Address5,
			Address6:              a.Address6,
			Address7:              a.Address7,
			Address8:              a.Address8,
			Locality:              a.Locality,
			AdministrativeArea:    a.AdministrativeArea,
			PostalCode:            a.PostalCode,
			Country:               a.Country,
			CountryISO2:           a.CountryISO2,
			CountryISO3:           a.CountryISO3,
			InformationComponents: comps,
		}
	}
	if e := r.Error; !e.absent() {
		out.Error = &model.Error{
			Type:     e.Type,
			TypeCode: e.TypeCode,
			Desc:     e.Desc,
			DescCode: e.DescCode,
		}
	}
	return out
}
