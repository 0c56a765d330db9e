package avi

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// soapService is what a SOAP call needs from the WSDL.
type soapService struct {
	Location  string
	Namespace string
	Action    string
}

type wsdlDefinitions struct {
	XMLName         xml.Name      `xml:"http://schemas.xmlsoap.org/wsdl/ definitions"`
	TargetNamespace string        `xml:"targetNamespace,attr"`
	Bindings        []wsdlBinding `xml:"http://schemas.xmlsoap.org/wsdl/ binding"`
	Services        []wsdlService `xml:"http://schemas.xmlsoap.org/wsdl/ service"`
}

type wsdlBinding struct {
	Name       string          `xml:"name,attr"`
	Operations []wsdlOperation `xml:"http://schemas.xmlsoap.org/wsdl/ operation"`
}

type wsdlOperation struct {
	Name string `xml:"name,attr"`
	SOAP struct {
		Action string `xml:"soapAction,attr"`
	} `xml:"http://schemas.xmlsoap.org/wsdl/soap/ operation"`
}

type wsdlService struct {
	Name  string     `xml:"name,attr"`
	Ports []wsdlPort `xml:"http://schemas.xmlsoap.org/wsdl/ port"`
}

type wsdlPort struct {
	Name    string `xml:"name,attr"`
	Binding string `xml:"binding,attr"`
	Address struct {
		Location string `xml:"location,attr"`
	} `xml:"http://schemas.xmlsoap.org/wsdl/soap/ address"`
}

// parseWSDL picks the first SOAP 1.1 port and the soapAction of operation on
// its binding. A relative location is resolved against wsdlURL.
func parseWSDL(data []byte, wsdlURL, operation string) (soapService, error) {
	var defs wsdlDefinitions
	if err := xml.Unmarshal(data, &defs); err != nil {
		return soapService{}, fmt.Errorf("malformed wsdl: %w", err)
	}

	var port *wsdlPort
	for i := range defs.Services {
		for j := range defs.Services[i].Ports {
			if defs.Services[i].Ports[j].Address.Location != "" {
				port = &defs.Services[i].Ports[j]
				break
			}
		}
		if port != nil {
			break
		}
	}
	if port == nil {
		return soapService{}, errors.New("malformed wsdl: no SOAP 1.1 service address")
	}

	location, err := resolveLocation(wsdlURL, port.Address.Location)
	if err != nil {
		return soapService{}, fmt.Errorf("malformed wsdl: %w", err)
	}

	svc := soapService{
		Location:  location,
		Namespace: defs.TargetNamespace,
	}

	binding := port.Binding
	if i := strings.LastIndex(binding, ":"); i >= 0 {
		binding = binding[i+1:]
	}
	for _, b := range defs.Bindings {
		if b.Name != binding {
			continue
		}
		for _, op := range b.Operations {
			if op.Name == operation {
				svc.Action = op.SOAP.Action
			}
		}
	}
	if svc.Action == "" {
		svc.Action = strings.TrimRight(svc.Namespace, "/") + "/" + operation
	}
	return svc, nil
}

func resolveLocation(base, location string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	l, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(l).String(), nil
}
