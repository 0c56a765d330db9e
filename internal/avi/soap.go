package avi

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/akl7777777/avi-intl/internal/model"
)

const (
	wsdlPath       = "/avi/soap.svc?wsdl"
	soapOperation  = "GetAddressInfo"
	xmlContentType = "text/xml; charset=utf-8"
	maxSOAPBody    = 4 << 20

	// DefaultSOAPTimeout bounds each SOAP attempt, WSDL fetch included.
	DefaultSOAPTimeout = 15 * time.Second
)

// SOAPTransport resolves the service from its WSDL and calls GetAddressInfo
// with a SOAP 1.1 document/literal envelope.
type SOAPTransport struct {
	httpClient *http.Client
}

// NewSOAPTransport returns a transport whose HTTP client gives up after
// timeout, DefaultSOAPTimeout when zero.
func NewSOAPTransport(timeout time.Duration) *SOAPTransport {
	if timeout <= 0 {
		timeout = DefaultSOAPTimeout
	}
	return &SOAPTransport{httpClient: &http.Client{Timeout: timeout}}
}

func (t *SOAPTransport) Name() string { return "soap" }

// GetAddressInfo fetches host's WSDL, then posts req to the advertised location.
func (t *SOAPTransport) GetAddressInfo(ctx context.Context, host string, req model.AddressRequest) (*model.AddressInfoResponse, error) {
	svc, err := t.resolve(ctx, host+wsdlPath)
	if err != nil {
		return nil, err
	}
	res, err := t.call(ctx, svc, req)
	if err != nil {
		return nil, err
	}
	return res.normalize(), nil
}

func (t *SOAPTransport) resolve(ctx context.Context, wsdlURL string) (soapService, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wsdlURL, nil)
	if err != nil {
		return soapService{}, err
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return soapService{}, fmt.Errorf("fetch wsdl: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSOAPBody))
	if err != nil {
		return soapService{}, fmt.Errorf("fetch wsdl: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return soapService{}, fmt.Errorf("fetch wsdl: HTTP %d: %s", resp.StatusCode, truncate(data, 512))
	}
	return parseWSDL(data, wsdlURL, soapOperation)
}

type soapEnvelope struct {
	XMLName  xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	SOAPBody soapBody `xml:"Body"`
}

type soapBody struct {
	RequestBody []byte `xml:",innerxml"`
}

type soapParam struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type soapRequest struct {
	XMLName xml.Name
	Params  []soapParam
}

type soapResponseEnvelope struct {
	XMLName xml.Name `xml:"http://schemas.xmlsoap.org/soap/envelope/ Envelope"`
	Body    struct {
		Fault    *soapFault `xml:"http://schemas.xmlsoap.org/soap/envelope/ Fault"`
		Response *struct {
			Result *soapResult `xml:"GetAddressInfoResult"`
		} `xml:"GetAddressInfoResponse"`
	} `xml:"http://schemas.xmlsoap.org/soap/envelope/ Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

func (f *soapFault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.String)
}

func encodeRequest(svc soapService, req model.AddressRequest) ([]byte, error) {
	op := soapRequest{XMLName: xml.Name{Space: svc.Namespace, Local: soapOperation}}
	for _, f := range req.Fields() {
		op.Params = append(op.Params, soapParam{XMLName: xml.Name{Local: f.Name}, Value: f.Value})
	}
	body, err := xml.Marshal(op)
	if err != nil {
		return nil, err
	}

	buffer := new(bytes.Buffer)
	buffer.WriteString(xml.Header)
	if err := xml.NewEncoder(buffer).Encode(&soapEnvelope{SOAPBody: soapBody{RequestBody: body}}); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (t *SOAPTransport) call(ctx context.Context, svc soapService, req model.AddressRequest) (*soapResult, error) {
	payload, err := encodeRequest(svc, req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.Location, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", xmlContentType)
	httpReq.Header.Set("SOAPAction", `"`+svc.Action+`"`)

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSOAPBody))
	if err != nil {
		return nil, err
	}

	var env soapResponseEnvelope
	decodeErr := xml.Unmarshal(data, &env)
	if decodeErr == nil && env.Body.Fault != nil {
		return nil, env.Body.Fault
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(data, 512))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode soap response: %w", decodeErr)
	}
	if env.Body.Response == nil || env.Body.Response.Result == nil {
		return nil, ErrEmptyResponse
	}
	return env.Body.Response.Result, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
