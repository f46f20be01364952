package rtrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// XML-RPC wire codec. Covers the subset rtorrent speaks: scalars, arrays, structs
// and the system.multicall envelope. Decoded values come back as string, int64,
// bool, float64, []byte, []interface{} or map[string]interface{}.

func marshalCall(method string, args []interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteString(`<?xml version="1.0"?><methodCall><methodName>`)
	if err := xml.EscapeText(buf, []byte(method)); err != nil {
		return nil, err
	}
	buf.WriteString(`</methodName><params>`)

	for _, arg := range args {
		buf.WriteString(`<param>`)
		if err := encodeValue(buf, arg); err != nil {
			return nil, err
		}
		buf.WriteString(`</param>`)
	}

	buf.WriteString(`</params></methodCall>`)

	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, value interface{}) error {
	buf.WriteString(`<value>`)

	switch v := value.(type) {
	case string:
		buf.WriteString(`<string>`)
		if err := xml.EscapeText(buf, []byte(v)); err != nil {
			return err
		}
		buf.WriteString(`</string>`)
	case int:
		fmt.Fprintf(buf, `<int>%d</int>`, v)
	case int32:
		fmt.Fprintf(buf, `<int>%d</int>`, v)
	case int64:
		fmt.Fprintf(buf, `<i8>%d</i8>`, v)
	case bool:
		if v {
			buf.WriteString(`<boolean>1</boolean>`)
		} else {
			buf.WriteString(`<boolean>0</boolean>`)
		}
	case float64:
		fmt.Fprintf(buf, `<double>%g</double>`, v)
	case []byte:
		buf.WriteString(`<base64>`)
		buf.WriteString(base64.StdEncoding.EncodeToString(v))
		buf.WriteString(`</base64>`)
	case []interface{}:
		buf.WriteString(`<array><data>`)
		for _, item := range v {
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteString(`</data></array>`)
	case map[string]interface{}:
		// sorted for deterministic output
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)

		buf.WriteString(`<struct>`)
		for _, name := range names {
			buf.WriteString(`<member><name>`)
			if err := xml.EscapeText(buf, []byte(name)); err != nil {
				return err
			}
			buf.WriteString(`</name>`)
			if err := encodeValue(buf, v[name]); err != nil {
				return err
			}
			buf.WriteString(`</member>`)
		}
		buf.WriteString(`</struct>`)
	default:
		return fmt.Errorf("xmlrpc encode: unsupported type %T", value)
	}

	buf.WriteString(`</value>`)

	return nil
}

type xmlValue struct {
	Str     *string    `xml:"string"`
	I4      *string    `xml:"i4"`
	Int     *string    `xml:"int"`
	I8      *string    `xml:"i8"`
	Boolean *string    `xml:"boolean"`
	Double  *string    `xml:"double"`
	Base64  *string    `xml:"base64"`
	Array   *xmlArray  `xml:"array"`
	Struct  *xmlStruct `xml:"struct"`
	Text    string     `xml:",chardata"` // untyped <value>foo</value> means string
}

type xmlArray struct {
	Values []xmlValue `xml:"data>value"`
}

type xmlStruct struct {
	Members []xmlMember `xml:"member"`
}

type xmlMember struct {
	Name  string   `xml:"name"`
	Value xmlValue `xml:"value"`
}

type xmlMethodResponse struct {
	XMLName xml.Name   `xml:"methodResponse"`
	Params  []xmlValue `xml:"params>param>value"`
	Fault   *xmlValue  `xml:"fault>value"`
}

// returns the single response value. A remote-reported fault comes back as *Fault
// (which is an error); framing problems come back wrapped in ErrProtocol.
func unmarshalResponse(body []byte) (interface{}, error) {
	response := xmlMethodResponse{}
	if err := xml.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	if response.Fault != nil {
		fault, err := decodeFault(*response.Fault)
		if err != nil {
			return nil, err
		}

		return nil, fault
	}

	if len(response.Params) != 1 {
		return nil, fmt.Errorf("%w: expected 1 response param; got %d", ErrProtocol, len(response.Params))
	}

	return decodeValue(response.Params[0])
}

func decodeValue(raw xmlValue) (interface{}, error) {
	parseInt := func(text string) (interface{}, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad integer: %v", ErrProtocol, err)
		}
		return n, nil
	}

	switch {
	case raw.Str != nil:
		return *raw.Str, nil
	case raw.I4 != nil:
		return parseInt(*raw.I4)
	case raw.Int != nil:
		return parseInt(*raw.Int)
	case raw.I8 != nil:
		return parseInt(*raw.I8)
	case raw.Boolean != nil:
		switch strings.TrimSpace(*raw.Boolean) {
		case "1":
			return true, nil
		case "0":
			return false, nil
		default:
			return nil, fmt.Errorf("%w: bad boolean: %q", ErrProtocol, *raw.Boolean)
		}
	case raw.Double != nil:
		f, err := strconv.ParseFloat(strings.TrimSpace(*raw.Double), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad double: %v", ErrProtocol, err)
		}
		return f, nil
	case raw.Base64 != nil:
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(*raw.Base64))
		if err != nil {
			return nil, fmt.Errorf("%w: bad base64: %v", ErrProtocol, err)
		}
		return decoded, nil
	case raw.Array != nil:
		items := make([]interface{}, 0, len(raw.Array.Values))
		for _, itemRaw := range raw.Array.Values {
			item, err := decodeValue(itemRaw)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case raw.Struct != nil:
		members := map[string]interface{}{}
		for _, member := range raw.Struct.Members {
			value, err := decodeValue(member.Value)
			if err != nil {
				return nil, err
			}
			members[member.Name] = value
		}
		return members, nil
	default:
		return raw.Text, nil
	}
}

func decodeFault(raw xmlValue) (*Fault, error) {
	decoded, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}

	members, isStruct := decoded.(map[string]interface{})
	if !isStruct {
		return nil, fmt.Errorf("%w: fault is not a struct", ErrProtocol)
	}

	code, codeOk := members["faultCode"].(int64)
	message, messageOk := members["faultString"].(string)
	if !codeOk || !messageOk {
		return nil, fmt.Errorf("%w: fault struct missing faultCode/faultString", ErrProtocol)
	}

	return &Fault{Code: int(code), Message: message}, nil
}
