package rtrpc

import (
	"errors"
	"testing"

	"github.com/function61/gokit/assert"
)

func TestMarshalCall(t *testing.T) {
	request, err := marshalCall("d.get_name", []interface{}{"HASH", int64(42), true})
	assert.Ok(t, err)

	assert.EqualString(t, string(request),
		`<?xml version="1.0"?><methodCall><methodName>d.get_name</methodName><params>`+
			`<param><value><string>HASH</string></value></param>`+
			`<param><value><i8>42</i8></value></param>`+
			`<param><value><boolean>1</boolean></value></param>`+
			`</params></methodCall>`)
}

func TestMarshalCallEscapes(t *testing.T) {
	request, err := marshalCall("load", []interface{}{"/tmp/<&>.torrent"})
	assert.Ok(t, err)

	assert.EqualString(t, string(request),
		`<?xml version="1.0"?><methodCall><methodName>load</methodName><params>`+
			`<param><value><string>/tmp/&lt;&amp;&gt;.torrent</string></value></param>`+
			`</params></methodCall>`)
}

func TestMarshalCallStructMembersSorted(t *testing.T) {
	request, err := marshalCall("x", []interface{}{map[string]interface{}{
		"params":     []interface{}{},
		"methodName": "get_up_rate",
	}})
	assert.Ok(t, err)

	assert.EqualString(t, string(request),
		`<?xml version="1.0"?><methodCall><methodName>x</methodName><params>`+
			`<param><value><struct>`+
			`<member><name>methodName</name><value><string>get_up_rate</string></value></member>`+
			`<member><name>params</name><value><array><data></data></array></value></member>`+
			`</struct></value></param>`+
			`</params></methodCall>`)
}

func TestMarshalCallUnsupportedType(t *testing.T) {
	_, err := marshalCall("x", []interface{}{struct{}{}})
	assert.EqualString(t, err.Error(), "xmlrpc encode: unsupported type struct {}")
}

func TestUnmarshalResponseScalars(t *testing.T) {
	value, err := unmarshalResponse([]byte(`<?xml version="1.0"?>
<methodResponse><params><param><value><i8>1234</i8></value></param></params></methodResponse>`))
	assert.Ok(t, err)
	assert.Assert(t, value.(int64) == 1234)

	value, err = unmarshalResponse([]byte(
		`<methodResponse><params><param><value><string>libtorrent 0.13.8</string></value></param></params></methodResponse>`))
	assert.Ok(t, err)
	assert.EqualString(t, value.(string), "libtorrent 0.13.8")

	// untyped value defaults to string
	value, err = unmarshalResponse([]byte(
		`<methodResponse><params><param><value>plain</value></param></params></methodResponse>`))
	assert.Ok(t, err)
	assert.EqualString(t, value.(string), "plain")
}

func TestUnmarshalResponseArray(t *testing.T) {
	value, err := unmarshalResponse([]byte(`<methodResponse><params><param><value><array><data>
		<value><string>HASH1</string></value>
		<value><string>HASH2</string></value>
	</data></array></value></param></params></methodResponse>`))
	assert.Ok(t, err)

	hashes := value.([]interface{})
	assert.Assert(t, len(hashes) == 2)
	assert.EqualString(t, hashes[0].(string), "HASH1")
	assert.EqualString(t, hashes[1].(string), "HASH2")
}

func TestUnmarshalResponseFault(t *testing.T) {
	_, err := unmarshalResponse([]byte(`<methodResponse><fault><value><struct>
		<member><name>faultCode</name><value><i4>-506</i4></value></member>
		<member><name>faultString</name><value><string>Method 'nope' not defined</string></value></member>
	</struct></value></fault></methodResponse>`))

	fault := &Fault{}
	assert.Assert(t, errors.As(err, &fault))
	assert.Assert(t, fault.Code == -506)
	assert.EqualString(t, fault.Message, "Method 'nope' not defined")
	assert.EqualString(t, fault.Error(), "remote fault -506: Method 'nope' not defined")
}

func TestUnmarshalResponseMalformed(t *testing.T) {
	_, err := unmarshalResponse([]byte(`this is not xml at all <<<`))
	assert.Assert(t, errors.Is(err, ErrProtocol))

	// a response must carry exactly one param
	_, err = unmarshalResponse([]byte(`<methodResponse><params></params></methodResponse>`))
	assert.Assert(t, errors.Is(err, ErrProtocol))
}

func TestDecodeMulticallEntry(t *testing.T) {
	ok, err := decodeMulticallEntry([]interface{}{int64(7)})
	assert.Ok(t, err)
	assert.Assert(t, ok.Fault == nil)
	assert.Assert(t, ok.Value.(int64) == 7)

	faulted, err := decodeMulticallEntry(map[string]interface{}{
		"faultCode":   int64(-501),
		"faultString": "Could not find info-hash.",
	})
	assert.Ok(t, err)
	assert.Assert(t, faulted.Fault != nil)
	assert.EqualString(t, faulted.Fault.Message, "Could not find info-hash.")

	_, err = decodeMulticallEntry([]interface{}{int64(1), int64(2)})
	assert.Assert(t, errors.Is(err, ErrProtocol))

	_, err = decodeMulticallEntry("bare value")
	assert.Assert(t, errors.Is(err, ErrProtocol))
}
