package rtrpc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/Arkiver2/pyroTorrent/pkg/rtconfig"
	"github.com/function61/gokit/assert"
	"github.com/function61/gokit/logex"
)

func TestInvokeOverHTTP(t *testing.T) {
	requests := []string{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.Ok(t, err)
		requests = append(requests, string(body))

		fmt.Fprint(w, `<methodResponse><params><param><value><i8>31337</i8></value></param></params></methodResponse>`)
	}))
	defer server.Close()

	conn, err := New(httpTarget(t, server.URL), logex.Discard)
	assert.Ok(t, err)

	value, err := conn.Invoke(context.Background(), "get_up_rate")
	assert.Ok(t, err)
	assert.Assert(t, value.(int64) == 31337)

	assert.Assert(t, len(requests) == 1)
	assert.EqualString(t, requests[0],
		`<?xml version="1.0"?><methodCall><methodName>get_up_rate</methodName><params></params></methodCall>`)
}

func TestInvokeBatchOverHTTP(t *testing.T) {
	roundTrips := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roundTrips++

		// first entry succeeds, second entry faults - and must not poison the first
		fmt.Fprint(w, `<methodResponse><params><param><value><array><data>
			<value><array><data><value><string>ubuntu.iso</string></value></data></array></value>
			<value><struct>
				<member><name>faultCode</name><value><i4>-501</i4></value></member>
				<member><name>faultString</name><value><string>Could not find info-hash.</string></value></member>
			</struct></value>
		</data></array></value></param></params></methodResponse>`)
	}))
	defer server.Close()

	conn, err := New(httpTarget(t, server.URL), logex.Discard)
	assert.Ok(t, err)

	results, err := conn.InvokeBatch(context.Background(), []Call{
		{Method: "d.get_name", Args: []interface{}{"HASH1"}},
		{Method: "d.get_name", Args: []interface{}{"BOGUS"}},
	})
	assert.Ok(t, err)

	assert.Assert(t, roundTrips == 1)
	assert.Assert(t, len(results) == 2)
	assert.EqualString(t, results[0].Value.(string), "ubuntu.iso")
	assert.Assert(t, results[0].Fault == nil)
	assert.Assert(t, results[1].Fault != nil)
	assert.Assert(t, results[1].Fault.Code == -501)
}

func TestInvokeTransportError(t *testing.T) {
	// nothing listens here
	target := rtconfig.RemoteTarget{
		Name:      "downbox",
		Transport: rtconfig.TransportHTTP,
		Host:      "127.0.0.1",
		Port:      1, // reserved port, connection refused
	}

	conn, err := New(target, logex.Discard)
	assert.Ok(t, err)

	_, err = conn.Invoke(context.Background(), "get_up_rate")
	assert.Assert(t, errors.Is(err, ErrTransport))
}

func TestInvokeOverSCGI(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	assert.Ok(t, err)
	defer listener.Close()

	received := make(chan []byte, 1)

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		body, err := readScgiRequest(conn)
		if err != nil {
			return
		}
		received <- body

		fmt.Fprint(conn, "Status: 200 OK\r\nContent-Type: text/xml\r\n\r\n"+
			`<methodResponse><params><param><value><string>0.13.8</string></value></param></params></methodResponse>`)
	}()

	host, portStr, err := net.SplitHostPort(listener.Addr().String())
	assert.Ok(t, err)
	port, err := strconv.Atoi(portStr)
	assert.Ok(t, err)

	conn, err := New(rtconfig.RemoteTarget{
		Name:      "sheeva",
		Transport: rtconfig.TransportSCGI,
		Host:      host,
		Port:      port,
	}, logex.Discard)
	assert.Ok(t, err)

	value, err := conn.Invoke(context.Background(), "system.library_version")
	assert.Ok(t, err)
	assert.EqualString(t, value.(string), "0.13.8")

	request := <-received
	assert.EqualString(t, string(request),
		`<?xml version="1.0"?><methodCall><methodName>system.library_version</methodName><params></params></methodCall>`)
}

func TestScgiEncode(t *testing.T) {
	framed := scgiEncode([]byte("<xml/>"))

	assert.EqualString(t, string(framed), "24:CONTENT_LENGTH\x006\x00SCGI\x001\x00,<xml/>")
}

func TestScgiResponseBody(t *testing.T) {
	body, err := scgiResponseBody([]byte("Status: 200 OK\r\nContent-Type: text/xml\r\n\r\n<xml/>"))
	assert.Ok(t, err)
	assert.EqualString(t, string(body), "<xml/>")

	// some servers terminate headers with bare newlines
	body, err = scgiResponseBody([]byte("Content-Type: text/xml\n\n<xml/>"))
	assert.Ok(t, err)
	assert.EqualString(t, string(body), "<xml/>")

	_, err = scgiResponseBody([]byte("no separator here"))
	assert.Assert(t, errors.Is(err, ErrProtocol))
}

// reads one framed SCGI request off the wire, returning its body
func readScgiRequest(conn net.Conn) ([]byte, error) {
	reader := bufio.NewReader(conn)

	headerLenStr, err := reader.ReadString(':')
	if err != nil {
		return nil, err
	}

	headerLen, err := strconv.Atoi(headerLenStr[:len(headerLenStr)-1])
	if err != nil {
		return nil, err
	}

	headerBytes := make([]byte, headerLen+1) // +1 for netstring's trailing comma
	if _, err := io.ReadFull(reader, headerBytes); err != nil {
		return nil, err
	}

	contentLength := 0
	fields := bytes.Split(headerBytes[:headerLen], []byte{0})
	for i := 0; i+1 < len(fields); i += 2 {
		if string(fields[i]) == "CONTENT_LENGTH" {
			contentLength, err = strconv.Atoi(string(fields[i+1]))
			if err != nil {
				return nil, err
			}
		}
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, err
	}

	return body, nil
}

func httpTarget(t *testing.T, serverURL string) rtconfig.RemoteTarget {
	parsed, err := url.Parse(serverURL)
	assert.Ok(t, err)

	port, err := strconv.Atoi(parsed.Port())
	assert.Ok(t, err)

	return rtconfig.RemoteTarget{
		Name:      "testtarget",
		Transport: rtconfig.TransportHTTP,
		Host:      parsed.Hostname(),
		Port:      port,
		RPCPath:   "/RPC2",
	}
}
