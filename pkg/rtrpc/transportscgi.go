package rtrpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/Arkiver2/pyroTorrent/pkg/rtconfig"
)

// XML-RPC carried over SCGI, straight to the rtorrent daemon without a web server in
// between. One short-lived connection per round trip; rtorrent closes the socket
// after responding.
type scgiTransport struct {
	network string // "tcp" or "unix"
	address string
}

const scgiTimeout = 10 * time.Second

func newScgiTransport(target rtconfig.RemoteTarget) *scgiTransport {
	if target.UnixSocket != "" {
		return &scgiTransport{network: "unix", address: target.UnixSocket}
	}

	return &scgiTransport{network: "tcp", address: target.Addr()}
}

func (t *scgiTransport) roundTrip(ctx context.Context, request []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, scgiTimeout)
	defer cancel()

	dialer := net.Dialer{}

	conn, err := dialer.DialContext(ctx, t.network, t.address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}

	if _, err := conn.Write(scgiEncode(request)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	raw, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	return scgiResponseBody(raw)
}

// SCGI request framing: netstring-wrapped NUL-separated headers, then the body.
// CONTENT_LENGTH must come first and SCGI=1 must be present.
func scgiEncode(body []byte) []byte {
	headers := &bytes.Buffer{}
	writeHeader := func(key string, value string) {
		headers.WriteString(key)
		headers.WriteByte(0)
		headers.WriteString(value)
		headers.WriteByte(0)
	}

	writeHeader("CONTENT_LENGTH", strconv.Itoa(len(body)))
	writeHeader("SCGI", "1")

	framed := &bytes.Buffer{}
	fmt.Fprintf(framed, "%d:", headers.Len())
	framed.Write(headers.Bytes())
	framed.WriteByte(',')
	framed.Write(body)

	return framed.Bytes()
}

// the response is CGI-style: headers, a blank line, then the XML payload
func scgiResponseBody(raw []byte) ([]byte, error) {
	for _, separator := range [][]byte{[]byte("\r\n\r\n"), []byte("\n\n")} {
		if idx := bytes.Index(raw, separator); idx != -1 {
			return raw[idx+len(separator):], nil
		}
	}

	return nil, fmt.Errorf("%w: missing header/body separator in SCGI response", ErrProtocol)
}
