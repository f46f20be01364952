package rtrpc

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/function61/gokit/ezhttp"
)

// XML-RPC carried over HTTP POST, for setups where a web server proxies to rtorrent's
// SCGI socket. rtorrent reports application errors as XML-level faults with HTTP 200,
// so a non-2xx here really is the fronting server failing.
type httpTransport struct {
	url string
}

func (t *httpTransport) roundTrip(ctx context.Context, request []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, ezhttp.DefaultTimeout10s)
	defer cancel()

	resp, err := ezhttp.Post(
		ctx,
		t.url,
		ezhttp.SendBody(bytes.NewReader(request), "text/xml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	response, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	return response, nil
}
