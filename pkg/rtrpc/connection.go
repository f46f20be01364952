// Talks XML-RPC to one rtorrent daemon, either through a fronting web server (HTTP)
// or straight to the daemon's SCGI socket. One Connection is safe for concurrent use;
// nothing is shared between round trips.
package rtrpc

import (
	"context"
	"fmt"
	"log"

	"github.com/Arkiver2/pyroTorrent/pkg/rtconfig"
	"github.com/function61/gokit/logex"
)

const multicallMethod = "system.multicall"

// one remote method invocation inside a batch
type Call struct {
	Method string
	Args   []interface{}
}

// one entry of a batch response. exactly one of Value/Fault is meaningful;
// Fault non-nil means the remote rejected this entry (but only this entry).
type BatchResult struct {
	Value interface{}
	Fault *Fault
}

type Invoker interface {
	Invoke(ctx context.Context, method string, args ...interface{}) (interface{}, error)
	// one round trip for the whole list; result has same length and order as calls
	InvokeBatch(ctx context.Context, calls []Call) ([]BatchResult, error)
}

type transport interface {
	roundTrip(ctx context.Context, request []byte) ([]byte, error)
}

type Connection struct {
	target    rtconfig.RemoteTarget
	transport transport
	logl      *logex.Leveled
}

func New(target rtconfig.RemoteTarget, logger *log.Logger) (*Connection, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	conn := &Connection{
		target: target,
		logl:   logex.Levels(logger),
	}

	switch target.Transport {
	case rtconfig.TransportHTTP:
		conn.transport = &httpTransport{url: target.URL()}
	case rtconfig.TransportSCGI:
		conn.transport = newScgiTransport(target)
	default:
		return nil, fmt.Errorf("unknown transport: %s", target.Transport)
	}

	return conn, nil
}

var _ Invoker = (*Connection)(nil)

func (c *Connection) Invoke(ctx context.Context, method string, args ...interface{}) (interface{}, error) {
	c.logl.Debug.Printf("%s <- %s", c.target.Name, method)

	request, err := marshalCall(method, args)
	if err != nil {
		return nil, err
	}

	value, err := c.roundTrip(ctx, request)
	if err != nil {
		return nil, err
	}

	return value, nil
}

func (c *Connection) InvokeBatch(ctx context.Context, calls []Call) ([]BatchResult, error) {
	c.logl.Debug.Printf("%s <- %s of %d calls", c.target.Name, multicallMethod, len(calls))

	callSpecs := make([]interface{}, 0, len(calls))
	for _, call := range calls {
		args := call.Args
		if args == nil {
			args = []interface{}{}
		}

		callSpecs = append(callSpecs, map[string]interface{}{
			"methodName": call.Method,
			"params":     args,
		})
	}

	request, err := marshalCall(multicallMethod, []interface{}{callSpecs})
	if err != nil {
		return nil, err
	}

	value, err := c.roundTrip(ctx, request)
	if err != nil {
		return nil, err
	}

	entries, isArray := value.([]interface{})
	if !isArray {
		return nil, fmt.Errorf("%w: multicall response is not an array", ErrProtocol)
	}

	results := make([]BatchResult, 0, len(entries))
	for _, entry := range entries {
		result, err := decodeMulticallEntry(entry)
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	return results, nil
}

func (c *Connection) roundTrip(ctx context.Context, request []byte) (interface{}, error) {
	metrics.roundTrips.WithLabelValues(c.target.Name).Inc()

	response, err := c.transport.roundTrip(ctx, request)
	if err != nil {
		metrics.roundTripErrors.WithLabelValues(c.target.Name).Inc()
		c.logl.Error.Printf("%s: %v", c.target.Name, err)
		return nil, err
	}

	value, err := unmarshalResponse(response)
	if err != nil {
		return nil, err
	}

	return value, nil
}

// multicall wraps each successful value in a single-element array; a fault shows up
// as a bare faultCode/faultString struct instead.
func decodeMulticallEntry(entry interface{}) (BatchResult, error) {
	switch v := entry.(type) {
	case []interface{}:
		if len(v) != 1 {
			return BatchResult{}, fmt.Errorf(
				"%w: multicall entry with %d values; expected 1",
				ErrProtocol,
				len(v))
		}

		return BatchResult{Value: v[0]}, nil
	case map[string]interface{}:
		code, codeOk := v["faultCode"].(int64)
		message, messageOk := v["faultString"].(string)
		if !codeOk || !messageOk {
			return BatchResult{}, fmt.Errorf("%w: malformed multicall fault entry", ErrProtocol)
		}

		return BatchResult{Fault: &Fault{Code: int(code), Message: message}}, nil
	default:
		return BatchResult{}, fmt.Errorf("%w: unexpected multicall entry type %T", ErrProtocol, entry)
	}
}
