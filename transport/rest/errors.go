package rest

import "fmt"

// NetworkError reports a transport-level failure of a lobby call: the request
// never completed, or the server answered with a non-success status.
type NetworkError struct {
	Op     string
	URL    string
	Status int // zero when the request never got a response
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: server returned status %d", e.Op, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError reports a response body that could not be decoded into the
// expected record shape.
type ProtocolError struct {
	Op  string
	URL string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s %s: decoding response: %v", e.Op, e.URL, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
