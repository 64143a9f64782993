package pce

import "net/url"

// Params are query parameters passed through to the PCE verbatim. The
// client never inspects or validates filter values; unknown parameters
// are the server's to reject.
type Params map[string]string

// Values converts the parameters to url.Values for the transport.
func (p Params) Values() url.Values {
	if len(p) == 0 {
		return nil
	}

	values := make(url.Values, len(p))
	for key, value := range p {
		values.Set(key, value)
	}

	return values
}

// Clone returns a copy of the parameters, safe to mutate.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}

	clone := make(Params, len(p))
	for key, value := range p {
		clone[key] = value
	}

	return clone
}
