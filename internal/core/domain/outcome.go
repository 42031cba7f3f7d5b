package domain

import "fmt"

// OutcomeKind classifies the result of a single endpoint retrieval.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNotFound
	OutcomeTransportError
	OutcomeSchemaError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeSchemaError:
		return "schema_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of one retrieval. Payload is set only for
// OutcomeSuccess; Message only for the two error kinds.
type Outcome struct {
	Kind    OutcomeKind
	Payload any
	Message string
}

func Success(payload any) Outcome {
	return Outcome{Kind: OutcomeSuccess, Payload: payload}
}

func NotFound() Outcome {
	return Outcome{Kind: OutcomeNotFound}
}

func TransportError(format string, args ...any) Outcome {
	return Outcome{Kind: OutcomeTransportError, Message: fmt.Sprintf(format, args...)}
}

func SchemaError(format string, args ...any) Outcome {
	return Outcome{Kind: OutcomeSchemaError, Message: fmt.Sprintf(format, args...)}
}

// Failed reports whether the outcome is a transport or schema error.
func (o Outcome) Failed() bool {
	return o.Kind == OutcomeTransportError || o.Kind == OutcomeSchemaError
}
