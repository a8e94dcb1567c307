package audit

import (
	"time"

	"github.com/privfi/credence/pkg/identity"
)

// Record is a single audit event. Payload carries a non-plaintext artifact
// of the operation (a resulting opaque blob or a ciphertext digest); it must
// never contain a decrypted value.
type Record struct {
	ID      string
	Op      string
	Caller  identity.Address
	Payload []byte
	At      time.Time
}

// Sink consumes audit records. Emitters treat it as fire-and-forget: a sink
// error never fails the operation that produced the record.
type Sink interface {
	Emit(rec Record) error
}
