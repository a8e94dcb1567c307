package vault

// Vault is an opaque bytes store keyed by owner identity. It is the
// persistence boundary of the library: callers may plug any backing store
// that gives atomic whole-value reads and writes.
type Vault interface {
	Import(keyID string, value []byte) error
	Get(keyID string) ([]byte, error)
	Delete(keyID string) error
}
