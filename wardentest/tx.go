package wardentest

import "github.com/warden-one/warden"

// Tx represents a transaction mock. Transaction represents a single message
// that is to be processed within this transaction.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg warden.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ warden.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (warden.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Unmarshal([]byte) error {
	panic("not implemented")
}

func (tx *Tx) Marshal() ([]byte, error) {
	panic("not implemented")
}

// Msg represents a message mock. Message is a request processed by the engine
// within a single transaction.
type Msg struct {
	// Path returned by the path method, consumed by the router.
	RoutePath string
	// Serialized represents the serialized form of this message.
	Serialized []byte
	// Err if set is returned by any method call.
	Err error
}

var _ warden.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}

func (m *Msg) Validate() error {
	return m.Err
}
