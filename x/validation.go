package x

// Validater is anything that can check its own state for validity.
// The orm layer requires it of every stored object, so invalid models
// never reach the database. Named Validater because a Validator votes
// on blocks.
type Validater interface {
	Validate() error
}
