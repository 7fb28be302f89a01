package types

const (
	// NullifierSize is the byte length of a credential nullifier.
	NullifierSize = 32
	// HashSize is the byte length of the sha256 digests used across the
	// ledger and the credential authority.
	HashSize = 32
	// MinModulusBits is the minimum accepted RSA modulus size for the
	// credential authority.
	MinModulusBits = 2048
	// ProofPublicSignals is the number of public signals expected in the
	// opaque zk-proof payload attached to a vote.
	ProofPublicSignals = 4
)
