package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ElectionID identifies an election. It is composed of:
// - ChainID (4 bytes)
// - organizer Address (20 bytes)
// - Nonce (8 bytes)
type ElectionID struct {
	Address common.Address
	Nonce   uint64
	ChainID uint32
}

// Marshal encodes the ElectionID to its 32 byte form.
func (e *ElectionID) Marshal() []byte {
	chainID := make([]byte, 4)
	binary.BigEndian.PutUint32(chainID, e.ChainID)

	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, e.Nonce)

	var id bytes.Buffer
	id.Write(chainID[:4])
	id.Write(e.Address.Bytes()[:20])
	id.Write(nonce[:8])
	return id.Bytes()
}

// Unmarshal decodes a 32 byte slice into the ElectionID.
func (e *ElectionID) Unmarshal(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("invalid ElectionID length: %d", len(data))
	}
	e.ChainID = binary.BigEndian.Uint32(data[:4])
	e.Address = common.BytesToAddress(data[4:24])
	e.Nonce = binary.BigEndian.Uint64(data[24:32])
	return nil
}

// SetBytes decodes data into the ElectionID and returns it. It panics on
// malformed input, use Unmarshal to handle the error.
func (e *ElectionID) SetBytes(data []byte) *ElectionID {
	if err := e.Unmarshal(data); err != nil {
		panic(err)
	}
	return e
}

// MarshalBinary implements the BinaryMarshaler interface.
func (e *ElectionID) MarshalBinary() ([]byte, error) {
	return e.Marshal(), nil
}

// UnmarshalBinary implements the BinaryUnmarshaler interface.
func (e *ElectionID) UnmarshalBinary(data []byte) error {
	return e.Unmarshal(data)
}

// String returns the hex representation of the marshaled ElectionID.
func (e *ElectionID) String() string {
	return hex.EncodeToString(e.Marshal())
}

// ElectionStatus is the lifecycle phase of an election. Votes are only
// accepted while the status is ElectionStatusVoting.
type ElectionStatus uint8

const (
	ElectionStatusDraft ElectionStatus = iota
	ElectionStatusRegistration
	ElectionStatusVoting
	ElectionStatusTallying
	ElectionStatusComplete
)

func (s ElectionStatus) String() string {
	switch s {
	case ElectionStatusDraft:
		return "draft"
	case ElectionStatusRegistration:
		return "registration"
	case ElectionStatusVoting:
		return "voting"
	case ElectionStatusTallying:
		return "tallying"
	case ElectionStatusComplete:
		return "complete"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ElectionStatusFromString parses the textual form of a status.
func ElectionStatusFromString(s string) (ElectionStatus, error) {
	for _, status := range []ElectionStatus{
		ElectionStatusDraft,
		ElectionStatusRegistration,
		ElectionStatusVoting,
		ElectionStatusTallying,
		ElectionStatusComplete,
	} {
		if status.String() == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown election status %q", s)
}

// AuthorityPublicKey is the RSA public key of the credential authority for
// an election. Both fields are minimal-length hex without 0x prefix.
type AuthorityPublicKey struct {
	N string `json:"n" cbor:"0,keyasint"`
	E string `json:"e" cbor:"1,keyasint"`
}

// Election is the record consumed by the trust core. The surrounding
// product owns the rest of the election data; the core only reads Status
// to gate voting and PublicKey to verify credentials.
type Election struct {
	ID             HexBytes           `json:"id"                      cbor:"0,keyasint"`
	Status         ElectionStatus     `json:"status"                  cbor:"1,keyasint"`
	OrganizationID common.Address     `json:"organizationId"          cbor:"2,keyasint,omitempty"`
	PublicKey      AuthorityPublicKey `json:"publicKey"               cbor:"3,keyasint"`
	JointKey       HexBytes           `json:"jointKey,omitempty"      cbor:"4,keyasint,omitempty"`
	Threshold      int                `json:"threshold,omitempty"     cbor:"5,keyasint,omitempty"`
	MaxTrustees    int                `json:"maxTrustees,omitempty"   cbor:"6,keyasint,omitempty"`
	StartTime      time.Time          `json:"startTime,omitempty"     cbor:"7,keyasint,omitempty"`
	Duration       time.Duration      `json:"duration,omitempty"      cbor:"8,keyasint,omitempty"`
}

func (e *Election) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return string(data)
}
