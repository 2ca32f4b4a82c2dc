package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	selectorLength = 4
	wordLength     = 32
)

// EncodedTransfer is the result of encoding a transfer call for one order side.
type EncodedTransfer struct {
	Target             common.Address
	Calldata           []byte
	ReplacementPattern []byte
}

// EncodeSell encodes the transfer for a sell order: the owner inputs are
// filled with the maker and the counterparty inputs are left replaceable,
// to be overwritten by the eventual buyer's order at match time.
func EncodeSell(schema Schema, asset Asset, maker common.Address) (*EncodedTransfer, error) {
	call, err := schema.Transfer(asset)
	if err != nil {
		return nil, err
	}
	calldata, pattern, err := encodeTransferCall(call, maker, RoleOwner, RoleReplaceable)
	if err != nil {
		return nil, err
	}
	return &EncodedTransfer{Target: asset.Address, Calldata: calldata, ReplacementPattern: pattern}, nil
}

// EncodeBuy encodes the transfer for a buy order: the counterparty inputs
// are filled with the recipient and the owner input is left replaceable for
// the eventual seller. Templates with more than one owner input cannot be
// encoded for the buy side.
func EncodeBuy(schema Schema, asset Asset, recipient common.Address) (*EncodedTransfer, error) {
	call, err := schema.Transfer(asset)
	if err != nil {
		return nil, err
	}
	owners := 0
	for _, in := range call.Inputs {
		if in.Role == RoleOwner {
			owners++
		}
	}
	if owners > 1 {
		return nil, ErrAmbiguousReplacementTarget
	}
	calldata, pattern, err := encodeTransferCall(call, recipient, RoleReplaceable, RoleOwner)
	if err != nil {
		return nil, err
	}
	return &EncodedTransfer{Target: asset.Address, Calldata: calldata, ReplacementPattern: pattern}, nil
}

// encodeTransferCall packs the call and builds its replacement pattern.
// Inputs tagged fillRole take the counterparty address, RoleAsset inputs take
// their bound literal, and inputs tagged replaceRole are default-filled and
// marked replaceable in the pattern.
func encodeTransferCall(call *TransferCall, counterparty common.Address, fillRole, replaceRole InputRole) ([]byte, []byte, error) {
	args := make(abi.Arguments, len(call.Inputs))
	values := make([]interface{}, len(call.Inputs))
	replaceable := make([]bool, len(call.Inputs))

	for i, in := range call.Inputs {
		args[i] = abi.Argument{Name: in.Name, Type: in.Type.abiType()}

		switch in.Role {
		case RoleAsset:
			values[i] = in.Value
		case fillRole:
			if in.Type != TypeAddress {
				return nil, nil, fmt.Errorf("input %q: counterparty input must be an address, got %s",
					in.Name, in.Type.solidityName())
			}
			values[i] = counterparty
		case replaceRole:
			if in.Type.isDynamic() {
				return nil, nil, fmt.Errorf("%w: input %q", ErrUnsupportedDynamicReplacement, in.Name)
			}
			values[i] = in.Type.defaultValue()
			replaceable[i] = true
		default:
			return nil, nil, fmt.Errorf("input %q has unknown role %d", in.Name, in.Role)
		}
	}

	packed, err := args.Pack(values...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to pack %s: %w", call.Signature(), err)
	}

	selector := crypto.Keccak256([]byte(call.Signature()))[:selectorLength]
	calldata := make([]byte, 0, selectorLength+len(packed))
	calldata = append(calldata, selector...)
	calldata = append(calldata, packed...)

	pattern := buildReplacementPattern(call, replaceable, len(calldata))
	return calldata, pattern, nil
}

// buildReplacementPattern lays out the byte mask: zero bytes over the method
// selector, a full word of 0xFF per replaceable static input, zero words for
// static non-replaceable inputs and for dynamic-offset heads, and zeros over
// any dynamic tails. The mask is always the same length as the calldata.
func buildReplacementPattern(call *TransferCall, replaceable []bool, calldataLen int) []byte {
	pattern := make([]byte, selectorLength, calldataLen)
	for i, in := range call.Inputs {
		word := make([]byte, wordLength)
		if replaceable[i] && !in.Type.isDynamic() {
			for j := range word {
				word[j] = 0xFF
			}
		}
		pattern = append(pattern, word...)
	}
	// Dynamic tails follow the static head and are never replaceable.
	for len(pattern) < calldataLen {
		pattern = append(pattern, 0x00)
	}
	return pattern
}
