package chain

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// signedMessagePrefix is the envelope EOA signers apply to a 32-byte digest.
const signedMessagePrefix = "\x19Ethereum Signed Message:\n32"

// HashOrder computes the canonical hash of an order: keccak256 over the
// packed concatenation of the order's fields in the exact layout the
// exchange contract hashes on-chain. Addresses contribute their 20 raw
// bytes, integer fields 32 left-padded bytes, enums a single byte, and the
// calldata/replacementPattern/staticExtradata byte strings are appended raw
// without length prefixes. Any deviation from this layout produces a hash
// the contract will not recognize.
func HashOrder(o *UnhashedOrder) common.Hash {
	var buf bytes.Buffer

	buf.Write(o.Exchange.Bytes())
	buf.Write(o.Maker.Bytes())
	buf.Write(o.Taker.Bytes())
	buf.Write(packUint256(o.MakerRelayerFee))
	buf.Write(packUint256(o.TakerRelayerFee))
	buf.Write(packUint256(o.MakerProtocolFee))
	buf.Write(packUint256(o.TakerProtocolFee))
	buf.Write(o.FeeRecipient.Bytes())
	buf.WriteByte(byte(o.FeeMethod))
	buf.WriteByte(byte(o.Side))
	buf.WriteByte(byte(o.SaleKind))
	buf.Write(o.Target.Bytes())
	buf.WriteByte(byte(o.HowToCall))
	buf.Write(o.Calldata)
	buf.Write(o.ReplacementPattern)
	buf.Write(o.StaticTarget.Bytes())
	buf.Write(o.StaticExtradata)
	buf.Write(o.PaymentToken.Bytes())
	buf.Write(packUint256(o.BasePrice))
	buf.Write(packUint256(o.Extra))
	buf.Write(packUint256(o.ListingTime))
	buf.Write(packUint256(o.ExpirationTime))
	buf.Write(packUint256(o.Salt))

	return crypto.Keccak256Hash(buf.Bytes())
}

// HashToSign wraps the canonical order hash in the signed-message envelope.
// This is the digest EOA makers sign and the contract recovers against.
func HashToSign(o *UnhashedOrder) common.Hash {
	orderHash := HashOrder(o)
	return crypto.Keccak256Hash([]byte(signedMessagePrefix), orderHash.Bytes())
}

// WithHash attaches the canonical hash to an order.
func WithHash(o UnhashedOrder) HashedOrder {
	return HashedOrder{UnhashedOrder: o, Hash: HashOrder(&o)}
}

func packUint256(x *big.Int) []byte {
	if x == nil {
		x = new(big.Int)
	}
	return common.LeftPadBytes(x.Bytes(), 32)
}
