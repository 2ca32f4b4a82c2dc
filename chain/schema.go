package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// InputRole tags a transfer-function input with how the encoder should fill it.
type InputRole int

const (
	// RoleOwner inputs hold the current owner of the asset. They are filled
	// with the maker address on a sell encoding and left replaceable on a buy.
	RoleOwner InputRole = iota
	// RoleAsset inputs are literal values known from the asset itself
	// (token id, quantity, auxiliary data).
	RoleAsset
	// RoleReplaceable inputs hold the eventual counterparty. They are left
	// replaceable on a sell encoding and filled with the recipient on a buy.
	RoleReplaceable
)

// ElementaryType is the closed set of Solidity elementary types the
// transfer templates use.
type ElementaryType int

const (
	TypeAddress ElementaryType = iota
	TypeUint256
	TypeBytes
)

// solidityName returns the canonical type name used in function signatures.
func (t ElementaryType) solidityName() string {
	switch t {
	case TypeAddress:
		return "address"
	case TypeUint256:
		return "uint256"
	case TypeBytes:
		return "bytes"
	default:
		panic(fmt.Sprintf("unknown elementary type %d", t))
	}
}

// isDynamic reports whether the type has a dynamic ABI encoding.
func (t ElementaryType) isDynamic() bool {
	return t == TypeBytes
}

// defaultValue returns the zero value used to fill placeholder inputs.
func (t ElementaryType) defaultValue() interface{} {
	switch t {
	case TypeAddress:
		return common.Address{}
	case TypeUint256:
		return new(big.Int)
	case TypeBytes:
		return []byte{}
	default:
		panic(fmt.Sprintf("unknown elementary type %d", t))
	}
}

// abiType returns the go-ethereum ABI type descriptor.
func (t ElementaryType) abiType() abi.Type {
	parsed, err := abi.NewType(t.solidityName(), "", nil)
	if err != nil {
		panic("failed to build ABI type " + t.solidityName() + ": " + err.Error())
	}
	return parsed
}

// TransferInput is one input of a transfer-function template. Value is bound
// for RoleAsset inputs and nil otherwise.
type TransferInput struct {
	Name  string
	Type  ElementaryType
	Role  InputRole
	Value interface{}
}

// TransferCall is a transfer-function template with asset values bound.
type TransferCall struct {
	FunctionName string
	Inputs       []TransferInput
}

// Signature returns the canonical Solidity function signature.
func (c *TransferCall) Signature() string {
	sig := c.FunctionName + "("
	for i, in := range c.Inputs {
		if i > 0 {
			sig += ","
		}
		sig += in.Type.solidityName()
	}
	return sig + ")"
}

// Schema is the capability interface a supported token standard implements.
type Schema interface {
	Name() SchemaName

	// Transfer returns the transfer-function template with the asset's
	// literal values bound to its RoleAsset inputs.
	Transfer(asset Asset) (*TransferCall, error)

	// SupportsApproveAll reports whether the token standard exposes
	// setApprovalForAll for proxy approvals.
	SupportsApproveAll() bool

	// CheckOwnership reports whether owner holds at least the asset's
	// quantity of the token.
	CheckOwnership(ctx context.Context, caller *ContractCaller, owner common.Address, asset Asset) (bool, error)
}

// SchemaRegistry maps schema names to their encoding behavior.
type SchemaRegistry struct {
	schemas map[SchemaName]Schema
}

// NewSchemaRegistry creates a registry with all supported schemas.
func NewSchemaRegistry() *SchemaRegistry {
	r := &SchemaRegistry{schemas: make(map[SchemaName]Schema)}
	for _, s := range []Schema{erc721Schema{}, erc721LegacySchema{}, erc1155Schema{}} {
		r.schemas[s.Name()] = s
	}
	return r
}

// Get resolves a schema by name.
func (r *SchemaRegistry) Get(name SchemaName) (Schema, error) {
	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSchema, name)
	}
	return s, nil
}

// erc721Schema covers standard ERC-721 contracts with
// transferFrom(address,address,uint256).
type erc721Schema struct{}

func (erc721Schema) Name() SchemaName { return SchemaERC721 }

func (erc721Schema) Transfer(asset Asset) (*TransferCall, error) {
	if asset.TokenID == nil {
		return nil, fmt.Errorf("asset token id is required for %s", SchemaERC721)
	}
	return &TransferCall{
		FunctionName: "transferFrom",
		Inputs: []TransferInput{
			{Name: "from", Type: TypeAddress, Role: RoleOwner},
			{Name: "to", Type: TypeAddress, Role: RoleReplaceable},
			{Name: "tokenId", Type: TypeUint256, Role: RoleAsset, Value: asset.TokenID},
		},
	}, nil
}

func (erc721Schema) SupportsApproveAll() bool { return true }

func (erc721Schema) CheckOwnership(ctx context.Context, caller *ContractCaller, owner common.Address, asset Asset) (bool, error) {
	current, err := caller.OwnerOf(ctx, asset.Address, asset.TokenID)
	if err != nil {
		return false, err
	}
	return current == owner, nil
}

// erc721LegacySchema covers pre-standard contracts that expose
// transfer(address,uint256) and no operator approvals.
type erc721LegacySchema struct{}

func (erc721LegacySchema) Name() SchemaName { return SchemaERC721Legacy }

func (erc721LegacySchema) Transfer(asset Asset) (*TransferCall, error) {
	if asset.TokenID == nil {
		return nil, fmt.Errorf("asset token id is required for %s", SchemaERC721Legacy)
	}
	return &TransferCall{
		FunctionName: "transfer",
		Inputs: []TransferInput{
			{Name: "to", Type: TypeAddress, Role: RoleReplaceable},
			{Name: "tokenId", Type: TypeUint256, Role: RoleAsset, Value: asset.TokenID},
		},
	}, nil
}

func (erc721LegacySchema) SupportsApproveAll() bool { return false }

func (erc721LegacySchema) CheckOwnership(ctx context.Context, caller *ContractCaller, owner common.Address, asset Asset) (bool, error) {
	current, err := caller.OwnerOf(ctx, asset.Address, asset.TokenID)
	if err != nil {
		return false, err
	}
	return current == owner, nil
}

// erc1155Schema covers ERC-1155 contracts with
// safeTransferFrom(address,address,uint256,uint256,bytes).
type erc1155Schema struct{}

func (erc1155Schema) Name() SchemaName { return SchemaERC1155 }

func (erc1155Schema) Transfer(asset Asset) (*TransferCall, error) {
	if asset.TokenID == nil {
		return nil, fmt.Errorf("asset token id is required for %s", SchemaERC1155)
	}
	quantity := asset.Quantity
	if quantity == nil || quantity.Sign() == 0 {
		quantity = big.NewInt(1)
	}
	return &TransferCall{
		FunctionName: "safeTransferFrom",
		Inputs: []TransferInput{
			{Name: "from", Type: TypeAddress, Role: RoleOwner},
			{Name: "to", Type: TypeAddress, Role: RoleReplaceable},
			{Name: "id", Type: TypeUint256, Role: RoleAsset, Value: asset.TokenID},
			{Name: "value", Type: TypeUint256, Role: RoleAsset, Value: quantity},
			{Name: "data", Type: TypeBytes, Role: RoleAsset, Value: []byte{}},
		},
	}, nil
}

func (erc1155Schema) SupportsApproveAll() bool { return true }

func (erc1155Schema) CheckOwnership(ctx context.Context, caller *ContractCaller, owner common.Address, asset Asset) (bool, error) {
	quantity := asset.Quantity
	if quantity == nil || quantity.Sign() == 0 {
		quantity = big.NewInt(1)
	}
	balance, err := caller.BalanceOf1155(ctx, asset.Address, owner, asset.TokenID)
	if err != nil {
		return false, err
	}
	return balance.Cmp(quantity) >= 0, nil
}
