package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	receiptTimeout      = 120 * time.Second
	receiptPollInterval = 2 * time.Second
)

// Signer is the capability every value-bearing operation is parameterized
// by. It holds the account's key material; the SDK never touches raw keys
// outside an injected Signer.
type Signer interface {
	// Address returns the account the signer signs for.
	Address() common.Address

	// SignHash signs a 32-byte digest and returns the 65-byte [R || S || V]
	// signature with V in {0, 1}.
	SignHash(digest []byte) ([]byte, error)

	// SignTx signs a transaction for the given chain.
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// PrivateKeySigner signs with an in-memory ECDSA private key.
type PrivateKeySigner struct {
	key *ecdsa.PrivateKey
}

// NewPrivateKeySigner creates a signer from a hex-encoded private key.
func NewPrivateKeySigner(privateKeyHex string) (*PrivateKeySigner, error) {
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &PrivateKeySigner{key: key}, nil
}

// Address returns the address of the signer.
func (s *PrivateKeySigner) Address() common.Address {
	publicKey := s.key.Public()
	publicKeyECDSA, _ := publicKey.(*ecdsa.PublicKey)
	return crypto.PubkeyToAddress(*publicKeyECDSA)
}

// SignHash signs a 32-byte digest.
func (s *PrivateKeySigner) SignHash(digest []byte) ([]byte, error) {
	return crypto.Sign(digest, s.key)
}

// SignTx signs a transaction with EIP-155 replay protection.
func (s *PrivateKeySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.NewEIP155Signer(chainID), s.key)
}

// Backend is the subset of the Ethereum RPC client the caller uses.
// *ethclient.Client satisfies it; tests and alternative transports can
// substitute their own.
type Backend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// ContractCaller handles all RPC interaction with the chain: contract reads,
// transaction submission and confirmation waits.
type ContractCaller struct {
	client             Backend
	registryAddr       common.Address
	exchangeAddr       common.Address
	tokenTransferProxy common.Address
}

// NewContractCaller dials the RPC endpoint and binds the protocol contract addresses.
func NewContractCaller(rpcURL string, registryAddr, exchangeAddr, tokenTransferProxy common.Address) (*ContractCaller, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	return NewContractCallerWithBackend(client, registryAddr, exchangeAddr, tokenTransferProxy), nil
}

// NewContractCallerWithBackend binds the protocol contract addresses over an
// existing backend.
func NewContractCallerWithBackend(client Backend, registryAddr, exchangeAddr, tokenTransferProxy common.Address) *ContractCaller {
	return &ContractCaller{
		client:             client,
		registryAddr:       registryAddr,
		exchangeAddr:       exchangeAddr,
		tokenTransferProxy: tokenTransferProxy,
	}
}

// RegistryAddress returns the proxy registry contract address.
func (cc *ContractCaller) RegistryAddress() common.Address { return cc.registryAddr }

// ExchangeAddress returns the exchange contract address.
func (cc *ContractCaller) ExchangeAddress() common.Address { return cc.exchangeAddr }

// TokenTransferProxyAddress returns the spender payment-token approvals go to.
func (cc *ContractCaller) TokenTransferProxyAddress() common.Address { return cc.tokenTransferProxy }

// call packs a read-only contract call, executes it and unpacks the single
// return value into out.
func (cc *ContractCaller) call(ctx context.Context, to common.Address, contractABI abi.ABI, method string, out interface{}, args ...interface{}) error {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("failed to pack %s: %w", method, err)
	}
	result, err := cc.client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return err
	}
	if err := contractABI.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	return nil
}

// IsContract reports whether code is deployed at the address.
func (cc *ContractCaller) IsContract(ctx context.Context, addr common.Address) (bool, error) {
	code, err := cc.client.CodeAt(ctx, addr, nil)
	if err != nil {
		return false, fmt.Errorf("failed to get code at %s: %w", addr.Hex(), err)
	}
	return len(code) > 0, nil
}

// ProxyOf queries the registry for the account's proxy contract. The zero
// address means no proxy is registered.
func (cc *ContractCaller) ProxyOf(ctx context.Context, owner common.Address) (common.Address, error) {
	var proxy common.Address
	if err := cc.call(ctx, cc.registryAddr, proxyRegistryABI, "proxies", &proxy, owner); err != nil {
		return common.Address{}, err
	}
	return proxy, nil
}

// OwnerOf returns the ERC721 owner of a token.
func (cc *ContractCaller) OwnerOf(ctx context.Context, token common.Address, tokenID *big.Int) (common.Address, error) {
	var owner common.Address
	if err := cc.call(ctx, token, erc721ABI, "ownerOf", &owner, tokenID); err != nil {
		return common.Address{}, err
	}
	return owner, nil
}

// BalanceOf1155 returns the ERC1155 balance of a token id for an account.
func (cc *ContractCaller) BalanceOf1155(ctx context.Context, token, owner common.Address, tokenID *big.Int) (*big.Int, error) {
	var balance *big.Int
	if err := cc.call(ctx, token, erc1155ABI, "balanceOf", &balance, owner, tokenID); err != nil {
		return nil, err
	}
	return balance, nil
}

// BalanceOf20 returns the ERC20 balance for an account.
func (cc *ContractCaller) BalanceOf20(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	var balance *big.Int
	if err := cc.call(ctx, token, erc20ABI, "balanceOf", &balance, owner); err != nil {
		return nil, err
	}
	return balance, nil
}

// Allowance returns the ERC20 allowance from owner to spender.
func (cc *ContractCaller) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	var allowance *big.Int
	if err := cc.call(ctx, token, erc20ABI, "allowance", &allowance, owner, spender); err != nil {
		return nil, err
	}
	return allowance, nil
}

// IsApprovedForAll reports whether operator may move all of owner's tokens
// on the token contract. The call shape is shared by ERC721 and ERC1155.
func (cc *ContractCaller) IsApprovedForAll(ctx context.Context, token, owner, operator common.Address) (bool, error) {
	var approved bool
	if err := cc.call(ctx, token, erc721ABI, "isApprovedForAll", &approved, owner, operator); err != nil {
		return false, err
	}
	return approved, nil
}

// SuggestGasPrice returns the node's suggested gas price.
func (cc *ContractCaller) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return cc.client.SuggestGasPrice(ctx)
}

// Transact builds, signs and submits a transaction from the signer's account.
func (cc *ContractCaller) Transact(ctx context.Context, signer Signer, to common.Address, value *big.Int, data []byte, gasLimit uint64) (*types.Transaction, error) {
	chainID, err := cc.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	nonce, err := cc.client.PendingNonceAt(ctx, signer.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := cc.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	if value == nil {
		value = big.NewInt(0)
	}
	tx := types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)

	signedTx, err := signer.SignTx(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := cc.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	return signedTx, nil
}

// WaitForReceipt waits for a transaction receipt with timeout.
func (cc *ContractCaller) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, receiptTimeout)
	defer cancel()

	for {
		receipt, err := cc.client.TransactionReceipt(timeoutCtx, txHash)
		if err == nil {
			return receipt, nil
		}

		select {
		case <-timeoutCtx.Done():
			return nil, fmt.Errorf("timeout waiting for transaction receipt: %s", txHash.Hex())
		default:
			time.Sleep(receiptPollInterval)
		}
	}
}

// TransactAndConfirm submits a transaction and waits for a successful receipt.
func (cc *ContractCaller) TransactAndConfirm(ctx context.Context, signer Signer, to common.Address, value *big.Int, data []byte, gasLimit uint64) (*types.Receipt, error) {
	tx, err := cc.Transact(ctx, signer, to, value, data, gasLimit)
	if err != nil {
		return nil, err
	}
	receipt, err := cc.WaitForReceipt(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction reverted: %s", tx.Hash().Hex())
	}
	return receipt, nil
}

// Close closes the underlying RPC client connection.
func (cc *ContractCaller) Close() {
	if cc.client != nil {
		cc.client.Close()
	}
}
