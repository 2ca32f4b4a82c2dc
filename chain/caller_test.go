package chain

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory Backend serving canned contract state. Every
// submitted transaction confirms immediately; setApprovalForAll submissions
// update the approval state so idempotency is observable.
type fakeBackend struct {
	mu       sync.Mutex
	proxy    common.Address
	owner    common.Address
	approved bool
	code     map[common.Address][]byte
	sent     []*types.Transaction
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	selector := msg.Data[:4]
	switch {
	case bytes.Equal(selector, proxyRegistryABI.Methods["proxies"].ID):
		return proxyRegistryABI.Methods["proxies"].Outputs.Pack(f.proxy)
	case bytes.Equal(selector, erc721ABI.Methods["ownerOf"].ID):
		return erc721ABI.Methods["ownerOf"].Outputs.Pack(f.owner)
	case bytes.Equal(selector, erc721ABI.Methods["isApprovedForAll"].ID):
		return erc721ABI.Methods["isApprovedForAll"].Outputs.Pack(f.approved)
	default:
		return nil, fmt.Errorf("unexpected contract call with selector %x", selector)
	}
}

func (f *fakeBackend) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	return f.code[account], nil
}

func (f *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return new(big.Int), nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 50000, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1000000000), nil
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.sent)), nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	if len(tx.Data()) >= 4 && bytes.Equal(tx.Data()[:4], erc721ABI.Methods["setApprovalForAll"].ID) {
		f.approved = true
	}
	return nil
}

func (f *fakeBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (f *fakeBackend) Close() {}

func (f *fakeBackend) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestCaller(backend Backend) *ContractCaller {
	return NewContractCallerWithBackend(backend,
		common.HexToAddress("0xa5409ec958c83c3f309868babaca7c86dcb077c1"),
		common.HexToAddress("0x7be8076f4ea4a4ad08075c2508e481d6c946d12b"),
		common.HexToAddress("0xe5c783ee536cf5e63e792988335c4255169be4e1"),
	)
}

func newTestSigner(t *testing.T) *PrivateKeySigner {
	t.Helper()
	signer, err := NewPrivateKeySigner("ad0f3f94ffcf6f05e1b8f2e1517fb6f9a2971131fc8bb87b8226f6b8916ac4dc")
	require.NoError(t, err)
	return signer
}

func TestApproveAllSecondPassSubmitsNothing(t *testing.T) {
	signer := newTestSigner(t)
	backend := &fakeBackend{
		proxy: common.HexToAddress("0x9999999999999999999999999999999999999999"),
		owner: signer.Address(),
	}
	pm := NewProxyManager(newTestCaller(backend), NewSchemaRegistry())

	asset := Asset{
		TokenID:  big.NewInt(1),
		Address:  common.HexToAddress("0x4444444444444444444444444444444444444444"),
		Quantity: big.NewInt(1),
		Schema:   SchemaERC721,
	}

	require.NoError(t, pm.ApproveAll(context.Background(), signer, []Asset{asset}, nil))
	require.Equal(t, 1, backend.sentCount())
	require.Equal(t, erc721ABI.Methods["setApprovalForAll"].ID, []byte(backend.sent[0].Data()[:4]))

	// The contract is approved now: a second pass detects that and submits
	// no further transactions.
	require.NoError(t, pm.ApproveAll(context.Background(), signer, []Asset{asset}, nil))
	require.Equal(t, 1, backend.sentCount())
}

func authOrder(maker common.Address) *HashedOrder {
	o := UnhashedOrder{
		Exchange:           common.HexToAddress("0x7be8076f4ea4a4ad08075c2508e481d6c946d12b"),
		Maker:              maker,
		MakerRelayerFee:    big.NewInt(750),
		TakerRelayerFee:    big.NewInt(0),
		Side:               SideSell,
		SaleKind:           SaleKindFixedPrice,
		Target:             common.HexToAddress("0x4444444444444444444444444444444444444444"),
		HowToCall:          HowToCallCall,
		Calldata:           []byte{0x23, 0xb8, 0x72, 0xdd},
		ReplacementPattern: []byte{0x00, 0x00, 0x00, 0x00},
		StaticExtradata:    []byte{},
		BasePrice:          big.NewInt(1000),
		ListingTime:        big.NewInt(1700000000),
		ExpirationTime:     big.NewInt(0),
		Salt:               big.NewInt(42),
	}
	hashed := WithHash(o)
	return &hashed
}

func TestAuthorizeOrderSignatureRecoversMaker(t *testing.T) {
	signer := newTestSigner(t)
	backend := &fakeBackend{code: map[common.Address][]byte{}}
	auth := NewAuthorizer(newTestCaller(backend))

	order := authOrder(signer.Address())
	signed, err := auth.AuthorizeOrder(context.Background(), signer, order)
	require.NoError(t, err)
	require.True(t, signed.HasSignature())
	require.Contains(t, []uint8{27, 28}, signed.Signature.V)
	require.Zero(t, backend.sentCount())

	// Reassemble the raw signature and recover the signing account.
	sig := make([]byte, 65)
	copy(sig[:32], signed.Signature.R.Bytes())
	copy(sig[32:64], signed.Signature.S.Bytes())
	sig[64] = signed.Signature.V - 27

	digest := HashToSign(&order.UnhashedOrder)
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	require.NoError(t, err)
	require.Equal(t, order.Maker, crypto.PubkeyToAddress(*pub))
}

func TestAuthorizeOrderContractMakerApprovesOnChain(t *testing.T) {
	signer := newTestSigner(t)
	maker := common.HexToAddress("0x8888888888888888888888888888888888888888")
	backend := &fakeBackend{code: map[common.Address][]byte{maker: {0x60, 0x80}}}
	auth := NewAuthorizer(newTestCaller(backend))

	signed, err := auth.AuthorizeOrder(context.Background(), signer, authOrder(maker))
	require.NoError(t, err)
	require.False(t, signed.HasSignature())
	require.Equal(t, 1, backend.sentCount())
	require.Equal(t, exchangeABI.Methods["approveOrder_"].ID, []byte(backend.sent[0].Data()[:4]))
}
