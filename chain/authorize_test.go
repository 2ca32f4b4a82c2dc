package chain_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/nftex/wyvern-sdk-go/chain"
)

const testPrivateKeyHex = "ad0f3f94ffcf6f05e1b8f2e1517fb6f9a2971131fc8bb87b8226f6b8916ac4dc"

func TestNewPrivateKeySignerRejectsGarbage(t *testing.T) {
	_, err := chain.NewPrivateKeySigner("not-a-key")
	require.Error(t, err)
}

func TestPrivateKeySignerSignatureRecovers(t *testing.T) {
	signer, err := chain.NewPrivateKeySigner(testPrivateKeyHex)
	require.NoError(t, err)

	order := testOrder()
	digest := chain.HashToSign(&order)

	sig, err := signer.SignHash(digest.Bytes())
	require.NoError(t, err)
	require.Len(t, sig, 65)
	require.LessOrEqual(t, sig[64], uint8(1))

	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), crypto.PubkeyToAddress(*pub))
}
