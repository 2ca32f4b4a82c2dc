package wyvernsdk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClientRejectsUnsupportedChain(t *testing.T) {
	_, err := NewClient(ClientConfig{
		RPCURL:     "http://localhost:8545",
		ChainID:    ChainID(999),
		PrivateKey: "ad0f3f94ffcf6f05e1b8f2e1517fb6f9a2971131fc8bb87b8226f6b8916ac4dc",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestNewClientRejectsInvalidPrivateKey(t *testing.T) {
	_, err := NewClient(ClientConfig{
		RPCURL:     "http://localhost:8545",
		ChainID:    ChainIDMainnet,
		PrivateKey: "zz",
	})
	require.Error(t, err)
}

func TestDefaultContractAddressesCoverSupportedChains(t *testing.T) {
	for _, id := range SupportedChainIDs {
		contracts, ok := DefaultContractAddresses[id]
		require.True(t, ok)
		require.NotEmpty(t, contracts.Exchange)
		require.NotEmpty(t, contracts.ProxyRegistry)
		require.NotEmpty(t, contracts.TokenTransferProxy)
		require.NotEmpty(t, contracts.WrappedNative)
		require.NotEmpty(t, contracts.FeeRecipient)
	}
}
