package signer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known test vector: this key derives the first default account of
// common development chains.
const devPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func TestNewSignerFromHex(t *testing.T) {
	s, err := NewSignerFromHex(devPrivateKey)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(devAddress), s.Address())

	// The 0x prefix must be accepted too.
	prefixed, err := NewSignerFromHex("0x" + devPrivateKey)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), prefixed.Address())
}

func TestNewSignerFromHexRejectsGarbage(t *testing.T) {
	_, err := NewSignerFromHex("not-a-key")
	require.Error(t, err)

	_, err = NewSignerFromHex("")
	require.Error(t, err)
}

func TestSignRecoversAddress(t *testing.T) {
	s, err := NewSignerFromHex(devPrivateKey)
	require.NoError(t, err)

	payload := []byte("gateway health probe")
	signature, err := s.Sign(payload)
	require.NoError(t, err)
	require.Len(t, signature, 65)

	// Undo the yellow paper V transform before recovery.
	recoverable := make([]byte, 65)
	copy(recoverable, signature)
	recoverable[64] -= 27

	msg := crypto.Keccak256([]byte("\x19Ethereum Signed Message:\n20" + string(payload)))
	pubKey, err := crypto.SigToPub(msg, recoverable)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), crypto.PubkeyToAddress(*pubKey))
}

func TestSignTxRecoversSender(t *testing.T) {
	s, err := NewSignerFromHex(devPrivateKey)
	require.NoError(t, err)

	chainID := big.NewInt(1)
	to := common.HexToAddress("0x742d35Cc6634C0532925a3b8D4C4C0b8047cc6E1")
	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    7,
		To:       &to,
		Value:    big.NewInt(1),
		Gas:      21000,
		GasPrice: big.NewInt(1000000000),
	})

	signed, err := s.SignTx(tx, chainID)
	require.NoError(t, err)

	sender, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), sender)
}
