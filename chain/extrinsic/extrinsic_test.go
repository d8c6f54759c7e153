package extrinsic

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trie-migrate/westend-migrate/chain/metadata"
	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/chain/wallet"
	"github.com/trie-migrate/westend-migrate/lib/scale"
	"github.com/trie-migrate/westend-migrate/lib/sigs"
)

func encodeEra(e Era) []byte {
	enc := scale.NewEncoder()
	e.Encode(enc)
	return enc.Bytes()
}

func TestMortalEra(t *testing.T) {
	e := MortalEra(42, 64)
	require.Equal(t, Era{Period: 64, Phase: 42}, e)
	require.Equal(t, []byte{0xa5, 0x02}, encodeEra(e))
	require.EqualValues(t, 42, e.Birth(42))
	require.EqualValues(t, 42, e.Birth(100))
	require.EqualValues(t, 106, e.Birth(106))

	e = MortalEra(20000, 32768)
	require.Equal(t, []byte{14 + 2500%16*16, 2500 / 16}, encodeEra(e))

	// periods are rounded to a power of two
	require.EqualValues(t, 64, MortalEra(1, 50).Period)
	require.EqualValues(t, 4, MortalEra(1, 1).Period)

	for _, e := range []Era{ImmortalEra, MortalEra(42, 64), MortalEra(20000, 32768), MortalEra(7, 4)} {
		got, err := decodeEra(scale.NewDecoder(encodeEra(e)))
		require.NoError(t, err)
		require.Equal(t, e, got)
	}
}

type fixedSigner struct {
	acct types.AccountID
	sig  []byte
	msgs [][]byte
}

func (f *fixedSigner) Account() types.AccountID { return f.acct }
func (f *fixedSigner) Type() sigs.SigType       { return sigs.SigTypeSr25519 }
func (f *fixedSigner) Sign(msg []byte) ([]byte, error) {
	f.msgs = append(f.msgs, msg)
	return f.sig, nil
}

func testParams() Params {
	return Params{
		Era:         MortalEra(1000, 64),
		Nonce:       7,
		SpecVersion: 1017001,
		TxVersion:   16,
		Genesis:     types.Hash{1},
		BirthHash:   types.Hash{2},
		Extensions:  DefaultExtensions,
	}
}

func TestSignedLayout(t *testing.T) {
	s := &fixedSigner{acct: types.AccountID{0xaa}, sig: bytes.Repeat([]byte{0x55}, 64)}
	call := Call{Pallet: 70, Method: 1, Args: []byte{9, 9}}

	signed, err := Sign(call, testParams(), s)
	require.NoError(t, err)
	require.Len(t, s.msgs, 1)

	d := scale.NewDecoder(signed.Bytes)
	n, err := d.Compact()
	require.NoError(t, err)
	require.EqualValues(t, d.Remaining(), n)

	body, err := d.Raw(d.Remaining())
	require.NoError(t, err)
	require.EqualValues(t, 0x84, body[0])
	require.EqualValues(t, 0x00, body[1])
	require.Equal(t, s.acct[:], body[2:34])
	require.EqualValues(t, 0x01, body[34])
	require.Equal(t, s.sig, body[35:99])

	// era, nonce, tip, asset id, metadata hash mode, then the call
	era := encodeEra(testParams().Era)
	require.Equal(t, era, body[99:101])
	require.Equal(t, []byte{7 << 2, 0, 0, 0, 70, 1, 9, 9}, body[101:])

	require.Equal(t, Hash(signed.Bytes), signed.Hash)
	require.EqualValues(t, 7, signed.Nonce)

	info, err := Inspect(signed.Bytes)
	require.NoError(t, err)
	require.Equal(t, s.acct, info.Signer)
	require.EqualValues(t, 7, info.Nonce)
	require.Equal(t, testParams().Era, info.Era)
	require.Equal(t, signed.Hash, info.Hash)
}

func TestSigningPayload(t *testing.T) {
	p := testParams()
	call := Call{Pallet: 70, Method: 1, Args: []byte{1}}
	payload := SigningPayload(call, p)

	enc := scale.NewEncoder()
	enc.PutRaw([]byte{70, 1, 1})
	p.Era.Encode(enc)
	enc.PutRaw([]byte{7 << 2, 0, 0, 0})
	enc.PutU32(p.SpecVersion)
	enc.PutU32(p.TxVersion)
	enc.PutRaw(p.Genesis[:])
	enc.PutRaw(p.BirthHash[:])
	enc.PutU8(0)
	require.Equal(t, enc.Bytes(), payload)

	long := SigningPayload(Call{Pallet: 70, Method: 1, Args: make([]byte, 300)}, p)
	require.Len(t, long, 32)
}

func TestWalletSignaturesDiffer(t *testing.T) {
	secret, err := wallet.ParseSeed("0x" + hex.EncodeToString(bytes.Repeat([]byte{7}, 32)))
	require.NoError(t, err)
	key, err := wallet.NewKey(secret)
	require.NoError(t, err)
	defer key.Close() //nolint:errcheck

	call := Call{Pallet: 70, Method: 1, Args: []byte{1, 2, 3}}
	a, err := Sign(call, testParams(), key)
	require.NoError(t, err)
	b, err := Sign(call, testParams(), key)
	require.NoError(t, err)

	// sr25519 signatures are randomized, so two passes over the same payload
	// never produce the same blob
	require.NotEqual(t, a.Bytes, b.Bytes)
	require.NotEqual(t, a.Hash, b.Hash)

	acct := key.Account()
	sig := a.Bytes[len(a.Bytes)-len(call.Bytes())-6-64 : len(a.Bytes)-len(call.Bytes())-6]
	require.NoError(t, sigs.Verify(sigs.SigTypeSr25519, sig, acct[:], SigningPayload(call, testParams())))
}

func TestInspectErrors(t *testing.T) {
	_, err := Inspect([]byte{0x08, 0x04, 0x00})
	require.Error(t, err)

	_, err = Inspect([]byte{0x04, 0x04})
	require.ErrorIs(t, err, ErrUnsigned)

	_, err = Inspect([]byte{0x04, 0x85})
	require.Error(t, err)
}

func mustHex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDecodeApplyResult(t *testing.T) {
	p := metadata.DefaultPallet

	r, err := DecodeApplyResult(mustHex(t, "0000"), p)
	require.NoError(t, err)
	require.True(t, r.Ok())
	require.NoError(t, r.Err())

	r, err = DecodeApplyResult(mustHex(t, "000102"), p)
	require.NoError(t, err)
	require.Equal(t, "BadOrigin", r.Dispatch.Name)

	r, err = DecodeApplyResult(mustHex(t, "00010346"+"04000000"), p)
	require.NoError(t, err)
	require.Equal(t, "Module", r.Dispatch.Name)
	require.Equal(t, "SignedMigrationNotAllowed", r.Dispatch.Module.Name)
	require.Contains(t, r.Err().Error(), "SignedMigrationNotAllowed")

	r, err = DecodeApplyResult(mustHex(t, "00010305"+"00000000"), p)
	require.NoError(t, err)
	require.Empty(t, r.Dispatch.Module.Name)
	require.EqualValues(t, 5, r.Dispatch.Module.Index)

	r, err = DecodeApplyResult(mustHex(t, "00010700"), p)
	require.NoError(t, err)
	require.Equal(t, "Token", r.Dispatch.Name)
	require.Equal(t, "FundsUnavailable", r.Dispatch.Sub)

	r, err = DecodeApplyResult(mustHex(t, "010003"), p)
	require.NoError(t, err)
	require.Equal(t, &ValidityError{Class: "Invalid", Name: "Stale"}, r.Validity)

	r, err = DecodeApplyResult(mustHex(t, "01000707"), p)
	require.NoError(t, err)
	require.Equal(t, "Custom", r.Validity.Name)
	require.EqualValues(t, 7, r.Validity.Custom)

	// trailing bytes fall back to the bare validity error
	r, err = DecodeApplyResult(mustHex(t, "010004ff"), p)
	require.NoError(t, err)
	require.Equal(t, "BadProof", r.Validity.Name)

	_, err = DecodeApplyResult(mustHex(t, "02"), p)
	require.Error(t, err)
}
