package amd64

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefixGroup(t *testing.T) {
	for _, tc := range []struct {
		b   byte
		exp int
	}{
		{b: 0xF0, exp: 1},
		{b: 0xF2, exp: 1},
		{b: 0xF3, exp: 1},
		{b: 0x2E, exp: 2},
		{b: 0x36, exp: 2},
		{b: 0x3E, exp: 2},
		{b: 0x26, exp: 2},
		{b: 0x64, exp: 2},
		{b: 0x65, exp: 2},
		{b: 0x66, exp: 3},
		{b: 0x67, exp: 4},
		{b: 0x0F, exp: 0},
		{b: 0x90, exp: 0},
	} {
		require.Equal(t, tc.exp, prefixGroup(tc.b), "%#x", tc.b)
	}
}

func TestOpcodesFromBytes(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   []byte
		exp  opcodes
	}{
		{
			name: "single byte",
			in:   []byte{0x25},
			exp:  opcodes{primary: 0x25},
		},
		{
			name: "prefix and opcode",
			in:   []byte{0x66, 0x81},
			exp:  opcodes{groups: [4]byte{0, 0, 0x66, 0}, primary: 0x81},
		},
		{
			name: "two-byte map",
			in:   []byte{0x0F, 0xAF},
			exp:  opcodes{escape: true, primary: 0xAF},
		},
		{
			name: "prefix and two-byte map",
			in:   []byte{0x66, 0x0F, 0x54},
			exp:  opcodes{groups: [4]byte{0, 0, 0x66, 0}, escape: true, primary: 0x54},
		},
		{
			name: "prefixes from different groups in any order",
			in:   []byte{0x67, 0xF0, 0x01},
			exp:  opcodes{groups: [4]byte{0xF0, 0, 0, 0x67}, primary: 0x01},
		},
		{
			name: "three-byte form",
			in:   []byte{0x0F, 0x38, 0x01},
			exp:  opcodes{escape: true, primary: 0x38, secondary: 0x01, hasSecondary: true},
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			o := opcodesFromBytes(tc.in...)
			require.Equal(t, tc.exp, o)
		})
	}
}

func TestOpcodes_bytes(t *testing.T) {
	// bytes() renders the canonical order: prefixes in group order, escape,
	// then the opcode byte(s), regardless of the declared prefix order.
	o := opcodesFromBytes(0x67, 0xF0, 0x0F, 0xAF)
	require.Equal(t, []byte{0xF0, 0x67, 0x0F, 0xAF}, o.bytes())

	o = opcodesFromBytes(0xC3)
	require.Equal(t, []byte{0xC3}, o.bytes())
}

func TestOpcodesFromBytes_panics(t *testing.T) {
	require.Panics(t, func() {
		opcodesFromBytes(0xF0, 0xF3, 0x01) // two group 1 prefixes
	})
	require.Panics(t, func() {
		opcodesFromBytes(0x66, 0x66, 0x01) // same prefix twice
	})
	require.Panics(t, func() {
		opcodesFromBytes(0x01, 0x02) // two opcode bytes without the 0x0F map
	})
	require.Panics(t, func() {
		opcodesFromBytes() // nothing at all
	})
}

func TestEncoding_String(t *testing.T) {
	for _, tc := range []struct {
		enc Encoding
		exp string
	}{
		{enc: rex(0x25).w().id(), exp: "REX.W + 0x25 id"},
		{enc: rex(0x81).w().digit(0).id(), exp: "REX.W + 0x81 /0 id"},
		{enc: rex(0x66, 0x0F, 0x54).r(), exp: "0x66 + 0x0F + 0x54 /r"},
		{enc: rex(0x0F, 0xAF).w().r(), exp: "REX.W + 0x0F + 0xaf /r"},
		{enc: rex(0x66, 0x81).digit(0).iw(), exp: "0x66 + 0x81 /0 iw"},
		{enc: rex(0xC1).w().digit(4).ib(), exp: "REX.W + 0xc1 /4 ib"},
		{enc: rex(0xF0, 0x01).r(), exp: "0xF0 + 0x01 /r"},
		{enc: rex(0x64, 0x8B).w().r(), exp: "0x64 + REX.W + 0x8b /r"},
		{enc: rex(0xB8).w().io(), exp: "REX.W + 0xb8 io"},
		{enc: rex(0xC3), exp: "0xc3"},
		{enc: rex(0x0F, 0x38, 0x01).r(), exp: "0x0F + 0x38 0x01 /r"},
	} {
		require.Equal(t, tc.exp, tc.enc.String())
	}
}

func TestEncoding_builderPanics(t *testing.T) {
	require.Panics(t, func() {
		rex(0x01).digit(8) // a ModRM digit has only 3 bits
	})
	require.Panics(t, func() {
		rex(0x05).ib().id() // at most one immediate
	})
}

func TestEncoding_Validate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		enc    Encoding
		ops    []Operand
		expErr string
	}{
		{
			name: "ok reg form",
			enc:  rex(0x01).w().r(),
			ops:  []Operand{regMem(64), reg(64)},
		},
		{
			name: "ok digit with immediate",
			enc:  rex(0x81).w().digit(0).id(),
			ops:  []Operand{regMem(64), imm(32)},
		},
		{
			name: "ok operand-size prefix with 16-bit operands",
			enc:  rex(0x66, 0x81).digit(0).iw(),
			ops:  []Operand{regMem(16), imm(16)},
		},
		{
			name: "ok operand-size prefix with 128-bit operands",
			enc:  rex(0x66, 0x0F, 0x54).r(),
			ops:  []Operand{reg(128), regMemAligned(128)},
		},
		{
			name:   "r and digit both consume the reg field",
			enc:    rex(0x01).r().digit(2),
			ops:    []Operand{regMem(64), reg(64)},
			expErr: "/r and /2 both consume the ModRM reg field",
		},
		{
			name:   "W with the operand-size prefix",
			enc:    rex(0x66, 0x01).w().r(),
			ops:    []Operand{regMem(16), reg(16)},
			expErr: "REX.W with the operand-size override prefix is redundant",
		},
		{
			name:   "operand-size prefix with a 64-bit operand",
			enc:    rex(0x66, 0x01).r(),
			ops:    []Operand{regMem(64), reg(64)},
			expErr: "64-bit operand with the 16-bit operand-size prefix",
		},
		{
			name:   "immediate width mismatch",
			enc:    rex(0x81).w().digit(0).id(),
			ops:    []Operand{regMem(64), imm(8)},
			expErr: `8-bit immediate operand does not match declared "id"`,
		},
		{
			name:   "two immediates",
			enc:    rex(0x81).w().digit(0).id(),
			ops:    []Operand{imm(32), imm(32)},
			expErr: "more than one immediate operand",
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.enc.Validate(tc.ops)
			if tc.expErr == "" {
				require.NoError(t, err)
			} else {
				require.EqualError(t, err, tc.expErr)
			}
		})
	}
}

func TestEncoding_ValidateVex(t *testing.T) {
	err := vex(0x0F, 0x54).r().Validate([]Operand{reg(128), regMemAligned(128)})
	require.ErrorIs(t, err, errVexUnsupported)
}
