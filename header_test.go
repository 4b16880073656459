// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		member testMember
		want   Entry
	}{
		{
			name: "ustar regular file",
			member: testMember{
				Name: "dir/hello.txt", Mode: "0000644", UID: 1000, GID: 100, ModTime: 1396065165,
				Uname: "victor", Gname: "users", Content: []byte("hi\n"),
			},
			want: Entry{
				Name: "dir/hello.txt", Mode: "0000644", UID: 1000, GID: 100, Size: 3,
				ModTime: time.Unix(1396065165, 0), Type: RegularFile, Uname: "victor", Gname: "users",
				Format: FormatUSTAR,
			},
		},
		{
			name:   "ustar directory",
			member: testMember{Name: "NSimulator/", Mode: "0000755", Flag: '5', Uname: "root", Gname: "root"},
			want: Entry{
				Name: "NSimulator/", Mode: "0000755", Type: Directory, ModTime: time.Unix(0, 0),
				Uname: "root", Gname: "root", Format: FormatUSTAR,
			},
		},
		{
			name:   "ustar symlink",
			member: testMember{Name: "link", Flag: '2', Linkname: "target/file"},
			want: Entry{
				Name: "link", Mode: "0000644", Type: SymbolicLink, Linkname: "target/file",
				ModTime: time.Unix(0, 0), Format: FormatUSTAR,
			},
		},
		{
			name:   "pre-POSIX regular file keeps owner names",
			member: testMember{Name: "old.txt", V7: true, Uname: "bob", Gname: "staff", Content: []byte("x")},
			want: Entry{
				Name: "old.txt", Mode: "0000644", Size: 1, Type: RegularFile, ModTime: time.Unix(0, 0),
				Uname: "bob", Gname: "staff", Format: FormatV7,
			},
		},
		{
			name:   "ustar prefix is joined to the name",
			member: testMember{Name: "file.txt", Prefix: "very/long/path"},
			want: Entry{
				Name: "very/long/path/file.txt", Mode: "0000644", Type: RegularFile,
				ModTime: time.Unix(0, 0), Format: FormatUSTAR,
			},
		},
		{
			name:   "prefix is ignored in the pre-POSIX layout",
			member: testMember{Name: "file.txt", V7: true},
			want: Entry{
				Name: "file.txt", Mode: "0000644", Type: RegularFile,
				ModTime: time.Unix(0, 0), Format: FormatV7,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			block := encodeHeader(t, tc.member)
			got, err := decodeHeader(block)
			require.NoError(t, err)

			sum, _ := checksums(block)
			tc.want.Checksum = sum

			assert.Equal(t, tc.want.Name, got.Name)
			assert.Equal(t, tc.want.Mode, got.Mode)
			assert.Equal(t, tc.want.UID, got.UID)
			assert.Equal(t, tc.want.GID, got.GID)
			assert.Equal(t, tc.want.Size, got.Size)
			assert.True(t, tc.want.ModTime.Equal(got.ModTime), "mod time %v != %v", tc.want.ModTime, got.ModTime)
			assert.Equal(t, tc.want.Checksum, got.Checksum)
			assert.Equal(t, tc.want.Type, got.Type)
			assert.Equal(t, tc.want.Linkname, got.Linkname)
			assert.Equal(t, tc.want.Uname, got.Uname)
			assert.Equal(t, tc.want.Gname, got.Gname)
			assert.Equal(t, tc.want.Format, got.Format)
			assert.Nil(t, got.Content)
			assert.NoError(t, verifyChecksum(got, block))
		})
	}
}

func TestDecodeHeaderSizeIsOctal(t *testing.T) {
	block := encodeHeader(t, testMember{Name: "a"})
	copy(block[offSize:offSize+lenSize], "00000000144\x00")
	setChecksum(block)

	e, err := decodeHeader(block)
	require.NoError(t, err)
	assert.Equal(t, int64(100), e.Size)
}

func TestDecodeHeaderErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(block []byte)
		wantField string
	}{
		{
			name:      "unknown type flag",
			mutate:    func(b []byte) { b[offTypeflag] = 'x' },
			wantField: "typeflag",
		},
		{
			name:      "decimal digit in size",
			mutate:    func(b []byte) { copy(b[offSize:offSize+lenSize], "00000000189\x00") },
			wantField: "size",
		},
		{
			name:      "garbage in uid",
			mutate:    func(b []byte) { copy(b[offUID:offUID+lenUID], "abc\x00\x00\x00\x00\x00") },
			wantField: "uid",
		},
		{
			name:      "garbage in mtime",
			mutate:    func(b []byte) { copy(b[offMtime:offMtime+lenMtime], "1a") },
			wantField: "mtime",
		},
		{
			name:      "negative base-256 size",
			mutate:    func(b []byte) { b[offSize] = 0xff },
			wantField: "size",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			block := encodeHeader(t, testMember{Name: "a"})
			tc.mutate(block)
			setChecksum(block)

			_, err := decodeHeader(block)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat))

			var fe *FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.wantField, fe.Field)
		})
	}
}

func TestDecodeHeaderWrongBlockSize(t *testing.T) {
	_, err := decodeHeader(make([]byte, 100))
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestDecodeHeaderNulTypeFlag(t *testing.T) {
	block := encodeHeader(t, testMember{Name: "old"})
	block[offTypeflag] = 0
	setChecksum(block)

	e, err := decodeHeader(block)
	require.NoError(t, err)
	assert.Equal(t, RegularFile, e.Type)
}

func TestDecodeHeaderDeviceNumbers(t *testing.T) {
	block := encodeHeader(t, testMember{Name: "dev/tty", Flag: '3'})
	writeOctal(block[offRest+restDevMajor:offRest+restDevMajor+lenDevMajor], 4)
	writeOctal(block[offRest+restDevMinor:offRest+restDevMinor+lenDevMinor], 64)
	setChecksum(block)

	e, err := decodeHeader(block)
	require.NoError(t, err)
	assert.Equal(t, CharDevice, e.Type)
	assert.Equal(t, int64(4), e.DevMajor)
	assert.Equal(t, int64(64), e.DevMinor)
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    int64
		wantErr bool
	}{
		{name: "octal with nul", input: []byte("0000644\x00"), want: 0644},
		{name: "octal with space", input: []byte("000644 \x00"), want: 0644},
		{name: "leading spaces", input: []byte("    17\x00"), want: 017},
		{name: "empty field", input: []byte("\x00\x00\x00\x00"), want: 0},
		{name: "spaces only", input: []byte("        "), want: 0},
		{name: "size of 100", input: []byte("00000000144\x00"), want: 100},
		{name: "base-256", input: []byte{0x80, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01, 0x00}, want: 256},
		{name: "negative base-256", input: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe}, wantErr: true},
		{name: "base-256 overflow", input: []byte{0x80, 0x7f, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, wantErr: true},
		{name: "not octal", input: []byte("0008\x00"), wantErr: true},
		{name: "sign", input: []byte("-1\x00"), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseNumeric(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestVerifyChecksum(t *testing.T) {
	block := encodeHeader(t, testMember{Name: "a", Content: []byte("abc")})
	e, err := decodeHeader(block)
	require.NoError(t, err)
	require.NoError(t, verifyChecksum(e, block))

	// corrupt a byte outside of the checksum field
	block[offName+1] = 'z'
	e, err = decodeHeader(block)
	require.NoError(t, err)
	err = verifyChecksum(e, block)
	assert.True(t, errors.Is(err, ErrChecksum))
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestVerifyChecksumSigned(t *testing.T) {
	block := encodeHeader(t, testMember{Name: "caf\xe9"})
	_, signed := checksums(block)
	copy(block[offChksum:offChksum+lenChksum], []byte("0000000\x00"))
	writeOctal(block[offChksum:offChksum+7], signed)

	e, err := decodeHeader(block)
	require.NoError(t, err)
	assert.NoError(t, verifyChecksum(e, block))
}

func TestIsZeroBlock(t *testing.T) {
	assert.True(t, isZeroBlock(zeroBlocks(1)))

	block := zeroBlocks(1)
	block[blockSize-1] = 1
	assert.False(t, isZeroBlock(block))
}

func TestDecodeHeaderUnreadableDeviceNumber(t *testing.T) {
	block := encodeHeader(t, testMember{Name: "dev/sda", Flag: '4'})
	copy(block[offRest+restDevMajor:offRest+restDevMajor+lenDevMajor], "zz")
	writeOctal(block[offRest+restDevMinor:offRest+restDevMinor+lenDevMinor], 3)
	setChecksum(block)

	e, err := decodeHeader(block)
	require.NoError(t, err)
	assert.Equal(t, BlockDevice, e.Type)
	assert.Equal(t, int64(0), e.DevMajor)
	assert.Equal(t, int64(3), e.DevMinor)
}
