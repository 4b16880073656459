// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package untar

import (
	"bytes"
	"fmt"
	"testing"
)

// testMember describes one member encoded by encodeMember
type testMember struct {
	Name     string
	Mode     string
	UID      int64
	GID      int64
	ModTime  int64
	Flag     byte
	Linkname string
	Uname    string
	Gname    string
	Prefix   string
	Content  []byte
	V7       bool // encode the pre-POSIX layout
}

// encodeHeader returns the 512-byte header block of m with a valid checksum
func encodeHeader(t testing.TB, m testMember) []byte {
	t.Helper()

	block := make([]byte, blockSize)
	copy(block[offName:offName+lenName], m.Name)
	mode := m.Mode
	if mode == "" {
		mode = "0000644"
	}
	copy(block[offMode:offMode+lenMode], mode)
	writeOctal(block[offUID:offUID+lenUID], m.UID)
	writeOctal(block[offGID:offGID+lenGID], m.GID)
	writeOctal(block[offSize:offSize+lenSize], int64(len(m.Content)))
	writeOctal(block[offMtime:offMtime+lenMtime], m.ModTime)
	block[offTypeflag] = m.Flag
	if m.Flag == 0 {
		block[offTypeflag] = '0'
	}
	copy(block[offLinkname:offLinkname+lenLinkname], m.Linkname)

	rest := block[offRest:]
	if !m.V7 {
		copy(rest[restMagic:], "ustar\x00")
		copy(rest[restVersion:restVersion+lenVersion], "00")
		copy(rest[restPrefix:restPrefix+lenPrefix], m.Prefix)
	}
	copy(rest[restUname:restUname+lenUname], m.Uname)
	copy(rest[restGname:restGname+lenGname], m.Gname)

	setChecksum(block)
	return block
}

// setChecksum stores the unsigned checksum of block in its checksum field
func setChecksum(block []byte) {
	sum, _ := checksums(block)
	copy(block[offChksum:offChksum+lenChksum], fmt.Sprintf("%06o\x00 ", sum))
}

// writeOctal writes v as zero padded octal digits followed by a NUL
func writeOctal(b []byte, v int64) {
	copy(b, fmt.Sprintf("%0*o\x00", len(b)-1, v))
}

// encodeMember returns the header block of m followed by its padded content
func encodeMember(t testing.TB, m testMember) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(encodeHeader(t, m))
	buf.Write(m.Content)
	if rem := len(m.Content) % blockSize; rem != 0 {
		buf.Write(make([]byte, blockSize-rem))
	}
	return buf.Bytes()
}

// encodeArchive encodes all members followed by the two block end-of-archive marker
func encodeArchive(t testing.TB, members ...testMember) []byte {
	t.Helper()

	var buf bytes.Buffer
	for _, m := range members {
		buf.Write(encodeMember(t, m))
	}
	buf.Write(zeroBlocks(2))
	return buf.Bytes()
}

// zeroBlocks returns n all-zero blocks
func zeroBlocks(n int) []byte {
	return make([]byte, n*blockSize)
}
