package leafpack

import (
	"hash/crc32"
	"sync"
)

const (
	// crc16Poly is the CRC-16/BUYPASS generator (x^16 + x^15 + x^2 + 1)
	crc16Poly = uint16(0x8005)

	// crc8Poly is the CRC-8/SMBUS generator (x^8 + x^2 + x + 1)
	crc8Poly = uint8(0x07)
)

var (
	checksumTablesOnce sync.Once
	crc32Table         *crc32.Table
	crc16Table         [256]uint16
	crc8Table          [256]uint8
)

// initChecksumTables builds the lookup tables on first use. They are never
// written again, so concurrent readers need no locking.
func initChecksumTables() {
	checksumTablesOnce.Do(func() {
		crc32Table = crc32.MakeTable(crc32.IEEE)

		for i := 0; i < 256; i++ {
			crc := uint16(i) << 8
			for j := 0; j < 8; j++ {
				if crc&0x8000 != 0 {
					crc = (crc << 1) ^ crc16Poly
				} else {
					crc <<= 1
				}
			}
			crc16Table[i] = crc
		}

		for i := 0; i < 256; i++ {
			crc := uint8(i)
			for j := 0; j < 8; j++ {
				if crc&0x80 != 0 {
					crc = (crc << 1) ^ crc8Poly
				} else {
					crc <<= 1
				}
			}
			crc8Table[i] = crc
		}
	})
}

// CRC32 returns the IEEE CRC-32 of data (reflected 0xEDB88320, initial and
// final XOR 0xFFFFFFFF).
func CRC32(data []byte) uint32 {
	initChecksumTables()
	return crc32.Checksum(data, crc32Table)
}

// CRC16 returns the CRC-16/BUYPASS of data: polynomial 0x8005, no
// reflection, initial value 0.
func CRC16(data []byte) uint16 {
	initChecksumTables()
	var crc uint16
	for _, b := range data {
		crc = (crc << 8) ^ crc16Table[byte(crc>>8)^b]
	}
	return crc
}

// CRC8 returns the CRC-8/SMBUS of data: polynomial 0x07, initial value 0.
func CRC8(data []byte) uint8 {
	initChecksumTables()
	var crc uint8
	for _, b := range data {
		crc = crc8Table[crc^b]
	}
	return crc
}

// Split32 splits v into its four bytes, most significant first.
func Split32(v uint32) [4]byte {
	return [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// Split16 splits v into its high and low byte.
func Split16(v uint16) [2]byte {
	return [2]byte{byte(v >> 8), byte(v)}
}

// PasswordFingerprint returns a one-byte CRC-8 fingerprint of a password,
// suitable for display. It is never stored in a container.
func PasswordFingerprint(password string) uint8 {
	return CRC8([]byte(password))
}
