// Package leafpack implements the LPK container format, a reversible wrapper
// that hides a file's name and contents behind a keyed bit-rotation
// transform.
//
// # Overview
//
// A container stores one file: its base name and its bytes, each rotated
// byte by byte according to one or two key bytes. The key bytes are either
// random and stored in the header, or derived from a password whose CRC-32 is
// appended as a trailer.
//
// LPK is obfuscation, not encryption. The key space is at most 16 bits and
// the password check is a plain checksum. Use it to keep casual readers and
// content scanners away from a file, never to protect secrets.
//
// # Cipher Schemes
//
//   - SchemeSingleKey ("LPK1"): one key byte, 8-byte rotation blocks
//   - SchemeDualKey ("LPK2"): two key bytes, 16-byte rotation blocks
//
// # Basic Usage
//
//	container, err := leafpack.EncodeWithPassword(data, "report.pdf", "hunter2")
//	if err != nil {
//	    return err
//	}
//
//	name, payload, err := leafpack.Decode(container, leafpack.StaticPassword("hunter2"))
//	if leafpack.IsPasswordRejected(err) {
//	    // wrong password
//	}
//
// Files on any absfs.FileSystem can be handled with a Packer:
//
//	packer, _ := leafpack.NewPacker(fs, nil, nil)
//	out, err := packer.PackFile("/docs/report.pdf", "")   // "/docs/report_packed.lpk"
//	_, err = packer.UnpackFile(out, "/restore", prompt)
//
// # File Format
//
// Single-key containers:
//   - Magic bytes (4 bytes): "LPK1"
//   - Key (1 byte): rotation key, or a random decoy when password protected
//   - Length (1 byte): filename length + 1
//   - Lock (1 byte): <= 0x45 when password protected, random filler otherwise
//   - Filename (Length - 1 bytes): rotated filename
//   - Payload (variable): rotated file contents
//   - Trailer (4 bytes, protected only): CRC-32 of the password, big endian
//
// Dual-key containers use the magic "LPK2" and store a second key byte
// directly after the first.
//
// # Rotation
//
// Each region is processed in blocks of 8 bytes per key byte, starting at the
// region's first byte. Byte x of an 8-byte key segment is rotated left by
// {4, 2, 6, 5, 3, 7, 1, 5}[x] bits when bit x (counting from the most
// significant bit) of the key byte is set, and by 4 bits otherwise.
//
// # Errors
//
// Decoding fails with a *MalformedContainerError for structural problems and
// a *PasswordRejectedError when the password does not match. A rotation mode
// outside 0-7 is a bug and panics with *InvalidCipherModeError.
package leafpack
