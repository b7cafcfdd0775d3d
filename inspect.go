package leafpack

// Info describes a container without decoding its payload
type Info struct {
	Scheme         CipherScheme
	Protected      bool
	FilenameLength int
	PayloadSize    int
	ContainerSize  int

	// Filename is only recovered for unprotected containers, whose key bytes
	// are stored in the header.
	Filename string
}

// Inspect parses a container's header and reports its layout. It never asks
// for a password.
func Inspect(container []byte) (*Info, error) {
	header, err := ParseHeader(container)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Scheme:         header.Scheme,
		Protected:      header.Protected(),
		FilenameLength: header.FilenameSize(),
		PayloadSize:    len(container) - header.Overhead(),
		ContainerSize:  len(container),
	}

	if !info.Protected {
		engine, err := NewCipherEngine(header.Scheme, header.Keys)
		if err != nil {
			return nil, err
		}
		start := header.Size()
		name := make([]byte, header.FilenameSize())
		engine.Decrypt(name, container[start:start+len(name)])
		info.Filename = string(name)
	}

	return info, nil
}
