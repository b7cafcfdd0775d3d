package leafpack

import (
	"fmt"
	"strings"
)

// Input validation helpers

// ValidateFilename checks that a filename can be embedded in a container:
// its length plus the terminator slot must fit in the length byte.
func ValidateFilename(name string) error {
	if len(name) > MaxFilenameLength {
		return &MalformedContainerError{
			Offset:  -1,
			Message: fmt.Sprintf("filename is %d bytes, maximum is %d", len(name), MaxFilenameLength),
			Err:     ErrFilenameTooLong,
		}
	}
	return nil
}

// ValidateEmbeddedName checks that a filename recovered from a container is a
// plain base name that is safe to create in an output directory.
func ValidateEmbeddedName(name string) error {
	switch {
	case name == "":
		return &MalformedContainerError{Offset: -1, Message: "embedded filename is empty", Err: ErrUnsafeFilename}
	case name == "." || name == "..":
		return &MalformedContainerError{Offset: -1, Message: fmt.Sprintf("embedded filename %q is a directory reference", name), Err: ErrUnsafeFilename}
	case strings.ContainsAny(name, "/\\"):
		return &MalformedContainerError{Offset: -1, Message: fmt.Sprintf("embedded filename %q contains a path separator", name), Err: ErrUnsafeFilename}
	case strings.IndexByte(name, 0) >= 0:
		return &MalformedContainerError{Offset: -1, Message: "embedded filename contains a NUL byte", Err: ErrUnsafeFilename}
	}
	return nil
}

// ValidateScheme checks that a scheme is known
func ValidateScheme(scheme CipherScheme) error {
	if !scheme.Valid() {
		return &ValidationError{
			Field:   "scheme",
			Value:   scheme,
			Message: "unsupported cipher scheme",
			Err:     ErrUnsupportedScheme,
		}
	}
	return nil
}

// ValidateSize checks if a size parameter is within [minSize, maxSize]. A
// negative minSize or non-positive maxSize disables that bound.
func ValidateSize(size int, name string, minSize, maxSize int) error {
	if size < 0 {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: "size cannot be negative",
		}
	}
	if minSize >= 0 && size < minSize {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: fmt.Sprintf("size too small: got %d, minimum is %d", size, minSize),
		}
	}
	if maxSize > 0 && size > maxSize {
		return &ValidationError{
			Field:   name,
			Value:   size,
			Message: fmt.Sprintf("size too large: got %d, maximum is %d", size, maxSize),
		}
	}
	return nil
}

// ValidateFilePath checks if a file path is valid (not empty)
func ValidateFilePath(path string) error {
	if path == "" {
		return &ValidationError{
			Field:   "path",
			Message: "file path cannot be empty",
		}
	}
	return nil
}
